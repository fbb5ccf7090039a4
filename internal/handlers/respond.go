// internal/handlers/respond.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/riteshop/riteshop-backend/internal/models"
	"github.com/riteshop/riteshop-backend/internal/services"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

// respondServiceError maps service sentinel errors onto the HTTP status
// grid. Anything unrecognised is a 500 with a generic body so internals
// never leak.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCartNotFound),
		errors.Is(err, services.ErrItemNotInCart),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrRequestNotFound):
		utils.NotFoundResponse(c, err.Error())

	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrRequestReviewed):
		utils.BadRequestResponse(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrPendingRequestExists):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, err.Error())

	case errors.Is(err, services.ErrNotAllowed):
		utils.ForbiddenResponse(c)

	default:
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(verrs))
			return
		}
		utils.InternalErrorResponse(c, "")
	}
}

// currentActor reads the authenticated caller out of the gin context.
func currentActor(c *gin.Context) (services.Actor, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return services.Actor{}, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return services.Actor{}, false
	}

	roleStr, _ := utils.GetUserRoleFromContext(c)
	return services.Actor{ID: id, Role: models.Role(roleStr)}, true
}
