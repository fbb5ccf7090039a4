// internal/handlers/user.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riteshop/riteshop-backend/internal/services"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

type UserHandler struct {
	userService   *services.UserService
	authorization *services.AuthorizationService
}

func NewUserHandler(userService *services.UserService, authorization *services.AuthorizationService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		authorization: authorization,
	}
}

// POST /users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	token, err := h.userService.Register(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"token": token})
}

// POST /users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	token, err := h.userService.Login(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"token": token})
}

// POST /users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	exp, _ := c.Get("token_exp")
	expiresAt, ok := exp.(time.Time)
	if token == "" || !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.userService.Logout(token, expiresAt); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Logged out successfully"})
}

// GET /users — the authenticated user's own record.
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.userService.GetByID(actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok || !h.authorization.CanActOnUser(actor, id) {
		utils.ForbiddenResponse(c)
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok || !h.authorization.CanActOnUser(actor, id) {
		utils.ForbiddenResponse(c)
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(id, &req, actor.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok || !h.authorization.CanActOnUser(actor, id) {
		utils.ForbiddenResponse(c)
		return
	}

	if err := h.userService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
