// internal/handlers/role_request.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riteshop/riteshop-backend/internal/services"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

type RoleRequestHandler struct {
	roleRequestService *services.RoleRequestService
}

func NewRoleRequestHandler(roleRequestService *services.RoleRequestService) *RoleRequestHandler {
	return &RoleRequestHandler{roleRequestService: roleRequestService}
}

// POST /request-role
func (h *RoleRequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateRoleRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	request, err := h.roleRequestService.Create(actor.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"request": request})
}

// PUT /request-role/:id
func (h *RoleRequestHandler) ReviewRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ReviewRoleRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	request, err := h.roleRequestService.Review(id, actor.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"request": request})
}

// GET /request-role
func (h *RoleRequestHandler) GetAllRequests(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	requests, count, err := h.roleRequestService.GetAll(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests, "count": count})
}

// GET /request-role/requests — the caller's own requests.
func (h *RoleRequestHandler) GetOwnRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requests, err := h.roleRequestService.GetByRequester(actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests})
}

// GET /request-role/requests/:requester
func (h *RoleRequestHandler) GetRequestsByRequester(c *gin.Context) {
	requesterID, err := uuid.Parse(c.Param("requester"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	requests, err := h.roleRequestService.GetByRequester(requesterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests})
}

// GET /request-role/:id
func (h *RoleRequestHandler) GetRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	request, err := h.roleRequestService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"request": request})
}
