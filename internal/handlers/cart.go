// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riteshop/riteshop-backend/internal/services"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	cart, err := h.cartService.GetCart(actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart.View()})
}

// POST /cart
func (h *CartHandler) AddItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var body struct {
		Item services.AddItemRequest `json:"item"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if errs := utils.GetValidationErrors(utils.ValidateStruct(&body.Item)); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	cart, err := h.cartService.AddItem(actor.ID, &body.Item)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"cart": cart.View()})
}

// PUT /cart
func (h *CartHandler) UpdateItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var body struct {
		Item services.UpdateItemRequest `json:"item"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	cart, err := h.cartService.UpdateItem(actor.ID, &body.Item)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart.View()})
}

// DELETE /cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var body struct {
		ProductID string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	productID, err := uuid.Parse(body.ProductID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID")
		return
	}

	cart, err := h.cartService.RemoveItem(actor.ID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart.View()})
}

// DELETE /cart/empty
func (h *CartHandler) EmptyCart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.cartService.EmptyCart(actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Cart emptied successfully"})
}
