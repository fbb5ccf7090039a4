// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riteshop/riteshop-backend/internal/services"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

type OrderHandler struct {
	orderService  *services.OrderService
	authorization *services.AuthorizationService
}

func NewOrderHandler(orderService *services.OrderService, authorization *services.AuthorizationService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		authorization: authorization,
	}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	order, err := h.orderService.Create(actor.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"order": order})
}

// GET /orders/all
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orders, count, err := h.orderService.GetAll(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders, "count": count})
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	order, err := h.orderService.GetByID(id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// GET /orders/user/:userId
func (h *OrderHandler) GetOrdersByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok || !h.authorization.CanActOnUser(actor, userID) {
		utils.ForbiddenResponse(c)
		return
	}

	orders, err := h.orderService.GetByUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

// PUT /orders/:id
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	order, err := h.orderService.Update(id, &req, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// POST /orders/create-paypal-transaction
func (h *OrderHandler) CreatePayPalTransaction(c *gin.Context) {
	var body struct {
		Total float64 `json:"total"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Total <= 0 {
		utils.BadRequestResponse(c, "Invalid order total")
		return
	}

	paypalOrder, err := h.orderService.CreatePayPalTransaction(c.Request.Context(), body.Total)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to create PayPal transaction")
		return
	}

	utils.SuccessResponse(c, paypalOrder)
}

// POST /orders/capture-payment/:orderId
func (h *OrderHandler) CapturePayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	var body struct {
		PayPalOrderID string `json:"paypalOrderId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PayPalOrderID == "" {
		utils.BadRequestResponse(c, "Missing PayPal order ID")
		return
	}

	capture, err := h.orderService.CapturePayment(c.Request.Context(), body.PayPalOrderID, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, capture)
}

// POST /orders/:id/pay-intent
func (h *OrderHandler) CreateCardIntent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	intent, err := h.orderService.CreateCardIntent(id, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}

// POST /orders/:id/confirm-card
func (h *OrderHandler) ConfirmCardPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID")
		return
	}

	var body struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PaymentIntentID == "" {
		utils.BadRequestResponse(c, "Missing payment intent ID")
		return
	}

	if err := h.orderService.ConfirmCardPayment(body.PaymentIntentID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Payment confirmed"})
}
