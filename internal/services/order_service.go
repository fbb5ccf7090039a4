// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riteshop/riteshop-backend/internal/models"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

// PaymentGateway is the PayPal checkout surface the order service needs.
// Tests substitute a stub so no network traffic happens.
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, total float64) (*PayPalOrder, error)
	CapturePayment(ctx context.Context, paypalOrderID string) (*PayPalOrder, error)
}

// CardGateway is the card-intent surface for Stripe checkouts.
type CardGateway interface {
	CreateIntent(total float64, metadata map[string]string) (*PaymentIntentResponse, error)
	IntentSucceeded(paymentIntentID string) (bool, error)
}

type OrderService struct {
	db     *gorm.DB
	carts  *CartService
	paypal PaymentGateway
	cards  CardGateway
}

type CreateOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	ShippingFee     float64                `json:"shippingFee" validate:"min=0"`
}

type UpdateOrderRequest struct {
	ShippingAddress *models.ShippingAddress `json:"shippingAddress,omitempty"`
	ShippingFee     *float64                `json:"shippingFee,omitempty" validate:"omitempty,min=0"`
	IsPaid          *bool                   `json:"isPaid,omitempty"`
	IsDelivered     *bool                   `json:"isDelivered,omitempty"`
	PaymentMethod   string                  `json:"paymentMethod,omitempty"`
}

func NewOrderService(db *gorm.DB, carts *CartService, paypal PaymentGateway, cards CardGateway) *OrderService {
	return &OrderService{db: db, carts: carts, paypal: paypal, cards: cards}
}

// Create turns the user's cart into an order. The order snapshot and the
// cart drain happen in one transaction so a crash can never leave both an
// order and a full cart behind.
func (s *OrderService) Create(userID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var orderID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.carts.loadCart(tx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			items = append(items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order := &models.Order{
			UserID:          userID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			ShippingFee:     req.ShippingFee,
			ItemsPrice:      cart.Bill,
			Total:           req.ShippingFee + cart.Bill,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		orderID = order.ID

		return s.carts.emptyCartTx(tx, userID)
	})
	if err != nil {
		return nil, err
	}

	return s.getByID(orderID)
}

// GetAll lists every order newest-first with the total count, for the
// admin dashboard.
func (s *OrderService) GetAll(params utils.PaginationParams) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := s.db.Preload("Items.Product").Preload("User").
		Order("created_at DESC")
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, total, nil
}

// GetByID returns an order to its owner or an admin; anyone else gets
// ErrNotAllowed.
func (s *OrderService) GetByID(id uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && actor.ID != order.UserID {
		return nil, ErrNotAllowed
	}
	return order, nil
}

func (s *OrderService) GetByUser(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// Update patches an order that has not been delivered yet. The delivered
// guard sits in the WHERE clause so a concurrent delivery cannot slip a
// late edit through.
func (s *OrderService) Update(id uuid.UUID, req *UpdateOrderRequest, actor Actor) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.GetByID(id, actor); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.ShippingAddress != nil {
		updates["shipping_address"] = req.ShippingAddress.Address
		updates["shipping_city"] = req.ShippingAddress.City
		updates["shipping_postal_code"] = req.ShippingAddress.PostalCode
		updates["shipping_tel"] = req.ShippingAddress.Tel
		updates["shipping_country"] = req.ShippingAddress.Country
	}
	if req.ShippingFee != nil {
		updates["shipping_fee"] = *req.ShippingFee
	}
	if req.IsPaid != nil {
		updates["is_paid"] = *req.IsPaid
	}
	if req.PaymentMethod != "" {
		updates["payment_method"] = req.PaymentMethod
	}
	if req.IsDelivered != nil {
		updates["is_delivered"] = *req.IsDelivered
		if *req.IsDelivered {
			updates["delivered_at"] = time.Now()
		}
	}
	if len(updates) == 0 {
		return s.getByID(id)
	}

	result := s.db.Model(&models.Order{}).
		Where("id = ? AND is_delivered = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}

	return s.getByID(id)
}

// CreatePayPalTransaction opens a PayPal checkout order for the total.
func (s *OrderService) CreatePayPalTransaction(ctx context.Context, total float64) (*PayPalOrder, error) {
	return s.paypal.CreateTransaction(ctx, total)
}

// CapturePayment captures the PayPal order, marks the store order paid and
// decrements product stock. The stock floor is zero: overselling a race is
// absorbed instead of driving quantities negative.
func (s *OrderService) CapturePayment(ctx context.Context, paypalOrderID string, orderID uuid.UUID) (*PayPalOrder, error) {
	capture, err := s.paypal.CapturePayment(ctx, paypalOrderID)
	if err != nil {
		return nil, fmt.Errorf("paypal capture failed: %w", err)
	}

	if err := s.markPaid(orderID, models.PaymentMethodPayPal); err != nil {
		return nil, err
	}
	return capture, nil
}

// CreateCardIntent opens a Stripe payment intent for an existing order.
func (s *OrderService) CreateCardIntent(orderID uuid.UUID, actor Actor) (*PaymentIntentResponse, error) {
	order, err := s.GetByID(orderID, actor)
	if err != nil {
		return nil, err
	}
	return s.cards.CreateIntent(order.Total, map[string]string{
		"order_id": order.ID.String(),
		"user_id":  order.UserID.String(),
	})
}

// ConfirmCardPayment verifies the intent settled, then marks the order paid
// and decrements stock the same way a PayPal capture does.
func (s *OrderService) ConfirmCardPayment(paymentIntentID string, orderID uuid.UUID) error {
	ok, err := s.cards.IntentSucceeded(paymentIntentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("payment intent %s has not succeeded", paymentIntentID)
	}
	return s.markPaid(orderID, models.PaymentMethodCard)
}

func (s *OrderService) markPaid(orderID uuid.UUID, method string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Items.Product").First(&order, "id = ?", orderID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		updates := map[string]interface{}{
			"is_paid":        true,
			"payment_method": method,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		for _, item := range order.Items {
			if item.Product == nil {
				continue
			}
			newQty := item.Product.Quantity - item.Quantity
			if newQty < 0 {
				newQty = 0
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("quantity", newQty).Error; err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}
		return nil
	})
}

func (s *OrderService) getByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items.Product").Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}
