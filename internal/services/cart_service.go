// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riteshop/riteshop-backend/internal/models"
	"github.com/riteshop/riteshop-backend/internal/utils"
)

// CartService owns the per-user cart ledger. Every mutation runs in a
// transaction and leaves Bill equal to the sum of quantity * price over the
// remaining items.
type CartService struct {
	db *gorm.DB
}

type AddItemRequest struct {
	ProductID string `json:"product" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type UpdateItemRequest struct {
	ProductID string `json:"product" validate:"required,uuid4"`
	Quantity  int    `json:"quantity"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart returns the user's cart with product projections resolved, or
// ErrCartNotFound when the user never added anything.
func (s *CartService) GetCart(userID uuid.UUID) (*models.Cart, error) {
	return s.loadCart(s.db, userID)
}

// AddItem appends quantity units of a product to the user's cart, creating
// the cart on first use. Adding a product already in the cart combines
// quantities. The stock check always covers the combined line quantity.
func (s *CartService) AddItem(userID uuid.UUID, req *AddItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var cart *models.Cart
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		existing, err := s.loadCart(tx, userID)
		if err != nil && !errors.Is(err, ErrCartNotFound) {
			return err
		}

		if existing == nil {
			if req.Quantity > product.Quantity {
				return ErrInsufficientStock
			}
			created := &models.Cart{
				UserID: userID,
				Items: []models.CartItem{
					{ProductID: product.ID, Quantity: req.Quantity},
				},
				Bill: float64(req.Quantity) * product.Price,
			}
			if err := tx.Create(created).Error; err != nil {
				return fmt.Errorf("failed to create cart: %w", err)
			}
			cart = created
			return nil
		}

		if idx := existing.ItemIndex(product.ID); idx >= 0 {
			combined := existing.Items[idx].Quantity + req.Quantity
			if combined > product.Quantity {
				return ErrInsufficientStock
			}
			existing.Items[idx].Quantity = combined
			if err := tx.Model(&models.CartItem{}).
				Where("id = ?", existing.Items[idx].ID).
				Update("quantity", combined).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		} else {
			if req.Quantity > product.Quantity {
				return ErrInsufficientStock
			}
			item := models.CartItem{
				CartID:    existing.ID,
				ProductID: product.ID,
				Quantity:  req.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
			item.Product = &product
			existing.Items = append(existing.Items, item)
		}

		// Appends patch the running total incrementally.
		existing.Bill += float64(req.Quantity) * product.Price
		if err := tx.Model(existing).Update("bill", existing.Bill).Error; err != nil {
			return fmt.Errorf("failed to update bill: %w", err)
		}
		cart = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem replaces the quantity of a line item. A quantity of zero or
// less removes the line. The bill is recomputed from scratch so stale totals
// cannot survive a price change.
func (s *CartService) UpdateItem(userID uuid.UUID, req *UpdateItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrItemNotInCart
	}

	if req.Quantity <= 0 {
		return s.RemoveItem(userID, productID)
	}

	var cart *models.Cart
	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.loadCart(tx, userID)
		if err != nil {
			return err
		}

		idx := existing.ItemIndex(productID)
		if idx < 0 {
			return ErrItemNotInCart
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		if req.Quantity > product.Quantity {
			return ErrInsufficientStock
		}

		existing.Items[idx].Quantity = req.Quantity
		existing.Items[idx].Product = &product
		if err := tx.Model(&models.CartItem{}).
			Where("id = ?", existing.Items[idx].ID).
			Update("quantity", req.Quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}

		existing.Bill = existing.ComputeBill()
		if err := tx.Model(existing).Update("bill", existing.Bill).Error; err != nil {
			return fmt.Errorf("failed to update bill: %w", err)
		}
		cart = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a line item from the cart and recomputes the bill.
func (s *CartService) RemoveItem(userID, productID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.loadCart(tx, userID)
		if err != nil {
			return err
		}

		idx := existing.ItemIndex(productID)
		if idx < 0 {
			return ErrItemNotInCart
		}

		if err := tx.Delete(&models.CartItem{}, "id = ?", existing.Items[idx].ID).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		existing.Items = append(existing.Items[:idx], existing.Items[idx+1:]...)

		existing.Bill = existing.ComputeBill()
		if err := tx.Model(existing).Update("bill", existing.Bill).Error; err != nil {
			return fmt.Errorf("failed to update bill: %w", err)
		}
		cart = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// EmptyCart removes every line item and zeroes the bill. The cart row itself
// survives for reuse. A user who never had a cart gets ErrCartNotFound.
func (s *CartService) EmptyCart(userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.emptyCartTx(tx, userID)
	})
}

// emptyCartTx is the transactional body of EmptyCart, shared with order
// creation so the cart drains in the same transaction as the order insert.
func (s *CartService) emptyCartTx(tx *gorm.DB, userID uuid.UUID) error {
	var cart models.Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to empty cart: %w", err)
	}
	if err := tx.Model(&cart).Update("bill", 0).Error; err != nil {
		return fmt.Errorf("failed to reset bill: %w", err)
	}
	return nil
}

func (s *CartService) loadCart(tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Preload("Items.Product").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &cart, nil
}
