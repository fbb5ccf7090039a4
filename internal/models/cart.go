// internal/models/cart.go
package models

import (
	"github.com/google/uuid"
)

// Cart holds the pre-checkout line items for one user. Bill is the running
// total and must equal the sum over items of quantity * product price after
// every mutation.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `json:"user" gorm:"type:uuid;uniqueIndex;not null"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	Bill   float64    `json:"bill" gorm:"type:decimal(10,2);not null;default:0"`
}

type CartItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	CartID    uuid.UUID `json:"-" gorm:"type:uuid;index:idx_cart_product,unique;not null"`
	ProductID uuid.UUID `json:"product" gorm:"type:uuid;index:idx_cart_product,unique;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}

// CartItemView resolves the line item's product to its lightweight
// projection for API responses.
type CartItemView struct {
	Product  ProductProjection `json:"product"`
	Quantity int               `json:"quantity"`
}

type CartView struct {
	ID    uuid.UUID      `json:"id"`
	User  uuid.UUID      `json:"user"`
	Items []CartItemView `json:"items"`
	Bill  float64        `json:"bill"`
}

// View returns the cart with items resolved to product projections. Items
// whose product association is not loaded keep a bare ID projection.
func (c *Cart) View() CartView {
	items := make([]CartItemView, 0, len(c.Items))
	for _, item := range c.Items {
		view := CartItemView{Quantity: item.Quantity}
		if item.Product != nil {
			view.Product = item.Product.Projection()
		} else {
			view.Product = ProductProjection{ID: item.ProductID.String()}
		}
		items = append(items, view)
	}
	return CartView{
		ID:    c.ID,
		User:  c.UserID,
		Items: items,
		Bill:  c.Bill,
	}
}

// ItemIndex returns the position of the line item for productID, or -1.
func (c *Cart) ItemIndex(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// ComputeBill sums quantity * price over all loaded line items. Update and
// removal paths recompute from scratch instead of patching the previous bill
// so the total cannot drift across concurrent price changes.
func (c *Cart) ComputeBill() float64 {
	var total float64
	for _, item := range c.Items {
		if item.Product != nil {
			total += float64(item.Quantity) * item.Product.Price
		}
	}
	if total < 0 {
		total = 0
	}
	return total
}
