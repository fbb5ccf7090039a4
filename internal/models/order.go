// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ShippingAddress is embedded in the order row.
type ShippingAddress struct {
	Address    string `json:"address" gorm:"size:255"`
	City       string `json:"city" gorm:"size:100"`
	PostalCode string `json:"postalCode" gorm:"size:20"`
	Tel        string `json:"tel" gorm:"size:30"`
	Country    string `json:"country" gorm:"size:100"`
}

const (
	PaymentMethodPayPal = "paypal"
	PaymentMethodCard   = "card"
)

// Order is a snapshot of a cart taken at checkout. Once IsDelivered is set
// the record accepts no further updates.
type Order struct {
	BaseModel
	UserID          uuid.UUID       `json:"user" gorm:"type:uuid;index;not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	ShippingFee     float64         `json:"shippingFee" gorm:"type:decimal(10,2);not null;default:0"`
	ItemsPrice      float64         `json:"itemsPrice" gorm:"type:decimal(10,2);not null;default:0"`
	Total           float64         `json:"total" gorm:"type:decimal(10,2);not null;default:0"`
	IsPaid          bool            `json:"isPaid" gorm:"default:false"`
	IsDelivered     bool            `json:"isDelivered" gorm:"default:false"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty" gorm:"size:30"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

type OrderItem struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	OrderID   uuid.UUID `json:"-" gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `json:"product" gorm:"type:uuid;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}
