// internal/models/product.go
package models

type Product struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:255;not null;index"`
	Description string  `json:"description" gorm:"type:text;not null"`
	Price       float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int     `json:"quantity" gorm:"not null;default:0"`
	Image       string  `json:"image" gorm:"size:512"`
}

// ProductProjection is the lightweight shape embedded in cart and order
// responses.
type ProductProjection struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

func (p *Product) Projection() ProductProjection {
	return ProductProjection{
		ID:       p.ID.String(),
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: p.Quantity,
	}
}
