package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is the purchasable unit. Price and inventory live here, not on
// the product.
type Variant struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Attributes map[string]any  `json:"attributes"`
	IsActive   bool            `json:"is_active"`
}

type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	Variants  []Variant `json:"variants"`
}

type CreateVariantInput struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Attributes map[string]any  `json:"attributes"`
}

type CreateProductInput struct {
	Name     string               `json:"name"`
	Variants []CreateVariantInput `json:"variants"`
}

type ListOptions struct {
	Search string
	Page   int
	Limit  int
}
