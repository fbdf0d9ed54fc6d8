package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one cart entry priced at the variant's current price.
type Line struct {
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Available   bool            `json:"available"`
}

type PricedCart struct {
	UserID    uuid.UUID       `json:"user_id"`
	Lines     []Line          `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Variant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Price     decimal.Decimal
	IsActive  bool
}

// Subtotal sums line totals.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
