package offer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFlatAmount DiscountKind = "flat_amount"
)

// Discount is either a percentage of the subtotal or a flat amount.
type Discount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

func Percentage(v decimal.Decimal) Discount {
	return Discount{Kind: DiscountPercentage, Value: v}
}

func FlatAmount(v decimal.Decimal) Discount {
	return Discount{Kind: DiscountFlatAmount, Value: v}
}

type Offer struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	MinCartValue decimal.Decimal     `json:"min_cart_value"`
	Discount     Discount            `json:"discount"`
	MaxDiscount  decimal.NullDecimal `json:"max_discount"`
	Priority     int                 `json:"priority"`
	Stackable    bool                `json:"stackable"`
	StartsAt     time.Time           `json:"starts_at"`
	EndsAt       time.Time           `json:"ends_at"`
	IsActive     bool                `json:"is_active"`
	CreatedBy    *uuid.UUID          `json:"created_by,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

type AppliedOffer struct {
	OfferID  uuid.UUID       `json:"offer_id"`
	Title    string          `json:"title"`
	Discount decimal.Decimal `json:"discount"`
}

type Result struct {
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Applied       []AppliedOffer  `json:"applied_offers"`
}

type CreateOfferInput struct {
	Title        string
	Description  string
	MinCartValue decimal.Decimal
	Discount     Discount
	MaxDiscount  *decimal.Decimal
	Priority     int
	Stackable    bool
	StartsAt     time.Time
	EndsAt       time.Time
	CreatedBy    *uuid.UUID
}
