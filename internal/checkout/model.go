package checkout

import (
	"time"

	"storefront-be/internal/cart"
	"storefront-be/internal/offer"
	"storefront-be/internal/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Request struct {
	UserID          uuid.UUID
	FulfillmentType order.FulfillmentType
	AddressID       *uuid.UUID
	StoreID         *uuid.UUID
}

type Receipt struct {
	OrderID         uuid.UUID             `json:"order_id"`
	Status          order.Status          `json:"status"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	DiscountTotal   decimal.Decimal       `json:"discount_total"`
	Total           decimal.Decimal       `json:"total"`
	FulfillmentType order.FulfillmentType `json:"fulfillment_type"`
	StoreID         *uuid.UUID            `json:"store_id,omitempty"`
	AddressID       *uuid.UUID            `json:"address_id,omitempty"`
	AppliedOffers   []offer.AppliedOffer  `json:"applied_offers"`
	CreatedAt       time.Time             `json:"created_at"`
}

// Quote previews what checkout would charge for the current cart.
type Quote struct {
	Lines         []cart.Line          `json:"lines"`
	ItemCount     int                  `json:"item_count"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	DiscountTotal decimal.Decimal      `json:"discount_total"`
	Total         decimal.Decimal      `json:"total"`
	AppliedOffers []offer.AppliedOffer `json:"applied_offers"`
}

// Options toggles checkout behaviour that differs between deployments.
type Options struct {
	// PickupAutoResolve picks the nearest qualifying store when a pickup
	// request names none. When false such requests fail with ErrStoreRequired.
	PickupAutoResolve bool
}
