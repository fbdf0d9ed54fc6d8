package order

import (
	"time"

	"storefront-be/internal/inventory"
	"storefront-be/internal/offer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type FulfillmentType string

const (
	FulfillmentDelivery FulfillmentType = "delivery"
	FulfillmentPickup   FulfillmentType = "pickup"
)

func (f FulfillmentType) Valid() bool {
	return f == FulfillmentDelivery || f == FulfillmentPickup
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	FulfillmentType FulfillmentType `json:"fulfillment_type"`
	StoreID         *uuid.UUID      `json:"store_id,omitempty"`
	AddressID       *uuid.UUID      `json:"address_id,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	InventoryReleasedAt *time.Time `json:"inventory_released_at,omitempty"`

	Items  []Item               `json:"items"`
	Offers []offer.AppliedOffer `json:"applied_offers"`
	Pickup *Pickup              `json:"pickup,omitempty"`
}

// Item records where a line's stock was reserved. RefID is the variant id
// for global lines and the store id for store lines.
type Item struct {
	ID        uuid.UUID                   `json:"id"`
	OrderID   uuid.UUID                   `json:"order_id"`
	VariantID uuid.UUID                   `json:"variant_id"`
	Quantity  int                         `json:"quantity"`
	Price     decimal.Decimal             `json:"price"`
	Source    inventory.FulfillmentSource `json:"fulfillment_source"`
	RefID     uuid.UUID                   `json:"fulfillment_ref_id"`
	Position  int                         `json:"position"`
}

type PickupStatus string

const (
	PickupReady     PickupStatus = "ready"
	PickupPickedUp  PickupStatus = "picked_up"
	PickupCancelled PickupStatus = "cancelled"
)

type Pickup struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	StoreID    uuid.UUID       `json:"store_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     PickupStatus    `json:"status"`
	PickedUpAt *time.Time      `json:"picked_up_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
