package inventory

import (
	"time"

	"github.com/google/uuid"
)

type GlobalStock struct {
	VariantID      uuid.UUID `json:"variant_id"`
	TotalStock     int       `json:"total_stock"`
	AllocatedStock int       `json:"allocated_stock"`
	ReservedStock  int       `json:"reserved_stock"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Available is the unallocated, unreserved part of the global pool.
func (g GlobalStock) Available() int {
	return g.TotalStock - g.AllocatedStock - g.ReservedStock
}

type StoreStock struct {
	StoreID        uuid.UUID `json:"store_id"`
	VariantID      uuid.UUID `json:"variant_id"`
	AllocatedStock int       `json:"allocated_stock"`
	InHandStock    int       `json:"in_hand_stock"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type FulfillmentSource string

const (
	SourceGlobal FulfillmentSource = "global"
	SourceStore  FulfillmentSource = "store"
)

// releaseLine is one order item as the ledger needs it to undo a reservation.
type releaseLine struct {
	VariantID uuid.UUID
	Quantity  int
	Source    FulfillmentSource
	RefID     uuid.UUID
}
