package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrOutOfStock              = errors.New("variant is out of stock")
	ErrStoreOutOfStock         = errors.New("store does not have enough stock in hand")
	ErrInsufficientGlobalStock = errors.New("not enough unallocated global stock")
	ErrStockBelowCommitted     = errors.New("total stock cannot drop below allocated plus reserved")
	ErrInvalidQuantity         = errors.New("quantity must be greater than zero")
	ErrVariantNotFound         = errors.New("variant not found")
	ErrOrderNotFound           = errors.New("order not found")
)

// StockError describes which line failed a stock check. It unwraps to one
// of the sentinel errors above.
type StockError struct {
	Err       error
	VariantID uuid.UUID
	StoreID   uuid.UUID
	Requested int
	Available int
}

func (e *StockError) Error() string {
	if e.StoreID != uuid.Nil {
		return fmt.Sprintf("%v: variant %s at store %s (requested %d, available %d)",
			e.Err, e.VariantID, e.StoreID, e.Requested, e.Available)
	}
	return fmt.Sprintf("%v: variant %s (requested %d, available %d)",
		e.Err, e.VariantID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return e.Err
}
