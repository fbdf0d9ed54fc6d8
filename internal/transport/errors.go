package transport

import (
	"errors"
	"net/http"

	"storefront-be/internal/address"
	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/offer"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/store"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type errorStatus struct {
	target error
	status int
}

// Checked in order; the first match wins.
var errorStatuses = []errorStatus{
	// -- Not Found --
	{cart.ErrVariantNotFound, http.StatusNotFound},
	{cart.ErrCartItemNotFound, http.StatusNotFound},
	{address.ErrAddressNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrPickupNotFound, http.StatusNotFound},
	{offer.ErrOfferNotFound, http.StatusNotFound},
	{store.ErrStoreNotFound, http.StatusNotFound},
	{product.ErrProductNotFound, http.StatusNotFound},
	{inventory.ErrVariantNotFound, http.StatusNotFound},
	{inventory.ErrOrderNotFound, http.StatusNotFound},

	// -- Conflict --
	{checkout.ErrCheckoutConflict, http.StatusConflict},
	{checkout.ErrNoStoreAvailable, http.StatusConflict},
	{checkout.ErrStoreCannotFulfillCart, http.StatusConflict},
	{cart.ErrItemUnavailable, http.StatusConflict},
	{inventory.ErrOutOfStock, http.StatusConflict},
	{inventory.ErrStoreOutOfStock, http.StatusConflict},
	{inventory.ErrInsufficientGlobalStock, http.StatusConflict},
	{inventory.ErrStockBelowCommitted, http.StatusConflict},
	{order.ErrOrderNotCancellable, http.StatusConflict},
	{order.ErrInvalidPickupStatus, http.StatusConflict},
	{product.ErrDuplicateSKU, http.StatusConflict},
	{user.ErrEmailExists, http.StatusConflict},

	// -- Auth --
	{user.ErrInvalidCredentials, http.StatusUnauthorized},

	// -- Validation & Input --
	{checkout.ErrEmptyCart, http.StatusUnprocessableEntity},
	{checkout.ErrAddressRequired, http.StatusUnprocessableEntity},
	{checkout.ErrStoreRequired, http.StatusUnprocessableEntity},
	{checkout.ErrInvalidFulfillmentType, http.StatusUnprocessableEntity},
	{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{inventory.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{offer.ErrTitleRequired, http.StatusUnprocessableEntity},
	{offer.ErrInvalidWindow, http.StatusUnprocessableEntity},
	{offer.ErrInvalidDiscount, http.StatusUnprocessableEntity},
	{offer.ErrInvalidCartValue, http.StatusUnprocessableEntity},
	{store.ErrNameRequired, http.StatusUnprocessableEntity},
	{store.ErrInvalidLocation, http.StatusUnprocessableEntity},
	{store.ErrInvalidHours, http.StatusUnprocessableEntity},
	{product.ErrNameRequired, http.StatusUnprocessableEntity},
	{product.ErrNoVariants, http.StatusUnprocessableEntity},
	{product.ErrSKURequired, http.StatusUnprocessableEntity},
	{product.ErrInvalidPrice, http.StatusUnprocessableEntity},
	{address.ErrIncompleteAddress, http.StatusUnprocessableEntity},
	{user.ErrInvalidEmail, http.StatusUnprocessableEntity},
	{user.ErrPasswordTooShort, http.StatusUnprocessableEntity},
}

type stockErrorBody struct {
	Error     string     `json:"error"`
	VariantID uuid.UUID  `json:"variant_id"`
	StoreID   *uuid.UUID `json:"store_id,omitempty"`
	Requested int        `json:"requested"`
	Available int        `json:"available"`
}

// writeError maps a service error to its status. Only the sentinel's text
// reaches the client; unknown errors are logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *inventory.StockError
	if errors.As(err, &stockErr) {
		body := stockErrorBody{
			Error:     stockErr.Err.Error(),
			VariantID: stockErr.VariantID,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		}
		if stockErr.StoreID != uuid.Nil {
			id := stockErr.StoreID
			body.StoreID = &id
		}
		utils.WriteJSON(w, http.StatusConflict, body)
		return
	}

	m, ok := lookupError(err)
	if !ok {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "transport"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	utils.WriteJSONError(w, m.target.Error(), m.status)
}

func lookupError(err error) (errorStatus, bool) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.target) {
			return m, true
		}
	}
	return errorStatus{}, false
}

func badRequest(w http.ResponseWriter, msg string) {
	utils.WriteJSONError(w, msg, http.StatusBadRequest)
}
