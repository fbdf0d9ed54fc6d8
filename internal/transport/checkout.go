package transport

import (
	"net/http"

	"storefront-be/internal/checkout"
	"storefront-be/internal/order"
	"storefront-be/internal/store"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
)

type checkoutRequest struct {
	FulfillmentType order.FulfillmentType `json:"fulfillment_type"`
	AddressID       *uuid.UUID            `json:"address_id"`
	StoreID         *uuid.UUID            `json:"store_id"`
}

func (h *handler) quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Checkout.Quote(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, q)
}

func (h *handler) availableStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.Checkout.AvailableStores(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stores == nil {
		stores = []store.FulfillableStore{}
	}
	utils.WriteJSON(w, http.StatusOK, stores)
}

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.svc.Checkout.Checkout(r.Context(), checkout.Request{
		UserID:          currentUser(r),
		FulfillmentType: req.FulfillmentType,
		AddressID:       req.AddressID,
		StoreID:         req.StoreID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, receipt)
}
