package transport

import (
	"net/http"

	"storefront-be/internal/utils"

	"github.com/google/uuid"
)

type addItemRequest struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	priced, err := h.svc.Carts.PriceCart(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, priced)
}

func (h *handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	qty, err := h.svc.Carts.AddItem(r.Context(), currentUser(r), req.VariantID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, addItemRequest{VariantID: req.VariantID, Quantity: qty})
}

func (h *handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	variantID, ok := urlUUID(w, r, "variantID")
	if !ok {
		return
	}
	var req updateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Carts.UpdateItem(r.Context(), currentUser(r), variantID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	variantID, ok := urlUUID(w, r, "variantID")
	if !ok {
		return
	}

	if err := h.svc.Carts.RemoveItem(r.Context(), currentUser(r), variantID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
