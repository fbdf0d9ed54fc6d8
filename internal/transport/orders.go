package transport

import (
	"net/http"

	"storefront-be/internal/order"
	"storefront-be/internal/utils"
)

type pickupStatusRequest struct {
	Status order.PickupStatus `json:"status"`
}

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.List(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.svc.Orders.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.svc.Orders.Cancel(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *handler) updatePickup(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var req pickupStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Orders.UpdatePickupStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) listStorePickups(w http.ResponseWriter, r *http.Request) {
	storeID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	pickups, err := h.svc.Orders.ListStorePickups(r.Context(), storeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pickups == nil {
		pickups = []order.Pickup{}
	}
	utils.WriteJSON(w, http.StatusOK, pickups)
}
