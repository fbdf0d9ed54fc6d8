package transport

import (
	"net/http"

	"storefront-be/internal/address"
	"storefront-be/internal/utils"
)

func (h *handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Addresses.List(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []address.Address{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *handler) createAddress(w http.ResponseWriter, r *http.Request) {
	var req address.CreateAddressInput
	if !decodeJSON(w, r, &req) {
		return
	}

	addr, err := h.svc.Addresses.Create(r.Context(), currentUser(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, addr)
}
