package transport

import (
	"net/http"

	"storefront-be/internal/inventory"
	"storefront-be/internal/store"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
)

type allocationRequest struct {
	StoreID   uuid.UUID `json:"store_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

type totalStockRequest struct {
	TotalStock int `json:"total_stock"`
}

type createStoreRequest struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// -- Inventory --

func (h *handler) allocateStock(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.Ledger.AllocateToStore(r.Context(), req.StoreID, req.VariantID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getGlobalStock(w http.ResponseWriter, r *http.Request) {
	variantID, ok := urlUUID(w, r, "variantID")
	if !ok {
		return
	}

	g, err := h.svc.Ledger.GetGlobal(r.Context(), variantID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, g)
}

func (h *handler) setTotalStock(w http.ResponseWriter, r *http.Request) {
	variantID, ok := urlUUID(w, r, "variantID")
	if !ok {
		return
	}
	var req totalStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.svc.Ledger.SetTotalStock(r.Context(), variantID, req.TotalStock)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, g)
}

func (h *handler) listStoreInventory(w http.ResponseWriter, r *http.Request) {
	storeID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	stock, err := h.svc.Ledger.ListStoreInventory(r.Context(), storeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stock == nil {
		stock = []inventory.StoreStock{}
	}
	utils.WriteJSON(w, http.StatusOK, stock)
}

// -- Stores --

func (h *handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.svc.Stores.Create(r.Context(), store.CreateStoreInput{
		Name:      req.Name,
		City:      req.City,
		State:     req.State,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, st)
}

func (h *handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.Stores.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stores == nil {
		stores = []store.Store{}
	}
	utils.WriteJSON(w, http.StatusOK, stores)
}

func (h *handler) getStore(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	st, err := h.svc.Stores.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, st)
}

func (h *handler) listStoreHours(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	hours, err := h.svc.Stores.ListHours(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if hours == nil {
		hours = []store.WorkingHour{}
	}
	utils.WriteJSON(w, http.StatusOK, hours)
}

// setStoreHours replaces the store's whole week. Days left out have no row
// and the store counts as closed on them.
func (h *handler) setStoreHours(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	var hours []store.WorkingHour
	if !decodeJSON(w, r, &hours) {
		return
	}

	if err := h.svc.Stores.SetHours(r.Context(), id, hours); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Users --

func (h *handler) updateLocation(w http.ResponseWriter, r *http.Request) {
	var loc store.Location
	if !decodeJSON(w, r, &loc) {
		return
	}

	if err := h.svc.Stores.UpdateUserLocation(r.Context(), currentUser(r), loc); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
