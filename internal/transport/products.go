package transport

import (
	"net/http"
	"strconv"

	"storefront-be/internal/product"
	"storefront-be/internal/utils"
)

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := product.ListOptions{Search: q.Get("q")}

	for key, dst := range map[string]*int{"page": &opts.Page, "limit": &opts.Limit} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "invalid "+key)
			return
		}
		*dst = n
	}

	products, err := h.svc.Products.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req product.CreateProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Products.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}
