package transport

import (
	"net/http"
	"time"

	"storefront-be/internal/offer"
	"storefront-be/internal/utils"

	"github.com/shopspring/decimal"
)

type createOfferRequest struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	MinCartValue decimal.Decimal  `json:"min_cart_value"`
	Discount     offer.Discount   `json:"discount"`
	MaxDiscount  *decimal.Decimal `json:"max_discount"`
	Priority     int              `json:"priority"`
	Stackable    bool             `json:"stackable"`
	StartsAt     time.Time        `json:"starts_at"`
	EndsAt       time.Time        `json:"ends_at"`
}

func (h *handler) activeOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.svc.Offers.ActiveOffers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if offers == nil {
		offers = []offer.Offer{}
	}
	utils.WriteJSON(w, http.StatusOK, offers)
}

// previewOffers shows what the active offers take off ?subtotal=.
func (h *handler) previewOffers(w http.ResponseWriter, r *http.Request) {
	subtotal, err := decimal.NewFromString(r.URL.Query().Get("subtotal"))
	if err != nil || subtotal.IsNegative() {
		badRequest(w, "invalid subtotal")
		return
	}

	res, err := h.svc.Offers.Preview(r.Context(), subtotal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	createdBy := currentUser(r)
	o, err := h.svc.Offers.Create(r.Context(), offer.CreateOfferInput{
		Title:        req.Title,
		Description:  req.Description,
		MinCartValue: req.MinCartValue,
		Discount:     req.Discount,
		MaxDiscount:  req.MaxDiscount,
		Priority:     req.Priority,
		Stackable:    req.Stackable,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		CreatedBy:    &createdBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}

func (h *handler) deactivateOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Offers.Deactivate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
