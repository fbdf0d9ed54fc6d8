package transport

import (
	"encoding/json"
	"net/http"

	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}

func urlUUID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		badRequest(w, "invalid "+key)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser is only called behind RequireAuth or RequireRole.
func currentUser(r *http.Request) uuid.UUID {
	id, _ := utils.GetUserIDFromContext(r.Context())
	return id
}
