package address

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Name  string `json:"name"`
	Phone string `json:"phone"`

	Line1 string  `json:"line1"`
	Line2 *string `json:"line2,omitempty"`

	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`

	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateAddressInput struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Line1        string  `json:"line1"`
	Line2        *string `json:"line2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	SetAsDefault bool    `json:"set_as_default"`
}
