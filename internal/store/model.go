package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeOfDay is a wall-clock time as seconds since midnight.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// TimeOfDayOf returns the wall-clock part of t in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS and nothing else.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	v := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", v/3600, (v%3600)/60, v%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type WorkingHour struct {
	StoreID   uuid.UUID    `json:"store_id"`
	DayOfWeek time.Weekday `json:"day_of_week"`
	OpensAt   TimeOfDay    `json:"opens_at"`
	ClosesAt  TimeOfDay    `json:"closes_at"`
	IsClosed  bool         `json:"is_closed"`
}

// Overnight reports whether the window runs past midnight into the next day.
func (h WorkingHour) Overnight() bool {
	return h.ClosesAt < h.OpensAt
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Demand is one variant and the quantity a cart needs of it.
type Demand struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

type FulfillableStore struct {
	Store
	DistanceKm float64 `json:"distance_km"`
}

// Candidate is an active store with its stock for the demanded variants and
// the working-hour rows for the days being checked.
type Candidate struct {
	Store Store
	Stock map[uuid.UUID]int
	Hours []WorkingHour
}

type CreateStoreInput struct {
	Name      string
	City      string
	State     string
	Latitude  float64
	Longitude float64
}
