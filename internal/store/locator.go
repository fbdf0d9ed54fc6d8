package store

import (
	"bytes"
	"context"
	"sort"
	"time"

	"storefront-be/internal/clock"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locator finds stores that can hand over a whole cart right now.
type Locator interface {
	// FindBestStore returns the nearest qualifying store, or nil when none qualifies.
	FindBestStore(ctx context.Context, userID uuid.UUID, demand []Demand) (*FulfillableStore, error)
	// ListFulfillableStores returns every qualifying store, nearest first.
	ListFulfillableStores(ctx context.Context, userID uuid.UUID, demand []Demand) ([]FulfillableStore, error)
	// CanFulfill checks stock only. Opening hours are not considered.
	CanFulfill(ctx context.Context, storeID uuid.UUID, demand []Demand) (bool, error)
}

type locator struct {
	repo  Repository
	clock clock.Clock
	loc   *time.Location
}

// NewLocator evaluates working hours in loc (UTC when nil).
func NewLocator(repo Repository, clk clock.Clock, loc *time.Location) Locator {
	if loc == nil {
		loc = time.UTC
	}
	return &locator{repo: repo, clock: clk, loc: loc}
}

func (l *locator) FindBestStore(ctx context.Context, userID uuid.UUID, demand []Demand) (*FulfillableStore, error) {
	stores, err := l.ListFulfillableStores(ctx, userID, demand)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, nil
	}
	best := stores[0]
	return &best, nil
}

func (l *locator) ListFulfillableStores(ctx context.Context, userID uuid.UUID, demand []Demand) ([]FulfillableStore, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "locator"),
		zap.String("method", "ListFulfillableStores"),
	)

	need := mergeDemand(demand)
	if len(need) == 0 {
		return []FulfillableStore{}, nil
	}

	now := l.clock.Now().In(l.loc)
	today := now.Weekday()
	yesterday := (today + 6) % 7
	tod := TimeOfDayOf(now)

	candidates, err := l.repo.ListCandidates(ctx, variantIDs(need), []time.Weekday{today, yesterday})
	if err != nil {
		return nil, err
	}

	userLoc, err := l.repo.GetUserLocation(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]FulfillableStore, 0, len(candidates))
	for _, c := range candidates {
		if !c.Store.IsActive || !isOpen(c.Hours, today, tod) || !covers(c.Stock, need) {
			continue
		}
		fs := FulfillableStore{Store: c.Store}
		if userLoc != nil {
			fs.DistanceKm = haversineKm(*userLoc, Location{Latitude: c.Store.Latitude, Longitude: c.Store.Longitude})
		}
		out = append(out, fs)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})

	log.Debug("fulfillable stores resolved",
		zap.Int("candidates", len(candidates)),
		zap.Int("qualifying", len(out)),
		zap.Bool("has_location", userLoc != nil),
	)
	return out, nil
}

func (l *locator) CanFulfill(ctx context.Context, storeID uuid.UUID, demand []Demand) (bool, error) {
	need := mergeDemand(demand)
	if len(need) == 0 {
		return true, nil
	}

	stock, err := l.repo.GetStock(ctx, storeID, variantIDs(need))
	if err != nil {
		return false, err
	}
	return covers(stock, need), nil
}

// mergeDemand sums quantities per variant and drops non-positive lines.
func mergeDemand(demand []Demand) map[uuid.UUID]int {
	need := make(map[uuid.UUID]int, len(demand))
	for _, d := range demand {
		if d.Quantity > 0 {
			need[d.VariantID] += d.Quantity
		}
	}
	return need
}

func variantIDs(need map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

func covers(stock map[uuid.UUID]int, need map[uuid.UUID]int) bool {
	for id, qty := range need {
		inHand, ok := stock[id]
		if !ok || inHand < qty {
			return false
		}
	}
	return true
}

// isOpen checks today's row and the tail of an overnight window that
// started yesterday. Bounds are inclusive.
func isOpen(hours []WorkingHour, today time.Weekday, t TimeOfDay) bool {
	yesterday := (today + 6) % 7
	for _, h := range hours {
		if h.IsClosed {
			continue
		}
		switch h.DayOfWeek {
		case today:
			if h.Overnight() {
				if t >= h.OpensAt {
					return true
				}
			} else if t >= h.OpensAt && t <= h.ClosesAt {
				return true
			}
		case yesterday:
			if h.Overnight() && t <= h.ClosesAt {
				return true
			}
		}
	}
	return false
}
