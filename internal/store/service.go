package store

import (
	"context"
	"strings"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateStoreInput) (*Store, error)
	Get(ctx context.Context, id uuid.UUID) (*Store, error)
	List(ctx context.Context) ([]Store, error)
	SetHours(ctx context.Context, storeID uuid.UUID, hours []WorkingHour) error
	ListHours(ctx context.Context, storeID uuid.UUID) ([]WorkingHour, error)
	UpdateUserLocation(ctx context.Context, userID uuid.UUID, loc Location) error
}

type service struct {
	repo Repository
	tx   db.Transactor
}

func NewService(repo Repository, tx db.Transactor) Service {
	return &service{repo: repo, tx: tx}
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*Store, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if !validLocation(Location{Latitude: input.Latitude, Longitude: input.Longitude}) {
		return nil, ErrInvalidLocation
	}

	st, err := s.repo.Create(ctx, input)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create store",
			zap.String("layer", "service"),
			zap.String("method", "Create"),
			zap.Error(err),
		)
		return nil, err
	}
	return st, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Store, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Store, error) {
	return s.repo.List(ctx)
}

// SetHours replaces the weekly schedule. At most one row per day; an open
// day needs distinct opening and closing times.
func (s *service) SetHours(ctx context.Context, storeID uuid.UUID, hours []WorkingHour) error {
	seen := make(map[int]bool, len(hours))
	for i := range hours {
		h := &hours[i]
		day := int(h.DayOfWeek)
		if day < 0 || day > 6 || seen[day] {
			return ErrInvalidHours
		}
		seen[day] = true
		if h.OpensAt < 0 || h.OpensAt >= secondsPerDay || h.ClosesAt < 0 || h.ClosesAt >= secondsPerDay {
			return ErrInvalidHours
		}
		if !h.IsClosed && h.OpensAt == h.ClosesAt {
			return ErrInvalidHours
		}
		h.StoreID = storeID
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, storeID); err != nil {
			return err
		}
		return s.repo.ReplaceHours(ctx, storeID, hours)
	})
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("store hours replaced",
		zap.String("store_id", storeID.String()),
		zap.Int("days", len(hours)),
	)
	return nil
}

func (s *service) ListHours(ctx context.Context, storeID uuid.UUID) ([]WorkingHour, error) {
	return s.repo.ListHours(ctx, storeID)
}

func (s *service) UpdateUserLocation(ctx context.Context, userID uuid.UUID, loc Location) error {
	if !validLocation(loc) {
		return ErrInvalidLocation
	}
	return s.repo.UpsertUserLocation(ctx, userID, loc)
}
