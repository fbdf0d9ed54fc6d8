package address

import (
	"context"
	"strings"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// VerifyOwnership returns the address when it belongs to userID.
	VerifyOwnership(ctx context.Context, userID, addressID uuid.UUID) (*Address, error)
	List(ctx context.Context, userID uuid.UUID) ([]Address, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*Address, error)
}

type service struct {
	repo Repository
	tx   db.Transactor
}

func NewService(repo Repository, tx db.Transactor) Service {
	return &service{repo: repo, tx: tx}
}

func (s *service) VerifyOwnership(ctx context.Context, userID, addressID uuid.UUID) (*Address, error) {
	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}

	if addr == nil || addr.UserID != userID {
		logger.FromCtx(ctx).Warn("address ownership check failed",
			zap.String("layer", "service"),
			zap.String("method", "VerifyOwnership"),
			zap.String("address_id", addressID.String()),
		)
		return nil, ErrAddressNotFound
	}

	return addr, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create stores a new address. A user's first address is always the default.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	addr := &Address{
		UserID:     userID,
		Name:       strings.TrimSpace(input.Name),
		Phone:      strings.TrimSpace(input.Phone),
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      input.Line2,
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
	}
	if addr.Name == "" || addr.Line1 == "" || addr.City == "" || addr.PostalCode == "" {
		return nil, ErrIncompleteAddress
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		addr.IsDefault = input.SetAsDefault || len(existing) == 0
		if addr.IsDefault && len(existing) > 0 {
			if err := s.repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, addr)
	})
	if err != nil {
		log.Error("failed to create address", zap.Error(err))
		return nil, err
	}

	log.Info("address created",
		zap.String("address_id", addr.ID.String()),
		zap.Bool("is_default", addr.IsDefault),
	)
	return addr, nil
}
