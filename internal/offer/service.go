package offer

import (
	"context"
	"strings"

	"storefront-be/internal/clock"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	ActiveOffers(ctx context.Context) ([]Offer, error)
	Preview(ctx context.Context, subtotal decimal.Decimal) (Result, error)
	Create(ctx context.Context, input CreateOfferInput) (*Offer, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clock: clk}
}

// ActiveOffers returns offers whose window contains now, highest priority first.
func (s *service) ActiveOffers(ctx context.Context) ([]Offer, error) {
	return s.repo.ListActive(ctx, s.clock.Now())
}

func (s *service) Preview(ctx context.Context, subtotal decimal.Decimal) (Result, error) {
	offers, err := s.ActiveOffers(ctx)
	if err != nil {
		return Result{}, err
	}
	return Apply(offers, subtotal), nil
}

func (s *service) Create(ctx context.Context, input CreateOfferInput) (*Offer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	input.Title = strings.TrimSpace(input.Title)
	if err := validate(input); err != nil {
		log.Warn("rejected offer", zap.Error(err))
		return nil, err
	}

	return s.repo.Create(ctx, input)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("offer deactivated", zap.String("offer_id", id.String()))
	return nil
}

func validate(input CreateOfferInput) error {
	if input.Title == "" {
		return ErrTitleRequired
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() || !input.StartsAt.Before(input.EndsAt) {
		return ErrInvalidWindow
	}

	switch input.Discount.Kind {
	case DiscountPercentage:
		if !input.Discount.Value.IsPositive() || input.Discount.Value.GreaterThan(hundred) {
			return ErrInvalidDiscount
		}
	case DiscountFlatAmount:
		if !input.Discount.Value.IsPositive() {
			return ErrInvalidDiscount
		}
	default:
		return ErrInvalidDiscount
	}

	if input.MinCartValue.IsNegative() {
		return ErrInvalidCartValue
	}
	if input.MaxDiscount != nil && input.MaxDiscount.IsNegative() {
		return ErrInvalidCartValue
	}
	return nil
}
