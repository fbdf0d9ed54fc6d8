package cart

import (
	"context"
	"fmt"

	"storefront-be/internal/db"
	"storefront-be/internal/event"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (int, error)
	UpdateItem(ctx context.Context, userID, variantID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, userID, variantID uuid.UUID) error
	PriceCart(ctx context.Context, userID uuid.UUID) (*PricedCart, error)
	// CheckoutLines locks the cart row and returns priced lines. It must run
	// inside the caller's transaction and fails with ErrItemUnavailable when a
	// line's variant or product was deactivated.
	CheckoutLines(ctx context.Context, userID uuid.UUID) ([]Line, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     db.Transactor
	events event.Emitter
}

func NewService(repo Repository, tx db.Transactor, events event.Emitter) Service {
	return &service{repo: repo, tx: tx, events: events}
}

// AddItem adds qty to the line for variantID and returns the new quantity.
func (s *service) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.String("variant_id", variantID.String()),
		zap.Int("quantity", qty),
	)

	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}

	v, err := s.repo.GetVariant(ctx, variantID)
	if err != nil {
		log.Error("failed to load variant", zap.Error(err))
		return 0, err
	}
	if v == nil || !v.IsActive {
		return 0, ErrVariantNotFound
	}

	var total int
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		cartID, err := s.repo.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		total, err = s.repo.AddQuantity(ctx, cartID, variantID, qty)
		return err
	})
	if err != nil {
		log.Error("failed to add cart item", zap.Error(err))
		return 0, err
	}

	s.events.Emit(ctx, event.Event{
		UserID:    userID,
		Type:      event.TypeAddToCart,
		VariantID: &variantID,
		Metadata:  map[string]any{"quantity": qty},
	})
	return total, nil
}

// UpdateItem sets the line quantity. A quantity of zero or less removes the line.
// The cart row is locked so the change waits for an in-flight checkout.
func (s *service) UpdateItem(ctx context.Context, userID, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, variantID)
	}

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		cartID, ok, err := s.repo.FindCart(ctx, userID, true)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCartItemNotFound
		}

		updated, err := s.repo.SetQuantity(ctx, cartID, variantID, qty)
		if err != nil {
			return err
		}
		if !updated {
			return ErrCartItemNotFound
		}
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cartID, ok, err := s.repo.FindCart(ctx, userID, true)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCartItemNotFound
		}

		deleted, err := s.repo.DeleteLine(ctx, cartID, variantID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrCartItemNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Emit(ctx, event.Event{
		UserID:    userID,
		Type:      event.TypeRemoveFromCart,
		VariantID: &variantID,
	})
	return nil
}

// PriceCart recomputes every line from current variant prices.
func (s *service) PriceCart(ctx context.Context, userID uuid.UUID) (*PricedCart, error) {
	priced := &PricedCart{UserID: userID, Lines: []Line{}}

	cartID, ok, err := s.repo.FindCart(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	if ok {
		if priced.Lines, err = s.repo.ListLines(ctx, cartID); err != nil {
			return nil, err
		}
	}

	for _, l := range priced.Lines {
		priced.ItemCount += l.Quantity
	}
	priced.Subtotal = Subtotal(priced.Lines)
	return priced, nil
}

func (s *service) CheckoutLines(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	cartID, ok, err := s.repo.FindCart(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Line{}, nil
	}

	lines, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if !l.Available {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, l.SKU)
		}
	}
	return lines, nil
}

// Clear empties the cart inside the transaction on ctx, if any.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cartID, ok, err := s.repo.FindCart(ctx, userID, false)
	if err != nil || !ok {
		return err
	}
	return s.repo.ClearLines(ctx, cartID)
}
