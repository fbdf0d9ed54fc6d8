package order

import (
	"context"

	"storefront-be/internal/clock"
	"storefront-be/internal/db"
	"storefront-be/internal/event"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Get(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
	List(ctx context.Context, userID uuid.UUID) ([]Order, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)

	UpdatePickupStatus(ctx context.Context, pickupID uuid.UUID, status PickupStatus) (*Pickup, error)
	ListStorePickups(ctx context.Context, storeID uuid.UUID) ([]Pickup, error)
}

type service struct {
	repo   Repository
	ledger inventory.Ledger
	tx     db.Transactor
	events event.Emitter
	clock  clock.Clock
}

func NewService(
	repo Repository,
	ledger inventory.Ledger,
	tx db.Transactor,
	events event.Emitter,
	clk clock.Clock,
) Service {
	return &service{
		repo:   repo,
		ledger: ledger,
		tx:     tx,
		events: events,
		clock:  clk,
	}
}

// Get returns the order when it belongs to userID. Foreign orders read as
// not found.
func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Cancel moves a pending order to cancelled and returns its stock, all in
// one transaction. A ready pickup for the order is cancelled with it.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Cancel"),
		zap.String("order_id", orderID.String()),
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		o, err := s.repo.LockForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil || o.UserID != userID {
			return ErrOrderNotFound
		}
		if o.Status != StatusPending {
			return ErrOrderNotCancellable
		}

		if err := s.repo.UpdateStatus(ctx, orderID, StatusCancelled); err != nil {
			return err
		}
		if err := s.ledger.Release(ctx, orderID); err != nil {
			return err
		}
		_, err = s.repo.CancelReadyPickup(ctx, orderID)
		return err
	})
	if err != nil {
		log.Warn("cancel failed", zap.Error(err))
		return nil, err
	}

	log.Info("order cancelled")
	s.events.Emit(ctx, event.Event{
		UserID:  userID,
		Type:    event.TypeOrderCancelled,
		OrderID: &orderID,
	})

	return s.Get(ctx, userID, orderID)
}

// UpdatePickupStatus moves a ready pickup to picked_up or cancelled. A
// cancelled pickup also cancels its order and returns the stock, which is
// only allowed while the order is pending.
func (s *service) UpdatePickupStatus(ctx context.Context, pickupID uuid.UUID, status PickupStatus) (*Pickup, error) {
	if status != PickupPickedUp && status != PickupCancelled {
		return nil, ErrInvalidPickupStatus
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdatePickupStatus"),
		zap.String("pickup_id", pickupID.String()),
		zap.String("status", string(status)),
	)

	var updated *Pickup
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetPickup(ctx, pickupID, true)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPickupNotFound
		}
		if p.Status != PickupReady {
			return ErrInvalidPickupStatus
		}

		if status == PickupCancelled {
			// A paid order still owns its units.
			o, err := s.repo.LockForUpdate(ctx, p.OrderID)
			if err != nil {
				return err
			}
			if o == nil || o.Status != StatusPending {
				return ErrOrderNotCancellable
			}
			if err := s.repo.UpdateStatus(ctx, o.ID, StatusCancelled); err != nil {
				return err
			}
			if err := s.ledger.Release(ctx, p.OrderID); err != nil {
				return err
			}
		}

		p.Status = status
		if status == PickupPickedUp {
			now := s.clock.Now()
			p.PickedUpAt = &now
		}
		if err := s.repo.SetPickupStatus(ctx, pickupID, p.Status, p.PickedUpAt); err != nil {
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		log.Warn("pickup update failed", zap.Error(err))
		return nil, err
	}

	log.Info("pickup updated")
	return updated, nil
}

func (s *service) ListStorePickups(ctx context.Context, storeID uuid.UUID) ([]Pickup, error) {
	return s.repo.ListPickupsByStore(ctx, storeID)
}
