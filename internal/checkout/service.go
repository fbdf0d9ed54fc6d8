package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"storefront-be/internal/address"
	"storefront-be/internal/cart"
	"storefront-be/internal/db"
	"storefront-be/internal/event"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/offer"
	"storefront-be/internal/order"
	"storefront-be/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service turns carts into orders. It is the only entry point that may
// reserve stock for a purchase.
type Service interface {
	Checkout(ctx context.Context, req Request) (*Receipt, error)
	Quote(ctx context.Context, userID uuid.UUID) (*Quote, error)
	AvailableStores(ctx context.Context, userID uuid.UUID) ([]store.FulfillableStore, error)
}

// AddressVerifier is the part of the address book checkout needs.
type AddressVerifier interface {
	VerifyOwnership(ctx context.Context, userID, addressID uuid.UUID) (*address.Address, error)
}

type Deps struct {
	Carts     cart.Service
	Addresses AddressVerifier
	Stores    store.Locator
	Offers    offer.Service
	Ledger    inventory.Ledger
	Orders    order.Repository
	Tx        db.Transactor
	Events    event.Emitter
	Metrics   *metrics.Registry
}

type service struct {
	Deps
	opts Options

	attempts   *metrics.Counter
	succeeded  *metrics.Counter
	failed     *metrics.Counter
	conflicts  *metrics.Counter
	outOfStock *metrics.Counter
	latency    *metrics.Summary
}

func NewService(deps Deps, opts Options) Service {
	reg := deps.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &service{
		Deps:       deps,
		opts:       opts,
		attempts:   reg.Counter("checkout_attempts_total"),
		succeeded:  reg.Counter("checkout_succeeded_total"),
		failed:     reg.Counter("checkout_failed_total"),
		conflicts:  reg.Counter("checkout_conflicts_total"),
		outOfStock: reg.Counter("checkout_out_of_stock_total"),
		latency:    reg.Summary("checkout_duration"),
	}
}

// sortLines orders lines by variant id bytes. Every checkout locks stock
// rows in this order.
func sortLines(lines []cart.Line) {
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].VariantID[:], lines[j].VariantID[:]) < 0
	})
}

func demandOf(lines []cart.Line) []store.Demand {
	demand := make([]store.Demand, len(lines))
	for i, l := range lines {
		demand[i] = store.Demand{VariantID: l.VariantID, Quantity: l.Quantity}
	}
	return demand
}

func totalAfter(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (s *service) Checkout(ctx context.Context, req Request) (*Receipt, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.String("fulfillment_type", string(req.FulfillmentType)),
	)

	s.attempts.Inc()
	timer := metrics.StartTimer()
	defer timer.ObserveInto(s.latency)

	if !req.FulfillmentType.Valid() {
		s.failed.Inc()
		return nil, ErrInvalidFulfillmentType
	}

	var receipt *Receipt
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = s.checkout(ctx, req)
		return err
	})
	if err != nil {
		s.failed.Inc()
		if errors.Is(err, inventory.ErrOutOfStock) || errors.Is(err, inventory.ErrStoreOutOfStock) {
			s.outOfStock.Inc()
		}
		if db.IsRetryable(err) {
			s.conflicts.Inc()
			log.Warn("checkout conflicted", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrCheckoutConflict, err)
		}
		log.Info("checkout rejected", zap.Error(err))
		return nil, err
	}

	s.succeeded.Inc()
	log.Info("checkout completed",
		zap.String("order_id", receipt.OrderID.String()),
		zap.String("total", receipt.Total.StringFixed(2)),
	)

	orderID := receipt.OrderID
	s.Events.Emit(ctx, event.Event{
		UserID:  req.UserID,
		Type:    event.TypeOrderCreated,
		OrderID: &orderID,
		Metadata: map[string]any{
			"fulfillment_type": string(receipt.FulfillmentType),
			"total":            receipt.Total.StringFixed(2),
		},
	})

	return receipt, nil
}

// checkout runs inside the transaction. Any error rolls back every write,
// including reservations already made for earlier lines.
func (s *service) checkout(ctx context.Context, req Request) (*Receipt, error) {
	lines, err := s.Carts.CheckoutLines(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	sortLines(lines)
	subtotal := cart.Subtotal(lines)

	o := &order.Order{
		UserID:          req.UserID,
		FulfillmentType: req.FulfillmentType,
		Subtotal:        subtotal,
		Status:          order.StatusPending,
	}

	switch req.FulfillmentType {
	case order.FulfillmentDelivery:
		if req.AddressID == nil {
			return nil, ErrAddressRequired
		}
		if _, err := s.Addresses.VerifyOwnership(ctx, req.UserID, *req.AddressID); err != nil {
			return nil, err
		}
		o.AddressID = req.AddressID

	case order.FulfillmentPickup:
		storeID, err := s.resolvePickupStore(ctx, req, lines)
		if err != nil {
			return nil, err
		}
		o.StoreID = &storeID
	}

	active, err := s.Offers.ActiveOffers(ctx)
	if err != nil {
		return nil, err
	}
	applied := offer.Apply(active, subtotal)
	o.DiscountTotal = applied.DiscountTotal
	o.Total = totalAfter(subtotal, applied.DiscountTotal)

	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}

	items := make([]order.Item, len(lines))
	for i, l := range lines {
		if err := s.Ledger.ReserveGlobal(ctx, l.VariantID, l.Quantity); err != nil {
			return nil, err
		}

		item := order.Item{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
			Source:    inventory.SourceGlobal,
			RefID:     l.VariantID,
			Position:  i,
		}
		if o.StoreID != nil {
			if err := s.Ledger.ConsumeStore(ctx, *o.StoreID, l.VariantID, l.Quantity); err != nil {
				return nil, err
			}
			item.Source = inventory.SourceStore
			item.RefID = *o.StoreID
		}
		items[i] = item
	}

	if err := s.Orders.AddItems(ctx, o.ID, items); err != nil {
		return nil, err
	}
	if err := s.Orders.AddOffers(ctx, o.ID, applied.Applied); err != nil {
		return nil, err
	}

	if o.StoreID != nil {
		if err := s.Orders.CreatePickup(ctx, &order.Pickup{
			OrderID: o.ID,
			StoreID: *o.StoreID,
			UserID:  req.UserID,
			Amount:  o.Total,
			Status:  order.PickupReady,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.Carts.Clear(ctx, req.UserID); err != nil {
		return nil, err
	}

	return &Receipt{
		OrderID:         o.ID,
		Status:          o.Status,
		Subtotal:        o.Subtotal,
		DiscountTotal:   o.DiscountTotal,
		Total:           o.Total,
		FulfillmentType: o.FulfillmentType,
		StoreID:         o.StoreID,
		AddressID:       o.AddressID,
		AppliedOffers:   applied.Applied,
		CreatedAt:       o.CreatedAt,
	}, nil
}

func (s *service) resolvePickupStore(ctx context.Context, req Request, lines []cart.Line) (uuid.UUID, error) {
	demand := demandOf(lines)

	if req.StoreID != nil {
		ok, err := s.Stores.CanFulfill(ctx, *req.StoreID, demand)
		if err != nil {
			return uuid.Nil, err
		}
		if !ok {
			return uuid.Nil, ErrStoreCannotFulfillCart
		}
		return *req.StoreID, nil
	}

	if !s.opts.PickupAutoResolve {
		return uuid.Nil, ErrStoreRequired
	}

	best, err := s.Stores.FindBestStore(ctx, req.UserID, demand)
	if err != nil {
		return uuid.Nil, err
	}
	if best == nil {
		return uuid.Nil, ErrNoStoreAvailable
	}
	logger.FromCtx(ctx).Info("pickup store resolved",
		zap.String("store_id", best.ID.String()),
		zap.Float64("distance_km", best.DistanceKm),
	)
	return best.ID, nil
}

// Quote prices the cart and applies active offers without writing anything.
func (s *service) Quote(ctx context.Context, userID uuid.UUID) (*Quote, error) {
	priced, err := s.Carts.PriceCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	active, err := s.Offers.ActiveOffers(ctx)
	if err != nil {
		return nil, err
	}
	applied := offer.Apply(active, priced.Subtotal)

	return &Quote{
		Lines:         priced.Lines,
		ItemCount:     priced.ItemCount,
		Subtotal:      priced.Subtotal,
		DiscountTotal: applied.DiscountTotal,
		Total:         totalAfter(priced.Subtotal, applied.DiscountTotal),
		AppliedOffers: applied.Applied,
	}, nil
}

// AvailableStores lists the stores that could hand over the current cart
// right now, nearest first.
func (s *service) AvailableStores(ctx context.Context, userID uuid.UUID) ([]store.FulfillableStore, error) {
	priced, err := s.Carts.PriceCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(priced.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	return s.Stores.ListFulfillableStores(ctx, userID, demandOf(priced.Lines))
}
