package checkout

import (
	"context"

	"storefront-be/internal/address"
	"storefront-be/internal/cart"
	"storefront-be/internal/event"
	"storefront-be/internal/inventory"
	"storefront-be/internal/offer"
	"storefront-be/internal/order"
	"storefront-be/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCarts struct {
	mock.Mock
}

func (m *MockCarts) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) (int, error) {
	args := m.Called(ctx, userID, variantID, qty)
	return args.Int(0), args.Error(1)
}

func (m *MockCarts) UpdateItem(ctx context.Context, userID, variantID uuid.UUID, qty int) error {
	return m.Called(ctx, userID, variantID, qty).Error(0)
}

func (m *MockCarts) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) error {
	return m.Called(ctx, userID, variantID).Error(0)
}

func (m *MockCarts) PriceCart(ctx context.Context, userID uuid.UUID) (*cart.PricedCart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.PricedCart), args.Error(1)
}

func (m *MockCarts) CheckoutLines(ctx context.Context, userID uuid.UUID) ([]cart.Line, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Line), args.Error(1)
}

func (m *MockCarts) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type MockAddresses struct {
	mock.Mock
}

func (m *MockAddresses) VerifyOwnership(ctx context.Context, userID, addressID uuid.UUID) (*address.Address, error) {
	args := m.Called(ctx, userID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) FindBestStore(ctx context.Context, userID uuid.UUID, demand []store.Demand) (*store.FulfillableStore, error) {
	args := m.Called(ctx, userID, demand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.FulfillableStore), args.Error(1)
}

func (m *MockLocator) ListFulfillableStores(ctx context.Context, userID uuid.UUID, demand []store.Demand) ([]store.FulfillableStore, error) {
	args := m.Called(ctx, userID, demand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FulfillableStore), args.Error(1)
}

func (m *MockLocator) CanFulfill(ctx context.Context, storeID uuid.UUID, demand []store.Demand) (bool, error) {
	args := m.Called(ctx, storeID, demand)
	return args.Bool(0), args.Error(1)
}

type MockOffers struct {
	mock.Mock
}

func (m *MockOffers) ActiveOffers(ctx context.Context) ([]offer.Offer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]offer.Offer), args.Error(1)
}

func (m *MockOffers) Preview(ctx context.Context, subtotal decimal.Decimal) (offer.Result, error) {
	args := m.Called(ctx, subtotal)
	return args.Get(0).(offer.Result), args.Error(1)
}

func (m *MockOffers) Create(ctx context.Context, input offer.CreateOfferInput) (*offer.Offer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOffers) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ReserveGlobal(ctx context.Context, variantID uuid.UUID, qty int) error {
	return m.Called(ctx, variantID, qty).Error(0)
}

func (m *MockLedger) ConsumeStore(ctx context.Context, storeID, variantID uuid.UUID, qty int) error {
	return m.Called(ctx, storeID, variantID, qty).Error(0)
}

func (m *MockLedger) Release(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *MockLedger) AllocateToStore(ctx context.Context, storeID, variantID uuid.UUID, qty int) error {
	return m.Called(ctx, storeID, variantID, qty).Error(0)
}

func (m *MockLedger) SetTotalStock(ctx context.Context, variantID uuid.UUID, total int) (*inventory.GlobalStock, error) {
	args := m.Called(ctx, variantID, total)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.GlobalStock), args.Error(1)
}

func (m *MockLedger) GetGlobal(ctx context.Context, variantID uuid.UUID) (*inventory.GlobalStock, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.GlobalStock), args.Error(1)
}

func (m *MockLedger) ListStoreInventory(ctx context.Context, storeID uuid.UUID) ([]inventory.StoreStock, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StoreStock), args.Error(1)
}

// MockOrders covers the write side of order.Repository used by checkout.
// Read methods are embedded from the interface and panic if reached.
type MockOrders struct {
	mock.Mock
	order.Repository
}

func (m *MockOrders) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrders) AddItems(ctx context.Context, orderID uuid.UUID, items []order.Item) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *MockOrders) AddOffers(ctx context.Context, orderID uuid.UUID, applied []offer.AppliedOffer) error {
	return m.Called(ctx, orderID, applied).Error(0)
}

func (m *MockOrders) CreatePickup(ctx context.Context, p *order.Pickup) error {
	return m.Called(ctx, p).Error(0)
}

type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) Emit(ctx context.Context, e event.Event) {
	m.Called(ctx, e)
}

type inlineTx struct{}

func (inlineTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
