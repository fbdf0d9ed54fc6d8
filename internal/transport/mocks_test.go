package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-be/internal/address"
	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/inventory"
	"storefront-be/internal/metrics"
	"storefront-be/internal/offer"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/store"
	"storefront-be/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// -- Cart --

type MockCarts struct {
	cart.Service
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

// -- Checkout --

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) Checkout(ctx context.Context, req checkout.Request) (*checkout.Receipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Receipt), args.Error(1)
}

func (m *MockCheckout) Quote(ctx context.Context, userID uuid.UUID) (*checkout.Quote, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Quote), args.Error(1)
}

func (m *MockCheckout) AvailableStores(ctx context.Context, userID uuid.UUID) ([]store.FulfillableStore, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FulfillableStore), args.Error(1)
}

// -- Orders --

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Get(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) List(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrders) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) UpdatePickupStatus(ctx context.Context, pickupID uuid.UUID, status order.PickupStatus) (*order.Pickup, error) {
	args := m.Called(ctx, pickupID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Pickup), args.Error(1)
}

func (m *MockOrders) ListStorePickups(ctx context.Context, storeID uuid.UUID) ([]order.Pickup, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Pickup), args.Error(1)
}

// -- Offers --

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

// -- Stores --

type MockStores struct {
	store.Service
	mock.Mock
}

func (m *MockStores) SetHours(ctx context.Context, storeID uuid.UUID, hours []store.WorkingHour) error {
	return m.Called(ctx, storeID, hours).Error(0)
}

func (m *MockStores) UpdateUserLocation(ctx context.Context, userID uuid.UUID, loc store.Location) error {
	return m.Called(ctx, userID, loc).Error(0)
}

// -- Ledger --

type MockLedger struct {
	inventory.Ledger
	mock.Mock
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

// -- Addresses --

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

func (m *MockAddresses) List(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]address.Address), args.Error(1)
}

func (m *MockAddresses) Create(ctx context.Context, userID uuid.UUID, input address.CreateAddressInput) (*address.Address, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

// -- Users --

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, email, password string) (*user.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Session), args.Error(1)
}

func (m *MockUsers) Login(ctx context.Context, email, password string) (*user.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Session), args.Error(1)
}

// -- Products --

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) Create(ctx context.Context, input product.CreateProductInput) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) Get(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProducts) List(ctx context.Context, opts product.ListOptions) ([]product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(ctx context.Context) error {
	return p.err
}

// -- Harness --

const testSecret = "test-secret"

type testServer struct {
	router    *chi.Mux
	tokens    *auth.Tokens
	carts     *MockCarts
	checkout  *MockCheckout
	orders    *MockOrders
	offers    *MockOffers
	stores    *MockStores
	ledger    *MockLedger
	users     *MockUsers
	addresses *MockAddresses
	products  *MockProducts
	metrics   *metrics.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		tokens:    auth.NewTokens(testSecret, time.Hour),
		carts:     new(MockCarts),
		checkout:  new(MockCheckout),
		orders:    new(MockOrders),
		offers:    new(MockOffers),
		stores:    new(MockStores),
		ledger:    new(MockLedger),
		users:     new(MockUsers),
		addresses: new(MockAddresses),
		products:  new(MockProducts),
		metrics:   metrics.NewRegistry(),
	}
	ts.router = NewRouter(Services{
		Carts:     ts.carts,
		Checkout:  ts.checkout,
		Orders:    ts.orders,
		Offers:    ts.offers,
		Stores:    ts.stores,
		Ledger:    ts.ledger,
		Users:     ts.users,
		Addresses: ts.addresses,
		Products:  ts.products,
		DB:        fakePinger{},
		Tokens:    ts.tokens,
		Metrics:   ts.metrics,
	})
	return ts
}

// do sends the request as userID with role; a Nil userID sends it anonymously.
func (ts *testServer) do(t *testing.T, method, path, body string, userID uuid.UUID, role string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		tok, err := ts.tokens.Issue(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) assertExpectations(t *testing.T) {
	ts.carts.AssertExpectations(t)
	ts.checkout.AssertExpectations(t)
	ts.orders.AssertExpectations(t)
	ts.offers.AssertExpectations(t)
	ts.stores.AssertExpectations(t)
	ts.ledger.AssertExpectations(t)
	ts.users.AssertExpectations(t)
	ts.addresses.AssertExpectations(t)
	ts.products.AssertExpectations(t)
}
