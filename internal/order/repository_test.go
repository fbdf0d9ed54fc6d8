package order

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"storefront-be/internal/inventory"
	"storefront-be/internal/offer"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{
	"id", "user_id", "fulfillment_type", "store_id", "address_id",
	"subtotal", "discount_total", "total", "status",
	"inventory_released_at", "created_at", "updated_at",
}

var pickupCols = []string{"id", "order_id", "store_id", "user_id", "amount", "status", "picked_up_at", "created_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepository(sqlDB), mock
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID, storeID, orderID := uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	o := &Order{
		UserID:          userID,
		FulfillmentType: FulfillmentPickup,
		StoreID:         &storeID,
		Subtotal:        decimal.NewFromInt(250),
		DiscountTotal:   decimal.NewFromInt(25),
		Total:           decimal.NewFromInt(225),
		Status:          StatusPending,
	}

	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(userID, "pickup", storeID, nil, o.Subtotal, o.DiscountTotal, o.Total, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(orderID.String(), now, now))

	require.NoError(t, repo.Create(context.Background(), o))
	assert.Equal(t, orderID, o.ID)
	assert.Equal(t, now, o.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AddItemsAndOffers(t *testing.T) {
	repo, mock := newMockRepo(t)
	orderID, v1, storeID, offerID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	itemID := uuid.New()

	items := []Item{{
		VariantID: v1,
		Quantity:  2,
		Price:     decimal.NewFromInt(100),
		Source:    inventory.SourceStore,
		RefID:     storeID,
		Position:  0,
	}}

	mock.ExpectQuery(`INSERT INTO order_items`).
		WithArgs(orderID, v1, 2, items[0].Price, "store", storeID, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(itemID.String()))
	mock.ExpectExec(`INSERT INTO order_offers \(order_id, offer_id, title, discount\)`).
		WithArgs(orderID, offerID, "Spring", decimal.NewFromInt(25)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddItems(context.Background(), orderID, items))
	assert.Equal(t, itemID, items[0].ID)
	assert.Equal(t, orderID, items[0].OrderID)

	require.NoError(t, repo.AddOffers(context.Background(), orderID, []offer.AppliedOffer{
		{OfferID: offerID, Title: "Spring", Discount: decimal.NewFromInt(25)},
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	orderID, userID, v1, pickupID, storeID := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Found with details", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				orderID.String(), userID.String(), "pickup", storeID.String(), nil,
				"250.00", "0.00", "250.00", "pending",
				nil, now, now,
			))
		mock.ExpectQuery(`FROM order_items WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "order_id", "variant_id", "quantity", "price",
				"fulfillment_source", "fulfillment_ref_id", "position",
			}).AddRow(uuid.New().String(), orderID.String(), v1.String(), 2, "100.00", "store", storeID.String(), 0))
		mock.ExpectQuery(`FROM order_offers WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "offer_id", "title", "discount"}))
		mock.ExpectQuery(`FROM pickups WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows(pickupCols).AddRow(
				pickupID.String(), orderID.String(), storeID.String(), userID.String(),
				"250.00", "ready", nil, now,
			))

		o, err := repo.GetByID(context.Background(), orderID)

		require.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, FulfillmentPickup, o.FulfillmentType)
		require.NotNil(t, o.StoreID)
		assert.Equal(t, storeID, *o.StoreID)
		assert.Nil(t, o.AddressID)
		require.Len(t, o.Items, 1)
		assert.Equal(t, inventory.SourceStore, o.Items[0].Source)
		assert.Empty(t, o.Offers)
		require.NotNil(t, o.Pickup)
		assert.Equal(t, PickupReady, o.Pickup.Status)
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).
			WithArgs(orderID).
			WillReturnError(sql.ErrNoRows)

		o, err := repo.GetByID(context.Background(), orderID)

		assert.NoError(t, err)
		assert.Nil(t, o)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectQuery(`FROM orders WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(orderCols))

	orders, err := repo.ListByUser(context.Background(), userID)

	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	orderID := uuid.New()

	mock.ExpectExec(`UPDATE orders SET status = \$2`).
		WithArgs(orderID, "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE orders SET status = \$2`).
		WithArgs(orderID, "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateStatus(context.Background(), orderID, StatusCancelled))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), orderID, StatusCancelled), ErrOrderNotFound)
}

func TestRepository_Pickups(t *testing.T) {
	repo, mock := newMockRepo(t)
	pickupID, orderID, storeID, userID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM pickups WHERE id = \$1 FOR UPDATE`).
		WithArgs(pickupID).
		WillReturnRows(sqlmock.NewRows(pickupCols).AddRow(
			pickupID.String(), orderID.String(), storeID.String(), userID.String(),
			"99.50", "ready", nil, now,
		))

	p, err := repo.GetPickup(context.Background(), pickupID, true)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("99.50").Equal(p.Amount))
	assert.Nil(t, p.PickedUpAt)

	mock.ExpectExec(`UPDATE pickups SET status = \$2, picked_up_at = COALESCE\(\$3, picked_up_at\)`).
		WithArgs(pickupID, "picked_up", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetPickupStatus(context.Background(), pickupID, PickupPickedUp, &now))

	mock.ExpectExec(`UPDATE pickups SET status = 'cancelled' WHERE order_id = \$1 AND status = 'ready'`).
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	cancelled, err := repo.CancelReadyPickup(context.Background(), orderID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	mock.ExpectQuery(`FROM pickups WHERE store_id = \$1`).
		WithArgs(storeID).
		WillReturnRows(sqlmock.NewRows(pickupCols).AddRow(
			pickupID.String(), orderID.String(), storeID.String(), userID.String(),
			"99.50", "picked_up", now, now,
		))
	list, err := repo.ListPickupsByStore(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].PickedUpAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}
