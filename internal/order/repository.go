package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/offer"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository persists orders and pickups. Writes join the transaction on
// the context, so checkout can insert an order alongside its reservations.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	AddItems(ctx context.Context, orderID uuid.UUID, items []Item) error
	AddOffers(ctx context.Context, orderID uuid.UUID, applied []offer.AppliedOffer) error
	CreatePickup(ctx context.Context, p *Pickup) error

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	GetPickup(ctx context.Context, id uuid.UUID, forUpdate bool) (*Pickup, error)
	SetPickupStatus(ctx context.Context, id uuid.UUID, status PickupStatus, pickedUpAt *time.Time) error
	CancelReadyPickup(ctx context.Context, orderID uuid.UUID) (bool, error)
	ListPickupsByStore(ctx context.Context, storeID uuid.UUID) ([]Pickup, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, user_id, fulfillment_type, store_id, address_id,
	subtotal, discount_total, total, status,
	inventory_released_at, created_at, updated_at`

const pickupColumns = `id, order_id, store_id, user_id, amount, status, picked_up_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func scanOrder(row scanner) (*Order, error) {
	var (
		o                  Order
		storeID, addressID uuid.NullUUID
		released           sql.NullTime
	)
	if err := row.Scan(
		&o.ID, &o.UserID, &o.FulfillmentType, &storeID, &addressID,
		&o.Subtotal, &o.DiscountTotal, &o.Total, &o.Status,
		&released, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.StoreID = uuidPtr(storeID)
	o.AddressID = uuidPtr(addressID)
	o.InventoryReleasedAt = timePtr(released)
	o.Items = []Item{}
	o.Offers = []offer.AppliedOffer{}
	return &o, nil
}

func scanPickup(row scanner) (*Pickup, error) {
	var (
		p          Pickup
		pickedUpAt sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.OrderID, &p.StoreID, &p.UserID, &p.Amount, &p.Status, &pickedUpAt, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.PickedUpAt = timePtr(pickedUpAt)
	return &p, nil
}

// Create inserts the order header and fills in its generated id and
// timestamps.
func (r *repository) Create(ctx context.Context, o *Order) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO orders (
		user_id, fulfillment_type, store_id, address_id,
		subtotal, discount_total, total, status
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at, updated_at
	`,
		o.UserID, string(o.FulfillmentType), nullUUID(o.StoreID), nullUUID(o.AddressID),
		o.Subtotal, o.DiscountTotal, o.Total, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert order",
			zap.String("layer", "repository"),
			zap.String("method", "Create"),
			zap.Error(err),
		)
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *repository) AddItems(ctx context.Context, orderID uuid.UUID, items []Item) error {
	conn := db.Conn(ctx, r.db)
	for i := range items {
		it := &items[i]
		it.OrderID = orderID
		err := conn.QueryRowContext(ctx, `
		INSERT INTO order_items (
			order_id, variant_id, quantity, price,
			fulfillment_source, fulfillment_ref_id, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
		`,
			orderID, it.VariantID, it.Quantity, it.Price,
			string(it.Source), it.RefID, it.Position,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *repository) AddOffers(ctx context.Context, orderID uuid.UUID, applied []offer.AppliedOffer) error {
	conn := db.Conn(ctx, r.db)
	for _, a := range applied {
		if _, err := conn.ExecContext(ctx, `
		INSERT INTO order_offers (order_id, offer_id, title, discount)
		VALUES ($1, $2, $3, $4)
		`, orderID, a.OfferID, a.Title, a.Discount); err != nil {
			return fmt.Errorf("insert order offer: %w", err)
		}
	}
	return nil
}

func (r *repository) CreatePickup(ctx context.Context, p *Pickup) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO pickups (order_id, store_id, user_id, amount, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`, p.OrderID, p.StoreID, p.UserID, p.Amount, string(p.Status)).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pickup: %w", err)
	}
	return nil
}

// GetByID loads an order with its items, offers and pickup. It returns
// nil, nil when the order does not exist.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT`+orderColumns+` FROM orders WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	orders := []Order{*o}
	if err := r.loadDetails(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser returns the user's orders, newest first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByUser"),
	)

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT`+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`, userID,
	)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadDetails(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadDetails attaches items, applied offers and pickups to orders in place.
func (r *repository) loadDetails(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(orders))
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		index[o.ID] = i
		ids[i] = o.ID
	}
	conn := db.Conn(ctx, r.db)

	rows, err := conn.QueryContext(ctx, `
	SELECT id, order_id, variant_id, quantity, price,
	       fulfillment_source, fulfillment_ref_id, position
	FROM order_items
	WHERE order_id = ANY($1)
	ORDER BY order_id, position
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.VariantID, &it.Quantity, &it.Price,
			&it.Source, &it.RefID, &it.Position,
		); err != nil {
			rows.Close()
			return fmt.Errorf("scan order item: %w", err)
		}
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = conn.QueryContext(ctx, `
	SELECT order_id, offer_id, title, discount
	FROM order_offers
	WHERE order_id = ANY($1)
	ORDER BY order_id, discount DESC
	`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("list order offers: %w", err)
	}
	for rows.Next() {
		var (
			orderID uuid.UUID
			a       offer.AppliedOffer
		)
		if err := rows.Scan(&orderID, &a.OfferID, &a.Title, &a.Discount); err != nil {
			rows.Close()
			return fmt.Errorf("scan order offer: %w", err)
		}
		o := &orders[index[orderID]]
		o.Offers = append(o.Offers, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = conn.QueryContext(ctx,
		`SELECT `+pickupColumns+` FROM pickups WHERE order_id = ANY($1)`,
		pq.Array(uuidStrings(ids)),
	)
	if err != nil {
		return fmt.Errorf("list order pickups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return fmt.Errorf("scan pickup: %w", err)
		}
		orders[index[p.OrderID]].Pickup = p
	}
	return rows.Err()
}

// LockForUpdate reads the order header under a row lock. It returns nil, nil
// when the order does not exist.
func (r *repository) LockForUpdate(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT`+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `
	UPDATE orders
	SET status = $2,
	    updated_at = NOW()
	WHERE id = $1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// GetPickup returns nil, nil when the pickup does not exist.
func (r *repository) GetPickup(ctx context.Context, id uuid.UUID, forUpdate bool) (*Pickup, error) {
	query := `SELECT ` + pickupColumns + ` FROM pickups WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanPickup(db.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pickup: %w", err)
	}
	return p, nil
}

func (r *repository) SetPickupStatus(ctx context.Context, id uuid.UUID, status PickupStatus, pickedUpAt *time.Time) error {
	var at sql.NullTime
	if pickedUpAt != nil {
		at = sql.NullTime{Time: *pickedUpAt, Valid: true}
	}

	if _, err := db.Conn(ctx, r.db).ExecContext(ctx, `
	UPDATE pickups
	SET status = $2,
	    picked_up_at = COALESCE($3, picked_up_at)
	WHERE id = $1
	`, id, string(status), at); err != nil {
		return fmt.Errorf("update pickup status: %w", err)
	}
	return nil
}

// CancelReadyPickup cancels the order's pickup if it is still ready.
func (r *repository) CancelReadyPickup(ctx context.Context, orderID uuid.UUID) (bool, error) {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `
	UPDATE pickups
	SET status = 'cancelled'
	WHERE order_id = $1 AND status = 'ready'
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("cancel pickup: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel pickup: %w", err)
	}
	return n > 0, nil
}

func (r *repository) ListPickupsByStore(ctx context.Context, storeID uuid.UUID) ([]Pickup, error) {
	rows, err := db.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+pickupColumns+` FROM pickups WHERE store_id = $1 ORDER BY created_at DESC, id`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pickups: %w", err)
	}
	defer rows.Close()

	pickups := make([]Pickup, 0)
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pickup: %w", err)
		}
		pickups = append(pickups, *p)
	}
	return pickups, rows.Err()
}
