package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	ListCandidates(ctx context.Context, variantIDs []uuid.UUID, days []time.Weekday) ([]Candidate, error)
	GetStock(ctx context.Context, storeID uuid.UUID, variantIDs []uuid.UUID) (map[uuid.UUID]int, error)
	GetUserLocation(ctx context.Context, userID uuid.UUID) (*Location, error)
	UpsertUserLocation(ctx context.Context, userID uuid.UUID, loc Location) error

	Create(ctx context.Context, input CreateStoreInput) (*Store, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Store, error)
	List(ctx context.Context) ([]Store, error)
	ReplaceHours(ctx context.Context, storeID uuid.UUID, hours []WorkingHour) error
	ListHours(ctx context.Context, storeID uuid.UUID) ([]WorkingHour, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

const storeColumns = `s.id, s.name, s.city, s.state, s.latitude, s.longitude, s.is_active, s.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanStore(row scanner, extra ...any) (*Store, error) {
	var s Store
	dest := append([]any{
		&s.ID, &s.Name, &s.City, &s.State, &s.Latitude, &s.Longitude, &s.IsActive, &s.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListCandidates returns active stores that stock at least one of the
// variants, with their stock levels and hours for the given days.
func (r *repository) ListCandidates(ctx context.Context, variantIDs []uuid.UUID, days []time.Weekday) ([]Candidate, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListCandidates"),
	)
	conn := db.Conn(ctx, r.db)

	rows, err := conn.QueryContext(ctx, `
	SELECT `+storeColumns+`, si.variant_id, si.in_hand_stock
	FROM stores s
	JOIN store_inventory si ON si.store_id = s.id
	WHERE s.is_active = TRUE
	  AND si.variant_id = ANY($1)
	ORDER BY s.id
	`, pq.Array(uuidStrings(variantIDs)))
	if err != nil {
		log.Error("failed to query candidate stores", zap.Error(err))
		return nil, fmt.Errorf("list candidate stores: %w", err)
	}

	byID := make(map[uuid.UUID]*Candidate)
	order := make([]uuid.UUID, 0)
	for rows.Next() {
		var (
			variantID uuid.UUID
			inHand    int
		)
		s, err := scanStore(rows, &variantID, &inHand)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan candidate store: %w", err)
		}
		c, ok := byID[s.ID]
		if !ok {
			c = &Candidate{Store: *s, Stock: make(map[uuid.UUID]int)}
			byID[s.ID] = c
			order = append(order, s.ID)
		}
		c.Stock[variantID] = inHand
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate candidate stores: %w", err)
	}
	rows.Close()

	if len(order) == 0 {
		return []Candidate{}, nil
	}

	dayNums := make([]int64, len(days))
	for i, d := range days {
		dayNums[i] = int64(d)
	}

	hourRows, err := conn.QueryContext(ctx, `
	SELECT store_id, day_of_week,
	       to_char(opens_at, 'HH24:MI:SS'), to_char(closes_at, 'HH24:MI:SS'),
	       is_closed
	FROM store_working_hours
	WHERE store_id = ANY($1)
	  AND day_of_week = ANY($2)
	`, pq.Array(uuidStrings(order)), pq.Array(dayNums))
	if err != nil {
		log.Error("failed to query working hours", zap.Error(err))
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	defer hourRows.Close()

	for hourRows.Next() {
		h, err := scanHour(hourRows)
		if err != nil {
			return nil, err
		}
		if c, ok := byID[h.StoreID]; ok {
			c.Hours = append(c.Hours, *h)
		}
	}
	if err := hourRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate working hours: %w", err)
	}

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func scanHour(row scanner) (*WorkingHour, error) {
	var (
		h             WorkingHour
		day           int
		opens, closes string
	)
	if err := row.Scan(&h.StoreID, &day, &opens, &closes, &h.IsClosed); err != nil {
		return nil, fmt.Errorf("scan working hour: %w", err)
	}
	var err error
	if h.OpensAt, err = ParseTimeOfDay(opens); err != nil {
		return nil, err
	}
	if h.ClosesAt, err = ParseTimeOfDay(closes); err != nil {
		return nil, err
	}
	h.DayOfWeek = time.Weekday(day)
	return &h, nil
}

// GetStock returns in-hand stock of an active store for the variants it carries.
func (r *repository) GetStock(ctx context.Context, storeID uuid.UUID, variantIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
	SELECT si.variant_id, si.in_hand_stock
	FROM store_inventory si
	JOIN stores s ON s.id = si.store_id
	WHERE si.store_id = $1
	  AND s.is_active = TRUE
	  AND si.variant_id = ANY($2)
	`, storeID, pq.Array(uuidStrings(variantIDs)))
	if err != nil {
		return nil, fmt.Errorf("get store stock: %w", err)
	}
	defer rows.Close()

	stock := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			variantID uuid.UUID
			inHand    int
		)
		if err := rows.Scan(&variantID, &inHand); err != nil {
			return nil, fmt.Errorf("scan store stock: %w", err)
		}
		stock[variantID] = inHand
	}
	return stock, rows.Err()
}

// GetUserLocation returns nil, nil when the user never shared a location.
func (r *repository) GetUserLocation(ctx context.Context, userID uuid.UUID) (*Location, error) {
	var loc Location
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	SELECT latitude, longitude
	FROM user_locations
	WHERE user_id = $1
	`, userID).Scan(&loc.Latitude, &loc.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user location: %w", err)
	}
	return &loc, nil
}

func (r *repository) UpsertUserLocation(ctx context.Context, userID uuid.UUID, loc Location) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx, `
	INSERT INTO user_locations (user_id, latitude, longitude, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET latitude = EXCLUDED.latitude,
	    longitude = EXCLUDED.longitude,
	    updated_at = NOW()
	`, userID, loc.Latitude, loc.Longitude)
	if err != nil {
		return fmt.Errorf("upsert user location: %w", err)
	}
	return nil
}

func (r *repository) Create(ctx context.Context, input CreateStoreInput) (*Store, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO stores AS s (name, city, state, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING `+storeColumns,
		input.Name, input.City, input.State, input.Latitude, input.Longitude,
	)
	s, err := scanStore(row)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return s, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Store, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	SELECT `+storeColumns+`
	FROM stores s
	WHERE s.id = $1
	`, id)
	s, err := scanStore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return s, nil
}

func (r *repository) List(ctx context.Context) ([]Store, error) {
	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
	SELECT `+storeColumns+`
	FROM stores s
	ORDER BY s.name, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	out := make([]Store, 0)
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ReplaceHours swaps the whole weekly schedule. Callers run it inside a
// transaction so readers never see a partial week.
func (r *repository) ReplaceHours(ctx context.Context, storeID uuid.UUID, hours []WorkingHour) error {
	conn := db.Conn(ctx, r.db)

	if _, err := conn.ExecContext(ctx,
		`DELETE FROM store_working_hours WHERE store_id = $1`, storeID,
	); err != nil {
		return fmt.Errorf("delete working hours: %w", err)
	}

	for _, h := range hours {
		if _, err := conn.ExecContext(ctx, `
		INSERT INTO store_working_hours (store_id, day_of_week, opens_at, closes_at, is_closed)
		VALUES ($1, $2, $3::time, $4::time, $5)
		`, storeID, int(h.DayOfWeek), h.OpensAt.String(), h.ClosesAt.String(), h.IsClosed); err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrStoreNotFound
			}
			return fmt.Errorf("insert working hour: %w", err)
		}
	}
	return nil
}

func (r *repository) ListHours(ctx context.Context, storeID uuid.UUID) ([]WorkingHour, error) {
	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
	SELECT store_id, day_of_week,
	       to_char(opens_at, 'HH24:MI:SS'), to_char(closes_at, 'HH24:MI:SS'),
	       is_closed
	FROM store_working_hours
	WHERE store_id = $1
	ORDER BY day_of_week
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	defer rows.Close()

	out := make([]WorkingHour, 0)
	for rows.Next() {
		h, err := scanHour(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
