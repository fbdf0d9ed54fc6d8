package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	Create(ctx context.Context, a *Address) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const addressColumns = `
	id, user_id,
	name, phone,
	line1, line2,
	city, state, postal_code,
	is_default, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (*Address, error) {
	var (
		a     Address
		line2 sql.NullString
	)
	if err := row.Scan(
		&a.ID, &a.UserID,
		&a.Name, &a.Phone,
		&a.Line1, &line2,
		&a.City, &a.State, &a.PostalCode,
		&a.IsDefault, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if line2.Valid {
		a.Line2 = &line2.String
	}
	return &a, nil
}

// GetByID returns nil, nil when no address has the id.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Address, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id)

	a, err := scanAddress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("query failed",
			zap.String("layer", "repository"),
			zap.String("method", "GetByID"),
			zap.String("address_id", id.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get address: %w", err)
	}
	return a, nil
}

// ListByUser returns the default address first, then newest first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Create fills in the generated id and created_at.
func (r *repository) Create(ctx context.Context, a *Address) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO addresses (
			user_id, name, phone, line1, line2,
			city, state, postal_code, is_default
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`,
		a.UserID, a.Name, a.Phone, a.Line1, a.Line2,
		a.City, a.State, a.PostalCode, a.IsDefault,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *repository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx, `
		UPDATE addresses
		SET is_default = FALSE
		WHERE user_id = $1
		  AND is_default
	`, userID)
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}
