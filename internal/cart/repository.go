package cart

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
	GetVariant(ctx context.Context, variantID uuid.UUID) (*Variant, error)
	EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	FindCart(ctx context.Context, userID uuid.UUID, forUpdate bool) (uuid.UUID, bool, error)
	AddQuantity(ctx context.Context, cartID, variantID uuid.UUID, qty int) (int, error)
	SetQuantity(ctx context.Context, cartID, variantID uuid.UUID, qty int) (bool, error)
	DeleteLine(ctx context.Context, cartID, variantID uuid.UUID) (bool, error)
	ListLines(ctx context.Context, cartID uuid.UUID) ([]Line, error)
	ClearLines(ctx context.Context, cartID uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetVariant returns nil, nil when the variant does not exist.
func (r *repository) GetVariant(ctx context.Context, variantID uuid.UUID) (*Variant, error) {
	var v Variant
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	SELECT v.id, v.product_id, v.sku, v.price, (v.is_active AND p.is_active)
	FROM product_variants v
	JOIN products p ON p.id = v.product_id
	WHERE v.id = $1
	`, variantID).Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return &v, nil
}

// EnsureCart creates the user's cart on first write and touches it otherwise.
func (r *repository) EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO carts (user_id)
	VALUES ($1)
	ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
	RETURNING id
	`, userID).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensure cart: %w", err)
	}
	return id, nil
}

// FindCart looks up the user's cart, optionally taking a row lock on it.
func (r *repository) FindCart(ctx context.Context, userID uuid.UUID, forUpdate bool) (uuid.UUID, bool, error) {
	query := `SELECT id FROM carts WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var id uuid.UUID
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find cart: %w", err)
	}
	return id, true, nil
}

func (r *repository) AddQuantity(ctx context.Context, cartID, variantID uuid.UUID, qty int) (int, error) {
	var total int
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO cart_items (cart_id, variant_id, quantity)
	VALUES ($1, $2, $3)
	ON CONFLICT (cart_id, variant_id) DO UPDATE
	SET quantity = cart_items.quantity + EXCLUDED.quantity,
	    updated_at = NOW()
	RETURNING quantity
	`, cartID, variantID, qty).Scan(&total)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to upsert cart item",
			zap.String("layer", "repository"),
			zap.String("method", "AddQuantity"),
			zap.Error(err),
		)
		return 0, fmt.Errorf("add cart item: %w", err)
	}
	return total, nil
}

func (r *repository) SetQuantity(ctx context.Context, cartID, variantID uuid.UUID, qty int) (bool, error) {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `
	UPDATE cart_items
	SET quantity = $3,
	    updated_at = NOW()
	WHERE cart_id = $1 AND variant_id = $2
	`, cartID, variantID, qty)
	if err != nil {
		return false, fmt.Errorf("update cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update cart item: %w", err)
	}
	return n > 0, nil
}

func (r *repository) DeleteLine(ctx context.Context, cartID, variantID uuid.UUID) (bool, error) {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `
	DELETE FROM cart_items
	WHERE cart_id = $1 AND variant_id = $2
	`, cartID, variantID)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return n > 0, nil
}

// ListLines prices every line at the variant's current price. Lines whose
// variant or product was deactivated come back with Available false.
func (r *repository) ListLines(ctx context.Context, cartID uuid.UUID) ([]Line, error) {
	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
	SELECT
		ci.variant_id,
		v.product_id,
		p.name,
		v.sku,
		ci.quantity,
		v.price,
		(v.is_active AND p.is_active)
	FROM cart_items ci
	JOIN product_variants v ON v.id = ci.variant_id
	JOIN products p ON p.id = v.product_id
	WHERE ci.cart_id = $1
	ORDER BY ci.variant_id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.VariantID, &l.ProductID, &l.ProductName, &l.SKU, &l.Quantity, &l.UnitPrice, &l.Available); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		l.LineTotal = l.UnitPrice.Mul(decimalFromInt(l.Quantity))
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) ClearLines(ctx context.Context, cartID uuid.UUID) error {
	if _, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1`, cartID,
	); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
