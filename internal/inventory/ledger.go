package inventory

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

// Ledger is the only writer of stock counters. Every method joins the
// transaction on ctx when there is one and opens its own otherwise. Row
// locks are taken before availability is checked and held until the
// owning transaction ends.
type Ledger interface {
	ReserveGlobal(ctx context.Context, variantID uuid.UUID, qty int) error
	ConsumeStore(ctx context.Context, storeID, variantID uuid.UUID, qty int) error
	Release(ctx context.Context, orderID uuid.UUID) error
	AllocateToStore(ctx context.Context, storeID, variantID uuid.UUID, qty int) error
	SetTotalStock(ctx context.Context, variantID uuid.UUID, total int) (*GlobalStock, error)
	GetGlobal(ctx context.Context, variantID uuid.UUID) (*GlobalStock, error)
	ListStoreInventory(ctx context.Context, storeID uuid.UUID) ([]StoreStock, error)
}

type ledger struct {
	db *sql.DB
	tx db.Transactor
}

func NewLedger(sqlDB *sql.DB, tx db.Transactor) Ledger {
	return &ledger{db: sqlDB, tx: tx}
}

func (l *ledger) ReserveGlobal(ctx context.Context, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		g, err := l.lockGlobal(ctx, variantID)
		if err != nil {
			return err
		}

		available := 0
		if g != nil {
			available = g.Available()
		}
		if g == nil || available < qty {
			logger.FromCtx(ctx).Info("global reservation rejected",
				zap.String("layer", "ledger"),
				zap.String("variant_id", variantID.String()),
				zap.Int("requested", qty),
				zap.Int("available", available),
			)
			return &StockError{Err: ErrOutOfStock, VariantID: variantID, Requested: qty, Available: available}
		}

		_, err = db.Conn(ctx, l.db).ExecContext(ctx, `
		UPDATE global_inventory
		SET reserved_stock = reserved_stock + $2,
		    updated_at = NOW()
		WHERE variant_id = $1
		`, variantID, qty)
		if err != nil {
			return fmt.Errorf("reserve global stock: %w", err)
		}
		return nil
	})
}

func (l *ledger) ConsumeStore(ctx context.Context, storeID, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		s, err := l.lockStore(ctx, storeID, variantID)
		if err != nil {
			return err
		}

		available := 0
		if s != nil {
			available = s.InHandStock
		}
		if s == nil || available < qty {
			logger.FromCtx(ctx).Info("store consumption rejected",
				zap.String("layer", "ledger"),
				zap.String("store_id", storeID.String()),
				zap.String("variant_id", variantID.String()),
				zap.Int("requested", qty),
				zap.Int("available", available),
			)
			return &StockError{
				Err:       ErrStoreOutOfStock,
				VariantID: variantID,
				StoreID:   storeID,
				Requested: qty,
				Available: available,
			}
		}

		_, err = db.Conn(ctx, l.db).ExecContext(ctx, `
		UPDATE store_inventory
		SET in_hand_stock = in_hand_stock - $3,
		    updated_at = NOW()
		WHERE store_id = $1 AND variant_id = $2
		`, storeID, variantID, qty)
		if err != nil {
			return fmt.Errorf("consume store stock: %w", err)
		}
		return nil
	})
}

// Release undoes the reservations of an order. The order is stamped with
// inventory_released_at first, so a second call finds it stamped and
// returns without touching any counter.
func (l *ledger) Release(ctx context.Context, orderID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "ledger"),
		zap.String("method", "Release"),
		zap.String("order_id", orderID.String()),
	)

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		conn := db.Conn(ctx, l.db)

		res, err := conn.ExecContext(ctx, `
		UPDATE orders
		SET inventory_released_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND inventory_released_at IS NULL
		`, orderID)
		if err != nil {
			return fmt.Errorf("mark order released: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("mark order released: %w", err)
		}
		if n == 0 {
			var exists bool
			if err := conn.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("check order: %w", err)
			}
			if !exists {
				return ErrOrderNotFound
			}
			log.Info("inventory already released")
			return nil
		}

		lines, err := l.releaseLines(ctx, orderID)
		if err != nil {
			return err
		}

		for _, line := range lines {
			if _, err := conn.ExecContext(ctx, `
			UPDATE global_inventory
			SET reserved_stock = GREATEST(reserved_stock - $2, 0),
			    updated_at = NOW()
			WHERE variant_id = $1
			`, line.VariantID, line.Quantity); err != nil {
				return fmt.Errorf("release global stock: %w", err)
			}

			if line.Source != SourceStore {
				continue
			}
			if _, err := conn.ExecContext(ctx, `
			UPDATE store_inventory
			SET in_hand_stock = in_hand_stock + $3,
			    updated_at = NOW()
			WHERE store_id = $1 AND variant_id = $2
			`, line.RefID, line.VariantID, line.Quantity); err != nil {
				return fmt.Errorf("restore store stock: %w", err)
			}
		}

		log.Info("inventory released", zap.Int("lines", len(lines)))
		return nil
	})
}

func (l *ledger) AllocateToStore(ctx context.Context, storeID, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "ledger"),
		zap.String("method", "AllocateToStore"),
		zap.String("store_id", storeID.String()),
		zap.String("variant_id", variantID.String()),
		zap.Int("quantity", qty),
	)

	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		g, err := l.lockGlobal(ctx, variantID)
		if err != nil {
			return err
		}
		if g == nil || g.Available() < qty {
			available := 0
			if g != nil {
				available = g.Available()
			}
			log.Warn("allocation rejected", zap.Int("available", available))
			return &StockError{
				Err:       ErrInsufficientGlobalStock,
				VariantID: variantID,
				StoreID:   storeID,
				Requested: qty,
				Available: available,
			}
		}

		conn := db.Conn(ctx, l.db)
		if _, err := conn.ExecContext(ctx, `
		UPDATE global_inventory
		SET allocated_stock = allocated_stock + $2,
		    updated_at = NOW()
		WHERE variant_id = $1
		`, variantID, qty); err != nil {
			return fmt.Errorf("allocate global stock: %w", err)
		}

		if _, err := conn.ExecContext(ctx, `
		INSERT INTO store_inventory (store_id, variant_id, allocated_stock, in_hand_stock)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (store_id, variant_id) DO UPDATE
		SET allocated_stock = store_inventory.allocated_stock + EXCLUDED.allocated_stock,
		    in_hand_stock = store_inventory.in_hand_stock + EXCLUDED.in_hand_stock,
		    updated_at = NOW()
		`, storeID, variantID, qty); err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrVariantNotFound
			}
			return fmt.Errorf("allocate store stock: %w", err)
		}

		log.Info("stock allocated to store")
		return nil
	})
}

func (l *ledger) SetTotalStock(ctx context.Context, variantID uuid.UUID, total int) (*GlobalStock, error) {
	if total < 0 {
		return nil, ErrInvalidQuantity
	}

	var out *GlobalStock
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		conn := db.Conn(ctx, l.db)

		if _, err := conn.ExecContext(ctx, `
		INSERT INTO global_inventory (variant_id, total_stock)
		VALUES ($1, 0)
		ON CONFLICT (variant_id) DO NOTHING
		`, variantID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrVariantNotFound
			}
			return fmt.Errorf("ensure global row: %w", err)
		}

		g, err := l.lockGlobal(ctx, variantID)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrVariantNotFound
		}
		committed := g.AllocatedStock + g.ReservedStock
		if total < committed {
			return &StockError{
				Err:       ErrStockBelowCommitted,
				VariantID: variantID,
				Requested: total,
				Available: committed,
			}
		}

		g.TotalStock = total
		if err := conn.QueryRowContext(ctx, `
		UPDATE global_inventory
		SET total_stock = $2,
		    updated_at = NOW()
		WHERE variant_id = $1
		RETURNING updated_at
		`, variantID, total).Scan(&g.UpdatedAt); err != nil {
			return fmt.Errorf("set total stock: %w", err)
		}

		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("total stock updated",
		zap.String("layer", "ledger"),
		zap.String("variant_id", variantID.String()),
		zap.Int("total", total),
	)
	return out, nil
}

func (l *ledger) GetGlobal(ctx context.Context, variantID uuid.UUID) (*GlobalStock, error) {
	var g GlobalStock
	err := db.Conn(ctx, l.db).QueryRowContext(ctx, `
	SELECT variant_id, total_stock, allocated_stock, reserved_stock, updated_at
	FROM global_inventory
	WHERE variant_id = $1
	`, variantID).Scan(&g.VariantID, &g.TotalStock, &g.AllocatedStock, &g.ReservedStock, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get global stock: %w", err)
	}
	return &g, nil
}

func (l *ledger) ListStoreInventory(ctx context.Context, storeID uuid.UUID) ([]StoreStock, error) {
	rows, err := db.Conn(ctx, l.db).QueryContext(ctx, `
	SELECT store_id, variant_id, allocated_stock, in_hand_stock, updated_at
	FROM store_inventory
	WHERE store_id = $1
	ORDER BY variant_id
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list store inventory: %w", err)
	}
	defer rows.Close()

	out := make([]StoreStock, 0)
	for rows.Next() {
		var s StoreStock
		if err := rows.Scan(&s.StoreID, &s.VariantID, &s.AllocatedStock, &s.InHandStock, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store inventory: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// lockGlobal returns nil, nil when the variant has no global row.
func (l *ledger) lockGlobal(ctx context.Context, variantID uuid.UUID) (*GlobalStock, error) {
	g := GlobalStock{VariantID: variantID}
	err := db.Conn(ctx, l.db).QueryRowContext(ctx, `
	SELECT total_stock, allocated_stock, reserved_stock, updated_at
	FROM global_inventory
	WHERE variant_id = $1
	FOR UPDATE
	`, variantID).Scan(&g.TotalStock, &g.AllocatedStock, &g.ReservedStock, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock global stock: %w", err)
	}
	return &g, nil
}

// lockStore returns nil, nil when the store carries no row for the variant.
func (l *ledger) lockStore(ctx context.Context, storeID, variantID uuid.UUID) (*StoreStock, error) {
	s := StoreStock{StoreID: storeID, VariantID: variantID}
	err := db.Conn(ctx, l.db).QueryRowContext(ctx, `
	SELECT allocated_stock, in_hand_stock, updated_at
	FROM store_inventory
	WHERE store_id = $1 AND variant_id = $2
	FOR UPDATE
	`, storeID, variantID).Scan(&s.AllocatedStock, &s.InHandStock, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock store stock: %w", err)
	}
	return &s, nil
}

func (l *ledger) releaseLines(ctx context.Context, orderID uuid.UUID) ([]releaseLine, error) {
	rows, err := db.Conn(ctx, l.db).QueryContext(ctx, `
	SELECT variant_id, quantity, fulfillment_source, fulfillment_ref_id
	FROM order_items
	WHERE order_id = $1
	ORDER BY position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	lines := make([]releaseLine, 0)
	for rows.Next() {
		var line releaseLine
		if err := rows.Scan(&line.VariantID, &line.Quantity, &line.Source, &line.RefID); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
