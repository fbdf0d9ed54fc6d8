package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	TypeAddToCart      Type = "add_to_cart"
	TypeRemoveFromCart Type = "remove_from_cart"
	TypeOrderCreated   Type = "order_created"
	TypeOrderCancelled Type = "order_cancelled"
)

type Event struct {
	UserID    uuid.UUID
	Type      Type
	VariantID *uuid.UUID
	OrderID   *uuid.UUID
	Metadata  map[string]any
}

type Recorder interface {
	Record(ctx context.Context, e Event) error
}

type recorder struct {
	db *sql.DB
}

// NewRecorder writes events to user_events. It always uses its own
// connection, never a transaction riding on the context.
func NewRecorder(db *sql.DB) Recorder {
	return &recorder{db: db}
}

func (r *recorder) Record(ctx context.Context, e Event) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode event metadata: %w", err)
	}

	var variantID, orderID uuid.NullUUID
	if e.VariantID != nil {
		variantID = uuid.NullUUID{UUID: *e.VariantID, Valid: true}
	}
	if e.OrderID != nil {
		orderID = uuid.NullUUID{UUID: *e.OrderID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO user_events (user_id, event_type, variant_id, order_id, metadata)
	VALUES ($1, $2, $3, $4, $5)
	`, e.UserID, string(e.Type), variantID, orderID, payload)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Emitter sends analytics events without ever failing the caller.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

type emitter struct {
	rec     Recorder
	timeout time.Duration
}

const DefaultEmitTimeout = 2 * time.Second

func NewEmitter(rec Recorder, timeout time.Duration) Emitter {
	if timeout <= 0 {
		timeout = DefaultEmitTimeout
	}
	return &emitter{rec: rec, timeout: timeout}
}

// Emit records e under its own deadline, detached from ctx cancellation.
// Failures are logged and dropped.
func (em *emitter) Emit(ctx context.Context, e Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), em.timeout)
	defer cancel()

	if err := em.rec.Record(ctx, e); err != nil {
		logger.FromCtx(ctx).Warn("failed to record event",
			zap.String("layer", "event"),
			zap.String("event_type", string(e.Type)),
			zap.Error(err),
		)
	}
}
