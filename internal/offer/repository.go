package offer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	ListActive(ctx context.Context, at time.Time) ([]Offer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Offer, error)
	Create(ctx context.Context, input CreateOfferInput) (*Offer, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const offerColumns = `
	id,
	title,
	description,
	min_cart_value,
	percentage_off,
	amount_off,
	max_discount,
	priority,
	stackable,
	starts_at,
	ends_at,
	is_active,
	created_by,
	created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOffer(row scanner) (*Offer, error) {
	var (
		o          Offer
		percentOff decimal.NullDecimal
		amountOff  decimal.NullDecimal
		createdBy  uuid.NullUUID
	)
	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Description,
		&o.MinCartValue,
		&percentOff,
		&amountOff,
		&o.MaxDiscount,
		&o.Priority,
		&o.Stackable,
		&o.StartsAt,
		&o.EndsAt,
		&o.IsActive,
		&createdBy,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch {
	case percentOff.Valid:
		o.Discount = Percentage(percentOff.Decimal)
	case amountOff.Valid:
		o.Discount = FlatAmount(amountOff.Decimal)
	}
	if createdBy.Valid {
		id := createdBy.UUID
		o.CreatedBy = &id
	}
	return &o, nil
}

func (r *repository) ListActive(ctx context.Context, at time.Time) ([]Offer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListActive"),
	)

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
	SELECT `+offerColumns+`
	FROM offers
	WHERE is_active = TRUE
	  AND starts_at <= $1
	  AND ends_at >= $1
	ORDER BY priority DESC, created_at DESC
	`, at)
	if err != nil {
		log.Error("failed to query active offers", zap.Error(err))
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	defer rows.Close()

	offers := make([]Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			log.Error("failed to scan offer", zap.Error(err))
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offers: %w", err)
	}

	return offers, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	row := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	SELECT `+offerColumns+`
	FROM offers
	WHERE id = $1
	`, id)

	o, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}

func (r *repository) Create(ctx context.Context, input CreateOfferInput) (*Offer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	var percentOff, amountOff, maxDiscount decimal.NullDecimal
	switch input.Discount.Kind {
	case DiscountPercentage:
		percentOff = decimal.NewNullDecimal(input.Discount.Value)
	case DiscountFlatAmount:
		amountOff = decimal.NewNullDecimal(input.Discount.Value)
	}
	if input.MaxDiscount != nil {
		maxDiscount = decimal.NewNullDecimal(*input.MaxDiscount)
	}
	var createdBy uuid.NullUUID
	if input.CreatedBy != nil {
		createdBy = uuid.NullUUID{UUID: *input.CreatedBy, Valid: true}
	}

	row := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO offers (
		title, description, min_cart_value,
		percentage_off, amount_off, max_discount,
		priority, stackable, starts_at, ends_at, created_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING `+offerColumns,
		input.Title,
		input.Description,
		input.MinCartValue,
		percentOff,
		amountOff,
		maxDiscount,
		input.Priority,
		input.Stackable,
		input.StartsAt,
		input.EndsAt,
		createdBy,
	)

	o, err := scanOffer(row)
	if err != nil {
		log.Error("failed to insert offer", zap.Error(err))
		return nil, fmt.Errorf("create offer: %w", err)
	}

	log.Info("offer created", zap.String("offer_id", o.ID.String()))
	return o, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `
	UPDATE offers
	SET is_active = FALSE
	WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate offer: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate offer: %w", err)
	}
	if n == 0 {
		return ErrOfferNotFound
	}
	return nil
}
