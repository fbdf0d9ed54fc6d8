package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*Product, error)
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, error)
}

type service struct {
	repo Repository
	tx   db.Transactor
}

func NewService(repo Repository, tx db.Transactor) Service {
	return &service{repo: repo, tx: tx}
}

// Create inserts the product and all its variants in one transaction.
// Stock starts at zero until an admin sets it.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if len(input.Variants) == 0 {
		return nil, ErrNoVariants
	}
	for i := range input.Variants {
		v := &input.Variants[i]
		v.SKU = strings.TrimSpace(v.SKU)
		if v.SKU == "" {
			return nil, ErrSKURequired
		}
		if v.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
	}

	var out *Product
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.CreateProduct(ctx, input.Name)
		if err != nil {
			return err
		}
		p.Variants = make([]Variant, 0, len(input.Variants))
		for _, in := range input.Variants {
			v, err := s.repo.CreateVariant(ctx, p.ID, in)
			if err != nil {
				return err
			}
			p.Variants = append(p.Variants, *v)
		}
		out = p
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicateSKU) {
			log.Error("failed to create product", zap.Error(err))
		}
		return nil, err
	}

	log.Info("product created",
		zap.String("product_id", out.ID.String()),
		zap.Int("variants", len(out.Variants)),
	)
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)
	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultPageSize
	} else if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	opts.Search = strings.TrimSpace(opts.Search)

	products, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	log.Debug("product list served",
		zap.Int("count", len(products)),
		zap.Int("page", opts.Page),
		zap.Int("limit", opts.Limit),
		zap.Duration("duration", time.Since(start)),
	)
	return products, nil
}
