package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront-be/internal/db"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository interface {
	CreateProduct(ctx context.Context, name string) (*Product, error)
	CreateVariant(ctx context.Context, productID uuid.UUID, in CreateVariantInput) (*Variant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateProduct(ctx context.Context, name string) (*Product, error) {
	p := Product{Name: name, IsActive: true}
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO products (name)
	VALUES ($1)
	RETURNING id, created_at
	`, name).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

func (r *repository) CreateVariant(ctx context.Context, productID uuid.UUID, in CreateVariantInput) (*Variant, error) {
	attrs := in.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	payload, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode variant attributes: %w", err)
	}

	v := Variant{
		ProductID:  productID,
		SKU:        in.SKU,
		Name:       in.Name,
		Price:      in.Price,
		Attributes: attrs,
		IsActive:   true,
	}
	err = db.Conn(ctx, r.db).QueryRowContext(ctx, `
	INSERT INTO product_variants (product_id, sku, name, price, attributes)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`, productID, in.SKU, in.Name, in.Price, payload).Scan(&v.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("insert variant: %w", err)
	}
	return &v, nil
}

// GetByID returns nil, nil when no product has the id.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
	SELECT id, name, is_active, created_at
	FROM products
	WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	products := []Product{p}
	if err := r.loadVariants(ctx, products, false); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// List returns active products with their active variants, newest first.
func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
	SELECT id, name, is_active, created_at
	FROM products
	WHERE is_active
	  AND ($1 = '' OR name ILIKE '%' || $1 || '%')
	ORDER BY created_at DESC, id
	LIMIT $2 OFFSET $3
	`, opts.Search, opts.Limit, (opts.Page-1)*opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if err := r.loadVariants(ctx, products, true); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) loadVariants(ctx context.Context, products []Product, onlyActive bool) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		ids[i] = p.ID.String()
		index[p.ID] = i
		products[i].Variants = []Variant{}
	}

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
	SELECT id, product_id, sku, name, price, attributes, is_active
	FROM product_variants
	WHERE product_id = ANY($1)
	  AND (is_active OR NOT $2)
	ORDER BY product_id, sku
	`, pq.Array(ids), onlyActive)
	if err != nil {
		return fmt.Errorf("load variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		var attrs []byte
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Price, &attrs, &v.IsActive); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		if err := json.Unmarshal(attrs, &v.Attributes); err != nil {
			return fmt.Errorf("decode variant attributes: %w", err)
		}
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}
	return rows.Err()
}
