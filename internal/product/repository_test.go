package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productColumns = []string{"id", "name", "is_active", "created_at"}
	variantColumns = []string{"id", "product_id", "sku", "name", "price", "attributes", "is_active"}
)

func TestRepository_CreateProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`INSERT INTO products \(name\) VALUES \(\$1\) RETURNING id, created_at`).
		WithArgs("Tea").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), time.Now()))

	p, err := repo.CreateProduct(context.Background(), "Tea")

	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.True(t, p.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateVariant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	productID := uuid.New()
	in := CreateVariantInput{SKU: "T1", Name: "Small", Price: decimal.NewFromInt(3)}

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`INSERT INTO product_variants`).
			WithArgs(productID, "T1", "Small", in.Price, []byte(`{}`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))

		v, err := repo.CreateVariant(ctx, productID, in)

		require.NoError(t, err)
		assert.Equal(t, id, v.ID)
		assert.Equal(t, map[string]any{}, v.Attributes)
	})

	t.Run("Duplicate SKU", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO product_variants`).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.CreateVariant(ctx, productID, in)

		assert.ErrorIs(t, err, ErrDuplicateSKU)
	})

	t.Run("DB error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO product_variants`).
			WillReturnError(errors.New("db error"))

		_, err := repo.CreateVariant(ctx, productID, in)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateSKU)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	id := uuid.New()

	t.Run("With variants", func(t *testing.T) {
		variantID := uuid.New()
		mock.ExpectQuery(`SELECT id, name, is_active, created_at FROM products WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(productColumns).AddRow(id.String(), "Tea", true, time.Now()))
		mock.ExpectQuery(`FROM product_variants WHERE product_id = ANY\(\$1\)`).
			WithArgs(pq.Array([]string{id.String()}), false).
			WillReturnRows(sqlmock.NewRows(variantColumns).
				AddRow(variantID.String(), id.String(), "T1", "Small", "3.50", []byte(`{"size":"s"}`), true))

		p, err := repo.GetByID(ctx, id)

		require.NoError(t, err)
		require.Len(t, p.Variants, 1)
		assert.Equal(t, variantID, p.Variants[0].ID)
		assert.True(t, decimal.RequireFromString("3.50").Equal(p.Variants[0].Price))
		assert.Equal(t, "s", p.Variants[0].Attributes["size"])
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM products WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(productColumns))

		p, err := repo.GetByID(ctx, id)

		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Groups variants by product", func(t *testing.T) {
		p1, p2 := uuid.New(), uuid.New()
		mock.ExpectQuery(`FROM products WHERE is_active`).
			WithArgs("tea", 20, 20).
			WillReturnRows(sqlmock.NewRows(productColumns).
				AddRow(p1.String(), "Green Tea", true, time.Now()).
				AddRow(p2.String(), "Black Tea", true, time.Now()))
		mock.ExpectQuery(`FROM product_variants`).
			WithArgs(pq.Array([]string{p1.String(), p2.String()}), true).
			WillReturnRows(sqlmock.NewRows(variantColumns).
				AddRow(uuid.NewString(), p1.String(), "G1", "", "4", []byte(`{}`), true).
				AddRow(uuid.NewString(), p1.String(), "G2", "", "8", []byte(`{}`), true))

		products, err := repo.List(ctx, ListOptions{Search: "tea", Page: 2, Limit: 20})

		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Len(t, products[0].Variants, 2)
		assert.NotNil(t, products[1].Variants)
		assert.Empty(t, products[1].Variants)
	})

	t.Run("Empty page skips variant query", func(t *testing.T) {
		mock.ExpectQuery(`FROM products WHERE is_active`).
			WithArgs("", 20, 0).
			WillReturnRows(sqlmock.NewRows(productColumns))

		products, err := repo.List(ctx, ListOptions{Page: 1, Limit: 20})

		assert.NoError(t, err)
		assert.Empty(t, products)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
