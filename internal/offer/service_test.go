package offer

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-be/internal/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListActive(ctx context.Context, at time.Time) ([]Offer, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Offer), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offer), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, input CreateOfferInput) (*Offer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offer), args.Error(1)
}

func (m *MockRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

var fixedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func TestService_ActiveOffers(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, clock.NewFixed(fixedNow))
	offers := []Offer{{ID: uuid.New(), Priority: 1, Stackable: true, Discount: FlatAmount(dec("5"))}}

	repo.On("ListActive", mock.Anything, fixedNow).Return(offers, nil)

	got, err := svc.ActiveOffers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, offers, got)
	repo.AssertExpectations(t)
}

func TestService_Preview(t *testing.T) {
	t.Run("Applies active offers", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, clock.NewFixed(fixedNow))
		repo.On("ListActive", mock.Anything, fixedNow).Return([]Offer{
			{ID: uuid.New(), Priority: 1, Stackable: true, Discount: Percentage(dec("10"))},
		}, nil)

		res, err := svc.Preview(context.Background(), dec("250"))

		require.NoError(t, err)
		assert.True(t, dec("25").Equal(res.DiscountTotal))
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, clock.NewFixed(fixedNow))
		repo.On("ListActive", mock.Anything, fixedNow).Return(nil, errors.New("db down"))

		_, err := svc.Preview(context.Background(), dec("250"))

		assert.Error(t, err)
	})
}

func TestService_Create(t *testing.T) {
	valid := func() CreateOfferInput {
		return CreateOfferInput{
			Title:    "  Summer  ",
			Discount: Percentage(dec("20")),
			StartsAt: fixedNow,
			EndsAt:   fixedNow.Add(24 * time.Hour),
		}
	}

	t.Run("Success trims title", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, clock.NewFixed(fixedNow))
		created := &Offer{ID: uuid.New(), Title: "Summer"}

		repo.On("Create", mock.Anything, mock.MatchedBy(func(in CreateOfferInput) bool {
			return in.Title == "Summer"
		})).Return(created, nil)

		o, err := svc.Create(context.Background(), valid())

		require.NoError(t, err)
		assert.Equal(t, created, o)
		repo.AssertExpectations(t)
	})

	negative := dec("-1")
	cases := []struct {
		name   string
		mutate func(*CreateOfferInput)
		err    error
	}{
		{"Missing title", func(in *CreateOfferInput) { in.Title = " " }, ErrTitleRequired},
		{"Inverted window", func(in *CreateOfferInput) { in.EndsAt = in.StartsAt.Add(-time.Minute) }, ErrInvalidWindow},
		{"Empty window", func(in *CreateOfferInput) { in.EndsAt = in.StartsAt }, ErrInvalidWindow},
		{"Missing end", func(in *CreateOfferInput) { in.EndsAt = time.Time{} }, ErrInvalidWindow},
		{"Percentage over 100", func(in *CreateOfferInput) { in.Discount = Percentage(dec("100.01")) }, ErrInvalidDiscount},
		{"Zero flat", func(in *CreateOfferInput) { in.Discount = FlatAmount(decimal.Zero) }, ErrInvalidDiscount},
		{"No kind", func(in *CreateOfferInput) { in.Discount = Discount{Value: dec("5")} }, ErrInvalidDiscount},
		{"Negative min cart", func(in *CreateOfferInput) { in.MinCartValue = negative }, ErrInvalidCartValue},
		{"Negative cap", func(in *CreateOfferInput) { in.MaxDiscount = &negative }, ErrInvalidCartValue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, clock.NewFixed(fixedNow))
			in := valid()
			tc.mutate(&in)

			o, err := svc.Create(context.Background(), in)

			assert.ErrorIs(t, err, tc.err)
			assert.Nil(t, o)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Deactivate(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, clock.NewFixed(fixedNow))
	id := uuid.New()

	repo.On("Deactivate", mock.Anything, id).Return(ErrOfferNotFound).Once()
	assert.ErrorIs(t, svc.Deactivate(context.Background(), id), ErrOfferNotFound)

	repo.On("Deactivate", mock.Anything, id).Return(nil).Once()
	assert.NoError(t, svc.Deactivate(context.Background(), id))
}
