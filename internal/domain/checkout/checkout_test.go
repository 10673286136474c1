package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papercup/pos/internal/domain/auth"
	"github.com/papercup/pos/internal/domain/basket"
	"github.com/papercup/pos/internal/domain/product"
)

// --- Mock implementations ---

type failingLog struct{}

func (failingLog) Append(context.Context, *Receipt) error {
	return errors.New("log full")
}

// --- Helpers ---

func newTestCatalog(t *testing.T) *product.Catalog {
	t.Helper()
	c, err := product.NewCatalog(
		product.Product{ID: "D1", Category: product.CategoryDrinks, Name: "Flat White", Price: decimal.RequireFromString("3.60"), Stock: 30},
		product.Product{ID: "F1", Category: product.CategoryFood, Name: "Croissant", Price: decimal.RequireFromString("2.80"), Stock: 10},
		product.Product{ID: "B1", Category: product.CategoryBooks, Name: "Atomic Habits", Price: decimal.RequireFromString("12.99"), Stock: 8, DeliveryEligible: true},
	)
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T) (*Service, *product.Catalog, *MemoryLog) {
	t.Helper()
	catalog := newTestCatalog(t)
	log := NewMemoryLog()
	svc := NewService(catalog, log, decimal.RequireFromString("0.10"))
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return svc, catalog, log
}

// --- Tests ---

func TestFlatDiscount(t *testing.T) {
	tests := []struct {
		total      string
		rate       string
		wantTotal  string
		wantAmount string
	}{
		{total: "100.00", rate: "0.10", wantTotal: "90", wantAmount: "10"},
		{total: "28.59", rate: "0.10", wantTotal: "25.731", wantAmount: "2.859"},
		{total: "50.00", rate: "0.25", wantTotal: "37.5", wantAmount: "12.5"},
		{total: "0", rate: "0.10", wantTotal: "0", wantAmount: "0"},
		{total: "100.00", rate: "0", wantTotal: "100", wantAmount: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.total+"@"+tt.rate, func(t *testing.T) {
			newTotal, amount := FlatDiscount(decimal.RequireFromString(tt.total), decimal.RequireFromString(tt.rate))
			assert.True(t, newTotal.Equal(decimal.RequireFromString(tt.wantTotal)), "total: got %s", newTotal)
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.wantAmount)), "amount: got %s", amount)
		})
	}
}

func TestCheckout(t *testing.T) {
	svc, catalog, log := newTestService(t)
	b := basket.New()
	require.NoError(t, b.Add(catalog, "D1", 2)) // 7.20
	require.NoError(t, b.Add(catalog, "F1", 3)) // 8.40

	r, err := svc.Checkout(context.Background(), b, Request{})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "D1", r.Lines[0].ProductID)
	assert.Equal(t, 2, r.Lines[0].Qty)
	assert.True(t, r.Lines[0].Subtotal.Equal(decimal.RequireFromString("7.20")))
	assert.True(t, r.Subtotal.Equal(decimal.RequireFromString("15.60")))
	assert.True(t, r.Discount.Equal(decimal.Zero))
	assert.True(t, r.Total.Equal(decimal.RequireFromString("15.60")))
	assert.Nil(t, r.Delivery)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), r.CreatedAt)

	// The basket was consumed: empty, and stock stays decremented.
	assert.Equal(t, 0, b.Len())
	p, _ := catalog.Lookup("D1")
	assert.Equal(t, 28, p.Stock)

	require.Len(t, log.All(), 1)
	assert.Equal(t, r.ID, log.All()[0].ID)
}

func TestCheckout_EmptyBasket(t *testing.T) {
	svc, _, log := newTestService(t)

	_, err := svc.Checkout(context.Background(), basket.New(), Request{})

	require.ErrorIs(t, err, ErrEmptyBasket)
	assert.Empty(t, log.All())
}

func TestCheckout_Discount(t *testing.T) {
	svc, catalog, _ := newTestService(t)
	b := basket.New()
	require.NoError(t, b.Add(catalog, "D1", 2))
	require.NoError(t, b.Add(catalog, "F1", 3))

	r, err := svc.Checkout(context.Background(), b, Request{ApplyDiscount: true, Authorized: true})
	require.NoError(t, err)

	assert.True(t, r.Subtotal.Equal(decimal.RequireFromString("15.60")))
	assert.True(t, r.Discount.Equal(decimal.RequireFromString("1.56")))
	assert.True(t, r.Total.Equal(decimal.RequireFromString("14.04")))
}

func TestCheckout_DiscountRequiresAuthorization(t *testing.T) {
	svc, catalog, log := newTestService(t)
	b := basket.New()
	require.NoError(t, b.Add(catalog, "D1", 2))

	_, err := svc.Checkout(context.Background(), b, Request{ApplyDiscount: true})

	require.ErrorIs(t, err, auth.ErrUnauthorized)
	// Failure leaves the basket intact and no receipt issued.
	assert.Equal(t, 1, b.Len())
	assert.Empty(t, log.All())
}

func TestCheckout_Delivery(t *testing.T) {
	svc, catalog, _ := newTestService(t)
	b := basket.New()
	require.NoError(t, b.Add(catalog, "B1", 1))
	require.NoError(t, b.Add(catalog, "D1", 1))

	d := &Delivery{Name: "Sam Reader", Address: "4 Elm Street"}
	r, err := svc.Checkout(context.Background(), b, Request{Delivery: d})
	require.NoError(t, err)

	require.NotNil(t, r.Delivery)
	assert.Equal(t, "Sam Reader", r.Delivery.Name)
	assert.Equal(t, "4 Elm Street", r.Delivery.Address)
}

func TestCheckout_DeliveryRequiresEligibleItem(t *testing.T) {
	svc, catalog, _ := newTestService(t)
	b := basket.New()
	require.NoError(t, b.Add(catalog, "D1", 2))
	require.NoError(t, b.Add(catalog, "F1", 1))

	_, err := svc.Checkout(context.Background(), b, Request{Delivery: &Delivery{Name: "Sam", Address: "4 Elm"}})

	require.ErrorIs(t, err, ErrDeliveryUnavailable)
	assert.Equal(t, 2, b.Len())
}

func TestCheckout_RoundsToCents(t *testing.T) {
	catalog := newTestCatalog(t)
	log := NewMemoryLog()
	// A rate that produces sub-cent amounts.
	svc := NewService(catalog, log, decimal.RequireFromString("0.15"))

	b := basket.New()
	require.NoError(t, b.Add(catalog, "B1", 1)) // 12.99; discount 1.9485

	r, err := svc.Checkout(context.Background(), b, Request{ApplyDiscount: true, Authorized: true})
	require.NoError(t, err)

	assert.Equal(t, "1.95", r.Discount.StringFixed(2))
	assert.Equal(t, "11.04", r.Total.StringFixed(2))
}

func TestCheckout_LogFailureKeepsBasket(t *testing.T) {
	catalog := newTestCatalog(t)
	svc := NewService(catalog, failingLog{}, decimal.RequireFromString("0.10"))

	b := basket.New()
	require.NoError(t, b.Add(catalog, "D1", 1))

	_, err := svc.Checkout(context.Background(), b, Request{})

	require.Error(t, err)
	assert.Equal(t, 1, b.Len())
}
