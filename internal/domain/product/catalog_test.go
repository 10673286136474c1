package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papercup/pos/internal/domain/auth"
)

func newTestProduct(id string, cat Category, name string, price string, stock int) Product {
	return Product{
		ID:       id,
		Category: cat,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
}

func newTestCatalog(t *testing.T, products ...Product) *Catalog {
	t.Helper()
	c, err := NewCatalog(products...)
	require.NoError(t, err)
	return c
}

func TestNewCatalog_RejectsInvalidSeed(t *testing.T) {
	_, err := NewCatalog(newTestProduct("X1", "toys", "Yo-yo", "1.00", 5))
	require.ErrorIs(t, err, ErrInvalidCategory)

	_, err = NewCatalog(
		newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30),
		newTestProduct("d1", CategoryDrinks, "Shadow", "1.00", 1),
	)
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestLookup_FoldsCase(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

	p, err := c.Lookup("d1")
	require.NoError(t, err)
	assert.Equal(t, "D1", p.ID)
	assert.Equal(t, "Flat White", p.Name)

	_, err = c.Lookup("D9")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	c := newTestCatalog(t,
		newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30),
		newTestProduct("B1", CategoryBooks, "Atomic Habits", "12.99", 8),
		newTestProduct("D2", CategoryDrinks, "Matcha Latte", "4.10", 20),
	)

	all := c.List()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"D1", "B1", "D2"}, []string{all[0].ID, all[1].ID, all[2].ID})

	drinks := c.ListByCategory(CategoryDrinks)
	require.Len(t, drinks, 2)
	assert.Equal(t, "D1", drinks[0].ID)
	assert.Equal(t, "D2", drinks[1].ID)
}

func TestListByCategory_EmptyIsNotAnError(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

	assert.Empty(t, c.ListByCategory(CategoryBooks))
	assert.Empty(t, c.ListByCategory("toys"))
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name       string
		authorized bool
		product    Product
		wantErr    error
	}{
		{
			name:       "unauthorized",
			authorized: false,
			product:    newTestProduct("F9", CategoryFood, "Scone", "2.50", 12),
			wantErr:    auth.ErrUnauthorized,
		},
		{
			name:       "duplicate id after case folding",
			authorized: true,
			product:    newTestProduct("d1", CategoryDrinks, "Shadow", "1.00", 1),
			wantErr:    ErrDuplicateID,
		},
		{
			name:       "invalid category",
			authorized: true,
			product:    newTestProduct("T1", "toys", "Yo-yo", "1.00", 5),
			wantErr:    ErrInvalidCategory,
		},
		{
			name:       "negative price",
			authorized: true,
			product:    newTestProduct("F9", CategoryFood, "Scone", "-1.00", 5),
			wantErr:    ErrInvalidPrice,
		},
		{
			name:       "negative stock",
			authorized: true,
			product:    newTestProduct("F9", CategoryFood, "Scone", "2.50", -1),
			wantErr:    ErrInvalidStock,
		},
		{
			name:       "success",
			authorized: true,
			product:    newTestProduct("F9", CategoryFood, "Scone", "2.50", 12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

			err := c.Add(tt.authorized, tt.product)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// Failed adds leave the catalog untouched.
				assert.Len(t, c.List(), 1)
				return
			}

			require.NoError(t, err)
			added, err := c.Lookup(tt.product.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.product.Name, added.Name)
		})
	}
}

func TestAdd_FoldsID(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.Add(true, newTestProduct("b9", CategoryBooks, "Dune", "8.99", 3)))

	p, err := c.Lookup("B9")
	require.NoError(t, err)
	assert.Equal(t, "B9", p.ID)
}

func TestAdjustStock(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

	require.NoError(t, c.AdjustStock("D1", -5))
	p, _ := c.Lookup("D1")
	assert.Equal(t, 25, p.Stock)

	require.NoError(t, c.AdjustStock("D1", +5))
	p, _ = c.Lookup("D1")
	assert.Equal(t, 30, p.Stock)

	require.ErrorIs(t, c.AdjustStock("D9", -1), ErrNotFound)
}

func TestAdjustStock_NeverGoesNegative(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 3))

	err := c.AdjustStock("D1", -4)

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "D1", ise.ProductID)
	assert.Equal(t, 4, ise.Requested)
	assert.Equal(t, 3, ise.Available)

	// The failed adjustment left the count unchanged.
	p, _ := c.Lookup("D1")
	assert.Equal(t, 3, p.Stock)
}

func TestReserve(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

	p, err := c.Reserve("d1", 5)
	require.NoError(t, err)
	assert.Equal(t, "D1", p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("3.60")))
	assert.Equal(t, 25, p.Stock)

	_, err = c.Reserve("D1", 26)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)

	_, err = c.Reserve("D9", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetStock(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

	require.ErrorIs(t, c.SetStock(false, "D1", 10), auth.ErrUnauthorized)
	require.ErrorIs(t, c.SetStock(true, "D1", -1), ErrInvalidStock)
	require.ErrorIs(t, c.SetStock(true, "D9", 10), ErrNotFound)

	require.NoError(t, c.SetStock(true, "D1", 0))
	p, _ := c.Lookup("D1")
	assert.Equal(t, 0, p.Stock)
}

func TestSetPrice(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

	require.ErrorIs(t, c.SetPrice(false, "D1", decimal.NewFromInt(4)), auth.ErrUnauthorized)
	require.ErrorIs(t, c.SetPrice(true, "D1", decimal.NewFromInt(-1)), ErrInvalidPrice)
	require.ErrorIs(t, c.SetPrice(true, "D9", decimal.NewFromInt(4)), ErrNotFound)

	require.NoError(t, c.SetPrice(true, "D1", decimal.RequireFromString("3.90")))
	p, _ := c.Lookup("D1")
	assert.True(t, p.Price.Equal(decimal.RequireFromString("3.90")))
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryDrinks.Valid())
	assert.True(t, CategoryFood.Valid())
	assert.True(t, CategoryBooks.Valid())
	assert.False(t, Category("toys").Valid())
	assert.False(t, Category("").Valid())
}

func TestLookup_ReturnsCopy(t *testing.T) {
	c := newTestCatalog(t, newTestProduct("D1", CategoryDrinks, "Flat White", "3.60", 30))

	p, err := c.Lookup("D1")
	require.NoError(t, err)
	p.Stock = 0

	fresh, err := c.Lookup("D1")
	require.NoError(t, err)
	assert.Equal(t, 30, fresh.Stock, "caller mutation must not reach the catalog")
}
