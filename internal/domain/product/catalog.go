package product

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/papercup/pos/internal/domain/auth"
)

// Catalog is the authoritative set of products and the sole owner of their
// stock counts. All mutation goes through the catalog under one mutex, so two
// sessions can never both observe sufficient stock and both succeed in
// over-reserving it.
//
// Listing preserves insertion order. Products are never deleted.
type Catalog struct {
	mu    sync.Mutex
	byID  map[string]*Product
	order []string
}

// NewCatalog creates a catalog seeded with the given products. Seed entries
// pass the same validation gates as staff additions, minus the authorization
// check: the seed loader is trusted initial state.
func NewCatalog(seed ...Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Product, len(seed))}
	for _, p := range seed {
		if err := c.insert(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Lookup returns the product with the given ID. The ID is matched after
// upper-case folding; no other normalization is applied.
func (c *Catalog) Lookup(id string) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[foldID(id)]
	if !ok {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

// List returns every product in catalog insertion order.
func (c *Catalog) List() []Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.byID[id])
	}
	return out
}

// ListByCategory returns the products in the given category, preserving
// catalog insertion order. An unknown or empty category yields an empty
// slice, not an error.
func (c *Catalog) ListByCategory(cat Category) []Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Product
	for _, id := range c.order {
		if p := c.byID[id]; p.Category == cat {
			out = append(out, *p)
		}
	}
	return out
}

// Add registers a new product. It is a staff operation: authorized must be
// true or the catalog is left untouched and auth.ErrUnauthorized is returned.
// The ID collides after upper-case folding.
func (c *Catalog) Add(authorized bool, p Product) error {
	if !authorized {
		return auth.ErrUnauthorized
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insert(p)
}

// insert validates and stores p. Caller must hold c.mu (or own c exclusively,
// as NewCatalog does).
func (c *Catalog) insert(p Product) error {
	if !p.Category.Valid() {
		return ErrInvalidCategory
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}

	id := foldID(p.ID)
	if _, exists := c.byID[id]; exists {
		return ErrDuplicateID
	}

	p.ID = id
	c.byID[id] = &p
	c.order = append(c.order, id)
	return nil
}

// AdjustStock applies a signed delta to a product's stock count. A delta that
// would drive stock below zero fails with InsufficientStockError and leaves
// the count unchanged. Basket callers pre-compute safe bounds, but the gate
// holds regardless.
func (c *Catalog) AdjustStock(id string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[foldID(id)]
	if !ok {
		return ErrNotFound
	}
	if p.Stock+delta < 0 {
		return &InsufficientStockError{ProductID: p.ID, Requested: -delta, Available: p.Stock}
	}
	p.Stock += delta
	return nil
}

// Reserve atomically checks that qty units are free and decrements stock,
// returning a snapshot of the product as it was at reservation time. This is
// the single entry point baskets use to take stock, so the availability check
// and the decrement cannot be interleaved with another session's.
func (c *Catalog) Reserve(id string, qty int) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[foldID(id)]
	if !ok {
		return Product{}, ErrNotFound
	}
	if qty > p.Stock {
		return Product{}, &InsufficientStockError{ProductID: p.ID, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	return *p, nil
}

// SetStock overwrites a product's stock count with an absolute value, used by
// staff stock correction. Requires authorization; the new value must not be
// negative.
func (c *Catalog) SetStock(authorized bool, id string, stock int) error {
	if !authorized {
		return auth.ErrUnauthorized
	}
	if stock < 0 {
		return ErrInvalidStock
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[foldID(id)]
	if !ok {
		return ErrNotFound
	}
	p.Stock = stock
	return nil
}

// SetPrice overwrites a product's unit price. Open baskets are unaffected:
// basket lines price from their add-time snapshot.
func (c *Catalog) SetPrice(authorized bool, id string, price decimal.Decimal) error {
	if !authorized {
		return auth.ErrUnauthorized
	}
	if price.IsNegative() {
		return ErrInvalidPrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[foldID(id)]
	if !ok {
		return ErrNotFound
	}
	p.Price = price
	return nil
}

func foldID(id string) string {
	return strings.ToUpper(id)
}
