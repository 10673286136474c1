// Package basket implements the session-scoped shopping basket and its stock
// reservation bookkeeping against the catalog.
//
// The contract: at every point in time, a product's catalog stock plus the
// quantities reserved for it across all live baskets equals the stock level
// that existed before any basket activity touched it. Adding reserves,
// removing releases, adjusting applies the signed difference, and checkout
// consumes the reservation without releasing it.
package basket

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/papercup/pos/internal/domain/product"
)

// Sentinel errors for basket operations.
var (
	// ErrInvalidQuantity is returned for a zero or negative quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrLineOutOfRange is returned for a line index outside the basket.
	ErrLineOutOfRange = errors.New("basket line index out of range")
)

// Line is one distinct product held in the basket.
type Line struct {
	ProductID string
	Name      string
	// UnitPrice is snapshotted when the line is created. Later catalog price
	// edits do not retroactively change an open basket.
	UnitPrice decimal.Decimal
	Qty       int
}

// Subtotal returns UnitPrice multiplied by Qty.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Basket is an ordered collection of lines, at most one per product.
// A Basket belongs to a single session and is not safe for concurrent use;
// the session layer serializes access. Stock movements go through the
// catalog, which has its own lock.
type Basket struct {
	lines []Line
}

// New returns an empty basket.
func New() *Basket {
	return &Basket{}
}

// Add reserves qty units of the product and inserts or merges a basket line.
// Stock is reserved first; only after the reservation succeeds is the basket
// mutated, so a failed add leaves both catalog and basket untouched.
//
// A repeated add of the same product increments the existing line and keeps
// its original price snapshot.
func (b *Basket) Add(catalog *product.Catalog, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	p, err := catalog.Reserve(productID, qty)
	if err != nil {
		return err
	}

	for i := range b.lines {
		if b.lines[i].ProductID == p.ID {
			b.lines[i].Qty += qty
			return nil
		}
	}

	b.lines = append(b.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Qty:       qty,
	})
	return nil
}

// RemoveLine drops the line at index and returns its full reserved quantity
// to the catalog. Removal always gives stock back; it is never a silent no-op.
func (b *Basket) RemoveLine(catalog *product.Catalog, index int) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}

	line := b.lines[index]
	if err := catalog.AdjustStock(line.ProductID, line.Qty); err != nil {
		return errors.Wrapf(err, "return stock for %s", line.ProductID)
	}

	b.lines = append(b.lines[:index], b.lines[index+1:]...)
	return nil
}

// AdjustQuantity sets the line at index to newQty. The ceiling is the line's
// current reservation plus whatever is still free in the catalog; the catalog
// enforces it when the signed delta is applied. One formula covers both
// directions: delta > 0 takes more stock, delta < 0 gives stock back.
func (b *Basket) AdjustQuantity(catalog *product.Catalog, index, newQty int) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}
	if newQty <= 0 {
		return ErrInvalidQuantity
	}

	line := &b.lines[index]
	delta := newQty - line.Qty
	if delta == 0 {
		return nil
	}

	if err := catalog.AdjustStock(line.ProductID, -delta); err != nil {
		return err
	}

	line.Qty = newQty
	return nil
}

// Total returns the sum of price snapshot times quantity over all lines.
// An empty basket totals to exactly zero.
func (b *Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the basket lines in insertion order.
func (b *Basket) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of lines.
func (b *Basket) Len() int {
	return len(b.lines)
}

// Clear discards all lines without returning stock. Used after a completed
// checkout, where the reservation is consumed, not released.
func (b *Basket) Clear() {
	b.lines = nil
}

// Release returns every line's reserved stock to the catalog and empties the
// basket. Used when a session ends without checking out, so abandoned
// reservations do not leak.
func (b *Basket) Release(catalog *product.Catalog) error {
	for _, line := range b.lines {
		if err := catalog.AdjustStock(line.ProductID, line.Qty); err != nil {
			return errors.Wrapf(err, "release stock for %s", line.ProductID)
		}
	}
	b.lines = nil
	return nil
}
