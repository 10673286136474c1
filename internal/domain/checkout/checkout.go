// Package checkout turns a populated basket into a receipt: it totals the
// price snapshots, optionally applies the staff-authorized flat discount,
// collects delivery details for eligible baskets, and consumes the basket's
// stock reservation.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papercup/pos/internal/domain/auth"
	"github.com/papercup/pos/internal/domain/basket"
	"github.com/papercup/pos/internal/domain/product"
)

// Sentinel errors for checkout.
var (
	// ErrEmptyBasket is returned when checking out a basket with no lines.
	ErrEmptyBasket = errors.New("basket is empty")
	// ErrDeliveryUnavailable is returned when delivery details are supplied
	// but no basket line's product is delivery-eligible.
	ErrDeliveryUnavailable = errors.New("no delivery-eligible items in basket")
)

// Delivery holds the free-text delivery details collected at checkout.
type Delivery struct {
	Name    string
	Address string
}

// ReceiptLine is a finalized basket line on a receipt.
type ReceiptLine struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Qty       int
	Subtotal  decimal.Decimal
}

// Receipt records a completed checkout.
type Receipt struct {
	ID        string
	Lines     []ReceiptLine
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Delivery  *Delivery
	CreatedAt time.Time
}

// Log records issued receipts.
type Log interface {
	Append(ctx context.Context, r *Receipt) error
}

// Request holds the checkout options for one basket.
type Request struct {
	// ApplyDiscount requests the flat promotional discount. It requires
	// Authorized; the once-per-session policy is enforced by the session
	// layer, not here.
	ApplyDiscount bool
	// Authorized reports whether a staff capability backs the request.
	Authorized bool
	// Delivery, when non-nil, requests delivery of the eligible items.
	Delivery *Delivery
}

// Service computes totals and issues receipts.
type Service struct {
	catalog  *product.Catalog
	receipts Log
	rate     decimal.Decimal
	now      func() time.Time
}

// NewService creates a checkout Service with the given catalog, receipt log,
// and flat discount rate.
func NewService(catalog *product.Catalog, receipts Log, rate decimal.Decimal) *Service {
	return &Service{
		catalog:  catalog,
		receipts: receipts,
		rate:     rate,
		now:      time.Now,
	}
}

// Checkout finalizes the basket. On success the basket is cleared without
// returning stock (the reservation is consumed permanently) and the receipt
// is appended to the log. On failure the basket and catalog are untouched.
func (s *Service) Checkout(ctx context.Context, b *basket.Basket, req Request) (*Receipt, error) {
	lines := b.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyBasket
	}

	if req.ApplyDiscount && !req.Authorized {
		return nil, auth.ErrUnauthorized
	}

	if req.Delivery != nil && !s.deliveryEligible(lines) {
		return nil, ErrDeliveryUnavailable
	}

	subtotal := b.Total()
	total := subtotal
	discount := decimal.Zero
	if req.ApplyDiscount {
		total, discount = FlatDiscount(subtotal, s.rate)
	}

	receiptLines := make([]ReceiptLine, len(lines))
	for i, line := range lines {
		receiptLines[i] = ReceiptLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Qty:       line.Qty,
			Subtotal:  line.Subtotal(),
		}
	}

	r := &Receipt{
		ID:        uuid.New().String(),
		Lines:     receiptLines,
		Subtotal:  subtotal.Round(2),
		Discount:  discount.Round(2),
		Total:     total.Round(2),
		Delivery:  req.Delivery,
		CreatedAt: s.now(),
	}

	if err := s.receipts.Append(ctx, r); err != nil {
		return nil, errors.Wrap(err, "append receipt")
	}

	b.Clear()
	return r, nil
}

// deliveryEligible reports whether at least one line's underlying product is
// delivery-eligible. Eligibility follows the live catalog record, not the
// basket snapshot: only prices are snapshotted.
func (s *Service) deliveryEligible(lines []basket.Line) bool {
	for _, line := range lines {
		p, err := s.catalog.Lookup(line.ProductID)
		if err != nil {
			continue
		}
		if p.DeliveryEligible {
			return true
		}
	}
	return false
}
