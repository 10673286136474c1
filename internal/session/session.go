// Package session ties customer sessions to baskets. Each session owns one
// basket over the shared catalog; sessions expire after a period of
// inactivity, at which point their un-checked-out reservations are released
// back to the catalog.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/papercup/pos/internal/domain/basket"
	"github.com/papercup/pos/internal/domain/checkout"
	"github.com/papercup/pos/internal/domain/product"
)

// Sentinel errors for session handling.
var (
	// ErrNotFound is returned for an unknown or expired session token.
	ErrNotFound = errors.New("session not found")
	// ErrClosed is returned when operating on a checked-out session.
	ErrClosed = errors.New("session already checked out")
	// ErrDiscountAlreadyUsed is returned on a second discount attempt within
	// one session.
	ErrDiscountAlreadyUsed = errors.New("discount already applied this session")
)

// Session is one customer's ordering journey: a basket plus the per-session
// policy flags. Methods serialize access with the session mutex; the basket
// itself is not safe for concurrent use.
type Session struct {
	Token string

	mu           sync.Mutex
	basket       *basket.Basket
	discountUsed bool
	closed       bool
	lastSeen     time.Time
}

// Snapshot is a point-in-time view of a session's basket.
type Snapshot struct {
	Lines []basket.Line
	Total decimal.Decimal
}

// Add reserves stock and adds a line to the session basket.
func (s *Session) Add(catalog *product.Catalog, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.basket.Add(catalog, productID, qty)
}

// RemoveLine removes a basket line, returning its stock.
func (s *Session) RemoveLine(catalog *product.Catalog, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.basket.RemoveLine(catalog, index)
}

// AdjustQuantity changes a basket line's quantity, reconciling stock.
func (s *Session) AdjustQuantity(catalog *product.Catalog, index, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.basket.AdjustQuantity(catalog, index, qty)
}

// View returns the current basket lines and total.
func (s *Session) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{Lines: s.basket.Lines(), Total: s.basket.Total()}
}

// Checkout finalizes the session's basket through the checkout service. The
// once-per-session discount policy is enforced here: a session that has spent
// its discount cannot apply another, even across retried checkouts. A
// successful checkout closes the session; checkout is terminal.
func (s *Session) Checkout(ctx context.Context, svc *checkout.Service, req checkout.Request) (*checkout.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if req.ApplyDiscount && s.discountUsed {
		return nil, ErrDiscountAlreadyUsed
	}

	r, err := svc.Checkout(ctx, s.basket, req)
	if err != nil {
		return nil, err
	}

	if req.ApplyDiscount {
		s.discountUsed = true
	}
	s.closed = true
	return r, nil
}

// expire releases the basket's reservations unless the session checked out.
// Caller must hold s.mu.
func (s *Session) expire(catalog *product.Catalog) error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.basket.Release(catalog)
}

// Manager is the in-memory session registry.
type Manager struct {
	catalog *product.Catalog
	ttl     time.Duration
	lg      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session registry over the given catalog. Sessions idle
// longer than ttl are swept and their reservations released.
func NewManager(catalog *product.Catalog, ttl time.Duration, lg *zap.Logger) *Manager {
	return &Manager{
		catalog:  catalog,
		ttl:      ttl,
		lg:       lg,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session with an empty basket and returns it.
func (m *Manager) Create() *Session {
	s := &Session{
		Token:    uuid.New().String(),
		basket:   basket.New(),
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()

	return s
}

// Get returns the session for the given token and refreshes its idle timer.
func (m *Manager) Get(token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()

	return s, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// sweep removes sessions idle past the TTL, releasing any reservations they
// still hold. Returns the number of sessions removed.
func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int
	for token, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen)
		if idle >= m.ttl {
			if err := s.expire(m.catalog); err != nil {
				m.lg.Error("Failed to release expired session",
					zap.String("token", token),
					zap.Error(err),
				)
			}
			delete(m.sessions, token)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// RunSweeper periodically sweeps expired sessions until ctx is cancelled.
// It always returns nil, so it can run under an errgroup without tearing the
// group down on shutdown.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := m.sweep(now); n > 0 {
				m.lg.Info("Swept expired sessions", zap.Int("count", n))
			}
		}
	}
}
