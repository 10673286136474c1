package checkout

import (
	"context"
	"sync"
)

// MemoryLog is an in-memory append-only receipt log. Receipts live only for
// the lifetime of the process, like all other state in the service.
type MemoryLog struct {
	mu       sync.Mutex
	receipts []*Receipt
}

var _ Log = (*MemoryLog)(nil)

// NewMemoryLog creates an empty receipt log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append records a receipt.
func (l *MemoryLog) Append(_ context.Context, r *Receipt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receipts = append(l.receipts, r)
	return nil
}

// All returns the recorded receipts in issue order.
func (l *MemoryLog) All() []*Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Receipt, len(l.receipts))
	copy(out, l.receipts)
	return out
}
