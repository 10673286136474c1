// Package auth provides the staff authorization capability consumed by
// privileged catalog and checkout operations. The domain core only ever sees
// the boolean outcome; credential handling lives at the HTTP boundary.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned when a privileged operation is attempted
// without staff authorization.
var ErrUnauthorized = errors.New("unauthorized")

// KeyInfo holds the identity data for a registered staff key.
type KeyInfo struct {
	ID      string
	KeyHash string
	Name    string
}

// Registry provides lookup of staff keys by their HMAC-SHA256 hash.
type Registry interface {
	FindByHash(ctx context.Context, hash string) (*KeyInfo, error)
}

// MemoryRegistry is an in-memory Registry populated at startup from
// configuration.
type MemoryRegistry struct {
	mu     sync.RWMutex
	byHash map[string]*KeyInfo
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty staff key registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{byHash: make(map[string]*KeyInfo)}
}

// Register hashes the raw key with the pepper and stores it under the given
// identity.
func (r *MemoryRegistry) Register(id, name, rawKey string, pepper []byte) {
	hash := HashKey(rawKey, pepper)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHash[hash] = &KeyInfo{ID: id, KeyHash: hash, Name: name}
}

// FindByHash returns the key info for the given hash, or ErrUnauthorized.
func (r *MemoryRegistry) FindByHash(_ context.Context, hash string) (*KeyInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.byHash[hash]
	if !ok {
		return nil, ErrUnauthorized
	}
	return info, nil
}

// HashKey computes the hex-encoded HMAC-SHA256 of rawKey under pepper.
func HashKey(rawKey string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(rawKey))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify authenticates a raw staff key against the registry: it hashes the
// key, looks it up, and performs a constant-time comparison to prevent
// timing attacks.
func Verify(ctx context.Context, reg Registry, rawKey string, pepper []byte) (*KeyInfo, error) {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(rawKey))
	hash := mac.Sum(nil)
	hexHash := hex.EncodeToString(hash)

	info, err := reg.FindByHash(ctx, hexHash)
	if err != nil {
		return nil, ErrUnauthorized
	}

	storedBytes, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if subtle.ConstantTimeCompare(hash, storedBytes) != 1 {
		return nil, ErrUnauthorized
	}

	return info, nil
}
