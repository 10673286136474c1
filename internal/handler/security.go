package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/papercup/pos/internal/domain/auth"
)

// staffAuthorized reports whether the request carries a valid staff key.
// Verification is HMAC-hash lookup plus constant-time compare; the handler
// layer resolves the credential so the domain only receives the boolean.
func (h *Handler) staffAuthorized(r *http.Request) bool {
	key := r.Header.Get(HeaderStaffKey)
	if key == "" {
		return false
	}

	info, err := auth.Verify(r.Context(), h.staffKeys, key, h.pepper)
	if err != nil {
		return false
	}

	zctx.From(r.Context()).Debug("Staff key accepted", zap.String("staff", info.Name))
	return true
}
