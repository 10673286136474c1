// Package handler exposes the POS domain over HTTP. It is a thin mapping
// layer: request bodies are decoded into typed values, domain calls do the
// bookkeeping, and domain errors are mapped to status codes. No raw user
// input reaches the domain packages.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/papercup/pos/internal/domain/auth"
	"github.com/papercup/pos/internal/domain/basket"
	"github.com/papercup/pos/internal/domain/checkout"
	"github.com/papercup/pos/internal/domain/product"
	"github.com/papercup/pos/internal/session"
)

// Header names for session and staff credentials.
const (
	HeaderSessionToken = "X-Session-Token"
	HeaderStaffKey     = "X-Staff-Key"
)

// Handler serves the POS API.
type Handler struct {
	catalog   *product.Catalog
	sessions  *session.Manager
	checkouts *checkout.Service
	staffKeys auth.Registry
	pepper    []byte
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	catalog *product.Catalog,
	sessions *session.Manager,
	checkouts *checkout.Service,
	staffKeys auth.Registry,
	pepper []byte,
) *Handler {
	return &Handler{
		catalog:   catalog,
		sessions:  sessions,
		checkouts: checkouts,
		staffKeys: staffKeys,
		pepper:    pepper,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/basket", h.viewBasket)
	mux.HandleFunc("POST /api/basket/items", h.addItem)
	mux.HandleFunc("PUT /api/basket/items/{index}", h.adjustItem)
	mux.HandleFunc("DELETE /api/basket/items/{index}", h.removeItem)
	mux.HandleFunc("POST /api/checkout", h.doCheckout)
	mux.HandleFunc("POST /api/staff/products", h.staffAddProduct)
	mux.HandleFunc("PUT /api/staff/products/{id}/stock", h.staffSetStock)
	mux.HandleFunc("PUT /api/staff/products/{id}/price", h.staffSetPrice)
}

// domainError maps a domain error to an HTTP response.
func domainError(err error) (status int, message string) {
	var ise *product.InsufficientStockError

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, product.ErrDuplicateID),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, session.ErrDiscountAlreadyUsed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, product.ErrInvalidCategory),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, basket.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &ise),
		errors.Is(err, basket.ErrLineOutOfRange),
		errors.Is(err, checkout.ErrEmptyBasket),
		errors.Is(err, checkout.ErrDeliveryUnavailable):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeDomainError maps err and writes the error envelope.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := domainError(err)
	writeError(w, r, status, message)
}

// currentSession resolves the session from the request's token header.
func (h *Handler) currentSession(r *http.Request) (*session.Session, error) {
	token := r.Header.Get(HeaderSessionToken)
	if token == "" {
		return nil, session.ErrNotFound
	}
	return h.sessions.Get(token)
}
