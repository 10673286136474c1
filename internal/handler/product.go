package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/papercup/pos/internal/domain/product"
)

// listProducts returns the catalog, optionally filtered by ?category=.
// An unknown category yields an empty list, mirroring the domain contract.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var products []product.Product
	if cat := r.URL.Query().Get("category"); cat != "" {
		products = h.catalog.ListByCategory(product.Category(cat))
	} else {
		products = h.catalog.List()
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}

// getProduct returns a single product by ID.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Lookup(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

// encodeProduct writes one product object. Prices are decimal strings so
// clients see "3.60", not a float approximation.
func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("category")
	e.Str(string(p.Category))
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Str(p.Price.StringFixed(2))
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("details")
	e.Str(p.Details)
	if p.Category == product.CategoryBooks {
		e.FieldStart("deliveryEligible")
		e.Bool(p.DeliveryEligible)
	}
	e.ObjEnd()
}
