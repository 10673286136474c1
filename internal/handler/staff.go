package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/papercup/pos/internal/domain/product"
)

// staffAddProduct registers a new catalog product. Numeric parsing failures
// are the boundary's responsibility, so a bad price or stock value is
// rejected here as a malformed body, before the domain is involved.
func (h *Handler) staffAddProduct(w http.ResponseWriter, r *http.Request) {
	authorized := h.staffAuthorized(r)

	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	var p product.Product
	var priceRaw string
	if err := decodeObj(body, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
			return err
		case "category":
			var cat string
			cat, err = d.Str()
			p.Category = product.Category(cat)
			return err
		case "name":
			p.Name, err = d.Str()
			return err
		case "price":
			priceRaw, err = d.Str()
			return err
		case "stock":
			p.Stock, err = d.Int()
			return err
		case "details":
			p.Details, err = d.Str()
			return err
		case "deliveryEligible":
			p.DeliveryEligible, err = d.Bool()
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	price, err := decimal.NewFromString(priceRaw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid price")
		return
	}
	p.Price = price

	if err := h.catalog.Add(authorized, p); err != nil {
		writeDomainError(w, r, err)
		return
	}

	added, err := h.catalog.Lookup(p.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		encodeProduct(e, added)
	})
}

// staffSetStock overwrites a product's stock count.
func (h *Handler) staffSetStock(w http.ResponseWriter, r *http.Request) {
	authorized := h.staffAuthorized(r)

	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	var stock int
	if err := decodeObj(body, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "stock":
			stock, err = d.Int()
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	id := r.PathValue("id")
	if err := h.catalog.SetStock(authorized, id, stock); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := h.catalog.Lookup(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, updated)
	})
}

// staffSetPrice overwrites a product's unit price. Open baskets keep their
// add-time snapshots.
func (h *Handler) staffSetPrice(w http.ResponseWriter, r *http.Request) {
	authorized := h.staffAuthorized(r)

	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	var priceRaw string
	if err := decodeObj(body, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "price":
			priceRaw, err = d.Str()
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	price, err := decimal.NewFromString(priceRaw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid price")
		return
	}

	id := r.PathValue("id")
	if err := h.catalog.SetPrice(authorized, id, price); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := h.catalog.Lookup(id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, updated)
	})
}
