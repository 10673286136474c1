package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/papercup/pos/internal/domain/basket"
	"github.com/papercup/pos/internal/session"
)

// createSession opens a new customer session and returns its token.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()

	writeJSON(w, r, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("token")
		e.Str(s.Token)
		e.ObjEnd()
	})
}

// viewBasket returns the session's basket lines and total.
func (h *Handler) viewBasket(w http.ResponseWriter, r *http.Request) {
	s, err := h.currentSession(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	snap := s.View()
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

// addItem adds a product to the basket, reserving stock.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	s, err := h.currentSession(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	var (
		productID string
		quantity  int
	)
	if err := decodeObj(body, func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			productID, err = d.Str()
			return err
		case "quantity":
			quantity, err = d.Int()
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	if err := s.Add(h.catalog, productID, quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}

	snap := s.View()
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

// adjustItem sets a basket line's quantity, reconciling catalog stock.
func (h *Handler) adjustItem(w http.ResponseWriter, r *http.Request) {
	s, err := h.currentSession(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	index, ok := lineIndex(r)
	if !ok {
		writeDomainError(w, r, basket.ErrLineOutOfRange)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	var quantity int
	if err := decodeObj(body, func(d *jx.Decoder, key string) error {
		switch key {
		case "quantity":
			quantity, err = d.Int()
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed body")
		return
	}

	if err := s.AdjustQuantity(h.catalog, index, quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}

	snap := s.View()
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

// removeItem removes a basket line, returning its stock to the catalog.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	s, err := h.currentSession(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	index, ok := lineIndex(r)
	if !ok {
		writeDomainError(w, r, basket.ErrLineOutOfRange)
		return
	}

	if err := s.RemoveLine(h.catalog, index); err != nil {
		writeDomainError(w, r, err)
		return
	}

	snap := s.View()
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeBasket(e, snap)
	})
}

// lineIndex parses the {index} path segment.
func lineIndex(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, false
	}
	return index, true
}

// encodeBasket writes the basket view: lines plus total.
func encodeBasket(e *jx.Encoder, snap session.Snapshot) {
	e.ObjStart()
	e.FieldStart("lines")
	e.ArrStart()
	for i, line := range snap.Lines {
		e.ObjStart()
		e.FieldStart("index")
		e.Int(i)
		e.FieldStart("productId")
		e.Str(line.ProductID)
		e.FieldStart("name")
		e.Str(line.Name)
		e.FieldStart("unitPrice")
		e.Str(line.UnitPrice.StringFixed(2))
		e.FieldStart("quantity")
		e.Int(line.Qty)
		e.FieldStart("subtotal")
		e.Str(line.Subtotal().StringFixed(2))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total")
	e.Str(snap.Total.StringFixed(2))
	e.ObjEnd()
}
