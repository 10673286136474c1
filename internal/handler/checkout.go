package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/papercup/pos/internal/domain/checkout"
)

// doCheckout finalizes the session's basket. A discount request must carry a
// valid staff key; delivery details are accepted only for baskets holding
// delivery-eligible items.
func (h *Handler) doCheckout(w http.ResponseWriter, r *http.Request) {
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

	req := checkout.Request{}
	if len(body) > 0 {
		var delivery checkout.Delivery
		var withDelivery bool

		if err := decodeObj(body, func(d *jx.Decoder, key string) error {
			switch key {
			case "discount":
				req.ApplyDiscount, err = d.Bool()
				return err
			case "delivery":
				withDelivery = true
				return d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "name":
						delivery.Name, err = d.Str()
						return err
					case "address":
						delivery.Address, err = d.Str()
						return err
					default:
						return d.Skip()
					}
				})
			default:
				return d.Skip()
			}
		}); err != nil {
			writeError(w, r, http.StatusBadRequest, "malformed body")
			return
		}

		if withDelivery {
			req.Delivery = &delivery
		}
	}

	// The discount is staff-authorized; the domain sees only the boolean.
	if req.ApplyDiscount {
		req.Authorized = h.staffAuthorized(r)
	}

	receipt, err := s.Checkout(r.Context(), h.checkouts, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		encodeReceipt(e, receipt)
	})
}

// encodeReceipt writes the receipt issued by a completed checkout.
func encodeReceipt(e *jx.Encoder, rcpt *checkout.Receipt) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(rcpt.ID)
	e.FieldStart("lines")
	e.ArrStart()
	for _, line := range rcpt.Lines {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(line.ProductID)
		e.FieldStart("name")
		e.Str(line.Name)
		e.FieldStart("unitPrice")
		e.Str(line.UnitPrice.StringFixed(2))
		e.FieldStart("quantity")
		e.Int(line.Qty)
		e.FieldStart("subtotal")
		e.Str(line.Subtotal.StringFixed(2))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Str(rcpt.Subtotal.StringFixed(2))
	e.FieldStart("discount")
	e.Str(rcpt.Discount.StringFixed(2))
	e.FieldStart("total")
	e.Str(rcpt.Total.StringFixed(2))
	if rcpt.Delivery != nil {
		e.FieldStart("delivery")
		e.ObjStart()
		e.FieldStart("name")
		e.Str(rcpt.Delivery.Name)
		e.FieldStart("address")
		e.Str(rcpt.Delivery.Address)
		e.ObjEnd()
	}
	e.FieldStart("createdAt")
	e.Str(rcpt.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	e.ObjEnd()
}
