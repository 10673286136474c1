package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies well above any legitimate POS payload.
const maxBodyBytes = 1 << 20

// writeJSON encodes a response body with the given encode callback and writes
// it with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Failed to write response", zap.Error(err))
	}
}

// writeError writes the standard error envelope: {"code": ..., "message": ...}.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// readBody reads a capped request body.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}

// decodeObj decodes a JSON object body, dispatching each key to field.
// Unknown keys are skipped.
func decodeObj(data []byte, field func(d *jx.Decoder, key string) error) error {
	d := jx.DecodeBytes(data)
	return d.Obj(func(d *jx.Decoder, key string) error {
		return field(d, key)
	})
}
