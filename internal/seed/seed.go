// Package seed supplies the initial catalog content: the embedded PaperCup
// menu of drinks, food, and books. The catalog treats this as opaque initial
// state.
package seed

import (
	_ "embed"
	"encoding/json"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/papercup/pos/internal/domain/product"
)

//go:embed products.json
var productsJSON []byte

// productJSON mirrors the seed file schema. Prices are decimal strings so
// they survive the round trip without float rounding.
type productJSON struct {
	ID               string          `json:"id"`
	Category         string          `json:"category"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	Details          string          `json:"details"`
	DeliveryEligible bool            `json:"deliveryEligible"`
}

// Products returns the embedded default catalog seed.
func Products() ([]product.Product, error) {
	return decode(productsJSON)
}

// ProductsFromFile loads a catalog seed from an external JSON file, for
// running against a custom menu.
func ProductsFromFile(path string) ([]product.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read seed file")
	}
	return decode(data)
}

func decode(data []byte) ([]product.Product, error) {
	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}

	out := make([]product.Product, len(raw))
	for i, p := range raw {
		out[i] = product.Product{
			ID:               p.ID,
			Category:         product.Category(p.Category),
			Name:             p.Name,
			Price:            p.Price,
			Stock:            p.Stock,
			Details:          p.Details,
			DeliveryEligible: p.DeliveryEligible,
		}
	}
	return out, nil
}
