package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Category tags a product with its section of the PaperCup menu.
type Category string

const (
	CategoryDrinks Category = "drinks"
	CategoryFood   Category = "food"
	CategoryBooks  Category = "books"
)

// Valid reports whether c is one of the fixed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryDrinks, CategoryFood, CategoryBooks:
		return true
	default:
		return false
	}
}

// Sentinel errors for catalog operations.
var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateID is returned when adding a product whose ID is already taken.
	ErrDuplicateID = errors.New("product id already exists")
	// ErrInvalidCategory is returned when a category is outside the fixed set.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidPrice is returned when a product price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidStock is returned when an absolute stock value is negative.
	ErrInvalidStock = errors.New("stock must not be negative")
)

// InsufficientStockError indicates a stock mutation would drive a product's
// stock below zero.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for product " + e.ProductID
}

// Product represents one purchasable item: a drink, a food item, or a book.
type Product struct {
	ID       string
	Category Category
	Name     string
	Price    decimal.Decimal
	Stock    int
	Details  string
	// DeliveryEligible is meaningful only for books.
	DeliveryEligible bool
}
