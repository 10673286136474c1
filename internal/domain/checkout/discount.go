package checkout

import (
	"github.com/shopspring/decimal"
)

// FlatDiscount applies a flat rate to a total and returns the discounted
// total along with the discount amount. It is a pure function: eligibility
// (one per session, staff-authorized) is policy decided by the caller.
//
// FlatDiscount(100.00, 0.10) = (90.00, 10.00).
func FlatDiscount(total, rate decimal.Decimal) (newTotal, amount decimal.Decimal) {
	amount = total.Mul(rate)
	return total.Sub(amount), amount
}
