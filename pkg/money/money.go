package money

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"restaurant-billing/pkg/apperror"
)

// Amount is a monetary value in minor units (paise). All arithmetic in the
// engine happens on Amount values; conversion to rupees is display-only.
type Amount int64

// TaxRateBasisPoints is the GST rate applied to every order: 10%.
const TaxRateBasisPoints int64 = 1000

const basisPointDenom int64 = 10000

// inr renders numbers with Indian digit grouping (1,23,456).
var inr = message.NewPrinter(language.MustParse("en-IN"))

// FromRupees converts a decimal rupee value into paise, rounding half away
// from zero.
func FromRupees(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// Rupees returns the decimal rupee value of the amount.
func (a Amount) Rupees() float64 {
	return float64(a) / 100
}

// WholeRupees rounds the amount to the nearest rupee, half up.
func (a Amount) WholeRupees() int64 {
	if a < 0 {
		return -((int64(-a) + 50) / 100)
	}
	return (int64(a) + 50) / 100
}

// Format renders the amount as Indian rupees with zero fraction digits,
// e.g. "₹1,23,456".
func (a Amount) Format() string {
	return inr.Sprintf("₹%v", number.Decimal(a.WholeRupees()))
}

// Line is one order line as seen by the calculator: a unit price snapshot and
// a quantity.
type Line struct {
	UnitPrice Amount
	Quantity  int
}

// Totals holds the derived monetary fields of an order.
type Totals struct {
	SubTotal Amount `json:"subtotal"`
	Tax      Amount `json:"tax"`
	Total    Amount `json:"total"`
}

// ComputeTotals derives subtotal, tax and total from the given lines.
//
// subtotal is the exact integer sum of unitPrice*quantity, tax is 10% of the
// subtotal rounded half up to the nearest paisa, and total = subtotal + tax.
// The function is pure: same lines in, same totals out. A negative unit price
// or a non-positive quantity is rejected before anything is summed.
func ComputeTotals(lines []Line) (Totals, error) {
	var fieldErrs []apperror.FieldError
	for i, line := range lines {
		if line.UnitPrice < 0 {
			fieldErrs = append(fieldErrs, apperror.FieldError{
				Field:   fmt.Sprintf("lines[%d].unit_price", i),
				Message: "unit price must not be negative",
			})
		}
		if line.Quantity < 1 {
			fieldErrs = append(fieldErrs, apperror.FieldError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: "quantity must be at least 1",
			})
		}
	}
	if len(fieldErrs) > 0 {
		return Totals{}, apperror.NewValidationError(fieldErrs)
	}

	var subTotal Amount
	for _, line := range lines {
		subTotal += line.UnitPrice * Amount(line.Quantity)
	}

	tax := TaxHalfUp(subTotal, TaxRateBasisPoints)
	return Totals{
		SubTotal: subTotal,
		Tax:      tax,
		Total:    subTotal + tax,
	}, nil
}

// TaxHalfUp computes rate*amount in basis points, rounding half up. Integer
// arithmetic only, so repeated computation never drifts.
func TaxHalfUp(amount Amount, basisPoints int64) Amount {
	return Amount((int64(amount)*basisPoints + basisPointDenom/2) / basisPointDenom)
}
