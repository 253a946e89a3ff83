package enum

import "strings"

// PaymentMethod is how a bill was settled. It is only meaningful once the
// payment status is paid; an unpaid order carries an empty method.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
)

// AllPaymentMethods lists every accepted method, in report display order.
var AllPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodUPI,
}

func (m PaymentMethod) String() string {
	return string(m)
}

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI:
		return true
	}
	return false
}

// Display returns the method in the form printed on bills, e.g. "UPI".
func (m PaymentMethod) Display() string {
	return strings.ToUpper(string(m))
}
