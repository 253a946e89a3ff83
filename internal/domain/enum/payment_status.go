package enum

// PaymentStatus represents the settlement state of an order's bill. It is a
// one-way machine: pending -> paid. There is no un-pay.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// CanTransitionTo reports whether the payment machine allows moving from s to
// next in one step.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentStatusPending && next == PaymentStatusPaid
}
