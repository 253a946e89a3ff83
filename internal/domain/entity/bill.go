package entity

import (
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/pkg/money"
)

// BillHeader holds the restaurant header printed at the top of a bill.
type BillHeader struct {
	RestaurantName string `json:"restaurant_name"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	GSTIN          string `json:"gstin,omitempty"`
}

// BillLine represents a single line item on a bill.
type BillLine struct {
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unit_price"`
	Amount    money.Amount `json:"amount"`
}

// BillPayment is the payment-info block, present only on settled bills.
type BillPayment struct {
	Method enum.PaymentMethod `json:"method"`
	Amount money.Amount       `json:"amount"`
	PaidAt string             `json:"paid_at"`
}

// Bill is a value object representing a printable bill. It is NOT a database
// entity: it is composed from order data at render time, with totals
// recomputed from the lines so the printed document always matches the
// line-item detail.
type Bill struct {
	Header      BillHeader   `json:"header"`
	BillNo      string       `json:"bill_no"`
	Date        string       `json:"date"`
	TableNumber int          `json:"table_number"`
	Lines       []BillLine   `json:"lines"`
	SubTotal    money.Amount `json:"subtotal"`
	Tax         money.Amount `json:"tax"`
	Total       money.Amount `json:"total"`
	Payment     *BillPayment `json:"payment,omitempty"`
}
