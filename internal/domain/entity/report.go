package entity

import (
	"encoding/json"

	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/pkg/money"
)

// DailyReport summarizes the paid orders of one calendar day. It is derived
// on demand from the order store and never persisted.
type DailyReport struct {
	Date              string                      `json:"date"`
	TotalOrders       int64                       `json:"total_orders"`
	TotalSales        money.Amount                `json:"-"`
	AverageOrderValue money.Amount                `json:"-"`
	PaymentMethods    map[enum.PaymentMethod]int64 `json:"payment_methods"`
}

// MarshalJSON custom marshaler to convert paise to decimal rupees for API responses
func (r DailyReport) MarshalJSON() ([]byte, error) {
	type Alias DailyReport
	return json.Marshal(&struct {
		Alias
		TotalSales        float64 `json:"total_sales"`
		AverageOrderValue float64 `json:"average_order_value"`
	}{
		Alias:             Alias(r),
		TotalSales:        r.TotalSales.Rupees(),
		AverageOrderValue: r.AverageOrderValue.Rupees(),
	})
}
