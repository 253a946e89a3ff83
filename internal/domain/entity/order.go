package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/pkg/money"
)

// Order represents a table order from creation through payment and
// completion. The status and payment status fields are governed by the order
// service's state machines; nothing else writes them. Orders are never
// deleted, only completed or cancelled, which keeps them visible to daily
// reporting.
type Order struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TableNumber   int                `gorm:"not null" json:"table_number"`
	Status        enum.OrderStatus   `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus enum.PaymentStatus `gorm:"size:20;not null;index" json:"payment_status"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20" json:"payment_method,omitempty"`
	SubTotal      money.Amount       `gorm:"default:0" json:"-"` // Stored in paise, excluded from JSON
	Tax           money.Amount       `gorm:"default:0" json:"-"` // Stored in paise, excluded from JSON
	Total         money.Amount       `gorm:"default:0" json:"-"` // Stored in paise, excluded from JSON
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	Version       int64              `gorm:"default:1" json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	// Relationships
	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

// MarshalJSON custom marshaler to convert paise to decimal rupees for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		SubTotal float64 `json:"subtotal"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
	}{
		Alias:    Alias(o),
		SubTotal: o.SubTotal.Rupees(),
		Tax:      o.Tax.Rupees(),
		Total:    o.Total.Rupees(),
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BillNumber derives the short bill number printed on documents: the
// upper-cased last 8 characters of the order id.
func (o *Order) BillNumber() string {
	s := o.ID.String()
	return "BILL-" + strings.ToUpper(s[len(s)-8:])
}

// OrderLine is a single line item on an order. UnitPrice is a snapshot of the
// menu price at the moment the line was added; later menu price changes never
// reach it.
type OrderLine struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	OrderID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"order_id"`
	MenuItemID uuid.UUID    `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	Quantity   int          `gorm:"not null" json:"quantity"`
	UnitPrice  money.Amount `gorm:"not null" json:"-"` // Stored in paise, excluded from JSON
	Notes      string       `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	// Relationships
	Order    Order    `gorm:"foreignKey:OrderID" json:"-"`
	MenuItem MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}

// Amount returns the line total: unit price times quantity.
func (l *OrderLine) Amount() money.Amount {
	return l.UnitPrice * money.Amount(l.Quantity)
}

// MarshalJSON custom marshaler to convert paise to decimal rupees for API responses
func (l OrderLine) MarshalJSON() ([]byte, error) {
	type Alias OrderLine
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Amount    float64 `json:"amount"`
	}{
		Alias:     Alias(l),
		UnitPrice: l.UnitPrice.Rupees(),
		Amount:    l.Amount().Rupees(),
	})
}

// BeforeCreate generates a UUID before creating a new order line
func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}
