package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/pkg/money"
)

// MenuItem represents a dish or beverage on the menu. Its price is live menu
// data: order lines copy the price at add time and are never touched by later
// menu edits.
type MenuItem struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	Price       money.Amount      `gorm:"not null" json:"-"` // Stored in paise, excluded from JSON
	Category    enum.MenuCategory `gorm:"size:50;not null;index" json:"category"`
	Description string            `gorm:"size:1000" json:"description,omitempty"`
	Image       string            `gorm:"size:500" json:"image,omitempty"`
	IsAvailable bool              `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
}

// MarshalJSON custom marshaler to convert paise to decimal rupees for API responses
func (m MenuItem) MarshalJSON() ([]byte, error) {
	type Alias MenuItem
	return json.Marshal(&struct {
		Alias
		Price float64 `json:"price"`
	}{
		Alias: Alias(m),
		Price: m.Price.Rupees(),
	})
}

// BeforeCreate generates a UUID before creating a new menu item
func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}
