package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/pkg/pagination"
)

// MenuItemRepository defines the interface for menu data operations
type MenuItemRepository interface {
	Create(ctx context.Context, item *entity.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.MenuItem, error)
	List(ctx context.Context, params *MenuItemFilterParams) ([]entity.MenuItem, int64, error)
	Update(ctx context.Context, item *entity.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MenuItemFilterParams contains filtering parameters for menu queries
type MenuItemFilterParams struct {
	Pagination    *pagination.PaginationParams
	Category      *enum.MenuCategory
	AvailableOnly bool
	Search        string
}
