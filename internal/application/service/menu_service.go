package service

import (
	"context"

	"github.com/google/uuid"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/internal/domain/repository"
	"restaurant-billing/pkg/apperror"
	"restaurant-billing/pkg/money"
	"restaurant-billing/pkg/pagination"
)

// MenuService handles menu CRUD. Menu data is plumbing around the billing
// core: order lines snapshot the price at add time, so edits here never
// change an existing order.
type MenuService struct {
	menuRepo repository.MenuItemRepository
}

// NewMenuService creates a new menu service
func NewMenuService(menuRepo repository.MenuItemRepository) *MenuService {
	return &MenuService{menuRepo: menuRepo}
}

// CreateMenuItemInput represents the create menu item input
type CreateMenuItemInput struct {
	Name        string
	Price       float64
	Category    enum.MenuCategory
	Description string
	Image       string
}

// UpdateMenuItemInput represents a partial menu item update
type UpdateMenuItemInput struct {
	Name        *string
	Price       *float64
	Category    *enum.MenuCategory
	Description *string
	Image       *string
	IsAvailable *bool
}

func validateMenuFields(name string, price float64, category enum.MenuCategory) []apperror.FieldError {
	var fieldErrs []apperror.FieldError
	if name == "" {
		fieldErrs = append(fieldErrs, apperror.FieldError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if price < 0 {
		fieldErrs = append(fieldErrs, apperror.FieldError{
			Field:   "price",
			Message: "price must not be negative",
		})
	}
	if !category.Valid() {
		fieldErrs = append(fieldErrs, apperror.FieldError{
			Field:   "category",
			Message: "category must be one of appetizer, main, dessert, beverage",
		})
	}
	return fieldErrs
}

// CreateMenuItem creates a new menu item
func (s *MenuService) CreateMenuItem(ctx context.Context, input *CreateMenuItemInput) (*entity.MenuItem, error) {
	if fieldErrs := validateMenuFields(input.Name, input.Price, input.Category); len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}

	item := &entity.MenuItem{
		Name:        input.Name,
		Price:       money.FromRupees(input.Price),
		Category:    input.Category,
		Description: input.Description,
		Image:       input.Image,
		IsAvailable: true,
	}
	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetMenuItem retrieves a menu item by ID
func (s *MenuService) GetMenuItem(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Menu item")
	}
	return item, nil
}

// ListMenuItems lists menu items with filtering
func (s *MenuService) ListMenuItems(ctx context.Context, params *repository.MenuItemFilterParams) (*pagination.PaginatedResult[entity.MenuItem], error) {
	items, total, err := s.menuRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(items, pag), nil
}

// UpdateMenuItem applies a partial update to a menu item
func (s *MenuService) UpdateMenuItem(ctx context.Context, id uuid.UUID, input *UpdateMenuItemInput) (*entity.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Menu item")
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Price != nil {
		item.Price = money.FromRupees(*input.Price)
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Image != nil {
		item.Image = *input.Image
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}

	if fieldErrs := validateMenuFields(item.Name, item.Price.Rupees(), item.Category); len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}

	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteMenuItem removes a menu item from the menu. Order lines keep their
// snapshotted prices; bills for orders referencing the deleted item simply
// skip the line if the reference no longer resolves.
func (s *MenuService) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperror.NewNotFoundError("Menu item")
	}
	return s.menuRepo.Delete(ctx, id)
}
