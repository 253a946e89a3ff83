package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/pkg/pagination"
)

// OrderRepository defines the interface for order data operations. Get
// methods return (nil, nil) when no order exists, leaving the not-found
// decision to the caller. UpdateWithVersion is the read-then-conditional-write
// primitive the state machines rely on: it must persist the order only if the
// stored version still matches, and report a conflict otherwise.
//
// CreateWithLines and AddLineWithVersion write the order row and its lines in
// one transaction: either everything lands or nothing does. A version
// conflict in AddLineWithVersion must roll the line insert back, so the
// stored subtotal always equals the sum over stored lines.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateWithLines(ctx context.Context, order *entity.Order, lines []entity.OrderLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	UpdateWithVersion(ctx context.Context, order *entity.Order) error
	AddLineWithVersion(ctx context.Context, order *entity.Order, line *entity.OrderLine) error
	ListPaidBetween(ctx context.Context, start, end time.Time) ([]entity.Order, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination    *pagination.PaginationParams
	Status        *enum.OrderStatus
	PaymentStatus *enum.PaymentStatus
	TableNumber   *int
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	SortOrder     string
}
