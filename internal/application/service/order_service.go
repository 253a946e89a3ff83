package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/internal/domain/repository"
	"restaurant-billing/internal/infrastructure/mq"
	"restaurant-billing/pkg/apperror"
	"restaurant-billing/pkg/money"
	"restaurant-billing/pkg/pagination"
)

// OrderService owns the order lifecycle: creation, line additions, the
// kitchen status machine and the payment machine. Every accepted transition
// is written back through a version-guarded update; a concurrent writer
// surfaces as a conflict for the caller to retry.
type OrderService struct {
	orderRepo repository.OrderRepository
	menuRepo  repository.MenuItemRepository
	payments  PaymentProvider // nil when card verification is not configured
	publisher mq.Publisher    // nil when kitchen events are disabled
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	menuRepo repository.MenuItemRepository,
	payments PaymentProvider,
	publisher mq.Publisher,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		payments:  payments,
		publisher: publisher,
	}
}

// OrderLineInput represents a requested line on an order. The menu price is
// looked up and snapshotted server-side; clients never supply prices.
type OrderLineInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	Notes      string
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	TableNumber int
	Lines       []OrderLineInput
}

// CreateOrder creates a new order in pending/pending state with its initial
// lines, snapshotting each line's unit price from the current menu record.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	var fieldErrs []apperror.FieldError
	if input.TableNumber < 1 {
		fieldErrs = append(fieldErrs, apperror.FieldError{
			Field:   "table_number",
			Message: "table number must be a positive integer",
		})
	}
	if len(input.Lines) == 0 {
		fieldErrs = append(fieldErrs, apperror.FieldError{
			Field:   "lines",
			Message: "an order needs at least one line",
		})
	}
	for i, line := range input.Lines {
		if line.Quantity < 1 {
			fieldErrs = append(fieldErrs, apperror.FieldError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: "quantity must be at least 1",
			})
		}
	}
	if len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}

	// Batch fetch all menu items in one query (prevents N+1)
	itemIDs := make([]uuid.UUID, len(input.Lines))
	for i, line := range input.Lines {
		itemIDs[i] = line.MenuItemID
	}

	items, err := s.menuRepo.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	itemMap := make(map[uuid.UUID]*entity.MenuItem, len(items))
	for i := range items {
		itemMap[items[i].ID] = &items[i]
	}

	orderLines := make([]entity.OrderLine, 0, len(input.Lines))
	calcLines := make([]money.Line, 0, len(input.Lines))

	for _, line := range input.Lines {
		item, exists := itemMap[line.MenuItemID]
		if !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Menu item %s", line.MenuItemID))
		}
		if !item.IsAvailable {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("%s is currently unavailable", item.Name))
		}

		// Copy the price value; the line must not track later menu edits.
		unitPrice := item.Price

		orderLines = append(orderLines, entity.OrderLine{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			Notes:      line.Notes,
		})
		calcLines = append(calcLines, money.Line{UnitPrice: unitPrice, Quantity: line.Quantity})
	}

	totals, err := money.ComputeTotals(calcLines)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		TableNumber:   input.TableNumber,
		Status:        enum.OrderStatusPending,
		PaymentStatus: enum.PaymentStatusPending,
		SubTotal:      totals.SubTotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Version:       1,
	}

	// One transaction: an order row must never land without its lines.
	if err := s.orderRepo.CreateWithLines(ctx, order, orderLines); err != nil {
		return nil, err
	}

	created, err := s.orderRepo.GetWithLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, created)
	return created, nil
}

// GetOrder retrieves an order with its lines
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders lists orders with filtering
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// AddLine appends a line to an order that has not been submitted to the
// kitchen yet. The unit price is snapshotted from the menu and the stored
// totals are recomputed over all lines.
func (s *OrderService) AddLine(ctx context.Context, orderID uuid.UUID, input *OrderLineInput) (*entity.Order, error) {
	if input.Quantity < 1 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "quantity", Message: "quantity must be at least 1"},
		})
	}

	order, err := s.orderRepo.GetWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	if order.Status != enum.OrderStatusPending || order.PaymentStatus != enum.PaymentStatusPending {
		return nil, apperror.NewBadRequestError("Lines can only be added to a pending, unpaid order")
	}

	item, err := s.menuRepo.GetByID(ctx, input.MenuItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("Menu item %s", input.MenuItemID))
	}
	if !item.IsAvailable {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("%s is currently unavailable", item.Name))
	}

	line := &entity.OrderLine{
		OrderID:    order.ID,
		MenuItemID: item.ID,
		Quantity:   input.Quantity,
		UnitPrice:  item.Price, // snapshot
		Notes:      input.Notes,
	}

	calcLines := make([]money.Line, 0, len(order.Lines)+1)
	for _, l := range order.Lines {
		calcLines = append(calcLines, money.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	calcLines = append(calcLines, money.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity})

	totals, err := money.ComputeTotals(calcLines)
	if err != nil {
		return nil, err
	}

	order.SubTotal = totals.SubTotal
	order.Tax = totals.Tax
	order.Total = totals.Total

	// Line insert and totals write commit together; a version conflict rolls
	// the insert back, so the stored subtotal always matches the stored lines
	// and a caller retry cannot duplicate the line.
	if err := s.orderRepo.AddLineWithVersion(ctx, order, line); err != nil {
		return nil, err
	}

	return s.orderRepo.GetWithLines(ctx, orderID)
}

// UpdateStatus advances the kitchen status machine. Re-applying the current
// status is a no-op; anything the transition table forbids is rejected, and
// completion additionally requires a settled bill.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enum.OrderStatus) (*entity.Order, error) {
	if !next.Valid() {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Unknown order status %q", next))
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	if order.Status == next {
		return order, nil // idempotent re-apply
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, apperror.NewInvalidTransitionError(order.Status.String(), next.String())
	}

	if next == enum.OrderStatusCompleted && order.PaymentStatus != enum.PaymentStatusPaid {
		return nil, apperror.NewAppError(400,
			"Invalid transition from served to completed: bill is not paid")
	}

	order.Status = next
	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, order)
	return order, nil
}

// PayOrder settles the bill with the given method. Cash and UPI settle
// immediately; card payments require a provider intent that reached the
// succeeded outcome. Paying an already-paid order with the same method is a
// no-op; with a different method it is rejected.
func (s *OrderService) PayOrder(ctx context.Context, orderID uuid.UUID, method enum.PaymentMethod, intentRef string) (*entity.Order, error) {
	if !method.Valid() {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Unknown payment method %q", method))
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	if order.PaymentStatus == enum.PaymentStatusPaid {
		if order.PaymentMethod == method {
			return order, nil // idempotent re-apply
		}
		return nil, apperror.NewAppError(400,
			fmt.Sprintf("Order already paid via %s", order.PaymentMethod))
	}

	if order.Status.Terminal() {
		return nil, apperror.NewInvalidTransitionError(order.Status.String(), "paid")
	}

	if order.Total <= 0 {
		return nil, apperror.NewBadRequestError("Cannot settle an order with a zero total")
	}

	if method == enum.PaymentMethodCard {
		if s.payments == nil {
			return nil, apperror.NewBadRequestError("Card payments are not configured")
		}
		if intentRef == "" {
			return nil, apperror.NewBadRequestError("Payment intent ID is required for card payments")
		}
		outcome, err := s.payments.Outcome(ctx, intentRef)
		if err != nil {
			return nil, err
		}
		if outcome != PaymentOutcomeSucceeded {
			return nil, apperror.NewBadRequestError("Payment not successful, status: " + string(outcome))
		}
	}

	now := time.Now()
	order.PaymentStatus = enum.PaymentStatusPaid
	order.PaymentMethod = method
	order.PaidAt = &now
	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// publishEvent sends a kitchen ticket for the order, best-effort. Publishing
// failures are logged and never fail the transition that triggered them.
func (s *OrderService) publishEvent(ctx context.Context, order *entity.Order) {
	if s.publisher == nil || order == nil {
		return
	}

	event := &mq.OrderEvent{
		OrderID:     order.ID.String(),
		TableNumber: order.TableNumber,
		Status:      order.Status.String(),
		Total:       order.Total.Rupees(),
		OccurredAt:  time.Now(),
	}
	for _, line := range order.Lines {
		name := line.MenuItem.Name
		if name == "" {
			name = "Item"
		}
		event.Lines = append(event.Lines, mq.TicketLine{
			Name:     name,
			Quantity: line.Quantity,
			Notes:    line.Notes,
		})
	}

	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to publish order event for %s: %v", order.ID, err)
	}
}
