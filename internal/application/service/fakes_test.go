package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/internal/domain/repository"
	"restaurant-billing/pkg/apperror"
	"restaurant-billing/pkg/money"
)

// fakeOrderRepo is an in-memory OrderRepository with the same version-guard
// and transaction semantics as the SQL implementation: CreateWithLines and
// AddLineWithVersion land fully or not at all. afterGet, when set, runs once
// after the next read and can mutate the store to simulate a concurrent
// writer; failLines, when set, makes the next line insert fail.
type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*entity.Order
	lines     map[uuid.UUID][]entity.OrderLine
	afterGet  func(r *fakeOrderRepo)
	failLines error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uuid.UUID]*entity.Order),
		lines:  make(map[uuid.UUID][]entity.OrderLine),
	}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := *order
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) CreateWithLines(ctx context.Context, order *entity.Order, lines []entity.OrderLine) error {
	r.mu.Lock()
	if err := r.failLines; err != nil {
		r.failLines = nil
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	if err := r.Create(ctx, order); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
		lines[i].OrderID = order.ID
	}
	r.lines[order.ID] = append([]entity.OrderLine(nil), lines...)
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.mu.Lock()
	stored, ok := r.orders[id]
	if !ok {
		r.mu.Unlock()
		return nil, nil
	}
	copied := *stored
	hook := r.afterGet
	r.afterGet = nil
	r.mu.Unlock()

	if hook != nil {
		hook(r)
	}
	return &copied, nil
}

func (r *fakeOrderRepo) GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil || order == nil {
		return order, err
	}

	r.mu.Lock()
	order.Lines = append([]entity.OrderLine(nil), r.lines[id]...)
	r.mu.Unlock()
	return order, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Order
	for _, o := range r.orders {
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		if params.PaymentStatus != nil && o.PaymentStatus != *params.PaymentStatus {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) UpdateWithVersion(ctx context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return apperror.NewConflictError("Order was modified concurrently, retry with fresh state")
	}

	order.Version = stored.Version + 1
	order.UpdatedAt = time.Now()
	copied := *order
	copied.Lines = nil
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) AddLineWithVersion(ctx context.Context, order *entity.Order, line *entity.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failLines; err != nil {
		r.failLines = nil
		return err
	}

	// Version check before anything is stored: a conflict leaves both the
	// order row and the line set untouched, like a rolled-back transaction.
	stored, ok := r.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return apperror.NewConflictError("Order was modified concurrently, retry with fresh state")
	}

	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	r.lines[order.ID] = append(r.lines[order.ID], *line)

	order.Version = stored.Version + 1
	order.UpdatedAt = time.Now()
	copied := *order
	copied.Lines = nil
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) ListPaidBetween(ctx context.Context, start, end time.Time) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Order
	for _, o := range r.orders {
		if o.PaymentStatus != enum.PaymentStatusPaid || o.PaidAt == nil {
			continue
		}
		if o.PaidAt.Before(start) || !o.PaidAt.Before(end) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(*out[j].PaidAt) })
	return out, nil
}

// setLines installs order lines directly, bypassing the write paths.
func (r *fakeOrderRepo) setLines(orderID uuid.UUID, lines []entity.OrderLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[orderID] = lines
}

// linesOf returns a copy of the stored lines for assertions.
func (r *fakeOrderRepo) linesOf(orderID uuid.UUID) []entity.OrderLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.OrderLine(nil), r.lines[orderID]...)
}

type fakeMenuRepo struct {
	items map[uuid.UUID]*entity.MenuItem
}

func newFakeMenuRepo(items ...*entity.MenuItem) *fakeMenuRepo {
	r := &fakeMenuRepo{items: make(map[uuid.UUID]*entity.MenuItem)}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeMenuRepo) Create(ctx context.Context, item *entity.MenuItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *fakeMenuRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeMenuRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.MenuItem, error) {
	var out []entity.MenuItem
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if item, ok := r.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeMenuRepo) List(ctx context.Context, params *repository.MenuItemFilterParams) ([]entity.MenuItem, int64, error) {
	var out []entity.MenuItem
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMenuRepo) Update(ctx context.Context, item *entity.MenuItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *fakeMenuRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

// fakePaymentProvider returns a scripted outcome per intent reference.
type fakePaymentProvider struct {
	outcomes map[string]PaymentOutcome
}

func (p *fakePaymentProvider) CreateIntent(ctx context.Context, amount money.Amount, currency string) (string, error) {
	return "pi_test_secret", nil
}

func (p *fakePaymentProvider) Outcome(ctx context.Context, intentRef string) (PaymentOutcome, error) {
	if outcome, ok := p.outcomes[intentRef]; ok {
		return outcome, nil
	}
	return PaymentOutcomePending, nil
}
