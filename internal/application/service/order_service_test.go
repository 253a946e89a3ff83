package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/pkg/apperror"
)

func newTestOrderService(items ...*entity.MenuItem) (*OrderService, *fakeOrderRepo, *fakeMenuRepo) {
	orderRepo := newFakeOrderRepo()
	menuRepo := newFakeMenuRepo(items...)
	svc := NewOrderService(orderRepo, menuRepo, nil, nil)
	return svc, orderRepo, menuRepo
}

func testMenu() (*entity.MenuItem, *entity.MenuItem) {
	dosa := &entity.MenuItem{
		ID:          uuid.New(),
		Name:        "Masala Dosa",
		Price:       10000, // 100.00
		Category:    enum.MenuCategoryMain,
		IsAvailable: true,
	}
	paneer := &entity.MenuItem{
		ID:          uuid.New(),
		Name:        "Paneer Tikka",
		Price:       15000, // 150.00
		Category:    enum.MenuCategoryAppetizer,
		IsAvailable: true,
	}
	return dosa, paneer
}

func TestCreateOrderComputesTotals(t *testing.T) {
	dosa, paneer := testMenu()
	svc, _, _ := newTestOrderService(dosa, paneer)

	order, err := svc.CreateOrder(context.Background(), &CreateOrderInput{
		TableNumber: 4,
		Lines: []OrderLineInput{
			{MenuItemID: dosa.ID, Quantity: 3},
			{MenuItemID: paneer.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if order.Status != enum.OrderStatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	if order.PaymentStatus != enum.PaymentStatusPending {
		t.Errorf("expected payment status pending, got %s", order.PaymentStatus)
	}
	if order.SubTotal != 45000 || order.Tax != 4500 || order.Total != 49500 {
		t.Errorf("expected totals 45000/4500/49500, got %d/%d/%d",
			order.SubTotal, order.Tax, order.Total)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	dosa, paneer := testMenu()
	svc, repo, menuRepo := newTestOrderService(dosa, paneer)

	order, err := svc.CreateOrder(context.Background(), &CreateOrderInput{
		TableNumber: 1,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	// Raise the menu price after the order is taken.
	dosa.Price = 20000
	if err := menuRepo.Update(context.Background(), dosa); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	reloaded, err := repo.GetWithLines(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetWithLines returned error: %v", err)
	}
	if reloaded.Lines[0].UnitPrice != 10000 {
		t.Errorf("line unit price should stay at the snapshot 10000, got %d", reloaded.Lines[0].UnitPrice)
	}
	if reloaded.SubTotal != 20000 {
		t.Errorf("expected subtotal 20000, got %d", reloaded.SubTotal)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	dosa, _ := testMenu()
	svc, _, _ := newTestOrderService(dosa)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderInput{
		TableNumber: 0,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 0}},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 422 {
		t.Fatalf("expected 422 AppError, got %v", err)
	}
	if len(appErr.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %+v", appErr.Errors)
	}
}

func TestCreateOrderUnknownMenuItem(t *testing.T) {
	dosa, _ := testMenu()
	svc, _, _ := newTestOrderService(dosa)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderInput{
		TableNumber: 2,
		Lines:       []OrderLineInput{{MenuItemID: uuid.New(), Quantity: 1}},
	})
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 404 {
		t.Fatalf("expected 404 for unknown menu item, got %v", err)
	}
}

func TestCreateOrderUnavailableItem(t *testing.T) {
	dosa, _ := testMenu()
	dosa.IsAvailable = false
	svc, _, _ := newTestOrderService(dosa)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderInput{
		TableNumber: 2,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 for unavailable item, got %v", err)
	}
}

func TestOrderLifecycle(t *testing.T) {
	dosa, paneer := testMenu()
	svc, _, _ := newTestOrderService(dosa, paneer)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 7,
		Lines: []OrderLineInput{
			{MenuItemID: dosa.ID, Quantity: 3},
			{MenuItemID: paneer.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	for _, next := range []enum.OrderStatus{enum.OrderStatusPreparing, enum.OrderStatusServed} {
		if _, err := svc.UpdateStatus(ctx, order.ID, next); err != nil {
			t.Fatalf("UpdateStatus(%s) returned error: %v", next, err)
		}
	}

	paid, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodCash, "")
	if err != nil {
		t.Fatalf("PayOrder returned error: %v", err)
	}
	if paid.PaymentStatus != enum.PaymentStatusPaid {
		t.Errorf("expected payment status paid, got %s", paid.PaymentStatus)
	}
	if paid.PaymentMethod != enum.PaymentMethodCash {
		t.Errorf("expected payment method cash, got %s", paid.PaymentMethod)
	}
	if paid.PaidAt == nil {
		t.Error("expected PaidAt to be set")
	}

	done, err := svc.UpdateStatus(ctx, order.ID, enum.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus(completed) returned error: %v", err)
	}
	if done.Status != enum.OrderStatusCompleted {
		t.Errorf("expected status completed, got %s", done.Status)
	}
}

func TestUpdateStatusSkipForbidden(t *testing.T) {
	dosa, _ := testMenu()
	svc, _, _ := newTestOrderService(dosa)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 3,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	_, err = svc.UpdateStatus(ctx, order.ID, enum.OrderStatusServed)
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 for pending -> served, got %v", err)
	}
	if appErr.Message != "Invalid transition from pending to served" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestCompleteUnpaidRejected(t *testing.T) {
	dosa, _ := testMenu()
	svc, _, _ := newTestOrderService(dosa)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 3,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	for _, next := range []enum.OrderStatus{enum.OrderStatusPreparing, enum.OrderStatusServed} {
		if _, err := svc.UpdateStatus(ctx, order.ID, next); err != nil {
			t.Fatalf("UpdateStatus(%s) returned error: %v", next, err)
		}
	}

	_, err = svc.UpdateStatus(ctx, order.ID, enum.OrderStatusCompleted)
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 for completing an unpaid order, got %v", err)
	}
}

func TestUpdateStatusIdempotentReapply(t *testing.T) {
	dosa, _ := testMenu()
	svc, repo, _ := newTestOrderService(dosa)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 3,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, order.ID, enum.OrderStatusPreparing); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	before, _ := repo.GetByID(ctx, order.ID)
	if _, err := svc.UpdateStatus(ctx, order.ID, enum.OrderStatusPreparing); err != nil {
		t.Fatalf("re-applying the current status should be a no-op, got %v", err)
	}
	after, _ := repo.GetByID(ctx, order.ID)
	if after.Version != before.Version {
		t.Errorf("no-op re-apply must not bump the version: %d -> %d", before.Version, after.Version)
	}
}

func TestPayOrderIdempotent(t *testing.T) {
	dosa, _ := testMenu()
	svc, _, _ := newTestOrderService(dosa)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 3,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	first, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodUPI, "")
	if err != nil {
		t.Fatalf("PayOrder returned error: %v", err)
	}

	// Same method again: no-op.
	second, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodUPI, "")
	if err != nil {
		t.Fatalf("re-paying with the same method should be a no-op, got %v", err)
	}
	if second.Version != first.Version {
		t.Errorf("no-op re-pay must not bump the version: %d -> %d", first.Version, second.Version)
	}

	// A different method is rejected.
	_, err = svc.PayOrder(ctx, order.ID, enum.PaymentMethodCash, "")
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 for re-paying with a different method, got %v", err)
	}
}

func TestPayCancelledOrderRejected(t *testing.T) {
	dosa, _ := testMenu()
	svc, _, _ := newTestOrderService(dosa)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 3,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, order.ID, enum.OrderStatusCancelled); err != nil {
		t.Fatalf("UpdateStatus(cancelled) returned error: %v", err)
	}

	_, err = svc.PayOrder(ctx, order.ID, enum.PaymentMethodCash, "")
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 for paying a cancelled order, got %v", err)
	}
}

func TestPayZeroTotalRejected(t *testing.T) {
	svc, repo, _ := newTestOrderService()
	ctx := context.Background()

	order := &entity.Order{
		TableNumber:   5,
		Status:        enum.OrderStatusPending,
		PaymentStatus: enum.PaymentStatusPending,
		Version:       1,
	}
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodCash, "")
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 for a zero total, got %v", err)
	}
}

func TestCardPaymentRequiresSucceededIntent(t *testing.T) {
	dosa, _ := testMenu()
	orderRepo := newFakeOrderRepo()
	menuRepo := newFakeMenuRepo(dosa)
	provider := &fakePaymentProvider{outcomes: map[string]PaymentOutcome{
		"pi_good": PaymentOutcomeSucceeded,
		"pi_bad":  PaymentOutcomeFailed,
	}}
	svc := NewOrderService(orderRepo, menuRepo, provider, nil)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 1,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if _, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodCard, ""); err == nil {
		t.Error("expected error when card payment has no intent reference")
	}
	if _, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodCard, "pi_bad"); err == nil {
		t.Error("expected error when the intent did not succeed")
	}

	paid, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodCard, "pi_good")
	if err != nil {
		t.Fatalf("PayOrder returned error: %v", err)
	}
	if paid.PaymentStatus != enum.PaymentStatusPaid || paid.PaymentMethod != enum.PaymentMethodCard {
		t.Errorf("expected paid/card, got %s/%s", paid.PaymentStatus, paid.PaymentMethod)
	}
}

func TestConcurrentPaymentConflict(t *testing.T) {
	dosa, _ := testMenu()
	svc, repo, _ := newTestOrderService(dosa)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 9,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	// Another terminal settles the same order between our read and write.
	repo.afterGet = func(r *fakeOrderRepo) {
		r.mu.Lock()
		defer r.mu.Unlock()
		stored := r.orders[order.ID]
		now := time.Now()
		stored.PaymentStatus = enum.PaymentStatusPaid
		stored.PaymentMethod = enum.PaymentMethodCash
		stored.PaidAt = &now
		stored.Version++
	}

	_, err = svc.PayOrder(ctx, order.ID, enum.PaymentMethodUPI, "")
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 409 {
		t.Fatalf("expected 409 conflict, got %v", err)
	}

	// Only one settlement survived.
	final, _ := repo.GetByID(ctx, order.ID)
	if final.PaymentMethod != enum.PaymentMethodCash {
		t.Errorf("expected the first writer's method to stand, got %s", final.PaymentMethod)
	}
}

func TestAddLineRecomputesTotals(t *testing.T) {
	dosa, paneer := testMenu()
	svc, _, _ := newTestOrderService(dosa, paneer)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 2,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	updated, err := svc.AddLine(ctx, order.ID, &OrderLineInput{MenuItemID: paneer.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddLine returned error: %v", err)
	}

	if len(updated.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(updated.Lines))
	}
	if updated.SubTotal != 45000 || updated.Tax != 4500 || updated.Total != 49500 {
		t.Errorf("expected totals 45000/4500/49500, got %d/%d/%d",
			updated.SubTotal, updated.Tax, updated.Total)
	}
}

func TestAddLineOnStartedOrderRejected(t *testing.T) {
	dosa, paneer := testMenu()
	svc, _, _ := newTestOrderService(dosa, paneer)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 2,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, order.ID, enum.OrderStatusPreparing); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	_, err = svc.AddLine(ctx, order.ID, &OrderLineInput{MenuItemID: paneer.ID, Quantity: 1})
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 for adding a line to a started order, got %v", err)
	}
}

func TestAddLineConflictLeavesOrderUnchanged(t *testing.T) {
	dosa, paneer := testMenu()
	svc, repo, _ := newTestOrderService(dosa, paneer)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 8,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	// Another writer commits between our read and write.
	repo.afterGet = func(r *fakeOrderRepo) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.orders[order.ID].Version++
	}

	_, err = svc.AddLine(ctx, order.ID, &OrderLineInput{MenuItemID: paneer.ID, Quantity: 1})
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 409 {
		t.Fatalf("expected 409 conflict, got %v", err)
	}

	// The rejected line must not have been stored, and the stored subtotal
	// must still equal the sum over stored lines.
	lines := repo.linesOf(order.ID)
	if len(lines) != 1 {
		t.Fatalf("conflict must roll the line insert back, got %d lines", len(lines))
	}
	stored, _ := repo.GetByID(ctx, order.ID)
	var lineSum int64
	for _, l := range lines {
		lineSum += int64(l.Amount())
	}
	if int64(stored.SubTotal) != lineSum {
		t.Errorf("stored subtotal %d diverged from line sum %d", stored.SubTotal, lineSum)
	}

	// A retry with fresh state succeeds and does not duplicate the line.
	updated, err := svc.AddLine(ctx, order.ID, &OrderLineInput{MenuItemID: paneer.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if len(updated.Lines) != 2 {
		t.Errorf("expected 2 lines after retry, got %d", len(updated.Lines))
	}
	if updated.SubTotal != 25000 {
		t.Errorf("expected subtotal 25000 after retry, got %d", updated.SubTotal)
	}
}

func TestCreateOrderAtomicWithLines(t *testing.T) {
	dosa, _ := testMenu()
	svc, repo, _ := newTestOrderService(dosa)

	repo.failLines = apperror.NewAppError(500, "insert failed")

	_, err := svc.CreateOrder(context.Background(), &CreateOrderInput{
		TableNumber: 1,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected the create to fail")
	}

	// The order row must not survive a failed line write.
	repo.mu.Lock()
	count := len(repo.orders)
	repo.mu.Unlock()
	if count != 0 {
		t.Errorf("expected no orders stored after a failed line write, got %d", count)
	}
}

func TestCardPaymentWithoutProviderRejected(t *testing.T) {
	dosa, _ := testMenu()
	svc, _, _ := newTestOrderService(dosa) // no payment provider
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, &CreateOrderInput{
		TableNumber: 1,
		Lines:       []OrderLineInput{{MenuItemID: dosa.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	_, err = svc.PayOrder(ctx, order.ID, enum.PaymentMethodCard, "pi_whatever")
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 400 {
		t.Fatalf("expected 400 when no provider is configured, got %v", err)
	}

	// Cash still settles.
	if _, err := svc.PayOrder(ctx, order.ID, enum.PaymentMethodCash, ""); err != nil {
		t.Fatalf("cash payment should still work, got %v", err)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _ := newTestOrderService()

	_, err := svc.GetOrder(context.Background(), uuid.New())
	appErr := apperror.GetAppError(err)
	if appErr == nil || appErr.Code != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}
