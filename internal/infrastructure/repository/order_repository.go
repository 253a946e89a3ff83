package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	domainRepo "restaurant-billing/internal/domain/repository"
	"restaurant-billing/pkg/apperror"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// CreateWithLines writes the order row and all of its lines in a single
// transaction; a failed line insert rolls the order back too.
func (r *orderRepository) CreateWithLines(ctx context.Context, order *entity.Order, lines []entity.OrderLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.created_at ASC")
		}).
		Preload("Lines.MenuItem").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}

	if params.TableNumber != nil {
		query = query.Where("table_number = ?", *params.TableNumber)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting
	sortBy := orderSortColumn(params.SortBy)
	sortOrder := "DESC"
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Lines").
		Preload("Lines.MenuItem").
		Order(sortBy + " " + sortOrder).
		Find(&orders).Error

	return orders, total, err
}

// sortableOrderColumns whitelists the columns the API may sort by; anything
// else falls back to created_at so query input never reaches raw SQL.
var sortableOrderColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"table_number": true,
	"status":       true,
	"total":        true,
	"paid_at":      true,
}

func orderSortColumn(requested string) string {
	if sortableOrderColumns[requested] {
		return requested
	}
	return "created_at"
}

// updateWithVersionTx issues the conditional write against tx: the order row
// is updated only if the stored version still matches readVersion. Zero rows
// affected means another writer got there first.
func updateWithVersionTx(tx *gorm.DB, order *entity.Order, readVersion int64) error {
	result := tx.Model(&entity.Order{}).
		Where("id = ? AND version = ?", order.ID, readVersion).
		Updates(map[string]interface{}{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"payment_method": order.PaymentMethod,
			"sub_total":      order.SubTotal,
			"tax":            order.Tax,
			"total":          order.Total,
			"paid_at":        order.PaidAt,
			"version":        order.Version,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("Order was modified concurrently, retry with fresh state")
	}
	return nil
}

// UpdateWithVersion persists the order only if the stored version still
// matches the version the caller read. The version column advances by one on
// success; a mismatch surfaces as a conflict.
func (r *orderRepository) UpdateWithVersion(ctx context.Context, order *entity.Order) error {
	readVersion := order.Version
	order.Version = readVersion + 1
	order.UpdatedAt = time.Now()

	if err := updateWithVersionTx(r.db.WithContext(ctx), order, readVersion); err != nil {
		order.Version = readVersion
		return err
	}
	return nil
}

// AddLineWithVersion inserts the line and writes the order's recomputed
// totals in one transaction under the same version guard. On a version
// conflict the transaction rolls back, taking the line insert with it.
func (r *orderRepository) AddLineWithVersion(ctx context.Context, order *entity.Order, line *entity.OrderLine) error {
	readVersion := order.Version
	order.Version = readVersion + 1
	order.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(line).Error; err != nil {
			return err
		}
		return updateWithVersionTx(tx, order, readVersion)
	})
	if err != nil {
		order.Version = readVersion
		return err
	}
	return nil
}

func (r *orderRepository) ListPaidBetween(ctx context.Context, start, end time.Time) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Where("payment_status = ?", enum.PaymentStatusPaid).
		Where("paid_at >= ? AND paid_at < ?", start, end).
		Order("paid_at ASC").
		Find(&orders).Error
	return orders, err
}
