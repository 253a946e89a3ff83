package service

import (
	"context"
	"time"

	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/domain/enum"
	"restaurant-billing/internal/domain/repository"
	"restaurant-billing/pkg/money"
)

// ReportService aggregates paid orders into daily sales reports. It is a
// pure read over the order store; nothing here mutates state.
type ReportService struct {
	orderRepo repository.OrderRepository
	loc       *time.Location
}

// NewReportService creates a new report service
func NewReportService(orderRepo repository.OrderRepository, loc *time.Location) *ReportService {
	return &ReportService{orderRepo: orderRepo, loc: loc}
}

// DailyReport summarizes the paid orders whose settlement timestamp falls in
// [start-of-day(asOf), start-of-day(asOf)+24h) in the reference timezone. An
// empty day yields zeroed fields, including a zero average order value.
func (s *ReportService) DailyReport(ctx context.Context, asOf time.Time) (*entity.DailyReport, error) {
	local := asOf.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	end := start.Add(24 * time.Hour)

	orders, err := s.orderRepo.ListPaidBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &entity.DailyReport{
		Date:           start.Format("2006-01-02"),
		TotalOrders:    int64(len(orders)),
		PaymentMethods: make(map[enum.PaymentMethod]int64, len(enum.AllPaymentMethods)),
	}
	for _, method := range enum.AllPaymentMethods {
		report.PaymentMethods[method] = 0
	}

	for _, order := range orders {
		report.TotalSales += order.Total
		if order.PaymentMethod.Valid() {
			report.PaymentMethods[order.PaymentMethod]++
		}
	}

	if report.TotalOrders > 0 {
		report.AverageOrderValue = report.TotalSales / money.Amount(report.TotalOrders)
	}

	return report, nil
}
