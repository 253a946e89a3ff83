package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"restaurant-billing/internal/application/service"
	"restaurant-billing/internal/presentation/http/dto/response"
)

// BillHandler handles bill rendering and daily report HTTP requests
type BillHandler struct {
	billingService *service.BillingService
	reportService  *service.ReportService
	location       *time.Location
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billingService *service.BillingService, reportService *service.ReportService, location *time.Location) *BillHandler {
	return &BillHandler{
		billingService: billingService,
		reportService:  reportService,
		location:       location,
	}
}

// Get handles rendering the bill for an order.
// With ?download=true the raw printer byte stream is returned instead of JSON,
// and with ?print=true the bill is also sent to the configured printer.
func (h *BillHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	if c.Query("print") == "true" {
		bill, err := h.billingService.PrintBill(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Bill printed successfully", bill)
		return
	}

	bill, raw, err := h.billingService.RenderBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if c.Query("download") == "true" {
		filename := fmt.Sprintf("%s.bin", bill.BillNo)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(200, "application/octet-stream", raw)
		return
	}

	response.OK(c, "Bill generated successfully", bill)
}

// PrinterStatus reports the configured printer type and availability
func (h *BillHandler) PrinterStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved successfully", h.billingService.GetPrinterStatus())
}

// DailyReport handles the daily sales report.
// Defaults to today in the restaurant's timezone; ?date=YYYY-MM-DD selects another day.
func (h *BillHandler) DailyReport(c *gin.Context) {
	asOf := time.Now().In(h.location)

	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, h.location)
		if err != nil {
			response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	report, err := h.reportService.DailyReport(c.Request.Context(), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily report generated successfully", report)
}
