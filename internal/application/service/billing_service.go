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
	"restaurant-billing/pkg/apperror"
	"restaurant-billing/pkg/escpos"
	"restaurant-billing/pkg/money"
	"restaurant-billing/pkg/printer"
)

// billNameBudget is the character budget for an item name on a bill line;
// longer names are truncated with an ellipsis.
const billNameBudget = 25

// BillingService turns finalized orders into printable bill documents.
// Rendering is read-only: it never mutates the order, and it recomputes the
// totals from line data so a stale stored aggregate can never reach paper.
type BillingService struct {
	orderRepo   repository.OrderRepository
	printer     printer.Printer
	printerType string
	header      entity.BillHeader
	loc         *time.Location
}

// NewBillingService creates a new billing service
func NewBillingService(
	orderRepo repository.OrderRepository,
	p printer.Printer,
	printerType string,
	header entity.BillHeader,
	loc *time.Location,
) *BillingService {
	return &BillingService{
		orderRepo:   orderRepo,
		printer:     p,
		printerType: printerType,
		header:      header,
		loc:         loc,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetPrinterStatus returns printer connection status.
func (s *BillingService) GetPrinterStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// RenderBill loads the order and produces the bill document as an ESC/POS
// byte stream. An unknown order id fails before any bytes are produced.
// Lines whose menu reference does not resolve are skipped with a warning;
// the bill fails only if nothing renderable remains.
func (s *BillingService) RenderBill(ctx context.Context, orderID uuid.UUID) (*entity.Bill, []byte, error) {
	order, err := s.orderRepo.GetWithLines(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, apperror.NewNotFoundError("Order")
	}

	bill, err := s.composeBill(order)
	if err != nil {
		return nil, nil, err
	}

	return bill, FormatBill(bill), nil
}

// PrintBill renders the bill and sends it to the configured thermal printer.
func (s *BillingService) PrintBill(ctx context.Context, orderID uuid.UUID) (*entity.Bill, error) {
	bill, data, err := s.RenderBill(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (order %s): %v", orderID, err)
		return bill, fmt.Errorf("failed to print bill: %w", err)
	}
	return bill, nil
}

// composeBill builds the Bill value object from order data, recomputing the
// totals from the lines that survive menu resolution.
func (s *BillingService) composeBill(order *entity.Order) (*entity.Bill, error) {
	billLines := make([]entity.BillLine, 0, len(order.Lines))
	calcLines := make([]money.Line, 0, len(order.Lines))

	for _, line := range order.Lines {
		if line.MenuItem.Name == "" {
			log.Printf("Warning: skipping line %s on order %s: menu item %s did not resolve",
				line.ID, order.ID, line.MenuItemID)
			continue
		}

		billLines = append(billLines, entity.BillLine{
			Name:      truncateName(line.MenuItem.Name),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount(),
		})
		calcLines = append(calcLines, money.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}

	if len(billLines) == 0 {
		return nil, apperror.NewBadRequestError("Order has no billable lines")
	}

	totals, err := money.ComputeTotals(calcLines)
	if err != nil {
		return nil, err
	}

	bill := &entity.Bill{
		Header:      s.header,
		BillNo:      order.BillNumber(),
		Date:        order.CreatedAt.In(s.loc).Format("02 Jan 2006, 15:04"),
		TableNumber: order.TableNumber,
		Lines:       billLines,
		SubTotal:    totals.SubTotal,
		Tax:         totals.Tax,
		Total:       totals.Total,
	}

	if order.PaymentStatus == enum.PaymentStatusPaid {
		paidAt := order.UpdatedAt
		if order.PaidAt != nil {
			paidAt = *order.PaidAt
		}
		bill.Payment = &entity.BillPayment{
			Method: order.PaymentMethod,
			Amount: totals.Total,
			PaidAt: paidAt.In(s.loc).Format("02 Jan 2006, 15:04"),
		}
	}

	return bill, nil
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= billNameBudget {
		return name
	}
	return string(runes[:billNameBudget-3]) + "..."
}

// FormatBill converts a Bill into ESC/POS bytes. The layout is fixed:
// header, bill metadata, line-item table, totals block, and a payment block
// only when the bill is settled.
func FormatBill(b *entity.Bill) []byte {
	doc := escpos.NewDocument(48) // 80mm paper = 48 chars

	// Header
	doc.SetAlign(escpos.AlignCenter).
		SetBold(true).
		SetFontSize(escpos.FontDouble).
		Text(b.Header.RestaurantName).
		SetFontSize(escpos.FontNormal).
		SetBold(false)

	if b.Header.Address != "" {
		doc.Text(b.Header.Address)
	}
	if b.Header.Phone != "" {
		doc.Text(b.Header.Phone)
	}
	if b.Header.GSTIN != "" {
		doc.TextF("GSTIN: %s", b.Header.GSTIN)
	}
	doc.Text("Thank you for dining with us!")

	doc.SetAlign(escpos.AlignLeft).
		Separator('-')

	// Bill metadata
	doc.KeyValue("Bill No:", b.BillNo).
		KeyValue("Date:", b.Date).
		KeyValue("Table:", fmt.Sprintf("%d", b.TableNumber))

	doc.Separator('-')

	// Items
	for _, line := range b.Lines {
		doc.ItemLine(line.Quantity, line.Name, line.Amount.Format())
		if line.Quantity > 1 {
			doc.TextF("  @ %s each", line.UnitPrice.Format())
		}
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("Subtotal:", b.SubTotal.Format()).
		KeyValue("GST (10%):", b.Tax.Format())
	doc.SetBold(true).
		KeyValue("GRAND TOTAL:", b.Total.Format()).
		SetBold(false)

	// Payment block, settled bills only
	if b.Payment != nil {
		doc.Separator('-')
		doc.KeyValue("Status:", "Paid").
			KeyValue("Method:", b.Payment.Method.Display()).
			KeyValue("Amount Paid:", b.Payment.Amount.Format()).
			KeyValue("Paid At:", b.Payment.PaidAt)
	}

	doc.Separator('-')

	// Footer
	doc.SetAlign(escpos.AlignCenter).
		LineFeed().
		Text("Thank you for your business!").
		Text("Please visit again").
		LineFeed().
		SetAlign(escpos.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
