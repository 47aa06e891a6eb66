// Package invoice renders order invoices as PDF files.
package invoice

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"storefront-order-service/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type Renderer struct {
	dir string
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

func (r *Renderer) PathFor(orderID string) string {
	return filepath.Join(r.dir, fmt.Sprintf("Invoice-%s.pdf", orderID))
}

// Render writes the invoice for order and returns the file path.
func (r *Renderer) Render(user *model.User, order *model.Order) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string { return tr("£" + d.StringFixed(2)) }

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Order ID: "+order.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+order.CreatedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Payment: "+string(order.PaymentMethod), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range billTo(user, order.Address) {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(80, 8, "Product", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Size", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range order.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		pdf.CellFormat(80, 8, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, tr(item.Size), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, money(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(item.LineTotal()), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", order.BaseAmount},
		{"Shipping", order.ShippingCost},
		{"Total", order.TotalAmount},
	}
	for i, row := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 12)
		}
		pdf.CellFormat(155, 7, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(row.value), "", 1, "R", false, 0, "")
	}

	path := r.PathFor(order.ID)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write invoice: %w", err)
	}

	return path, nil
}

func billTo(user *model.User, a model.Address) []string {
	var lines []string

	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" && user != nil {
		name = user.Name
	}
	if name != "" {
		lines = append(lines, name)
	}
	if user != nil && user.Email != "" {
		lines = append(lines, user.Email)
	}
	if a.Street != "" {
		lines = append(lines, a.Street)
	}

	var cityLine []string
	for _, p := range []string{a.City, a.State, a.Zipcode} {
		if p != "" {
			cityLine = append(cityLine, p)
		}
	}
	if len(cityLine) > 0 {
		lines = append(lines, strings.Join(cityLine, ", "))
	}
	if a.Country != "" {
		lines = append(lines, a.Country)
	}

	return lines
}
