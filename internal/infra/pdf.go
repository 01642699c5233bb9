package infra

// pdf.go — printable invoice generation using go-pdf/fpdf.
// Produces an A5 delivery invoice with the weight breakdown (gross / cages /
// net), pricing, discount, and the customer's previous and current balance —
// the slip the driver hands over with the cages.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Alishanbouraa/chickensap/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateInvoicePDF renders an issued invoice to storagePath and returns the
// absolute path of the written file.
func GenerateInvoicePDF(inv *model.Invoice, companyName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, companyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Sales Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, "Invoice No. "+inv.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 6, inv.InvoiceDate.Format("02/01/2006"), "", 1, "R", false, 0, "")

	customerName := ""
	if inv.Customer != nil {
		customerName = inv.Customer.Name
	}
	truckPlate := ""
	if inv.Truck != nil {
		truckPlate = inv.Truck.PlateNumber
	}
	pdf.CellFormat(contentW/2, 5, "Customer: "+customerName, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Truck: "+truckPlate, "", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Weight breakdown ──────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(col1, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, value, "", 1, "R", false, 0, "")
	}

	row("Gross weight (kg)", inv.GrossWeight.StringFixed(2), false)
	row(fmt.Sprintf("Cages weight (kg, %d cages)", inv.CagesCount), "-"+inv.CagesWeight.StringFixed(2), false)
	row("Net weight (kg)", inv.NetWeight.StringFixed(2), true)
	pdf.Ln(2)

	// ── Amounts ───────────────────────────────────────────────────────────────
	row("Unit price", inv.UnitPrice.StringFixed(2), false)
	row("Total amount", inv.TotalAmount.StringFixed(2), false)
	if !inv.DiscountPercentage.IsZero() {
		row("Discount ("+inv.DiscountPercentage.StringFixed(1)+"%)",
			"-"+inv.TotalAmount.Sub(inv.FinalAmount).StringFixed(2), false)
	}
	row("FINAL AMOUNT", inv.FinalAmount.StringFixed(2), true)
	pdf.Ln(2)

	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Account balance ───────────────────────────────────────────────────────
	row("Previous balance", inv.PreviousBalance.StringFixed(2), false)
	row("Current balance", inv.CurrentBalance.StringFixed(2), true)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, "Thank you for your business", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
