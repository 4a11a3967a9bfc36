package reports

import (
	"bytes"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/money"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
)

// ReceiptData is everything a rendered receipt shows.
type ReceiptData struct {
	Payment    payments.Payment
	Summary    ledger.Summary
	TenantName string
	UnitLabel  string
}

// RenderReceiptPDF produces the tenant-facing payment receipt.
func RenderReceiptPDF(d ReceiptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetTextColor(235, 235, 235)
	pdf.Text(25, 140, "RENTPILOT")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Payment Receipt")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Receipt no: "+shortID(d.Payment.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Date: "+d.Payment.PaidAt.UTC().Format("2006-01-02 15:04")+" UTC")
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 9, label, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(132, 9, value, "1", 1, "L", false, 0, "")
	}

	row("Tenant", d.TenantName)
	if d.UnitLabel != "" {
		row("Unit", d.UnitLabel)
	}
	row("Amount (KES)", money.CentsToShillingsString(d.Payment.AmountCents))
	row("Method", d.Payment.Method)
	if d.Payment.TxID != nil {
		row("Transaction ref", *d.Payment.TxID)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Account after this payment")
	pdf.Ln(8)
	row("Balance (KES)", money.CentsToShillingsString(d.Summary.BalanceCents))
	row("Arrears (KES)", money.CentsToShillingsString(d.Summary.ArrearsCents))
	row("This month still due (KES)", money.CentsToShillingsString(d.Summary.CurrentMonthDueCents))
	row("Status", string(d.Summary.Status))

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.Cell(0, 5, "Generated "+time.Now().UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
