package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/payments"
)

func TestRenderReceiptPDF(t *testing.T) {
	tx := "TX12345"
	data := ReceiptData{
		Payment: payments.Payment{
			ID:          "0b290d45-4f40-4c6a-9d3e-111111111111",
			TenantID:    "t1",
			AmountCents: 500000,
			Method:      payments.MethodMobileMoney,
			TxID:        &tx,
			PaidAt:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		Summary: ledger.Summary{
			TenantID:             "t1",
			MonthlyDueCents:      1500000,
			MTDPaidCents:         500000,
			CurrentMonthDueCents: 1000000,
			BalanceCents:         1000000,
			ArrearsCents:         1000000,
			Status:               ledger.StatusOverdue,
		},
		TenantName: "Jane Wanjiku",
		UnitLabel:  "A-12",
	}

	pdfBytes, err := RenderReceiptPDF(data)
	if err != nil {
		t.Fatalf("RenderReceiptPDF: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", pdfBytes[:4])
	}
}

func TestRenderLedgerXLSX(t *testing.T) {
	entries := []ledger.Entry{
		{ID: "e1", TenantID: "t1", Type: ledger.TypeDebit, AmountCents: 1500000,
			EntryDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Description: "march rent"},
		{ID: "e2", TenantID: "t1", Type: ledger.TypeCredit, AmountCents: 500000,
			EntryDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Description: "rent payment"},
		{ID: "e3", TenantID: "t1", Type: ledger.TypeCredit, AmountCents: 999900,
			EntryDate: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), Description: "mistake", Deleted: true},
	}

	xlsxBytes, err := RenderLedgerXLSX("Jane Wanjiku", entries)
	if err != nil {
		t.Fatalf("RenderLedgerXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(xlsxBytes))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Ledger")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	// header + 3 entries + blank + balance line
	if len(rows) < 5 {
		t.Fatalf("expected at least 5 rows, got %d", len(rows))
	}

	// Soft-deleted entries are listed but excluded from the balance.
	balance, err := f.GetCellValue("Ledger", "C6")
	if err != nil {
		t.Fatalf("read balance cell: %v", err)
	}
	if balance != "10000.00" {
		t.Fatalf("balance = %q, want 10000.00", balance)
	}
}
