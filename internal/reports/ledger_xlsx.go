package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/ledger"
	"github.com/Techgrind-Sharlyne/rentpilot-prod-sub002/internal/money"
)

// RenderLedgerXLSX exports a tenant's full entry history as a spreadsheet
// for offline reconciliation. Soft-deleted entries are included and marked,
// so auditors see corrections rather than gaps.
func RenderLedgerXLSX(tenantName string, entries []ledger.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ledger"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Type", "Amount (KES)", "Description", "Deleted", "Entry ID"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	var balance int64
	for i, e := range entries {
		rowN := i + 2
		amount := money.CentsToShillingsString(e.AmountCents)
		if !e.Deleted {
			if e.Type == ledger.TypeDebit {
				balance += e.AmountCents
			} else {
				balance -= e.AmountCents
			}
		}
		values := []any{
			e.EntryDate.UTC().Format("2006-01-02"),
			string(e.Type),
			amount,
			e.Description,
			e.Deleted,
			e.ID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowN)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	summaryRow := len(entries) + 3
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	if err := f.SetCellValue(sheet, cell, fmt.Sprintf("Balance for %s (KES)", tenantName)); err != nil {
		return nil, err
	}
	cell, _ = excelize.CoordinatesToCellName(3, summaryRow)
	if err := f.SetCellValue(sheet, cell, money.CentsToShillingsString(balance)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
