package ledger

import "time"

type Status string

const (
	StatusCleared Status = "cleared"
	StatusOverdue Status = "overdue"
	StatusPrepaid Status = "prepaid"
)

// Summary is the derived financial snapshot of a tenant. It is never
// persisted; every read path recomputes it from the ledger.
type Summary struct {
	TenantID             string `json:"tenant_id"`
	MonthlyDueCents      int64  `json:"monthly_due_cents"`
	MTDPaidCents         int64  `json:"mtd_paid_cents"`
	CurrentMonthDueCents int64  `json:"current_month_due_cents"`
	BalanceCents         int64  `json:"balance_cents"`
	ArrearsCents         int64  `json:"arrears_cents"`
	Status               Status `json:"status"`
}

// StatusFor maps a running balance to a tenant status. Status is a pure
// function of the balance and is never stored independently.
func StatusFor(balanceCents int64) Status {
	switch {
	case balanceCents > 0:
		return StatusOverdue
	case balanceCents < 0:
		return StatusPrepaid
	default:
		return StatusCleared
	}
}

// ComputeSummary derives a tenant's snapshot from its full entry history and
// rent plan. Soft-deleted entries are excluded everywhere. The month-to-date
// window is the calendar month containing now, in UTC. Pure: identical
// inputs always produce identical output.
func ComputeSummary(tenantID string, entries []Entry, monthlyDueCents int64, now time.Time) Summary {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var totalDebits, totalCredits, mtdPaid int64
	for _, e := range entries {
		if e.Deleted {
			continue
		}
		switch e.Type {
		case TypeDebit:
			totalDebits += e.AmountCents
		case TypeCredit:
			totalCredits += e.AmountCents
			d := e.EntryDate.UTC()
			if !d.Before(monthStart) && d.Before(nextMonth) {
				mtdPaid += e.AmountCents
			}
		}
	}

	balance := totalDebits - totalCredits

	currentMonthDue := monthlyDueCents - mtdPaid
	if currentMonthDue < 0 {
		currentMonthDue = 0
	}
	arrears := balance
	if arrears < 0 {
		arrears = 0
	}

	return Summary{
		TenantID:             tenantID,
		MonthlyDueCents:      monthlyDueCents,
		MTDPaidCents:         mtdPaid,
		CurrentMonthDueCents: currentMonthDue,
		BalanceCents:         balance,
		ArrearsCents:         arrears,
		Status:               StatusFor(balance),
	}
}
