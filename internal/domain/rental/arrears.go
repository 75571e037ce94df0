package rental

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// ArrearsStatus is the payment standing of a tenant
type ArrearsStatus string

const (
	ArrearsStatusNew     ArrearsStatus = "new"     // No approved payment on record
	ArrearsStatusPaid    ArrearsStatus = "paid"    // Within the grace window
	ArrearsStatusOverdue ArrearsStatus = "overdue" // Past the grace window
)

// ArrearsPolicy sets the period length and grace window for each billing period.
// Grace is the number of days after the last payment before a tenant counts as overdue.
type ArrearsPolicy struct {
	MonthlyPeriodDays int `json:"monthly_period_days"`
	MonthlyGraceDays  int `json:"monthly_grace_days"`
	WeeklyPeriodDays  int `json:"weekly_period_days"`
	WeeklyGraceDays   int `json:"weekly_grace_days"`
}

// DefaultArrearsPolicy returns 30-day months and 7-day weeks with no extra grace
func DefaultArrearsPolicy() ArrearsPolicy {
	return ArrearsPolicy{
		MonthlyPeriodDays: 30,
		MonthlyGraceDays:  30,
		WeeklyPeriodDays:  7,
		WeeklyGraceDays:   7,
	}
}

// Validate checks that period lengths are positive and grace is not negative
func (p ArrearsPolicy) Validate() error {
	if p.MonthlyPeriodDays <= 0 || p.WeeklyPeriodDays <= 0 {
		return shared.NewValidationError("Arrears period length must be positive")
	}
	if p.MonthlyGraceDays < 0 || p.WeeklyGraceDays < 0 {
		return shared.NewValidationError("Arrears grace days cannot be negative")
	}
	return nil
}

// For returns the period length and grace days for kind
func (p ArrearsPolicy) For(kind PeriodKind) (periodDays, graceDays int) {
	if kind == PeriodMonthly {
		return p.MonthlyPeriodDays, p.MonthlyGraceDays
	}
	return p.WeeklyPeriodDays, p.WeeklyGraceDays
}

// ArrearsResult is the computed standing of one tenant
type ArrearsResult struct {
	Status         ArrearsStatus   `json:"status"`
	Period         PeriodKind      `json:"period"`
	DaysElapsed    int             `json:"days_elapsed"`
	OverduePeriods int             `json:"overdue_periods"`
	ArrearsAmount  decimal.Decimal `json:"arrears_amount"`
	Label          string          `json:"label,omitempty"`
}

// IsOverdue returns true when the tenant owes arrears
func (r ArrearsResult) IsOverdue() bool {
	return r.Status == ArrearsStatusOverdue
}

// ComputeStatus derives the arrears standing from the last approved payment date.
// It performs no I/O; the clock and the rate are inputs.
func ComputeStatus(rateType RateType, lastPayment *time.Time, today time.Time, rate decimal.Decimal, policy ArrearsPolicy) ArrearsResult {
	kind := rateType.PeriodKind()
	result := ArrearsResult{
		Period:        kind,
		ArrearsAmount: decimal.Zero,
	}
	if lastPayment == nil {
		result.Status = ArrearsStatusNew
		return result
	}

	periodDays, graceDays := policy.For(kind)
	if periodDays <= 0 {
		periodDays = 1
	}
	result.DaysElapsed = DaysElapsed(*lastPayment, today)
	if result.DaysElapsed <= graceDays {
		result.Status = ArrearsStatusPaid
		return result
	}

	result.Status = ArrearsStatusOverdue
	result.OverduePeriods = result.DaysElapsed / periodDays
	if result.OverduePeriods < 1 {
		// grace shorter than one period
		result.OverduePeriods = 1
	}
	result.ArrearsAmount = rate.Mul(decimal.NewFromInt(int64(result.OverduePeriods)))
	result.Label = fmt.Sprintf("%d %s", result.OverduePeriods, kind.Unit())
	return result
}

// DaysElapsed returns the absolute distance between two instants in whole days, rounded up
func DaysElapsed(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		d = -d
	}
	const day = 24 * time.Hour
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
