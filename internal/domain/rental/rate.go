package rental

import (
	"github.com/shopspring/decimal"
)

// RateType is the rate class of a stall assignment
type RateType string

const (
	RateTypeKhemah  RateType = "khemah"  // Tent site, charged weekly
	RateTypeCBS     RateType = "cbs"     // Truck/lorry site, charged weekly
	RateTypeMonthly RateType = "monthly" // Flat monthly site
)

// IsValid checks if the rate type is one of the known rate classes
func (r RateType) IsValid() bool {
	switch r {
	case RateTypeKhemah, RateTypeCBS, RateTypeMonthly:
		return true
	}
	return false
}

// String returns the string representation of RateType
func (r RateType) String() string {
	return string(r)
}

// PeriodKind returns the billing period of the rate class.
// Anything that is not monthly is billed weekly, including the legacy "daily" value.
func (r RateType) PeriodKind() PeriodKind {
	if r == RateTypeMonthly {
		return PeriodMonthly
	}
	return PeriodWeekly
}

// PeriodKind is the billing period of a rate class
type PeriodKind string

const (
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
)

// Unit returns the Malay unit used in overdue labels
func (p PeriodKind) Unit() string {
	if p == PeriodMonthly {
		return "Bulan"
	}
	return "Minggu"
}

// Rates is the per-period rate table of a location
type Rates struct {
	Khemah  decimal.Decimal `json:"rate_khemah"`
	CBS     decimal.Decimal `json:"rate_cbs"`
	Monthly decimal.Decimal `json:"rate_monthly"`
}

// Validate rejects negative rates
func (r Rates) Validate() error {
	if r.Khemah.IsNegative() || r.CBS.IsNegative() || r.Monthly.IsNegative() {
		return errNegativeRate
	}
	return nil
}

// ResolveRate picks the rate that applies to rateType at loc.
// Unknown rate types and a missing location resolve to zero.
func ResolveRate(rateType RateType, loc *Location) decimal.Decimal {
	if loc == nil {
		return decimal.Zero
	}
	switch rateType {
	case RateTypeKhemah:
		return loc.Rates.Khemah
	case RateTypeCBS:
		return loc.Rates.CBS
	case RateTypeMonthly:
		return loc.Rates.Monthly
	}
	return decimal.Zero
}
