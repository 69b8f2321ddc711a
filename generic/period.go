package generic

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// EFFECTIVE PERIOD - Half-open validity window [From, To)
// =============================================================================

// EffectivePeriod bounds the validity of a versioned record such as a
// statutory deduction template. From is inclusive, To is exclusive, and a
// nil To means open-ended.
//
// Examples:
//   - [2024-01-01, 2024-07-01): applies up to and including 2024-06-30
//   - [2024-07-01, nil): applies from 2024-07-01 onwards
type EffectivePeriod struct {
	From Date
	To   *Date
}

// Contains reports whether d lies in [From, To).
func (p EffectivePeriod) Contains(d Date) bool {
	if d.Before(p.From) {
		return false
	}
	return p.To == nil || d.Before(*p.To)
}

// IsOpen reports whether the period has no end.
func (p EffectivePeriod) IsOpen() bool { return p.To == nil }

// Overlaps reports whether two half-open periods share at least one day.
func (p EffectivePeriod) Overlaps(other EffectivePeriod) bool {
	startsBeforeOtherEnds := other.To == nil || p.From.Before(*other.To)
	otherStartsBeforeEnd := p.To == nil || other.From.Before(*p.To)
	return startsBeforeOtherEnds && otherStartsBeforeEnd
}

// Validate rejects empty or inverted periods.
func (p EffectivePeriod) Validate() error {
	if p.From.IsZero() {
		return fmt.Errorf("%w: effective_from is required", ErrInvalidPeriod)
	}
	if p.To != nil && !p.To.After(p.From) {
		return fmt.Errorf("%w: effective_to %s must be after effective_from %s", ErrInvalidPeriod, p.To, p.From)
	}
	return nil
}

func (p EffectivePeriod) String() string {
	if p.To == nil {
		return "[" + p.From.String() + ", ∞)"
	}
	return "[" + p.From.String() + ", " + p.To.String() + ")"
}

// =============================================================================
// PERIOD - Closed date range [Start, End]
// =============================================================================

type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within the period [Start, End]
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// YEAR CONFIG - Years that start in an arbitrary month
// =============================================================================

// YearConfig describes a twelve-month year starting on the first of
// StartMonth. January gives the calendar year; September gives the typical
// West African school year.
type YearConfig struct {
	StartMonth time.Month
}

// PeriodFor returns the year that contains the given date.
func (yc YearConfig) PeriodFor(date Date) Period {
	start := yc.StartMonth
	if start < time.January || start > time.December {
		start = time.January
	}
	yearStart := NewDate(date.Year(), start, 1)

	// Before this year's start month we are still in the previous year
	if date.Before(yearStart) {
		yearStart = NewDate(date.Year()-1, start, 1)
	}

	return Period{Start: yearStart, End: yearStart.AddYears(1).AddDays(-1)}
}

// Wraps reports whether the year crosses a calendar-year boundary.
func (yc YearConfig) Wraps() bool {
	return yc.StartMonth > time.January
}

// =============================================================================
// MONTH RANGE - Inclusive month span that may wrap December
// =============================================================================

// MonthRange is an inclusive range of months. A range whose Start is after
// its End wraps the year boundary (e.g. September..December..March).
type MonthRange struct {
	Start time.Month
	End   time.Month
}

// Contains reports whether m falls in the range, honouring wrap-around.
func (r MonthRange) Contains(m time.Month) bool {
	if r.Start <= r.End {
		return m >= r.Start && m <= r.End
	}
	return m >= r.Start || m <= r.End
}

// Wraps reports whether the range crosses December.
func (r MonthRange) Wraps() bool { return r.Start > r.End }

// =============================================================================
// PAY PERIOD - Calendar month a payroll run covers
// =============================================================================

// PayPeriod identifies a payroll month, formatted YYYY-MM.
type PayPeriod struct {
	Year  int
	Month time.Month
}

func PayPeriodOf(d Date) PayPeriod { return PayPeriod{Year: d.Year(), Month: d.Month()} }

func ParsePayPeriod(s string) (PayPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return PayPeriod{}, fmt.Errorf("%w: pay period %q, expected YYYY-MM", ErrInvalidPeriod, s)
	}
	return PayPeriod{Year: t.Year(), Month: t.Month()}, nil
}

func (p PayPeriod) String() string { return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month)) }
func (p PayPeriod) Start() Date    { return StartOfMonth(p.Year, p.Month) }
func (p PayPeriod) End() Date      { return EndOfMonth(p.Year, p.Month) }
func (p PayPeriod) IsZero() bool   { return p.Year == 0 && p.Month == 0 }

// PayDate returns day of the period, clamped to the last day of the month.
// Zero or negative means the last day.
func (p PayPeriod) PayDate(day int) Date {
	end := p.End()
	if day <= 0 || day >= end.Day() {
		return end
	}
	return NewDate(p.Year, p.Month, day)
}

func (p PayPeriod) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PayPeriod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePayPeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
