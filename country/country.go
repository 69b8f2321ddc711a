/*
Package country holds the per-country reference data EduSuite needs to run a
school: currency display rules, the national grading scale and the academic
calendar.

PURPOSE:
  Every school belongs to exactly one country. Fee statements, report cards,
  term pickers and the payroll calculator all start by resolving that
  country's Config. The tables are static, built once at package init and
  validated there, so lookups never fail for a supported code.

KEY CONCEPTS:
  - Config: Everything known about one country
  - CurrencyFormat: ISO unit, symbol, decimal places and separators
  - GradingScale: Contiguous score bands covering [0, 100]
  - AcademicCalendar: Year start/end months and terms, which may wrap
    across December (e.g. a September-to-July year)

USAGE:
  cfg, err := country.Get("KE")
  s, _ := country.FormatCurrency(decimal.NewFromInt(1234567), "KE") // "KSh 1,234,567.00"
  band, ok, _ := country.GradeFromScore(decimal.NewFromInt(81), "KE") // A
  term, ok, _ := country.CurrentTerm("NG", generic.SystemClock{})

SEE ALSO:
  - registry.go: The country tables and lookups
  - statutory/calculator.go: Uses Currency.Decimals for rounding
*/
package country

import (
	"fmt"
	"strings"
	"time"

	"github.com/edusuite/engine/generic"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config is the immutable reference data of one supported country.
type Config struct {
	Code     generic.CountryCode
	Name     string
	Currency CurrencyFormat
	Grading  GradingScale
	Calendar AcademicCalendar
}

// =============================================================================
// CURRENCY FORMAT
// =============================================================================

type CurrencyFormat struct {
	Unit               currency.Unit
	Symbol             string
	Decimals           int32
	ThousandsSeparator string
	DecimalSeparator   string
}

// Code returns the ISO 4217 code, e.g. "KES".
func (f CurrencyFormat) Code() string { return f.Unit.String() }

// Format renders amount as "<symbol> <grouped digits>[<sep><fraction>]",
// rounding half-up to Decimals first. Negative amounts get a leading "-".
func (f CurrencyFormat) Format(amount decimal.Decimal) string {
	rounded := generic.RoundHalfUp(amount, f.Decimals)
	digits := rounded.Abs().StringFixed(f.Decimals)

	intPart, fracPart, _ := strings.Cut(digits, ".")
	out := groupThousands(intPart, f.ThousandsSeparator)
	if f.Decimals > 0 {
		out += f.DecimalSeparator + fracPart
	}
	out = f.Symbol + " " + out
	if rounded.IsNegative() {
		out = "-" + out
	}
	return out
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// =============================================================================
// GRADING SCALE
// =============================================================================

// GradeBand is one row of a grading scale. Min and Max are inclusive
// percentages. Points is the aggregate weight used by national exams; nil
// when the scale has none, which is not the same as a band worth 0.
type GradeBand struct {
	Grade  string
	Min    decimal.Decimal
	Max    decimal.Decimal
	Points *int
	Remark string
}

// GradingScale lists bands from the highest grade down.
type GradingScale struct {
	ID    string
	Name  string
	Bands []GradeBand
}

var (
	scoreFloor   = decimal.Zero
	scoreCeiling = decimal.NewFromInt(100)
)

// Lookup returns the band containing score. Bands are matched top-down on
// their lower bound, so a fractional score between two integer bands (79.5
// between 75-79 and 80-100) belongs to the lower band. Scores outside
// [0, 100] have no grade.
func (s GradingScale) Lookup(score decimal.Decimal) (GradeBand, bool) {
	if score.LessThan(scoreFloor) || score.GreaterThan(scoreCeiling) {
		return GradeBand{}, false
	}
	for _, b := range s.Bands {
		if score.GreaterThanOrEqual(b.Min) {
			return b, true
		}
	}
	return GradeBand{}, false
}

// Validate checks that bands run from 100 down to 0 without overlap and
// without a gap of a whole point or more.
func (s GradingScale) Validate() error {
	if len(s.Bands) == 0 {
		return fmt.Errorf("grading scale %s: no bands", s.ID)
	}
	if !s.Bands[0].Max.Equal(scoreCeiling) {
		return fmt.Errorf("grading scale %s: top band %s must end at 100", s.ID, s.Bands[0].Grade)
	}
	last := s.Bands[len(s.Bands)-1]
	if !last.Min.Equal(scoreFloor) {
		return fmt.Errorf("grading scale %s: bottom band %s must start at 0", s.ID, last.Grade)
	}
	for i, b := range s.Bands {
		if b.Min.GreaterThan(b.Max) {
			return fmt.Errorf("grading scale %s: band %s has min above max", s.ID, b.Grade)
		}
		if i == 0 {
			continue
		}
		above := s.Bands[i-1]
		if !b.Max.LessThan(above.Min) {
			return fmt.Errorf("grading scale %s: bands %s and %s overlap", s.ID, above.Grade, b.Grade)
		}
		if above.Min.Sub(b.Max).GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("grading scale %s: gap between %s and %s", s.ID, above.Grade, b.Grade)
		}
	}
	return nil
}

// =============================================================================
// ACADEMIC CALENDAR
// =============================================================================

type Term struct {
	Name   string
	Months generic.MonthRange
}

// AcademicCalendar spans StartMonth..EndMonth inclusive. When StartMonth is
// after EndMonth the year wraps into the next calendar year.
type AcademicCalendar struct {
	StartMonth time.Month
	EndMonth   time.Month
	Terms      []Term
}

// AcademicYear is a resolved school year, e.g. "2025/2026".
type AcademicYear struct {
	Label string
	Start generic.Date
	End   generic.Date
}

// Wraps reports whether the academic year crosses December.
func (c AcademicCalendar) Wraps() bool { return c.StartMonth > c.EndMonth }

// TermFor returns the term containing the month of d. Holiday months
// between terms have no term.
func (c AcademicCalendar) TermFor(d generic.Date) (Term, bool) {
	for _, t := range c.Terms {
		if t.Months.Contains(d.Month()) {
			return t, true
		}
	}
	return Term{}, false
}

// YearFor returns the academic year containing d. For wrapping calendars the
// year starts in StartMonth: on or after it we are in year/year+1, before it
// in year-1/year. Non-wrapping calendars follow the calendar year.
func (c AcademicCalendar) YearFor(d generic.Date) AcademicYear {
	if !c.Wraps() {
		return AcademicYear{
			Label: fmt.Sprintf("%d", d.Year()),
			Start: generic.StartOfMonth(d.Year(), c.StartMonth),
			End:   generic.EndOfMonth(d.Year(), c.EndMonth),
		}
	}
	period := generic.YearConfig{StartMonth: c.StartMonth}.PeriodFor(d)
	startYear := period.Start.Year()
	return AcademicYear{
		Label: fmt.Sprintf("%d/%d", startYear, startYear+1),
		Start: period.Start,
		End:   generic.EndOfMonth(startYear+1, c.EndMonth),
	}
}

// Validate rejects calendars where two terms claim the same month.
func (c AcademicCalendar) Validate() error {
	if len(c.Terms) == 0 {
		return fmt.Errorf("academic calendar: no terms")
	}
	for m := time.January; m <= time.December; m++ {
		claimed := ""
		for _, t := range c.Terms {
			if !t.Months.Contains(m) {
				continue
			}
			if claimed != "" {
				return fmt.Errorf("academic calendar: %s claimed by %s and %s", m, claimed, t.Name)
			}
			claimed = t.Name
		}
	}
	return nil
}

// clone deep-copies the slices so callers cannot mutate the registry.
func (c Config) clone() Config {
	out := c
	out.Grading.Bands = append([]GradeBand(nil), c.Grading.Bands...)
	for i, b := range out.Grading.Bands {
		if b.Points != nil {
			p := *b.Points
			out.Grading.Bands[i].Points = &p
		}
	}
	out.Calendar.Terms = append([]Term(nil), c.Calendar.Terms...)
	return out
}
