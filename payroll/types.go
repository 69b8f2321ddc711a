/*
Package payroll runs the statutory calculator over a whole staff list for one
country and pay period.

PURPOSE:
  statutory.ComputeDeductions prices one payslip. A school pays everyone at
  once, so this package batches it: one template read per run, a bounded
  worker pool over staff, totals, a printable register and net pay in words
  for the payslip footer.

KEY CONCEPTS:
  - StaffMember: Employee with a monthly gross salary in local currency
  - Run: One country's payroll for one pay period (YYYY-MM)
  - Payslip: Statutory result for one staff member
  - ErrorPolicy: Abort the batch on the first failure, or continue and
    record the failure against that staff member
  - Flagged for review: Payslips whose deductions exceed gross

RUN FLOW:
  staff ──► Aggregator.Run ──► worker pool ──► ComputeDeductions ──► Payslips
                 │                                                      │
                 └── Templates.Active (once) ──────────────────────────►│
                                                                        ▼
                                                              Totals + Register

SEE ALSO:
  - statutory/calculator.go: per-payslip computation
  - store/sqlite: RunStore and StaffStore persistence
  - api/scheduler.go: monthly trigger
*/
package payroll

import (
	"time"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STAFF
// =============================================================================

// StaffMember is a payable employee. GrossSalary is monthly, in the
// currency of Country.
type StaffMember struct {
	ID          generic.StaffID     `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email,omitempty"`
	Country     generic.CountryCode `json:"country"`
	GrossSalary decimal.Decimal     `json:"gross_salary"`
	Active      bool                `json:"active"`
	CreatedAt   time.Time           `json:"created_at"`
}

// =============================================================================
// RUN
// =============================================================================

type RunStatus string

const (
	RunCompleted           RunStatus = "completed"
	RunCompletedWithErrors RunStatus = "completed_with_errors"
)

// ErrorPolicy decides what a staff-level failure does to the batch.
type ErrorPolicy string

const (
	AbortOnError    ErrorPolicy = "abort"    // first failure cancels the run
	ContinueOnError ErrorPolicy = "continue" // failures recorded, others paid
)

// RunInput is what the Aggregator needs to price one period.
type RunInput struct {
	Country generic.CountryCode
	Period  generic.PayPeriod
	// EffectiveDate selects template versions; zero means the period's last day.
	EffectiveDate generic.Date
	Staff         []StaffMember
}

// Payslip is one staff member's statutory result.
type Payslip struct {
	ID           string            `json:"id"`
	StaffID      generic.StaffID   `json:"staff_id"`
	StaffName    string            `json:"staff_name"`
	Result       *statutory.Result `json:"result"`
	NetFormatted string            `json:"net_formatted"`
	NetInWords   string            `json:"net_in_words"`
}

// StaffFailure records a staff member that could not be priced under
// ContinueOnError.
type StaffFailure struct {
	StaffID   generic.StaffID `json:"staff_id"`
	StaffName string          `json:"staff_name"`
	Error     string          `json:"error"`
	Retryable bool            `json:"retryable"`
}

// CodeTotal sums one deduction code across the run.
type CodeTotal struct {
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Amount               decimal.Decimal `json:"amount"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
}

// Totals aggregates every successful payslip of a run.
type Totals struct {
	Headcount             int               `json:"headcount"`
	Gross                 decimal.Decimal   `json:"gross"`
	Deductions            decimal.Decimal   `json:"deductions"`
	Net                   decimal.Decimal   `json:"net"`
	EmployerContributions decimal.Decimal   `json:"employer_contributions"`
	ByCode                []CodeTotal       `json:"by_code"` // first-appearance order
	FlaggedForReview      []generic.StaffID `json:"flagged_for_review"`
}

// Run is a priced payroll period.
type Run struct {
	ID            generic.RunID       `json:"id"`
	Country       generic.CountryCode `json:"country"`
	Currency      string              `json:"currency"`
	Period        generic.PayPeriod   `json:"period"`
	EffectiveDate generic.Date        `json:"effective_date"`
	Status        RunStatus           `json:"status"`
	Totals        Totals              `json:"totals"`
	Payslips      []Payslip           `json:"payslips,omitempty"`
	Failures      []StaffFailure      `json:"failures,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}
