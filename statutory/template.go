/*
Package statutory computes the deductions a school must withhold from staff
pay under each country's law (income tax, pension, health insurance, housing
levies...).

PURPOSE:
  Statutory rules change every budget cycle and differ per country, so none
  of them are hard-coded. Administrators publish Templates (one per
  deduction per effective period) and the calculator applies whichever are
  active on the pay date.

KEY CONCEPTS:
  - Template: One versioned deduction rule for one country
  - Formula: Flat, percentage, progressive tax band or expression
  - Calculation order: Templates run in ascending CalculationOrder
  - Taxable base: Starts at gross; templates flagged ReducesTaxableIncome
    (pension contributions, typically) lower it for every later template
  - Effective period: Half-open [EffectiveFrom, EffectiveTo); a new version
    closes the previous one instead of editing it

CALCULATION FLOW:
  gross ──► taxable base ──► template 1 ──► template 2 ──► ... ──► net
               ▲                 │
               └── reduced when ─┘ ReducesTaxableIncome

ROUNDING:
  Amounts are rounded half-up to the country's currency decimals when they
  are recorded on the result. The running taxable base keeps full precision.

SEE ALSO:
  - formula.go: Calculation variants
  - catalog.go: Versioned publication and date resolution
  - calculator.go: ComputeDeductions
  - factory/template.go: JSON payloads to Templates
*/
package statutory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edusuite/engine/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TEMPLATE
// =============================================================================

// Template is one version of a statutory deduction. Templates are never
// edited after publication; only EffectiveTo may be set once, when a
// successor is published or the deduction is retired.
type Template struct {
	ID                   generic.TemplateID
	Country              generic.CountryCode
	Code                 string // stable across versions, e.g. "PAYE"
	Name                 string
	Formula              Formula
	CalculationOrder     int
	EffectiveFrom        generic.Date
	EffectiveTo          *generic.Date
	ReducesTaxableIncome bool
	EmployerRate         decimal.Decimal // employer share as a rate of the taxable base; zero for none
}

// Period returns the half-open validity window.
func (t Template) Period() generic.EffectivePeriod {
	return generic.EffectivePeriod{From: t.EffectiveFrom, To: t.EffectiveTo}
}

// ActiveOn reports whether the template applies on d.
func (t Template) ActiveOn(d generic.Date) bool {
	return t.Period().Contains(d)
}

// CalculationType returns the formula variant, or "" without a formula.
func (t Template) CalculationType() CalculationType {
	if t.Formula == nil {
		return ""
	}
	return t.Formula.Type()
}

// Validate checks the template is complete and its formula is well formed.
// Band errors are returned as *generic.InvalidTaxBandConfigurationError
// carrying this template's ID.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return &generic.InvalidInputError{Field: "code", Reason: "is required"}
	}
	if t.Country == "" {
		return &generic.InvalidInputError{Field: "country", Reason: "is required"}
	}
	if t.Formula == nil {
		return fmt.Errorf("%w: template %s has no formula", generic.ErrInvalidFormula, t.Code)
	}
	if err := t.Period().Validate(); err != nil {
		return err
	}
	if !validRate(t.EmployerRate) {
		return &generic.InvalidInputError{Field: "employer_contribution_rate", Reason: "must be within [0, 1]"}
	}
	return t.withID(t.Formula.Validate())
}

// withID stamps the template ID onto band configuration errors.
func (t Template) withID(err error) error {
	var bandErr *generic.InvalidTaxBandConfigurationError
	if errors.As(err, &bandErr) && bandErr.TemplateID == "" {
		stamped := *bandErr
		stamped.TemplateID = t.ID
		return &stamped
	}
	return err
}
