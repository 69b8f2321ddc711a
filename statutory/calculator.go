package statutory

import (
	"context"
	"fmt"

	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT
// =============================================================================

// AppliedDeduction is one line of a payslip's statutory section.
// TaxableBase is the running base this deduction saw, rounded for display.
type AppliedDeduction struct {
	TemplateID           generic.TemplateID `json:"template_id"`
	Code                 string             `json:"code"`
	Name                 string             `json:"name"`
	CalculationType      CalculationType    `json:"calculation_type"`
	Amount               decimal.Decimal    `json:"amount"`
	EmployerContribution decimal.Decimal    `json:"employer_contribution"`
	TaxableBase          decimal.Decimal    `json:"taxable_base"`
	ReducesTaxableIncome bool               `json:"reduces_taxable_income"`
}

// Result is the outcome of one payslip computation. Employer contributions
// are informational: they never reduce net pay.
type Result struct {
	Country                    generic.CountryCode `json:"country"`
	Currency                   string              `json:"currency"`
	EffectiveDate              generic.Date        `json:"effective_date"`
	GrossSalary                decimal.Decimal     `json:"gross_salary"`
	Deductions                 []AppliedDeduction  `json:"deductions"`
	TotalDeductions            decimal.Decimal     `json:"total_deductions"`
	NetSalary                  decimal.Decimal     `json:"net_salary"`
	TotalEmployerContributions decimal.Decimal     `json:"total_employer_contributions"`
	// RequiresReview is set when deductions exceed gross and net is negative.
	RequiresReview bool `json:"requires_review"`
}

// =============================================================================
// COMPUTE DEDUCTIONS
// =============================================================================

// ComputeDeductions applies the templates active for country on
// effectiveDate to a gross salary.
//
// Templates for other countries or dates are ignored, so callers may pass a
// whole catalog. The function is pure: same inputs, same result, no shared
// state, safe for concurrent use.
//
// Errors:
//   - *generic.InvalidInputError when gross is negative
//   - *generic.UnknownCountryError when country is not supported
//   - *generic.InvalidTaxBandConfigurationError for malformed bands
//   - *generic.OverlappingPeriodError when two versions of a code are active
func ComputeDeductions(gross decimal.Decimal, code generic.CountryCode, effectiveDate generic.Date, templates []Template) (*Result, error) {
	if gross.IsNegative() {
		return nil, &generic.InvalidInputError{Field: "gross_salary", Reason: "must not be negative"}
	}
	cfg, err := country.Get(code)
	if err != nil {
		return nil, err
	}

	active, err := ResolveActive(templates, cfg.Code, effectiveDate)
	if err != nil {
		return nil, err
	}

	places := cfg.Currency.Decimals
	result := &Result{
		Country:                    cfg.Code,
		Currency:                   cfg.Currency.Code(),
		EffectiveDate:              effectiveDate,
		GrossSalary:                gross,
		Deductions:                 make([]AppliedDeduction, 0, len(active)),
		TotalDeductions:            decimal.Zero,
		TotalEmployerContributions: decimal.Zero,
	}

	taxableBase := gross
	for _, t := range active {
		if t.Formula == nil {
			return nil, fmt.Errorf("%w: template %s has no formula", generic.ErrInvalidFormula, t.ID)
		}

		raw, err := t.Formula.Compute(Inputs{Gross: gross, Taxable: taxableBase})
		if err != nil {
			return nil, t.withID(err)
		}

		amount := generic.RoundHalfUp(raw, places)
		employer := generic.RoundHalfUp(t.EmployerRate.Mul(decimal.Max(taxableBase, decimal.Zero)), places)

		result.Deductions = append(result.Deductions, AppliedDeduction{
			TemplateID:           t.ID,
			Code:                 t.Code,
			Name:                 t.Name,
			CalculationType:      t.Formula.Type(),
			Amount:               amount,
			EmployerContribution: employer,
			TaxableBase:          generic.RoundHalfUp(taxableBase, places),
			ReducesTaxableIncome: t.ReducesTaxableIncome,
		})
		result.TotalDeductions = result.TotalDeductions.Add(amount)
		result.TotalEmployerContributions = result.TotalEmployerContributions.Add(employer)

		if t.ReducesTaxableIncome {
			taxableBase = taxableBase.Sub(raw)
		}
	}

	result.NetSalary = gross.Sub(result.TotalDeductions)
	result.RequiresReview = result.NetSalary.IsNegative()
	return result, nil
}

// =============================================================================
// CALCULATOR - Retrieval + computation
// =============================================================================

// Calculator resolves templates from a TemplateSource and computes.
type Calculator struct {
	Source TemplateSource
}

func NewCalculator(source TemplateSource) *Calculator {
	return &Calculator{Source: source}
}

// Compute loads the templates active on effectiveDate and applies them.
func (c *Calculator) Compute(ctx context.Context, gross decimal.Decimal, code generic.CountryCode, effectiveDate generic.Date) (*Result, error) {
	if gross.IsNegative() {
		return nil, &generic.InvalidInputError{Field: "gross_salary", Reason: "must not be negative"}
	}
	templates, err := c.Source.Active(ctx, code, effectiveDate)
	if err != nil {
		return nil, err
	}
	return ComputeDeductions(gross, code, effectiveDate, templates)
}
