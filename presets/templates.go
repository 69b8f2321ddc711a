/*
Package presets provides ready-made statutory deduction templates as JSON.

PURPOSE:
  Schools onboarding into a new country need a starting catalog. These
  builders produce the same JSON an administrator would POST to
  /api/templates, so they go through the normal factory and catalog
  validation when loaded.

AVAILABLE TEMPLATES:
  Kenya:   NSSF (capped percentage), SHIF, Affordable Housing Levy, PAYE
  Uganda:  NSSF, PAYE
  Nigeria: Pension (contributory scheme), NHF, PAYE

ACCURACY:
  Rates and bands follow the published monthly schedules at the time of
  writing. They are starting points: payroll officers must check them
  against current law and publish successors when rates change.

EXAMPLE:
  for _, js := range presets.Kenya("2025-02-01") {
      tpl, err := factory.NewTemplateFactory().ParseTemplate(js)
      ...
      catalog.Publish(ctx, tpl)
  }

SEE ALSO:
  - factory/template.go: JSON schema
  - api/scenarios.go: Demo data built on these
*/
package presets

import (
	"encoding/json"
)

// Calculation order shared by every country: social security first so it
// can reduce the taxable base, income tax last.
const (
	OrderPension = 10
	OrderHealth  = 20
	OrderLevy    = 30
	OrderPAYE    = 40
)

type band struct {
	lower, upper, rate string
}

func templateJSON(id, country, code, name, calcType string, order int, from string, reducesTaxable bool, employerRate string, formula map[string]interface{}) string {
	tj := map[string]interface{}{
		"country":                country,
		"code":                   code,
		"name":                   name,
		"calculation_type":       calcType,
		"calculation_order":      order,
		"effective_from":         from,
		"reduces_taxable_income": reducesTaxable,
		"formula":                formula,
	}
	if id != "" {
		tj["id"] = id
	}
	if employerRate != "" {
		tj["employer_contribution_rate"] = employerRate
	}
	b, _ := json.MarshalIndent(tj, "", "  ")
	return string(b)
}

func bandsFormula(relief string, bands ...band) map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(bands))
	for _, b := range bands {
		row := map[string]interface{}{"lower": b.lower, "rate": b.rate}
		if b.upper != "" {
			row["upper"] = b.upper
		}
		out = append(out, row)
	}
	return map[string]interface{}{"bands": out, "relief": relief}
}

// =============================================================================
// GENERIC BUILDERS
// =============================================================================

// PercentageJSON returns JSON for a percentage deduction. base is "gross"
// or "taxable"; an empty ceiling means uncapped.
func PercentageJSON(id, country, code, name string, order int, from, rate, base, ceiling string, reducesTaxable bool, employerRate string) string {
	formula := map[string]interface{}{"rate": rate, "base": base}
	if ceiling != "" {
		formula["base_ceiling"] = ceiling
	}
	return templateJSON(id, country, code, name, "percentage", order, from, reducesTaxable, employerRate, formula)
}

// ExpressionJSON returns JSON for a deduction computed from an expression
// over gross and taxable.
func ExpressionJSON(id, country, code, name string, order int, from, expression string, reducesTaxable bool) string {
	return templateJSON(id, country, code, name, "formula", order, from, reducesTaxable, "",
		map[string]interface{}{"expression": expression})
}

// =============================================================================
// KENYA
// =============================================================================

// KenyaNSSFJSON returns the NSSF tier I+II contribution: 6% of pay up to
// the upper earnings limit, matched by the employer.
func KenyaNSSFJSON(id, from, upperEarningsLimit string) string {
	return PercentageJSON(id, "KE", "NSSF", "National Social Security Fund", OrderPension, from,
		"0.06", "gross", upperEarningsLimit, true, "0.06")
}

// KenyaSHIFJSON returns the Social Health Insurance Fund deduction.
func KenyaSHIFJSON(id, from string) string {
	return PercentageJSON(id, "KE", "SHIF", "Social Health Insurance Fund", OrderHealth, from,
		"0.0275", "gross", "", true, "")
}

// KenyaHousingLevyJSON returns the Affordable Housing Levy, matched by
// the employer.
func KenyaHousingLevyJSON(id, from string) string {
	return PercentageJSON(id, "KE", "AHL", "Affordable Housing Levy", OrderLevy, from,
		"0.015", "gross", "", true, "0.015")
}

// KenyaPAYEJSON returns monthly PAYE bands with personal relief.
func KenyaPAYEJSON(id, from string) string {
	return templateJSON(id, "KE", "PAYE", "Pay As You Earn", "tax_band", OrderPAYE, from, false, "",
		bandsFormula("2400",
			band{"0", "24000", "0.10"},
			band{"24000", "32333", "0.25"},
			band{"32333", "500000", "0.30"},
			band{"500000", "800000", "0.325"},
			band{"800000", "", "0.35"},
		))
}

// Kenya returns the full Kenyan set effective from the given date.
func Kenya(from string) []string {
	return []string{
		KenyaNSSFJSON("", from, "72000"),
		KenyaSHIFJSON("", from),
		KenyaHousingLevyJSON("", from),
		KenyaPAYEJSON("", from),
	}
}

// =============================================================================
// UGANDA
// =============================================================================

// UgandaNSSFJSON returns the 5% employee NSSF contribution with the 10%
// employer share. It does not reduce chargeable income.
func UgandaNSSFJSON(id, from string) string {
	return PercentageJSON(id, "UG", "NSSF", "National Social Security Fund", OrderPension, from,
		"0.05", "gross", "", false, "0.10")
}

// UgandaPAYEJSON returns monthly PAYE bands for residents.
func UgandaPAYEJSON(id, from string) string {
	return templateJSON(id, "UG", "PAYE", "Pay As You Earn", "tax_band", OrderPAYE, from, false, "",
		bandsFormula("0",
			band{"0", "235000", "0"},
			band{"235000", "335000", "0.10"},
			band{"335000", "410000", "0.20"},
			band{"410000", "", "0.30"},
		))
}

// Uganda returns the full Ugandan set effective from the given date.
func Uganda(from string) []string {
	return []string{
		UgandaNSSFJSON("", from),
		UgandaPAYEJSON("", from),
	}
}

// =============================================================================
// NIGERIA
// =============================================================================

// NigeriaPensionJSON returns the contributory pension: 8% employee, 10%
// employer, deductible before tax.
func NigeriaPensionJSON(id, from string) string {
	return PercentageJSON(id, "NG", "PENSION", "Contributory Pension Scheme", OrderPension, from,
		"0.08", "gross", "", true, "0.10")
}

// NigeriaNHFJSON returns the National Housing Fund contribution.
func NigeriaNHFJSON(id, from string) string {
	return PercentageJSON(id, "NG", "NHF", "National Housing Fund", OrderHealth, from,
		"0.025", "gross", "", true, "")
}

// NigeriaPAYEJSON returns the monthly equivalent of the annual PAYE bands.
func NigeriaPAYEJSON(id, from string) string {
	return templateJSON(id, "NG", "PAYE", "Pay As You Earn", "tax_band", OrderPAYE, from, false, "",
		bandsFormula("0",
			band{"0", "25000", "0.07"},
			band{"25000", "50000", "0.11"},
			band{"50000", "91666.67", "0.15"},
			band{"91666.67", "133333.33", "0.19"},
			band{"133333.33", "266666.67", "0.21"},
			band{"266666.67", "", "0.24"},
		))
}

// Nigeria returns the full Nigerian set effective from the given date.
func Nigeria(from string) []string {
	return []string{
		NigeriaPensionJSON("", from),
		NigeriaNHFJSON("", from),
		NigeriaPAYEJSON("", from),
	}
}
