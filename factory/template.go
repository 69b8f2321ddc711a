/*
Package factory provides JSON to Go statutory template conversion.

PURPOSE:
  Converts JSON deduction definitions into statutory.Template values and
  back. Administrators publish a new PAYE table or pension rate through the
  API as JSON; the factory builds the typed Formula and the store keeps the
  same JSON for the formula column.

JSON SCHEMA:
  {
    "id": "ke-paye-2025",
    "country": "KE",
    "code": "PAYE",
    "name": "Pay As You Earn",
    "calculation_type": "tax_band",
    "calculation_order": 40,
    "effective_from": "2025-01-01",
    "effective_to": null,
    "reduces_taxable_income": false,
    "employer_contribution_rate": "0",
    "formula": {
      "bands": [
        {"lower": "0", "upper": "24000", "rate": "0.10"},
        {"lower": "24000", "rate": "0.25"}
      ],
      "relief": "2400"
    }
  }

FORMULA PAYLOADS (by calculation_type):
  flat:        {"amount": "500"}
  percentage:  {"rate": "0.06", "base": "taxable", "base_ceiling": "18000"}
  tax_band:    {"bands": [{"lower", "upper", "rate"}], "relief": "0"}
  formula:     {"expression": "min(gross, 18000) * 0.06"}

  Decimal fields accept JSON strings or numbers. Strings are preferred:
  they survive the round-trip without float conversion.

USAGE:
  f := factory.NewTemplateFactory()
  tpl, err := f.ParseTemplate(jsonString)
  published, err := catalog.Publish(ctx, tpl)

SEE ALSO:
  - statutory/template.go: Template definition
  - statutory/formula.go: Formula variants
  - store/sqlite: persists FormulaToJSON output
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
	"github.com/shopspring/decimal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TemplateJSON is the JSON representation of a template version.
type TemplateJSON struct {
	ID                   string          `json:"id,omitempty"`
	Country              string          `json:"country" validate:"required,len=2"`
	Code                 string          `json:"code" validate:"required"`
	Name                 string          `json:"name" validate:"required"`
	CalculationType      string          `json:"calculation_type" validate:"required,oneof=flat percentage tax_band formula"`
	CalculationOrder     int             `json:"calculation_order"`
	EffectiveFrom        string          `json:"effective_from" validate:"required"`
	EffectiveTo          *string         `json:"effective_to"`
	ReducesTaxableIncome bool            `json:"reduces_taxable_income"`
	EmployerRate         decimal.Decimal `json:"employer_contribution_rate"`
	Formula              json.RawMessage `json:"formula" validate:"required"`
}

// FlatJSON is the payload of a flat deduction.
type FlatJSON struct {
	Amount decimal.Decimal `json:"amount"`
}

// PercentageJSON is the payload of a percentage deduction.
type PercentageJSON struct {
	Rate        decimal.Decimal  `json:"rate"`
	Base        string           `json:"base,omitempty"` // taxable (default) or gross
	BaseCeiling *decimal.Decimal `json:"base_ceiling,omitempty"`
}

// TaxBandJSON is one progressive band. A missing upper is unbounded.
type TaxBandJSON struct {
	Lower decimal.Decimal  `json:"lower"`
	Upper *decimal.Decimal `json:"upper,omitempty"`
	Rate  decimal.Decimal  `json:"rate"`
}

// TaxBandsJSON is the payload of a tax_band deduction.
type TaxBandsJSON struct {
	Bands  []TaxBandJSON   `json:"bands"`
	Relief decimal.Decimal `json:"relief"`
}

// ExpressionJSON is the payload of a formula deduction.
type ExpressionJSON struct {
	Expression string `json:"expression"`
}

// =============================================================================
// TEMPLATE FACTORY
// =============================================================================

// TemplateFactory converts JSON templates to Go structs.
type TemplateFactory struct{}

// NewTemplateFactory creates a new template factory.
func NewTemplateFactory() *TemplateFactory {
	return &TemplateFactory{}
}

// ParseTemplate parses a JSON string into a Template.
func (f *TemplateFactory) ParseTemplate(jsonStr string) (statutory.Template, error) {
	var tj TemplateJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return statutory.Template{}, fmt.Errorf("%w: failed to parse template JSON: %v", generic.ErrInvalidInput, err)
	}
	return f.FromJSON(tj)
}

// FromJSON converts TemplateJSON to a statutory.Template. The result is not
// validated beyond what parsing needs; Catalog.Publish does that.
func (f *TemplateFactory) FromJSON(tj TemplateJSON) (statutory.Template, error) {
	from, err := generic.ParseDate(tj.EffectiveFrom)
	if err != nil {
		return statutory.Template{}, &generic.InvalidInputError{Field: "effective_from", Reason: err.Error()}
	}

	var to *generic.Date
	if tj.EffectiveTo != nil && *tj.EffectiveTo != "" {
		d, err := generic.ParseDate(*tj.EffectiveTo)
		if err != nil {
			return statutory.Template{}, &generic.InvalidInputError{Field: "effective_to", Reason: err.Error()}
		}
		to = &d
	}

	formula, err := f.FormulaFromJSON(statutory.CalculationType(tj.CalculationType), tj.Formula)
	if err != nil {
		return statutory.Template{}, err
	}

	return statutory.Template{
		ID:                   generic.TemplateID(tj.ID),
		Country:              generic.CountryCode(tj.Country).Normalize(),
		Code:                 strings.TrimSpace(tj.Code),
		Name:                 strings.TrimSpace(tj.Name),
		Formula:              formula,
		CalculationOrder:     tj.CalculationOrder,
		EffectiveFrom:        from,
		EffectiveTo:          to,
		ReducesTaxableIncome: tj.ReducesTaxableIncome,
		EmployerRate:         tj.EmployerRate,
	}, nil
}

// ToJSON converts a Template to TemplateJSON.
func (f *TemplateFactory) ToJSON(t statutory.Template) (TemplateJSON, error) {
	raw, err := f.FormulaToJSON(t.Formula)
	if err != nil {
		return TemplateJSON{}, err
	}

	tj := TemplateJSON{
		ID:                   string(t.ID),
		Country:              string(t.Country),
		Code:                 t.Code,
		Name:                 t.Name,
		CalculationType:      string(t.CalculationType()),
		CalculationOrder:     t.CalculationOrder,
		EffectiveFrom:        t.EffectiveFrom.String(),
		ReducesTaxableIncome: t.ReducesTaxableIncome,
		EmployerRate:         t.EmployerRate,
		Formula:              raw,
	}
	if t.EffectiveTo != nil {
		s := t.EffectiveTo.String()
		tj.EffectiveTo = &s
	}
	return tj, nil
}

// =============================================================================
// FORMULA PAYLOADS
// =============================================================================

// FormulaFromJSON decodes a formula payload for the given calculation type.
// Unknown fields are rejected so a typo in "base_ceiling" does not silently
// drop the ceiling.
func (f *TemplateFactory) FormulaFromJSON(calc statutory.CalculationType, raw json.RawMessage) (statutory.Formula, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: missing formula payload", generic.ErrInvalidFormula)
	}

	switch calc {
	case statutory.CalcFlat:
		var p FlatJSON
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		return statutory.FlatFormula{Amount: p.Amount}, nil

	case statutory.CalcPercentage:
		var p PercentageJSON
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		base := statutory.BaseSelector(p.Base)
		if base == "" {
			base = statutory.BaseTaxable
		}
		return statutory.PercentageFormula{Rate: p.Rate, Base: base, BaseCeiling: p.BaseCeiling}, nil

	case statutory.CalcTaxBand:
		var p TaxBandsJSON
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		bands := make([]statutory.TaxBand, len(p.Bands))
		for i, b := range p.Bands {
			bands[i] = statutory.TaxBand{Lower: b.Lower, Upper: b.Upper, Rate: b.Rate}
		}
		return statutory.TaxBandFormula{Bands: bands, Relief: p.Relief}, nil

	case statutory.CalcFormula:
		var p ExpressionJSON
		if err := decodeStrict(raw, &p); err != nil {
			return nil, err
		}
		formula, err := statutory.NewExpressionFormula(p.Expression)
		if err != nil {
			return nil, err
		}
		return formula, nil

	default:
		return nil, fmt.Errorf("%w: unknown calculation type %q", generic.ErrInvalidFormula, calc)
	}
}

// FormulaToJSON encodes the payload half of a formula. The calculation type
// travels separately.
func (f *TemplateFactory) FormulaToJSON(formula statutory.Formula) (json.RawMessage, error) {
	var payload interface{}
	switch v := formula.(type) {
	case statutory.FlatFormula:
		payload = FlatJSON{Amount: v.Amount}
	case statutory.PercentageFormula:
		payload = PercentageJSON{Rate: v.Rate, Base: string(v.Base), BaseCeiling: v.BaseCeiling}
	case statutory.TaxBandFormula:
		bands := make([]TaxBandJSON, len(v.Bands))
		for i, b := range v.Bands {
			bands[i] = TaxBandJSON{Lower: b.Lower, Upper: b.Upper, Rate: b.Rate}
		}
		payload = TaxBandsJSON{Bands: bands, Relief: v.Relief}
	case *statutory.ExpressionFormula:
		payload = ExpressionJSON{Expression: v.Expression}
	case nil:
		return nil, fmt.Errorf("%w: template has no formula", generic.ErrInvalidFormula)
	default:
		return nil, fmt.Errorf("%w: unsupported formula %T", generic.ErrInvalidFormula, formula)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode formula: %w", err)
	}
	return raw, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func decodeStrict(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidFormula, err)
	}
	return nil
}
