package factory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payeJSON = `{
	"id": "ke-paye-2025",
	"country": "ke",
	"code": "PAYE",
	"name": "Pay As You Earn",
	"calculation_type": "tax_band",
	"calculation_order": 40,
	"effective_from": "2025-01-01",
	"formula": {
		"bands": [
			{"lower": "0", "upper": "1000", "rate": "0.10"},
			{"lower": "1000", "rate": "0.20"}
		],
		"relief": "50"
	}
}`

func TestParseTemplate_TaxBand(t *testing.T) {
	f := NewTemplateFactory()

	tpl, err := f.ParseTemplate(payeJSON)
	require.NoError(t, err)

	assert.Equal(t, generic.TemplateID("ke-paye-2025"), tpl.ID)
	assert.Equal(t, generic.CountryCode("KE"), tpl.Country)
	assert.Equal(t, 40, tpl.CalculationOrder)
	assert.Equal(t, generic.NewDate(2025, time.January, 1), tpl.EffectiveFrom)
	assert.Nil(t, tpl.EffectiveTo)
	require.NoError(t, tpl.Validate())

	bands, ok := tpl.Formula.(statutory.TaxBandFormula)
	require.True(t, ok)
	require.Len(t, bands.Bands, 2)
	assert.Nil(t, bands.Bands[1].Upper)
	assert.Equal(t, "50", bands.Relief.String())

	// 1000*0.10 + 1000*0.20 - 50
	got, err := tpl.Formula.Compute(statutory.Inputs{Gross: generic.MustParseDecimal("2000"), Taxable: generic.MustParseDecimal("2000")})
	require.NoError(t, err)
	assert.Equal(t, "250", got.String())
}

func TestParseTemplate_Percentage(t *testing.T) {
	f := NewTemplateFactory()

	tpl, err := f.ParseTemplate(`{
		"country": "KE", "code": "NSSF", "name": "NSSF",
		"calculation_type": "percentage", "calculation_order": 10,
		"effective_from": "2025-02-01", "effective_to": "2026-02-01",
		"reduces_taxable_income": true,
		"employer_contribution_rate": "0.06",
		"formula": {"rate": 0.06, "base_ceiling": "72000"}
	}`)
	require.NoError(t, err)

	p, ok := tpl.Formula.(statutory.PercentageFormula)
	require.True(t, ok)
	assert.Equal(t, statutory.BaseTaxable, p.Base, "base defaults to taxable")
	require.NotNil(t, p.BaseCeiling)
	assert.Equal(t, "72000", p.BaseCeiling.String())
	assert.True(t, tpl.ReducesTaxableIncome)
	assert.Equal(t, "0.06", tpl.EmployerRate.String())
	require.NotNil(t, tpl.EffectiveTo)
	assert.Equal(t, "2026-02-01", tpl.EffectiveTo.String())
	assert.Empty(t, tpl.ID, "ID assigned at publication")
}

func TestParseTemplate_Expression(t *testing.T) {
	f := NewTemplateFactory()

	tpl, err := f.ParseTemplate(`{
		"country": "UG", "code": "LST", "name": "Local Service Tax",
		"calculation_type": "formula", "effective_from": "2025-07-01",
		"formula": {"expression": "min(gross, 1000000) * 0.01"}
	}`)
	require.NoError(t, err)
	assert.Equal(t, statutory.CalcFormula, tpl.CalculationType())

	_, err = f.ParseTemplate(`{
		"country": "UG", "code": "LST", "name": "Local Service Tax",
		"calculation_type": "formula", "effective_from": "2025-07-01",
		"formula": {"expression": "basic * 0.01"}
	}`)
	assert.ErrorIs(t, err, generic.ErrInvalidFormula)
}

func TestParseTemplate_Errors(t *testing.T) {
	f := NewTemplateFactory()

	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{"malformed json", `{"country": `, generic.ErrInvalidInput},
		{"bad date", `{"calculation_type": "flat", "effective_from": "01/01/2025", "formula": {"amount": "1"}}`, generic.ErrInvalidInput},
		{"bad end date", `{"calculation_type": "flat", "effective_from": "2025-01-01", "effective_to": "soon", "formula": {"amount": "1"}}`, generic.ErrInvalidInput},
		{"unknown type", `{"calculation_type": "lookup", "effective_from": "2025-01-01", "formula": {}}`, generic.ErrInvalidFormula},
		{"missing payload", `{"calculation_type": "flat", "effective_from": "2025-01-01"}`, generic.ErrInvalidFormula},
		{"misspelled field", `{"calculation_type": "percentage", "effective_from": "2025-01-01", "formula": {"rate": "0.1", "base_cieling": "10"}}`, generic.ErrInvalidFormula},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseTemplate(tt.json)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

func TestFormulaFromJSON_BadExpressionReturnsNilFormula(t *testing.T) {
	// GIVEN: An expression referencing an unknown variable
	// WHEN: Decoding the payload
	// THEN: The error is returned with an untyped nil formula

	formula, err := NewTemplateFactory().FormulaFromJSON(statutory.CalcFormula,
		json.RawMessage(`{"expression": "basic * 0.06"}`))

	assert.ErrorIs(t, err, generic.ErrInvalidFormula)
	assert.True(t, formula == nil, "formula must be an untyped nil, got %#v", formula)
}

func TestToJSON_RoundTripPreservesFormula(t *testing.T) {
	f := NewTemplateFactory()
	original, err := f.ParseTemplate(payeJSON)
	require.NoError(t, err)
	end := generic.NewDate(2026, time.January, 1)
	original.EffectiveTo = &end

	tj, err := f.ToJSON(original)
	require.NoError(t, err)
	assert.Equal(t, "tax_band", tj.CalculationType)
	require.NotNil(t, tj.EffectiveTo)
	assert.Equal(t, "2026-01-01", *tj.EffectiveTo)

	encoded, err := json.Marshal(tj)
	require.NoError(t, err)
	again, err := f.ParseTemplate(string(encoded))
	require.NoError(t, err)

	for _, gross := range []string{"0", "999.99", "1000", "123456.78"} {
		in := statutory.Inputs{Gross: generic.MustParseDecimal(gross), Taxable: generic.MustParseDecimal(gross)}
		want, err := original.Formula.Compute(in)
		require.NoError(t, err)
		got, err := again.Formula.Compute(in)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), gross)
	}
}

func TestFormulaToJSON(t *testing.T) {
	f := NewTemplateFactory()

	raw, err := f.FormulaToJSON(statutory.FlatFormula{Amount: generic.MustParseDecimal("500")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": "500"}`, string(raw))

	expr, err := statutory.NewExpressionFormula("gross * 0.01")
	require.NoError(t, err)
	raw, err = f.FormulaToJSON(expr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"expression": "gross * 0.01"}`, string(raw))

	_, err = f.FormulaToJSON(nil)
	assert.ErrorIs(t, err, generic.ErrInvalidFormula)
}
