package statutory

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/edusuite/engine/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATION TYPES
// =============================================================================

type CalculationType string

const (
	CalcFlat       CalculationType = "flat"       // fixed amount regardless of pay
	CalcPercentage CalculationType = "percentage" // rate x gross or running taxable base
	CalcTaxBand    CalculationType = "tax_band"   // progressive bands over the taxable base
	CalcFormula    CalculationType = "formula"    // arithmetic expression over gross/taxable
)

// BaseSelector picks what a percentage deduction is applied to.
type BaseSelector string

const (
	BaseTaxable BaseSelector = "taxable" // running base after earlier reducing deductions
	BaseGross   BaseSelector = "gross"
)

// Inputs are the two figures a formula may read. Taxable is the running
// base at the moment this deduction is computed, at full precision.
type Inputs struct {
	Gross   decimal.Decimal
	Taxable decimal.Decimal
}

// Formula is one calculation variant. The set is closed: FlatFormula,
// PercentageFormula, TaxBandFormula and ExpressionFormula.
type Formula interface {
	Type() CalculationType
	// Compute returns the unrounded deduction amount.
	Compute(in Inputs) (decimal.Decimal, error)
	Validate() error
	isFormula()
}

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(one)
}

// =============================================================================
// FLAT
// =============================================================================

type FlatFormula struct {
	Amount decimal.Decimal
}

func (FlatFormula) Type() CalculationType { return CalcFlat }
func (FlatFormula) isFormula()            {}

func (f FlatFormula) Compute(Inputs) (decimal.Decimal, error) {
	return f.Amount, nil
}

func (f FlatFormula) Validate() error {
	if f.Amount.IsNegative() {
		return fmt.Errorf("%w: flat amount %s is negative", generic.ErrInvalidFormula, f.Amount)
	}
	return nil
}

// =============================================================================
// PERCENTAGE
// =============================================================================

// PercentageFormula is Rate x base. BaseCeiling, when set, caps the base
// first (pension schemes with an upper earnings limit).
type PercentageFormula struct {
	Rate        decimal.Decimal
	Base        BaseSelector
	BaseCeiling *decimal.Decimal
}

func (PercentageFormula) Type() CalculationType { return CalcPercentage }
func (PercentageFormula) isFormula()            {}

func (f PercentageFormula) Compute(in Inputs) (decimal.Decimal, error) {
	base := in.Taxable
	if f.Base == BaseGross {
		base = in.Gross
	}
	if f.BaseCeiling != nil && base.GreaterThan(*f.BaseCeiling) {
		base = *f.BaseCeiling
	}
	// A base driven below zero by earlier deductions owes nothing.
	return f.Rate.Mul(decimal.Max(base, decimal.Zero)), nil
}

func (f PercentageFormula) Validate() error {
	if !validRate(f.Rate) {
		return fmt.Errorf("%w: rate %s outside [0, 1]", generic.ErrInvalidFormula, f.Rate)
	}
	switch f.Base {
	case "", BaseTaxable, BaseGross:
	default:
		return fmt.Errorf("%w: unknown base %q", generic.ErrInvalidFormula, f.Base)
	}
	if f.BaseCeiling != nil && f.BaseCeiling.IsNegative() {
		return fmt.Errorf("%w: base ceiling is negative", generic.ErrInvalidFormula)
	}
	return nil
}

// =============================================================================
// TAX BANDS
// =============================================================================

// TaxBand taxes the slice of the base in [Lower, Upper) at Rate. A nil
// Upper means unbounded.
type TaxBand struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// TaxBandFormula is a progressive tax over the running taxable base.
// Relief is subtracted from the banded total, never below zero.
type TaxBandFormula struct {
	Bands  []TaxBand
	Relief decimal.Decimal
}

func (TaxBandFormula) Type() CalculationType { return CalcTaxBand }
func (TaxBandFormula) isFormula()            {}

// Validate requires bands ascending from 0, each starting where the previous
// ended, and a single unbounded band at the end.
func (f TaxBandFormula) Validate() error {
	if len(f.Bands) == 0 {
		return &generic.InvalidTaxBandConfigurationError{BandIndex: -1, Reason: "no bands"}
	}
	if !f.Bands[0].Lower.IsZero() {
		return &generic.InvalidTaxBandConfigurationError{BandIndex: 0, Reason: "first band must start at 0"}
	}
	last := len(f.Bands) - 1
	for i, b := range f.Bands {
		if !validRate(b.Rate) {
			return &generic.InvalidTaxBandConfigurationError{BandIndex: i, Reason: "rate outside [0, 1]"}
		}
		if b.Upper == nil {
			if i != last {
				return &generic.InvalidTaxBandConfigurationError{BandIndex: i, Reason: "only the last band may be unbounded"}
			}
			continue
		}
		if i == last {
			return &generic.InvalidTaxBandConfigurationError{BandIndex: i, Reason: "last band must be unbounded"}
		}
		if !b.Upper.GreaterThan(b.Lower) {
			return &generic.InvalidTaxBandConfigurationError{BandIndex: i, Reason: "upper bound must exceed lower bound"}
		}
		if !f.Bands[i+1].Lower.Equal(*b.Upper) {
			return &generic.InvalidTaxBandConfigurationError{BandIndex: i + 1, Reason: "band does not start where the previous one ends"}
		}
	}
	if f.Relief.IsNegative() {
		return &generic.InvalidTaxBandConfigurationError{BandIndex: -1, Reason: "relief is negative"}
	}
	return nil
}

// Compute sums (min(upper, base) - lower) x rate over every band whose
// lower bound is below the base.
func (f TaxBandFormula) Compute(in Inputs) (decimal.Decimal, error) {
	if err := f.Validate(); err != nil {
		return zero, err
	}

	base := in.Taxable
	total := zero
	for _, b := range f.Bands {
		if !b.Lower.LessThan(base) {
			break
		}
		top := base
		if b.Upper != nil && b.Upper.LessThan(base) {
			top = *b.Upper
		}
		total = total.Add(top.Sub(b.Lower).Mul(b.Rate))
	}

	total = total.Sub(f.Relief)
	if total.IsNegative() {
		return zero, nil
	}
	return total, nil
}

// =============================================================================
// EXPRESSION
// =============================================================================

// expressionFunctions are the helpers an expression may call.
var expressionFunctions = map[string]govaluate.ExpressionFunction{
	"min": func(args ...interface{}) (interface{}, error) {
		return foldFloats("min", args, math.Min)
	},
	"max": func(args ...interface{}) (interface{}, error) {
		return foldFloats("max", args, math.Max)
	},
	"floor": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("floor takes one argument")
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("floor: argument is not a number")
		}
		return math.Floor(v), nil
	},
}

func foldFloats(name string, args []interface{}, fn func(a, b float64) float64) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%s needs at least one argument", name)
	}
	acc, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("%s: argument 0 is not a number", name)
	}
	for i, a := range args[1:] {
		v, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is not a number", name, i+1)
		}
		acc = fn(acc, v)
	}
	return acc, nil
}

// ExpressionFormula evaluates an arithmetic expression over the variables
// gross and taxable, e.g. "min(gross, 18000) * 0.06". Evaluation is in
// float64, so results carry float precision before rounding.
type ExpressionFormula struct {
	Expression string
	compiled   *govaluate.EvaluableExpression
}

// NewExpressionFormula parses the expression once. Syntax errors and
// unknown variables are reported here rather than at payroll time.
func NewExpressionFormula(expression string) (*ExpressionFormula, error) {
	compiled, err := compileExpression(expression)
	if err != nil {
		return nil, err
	}
	return &ExpressionFormula{Expression: expression, compiled: compiled}, nil
}

func compileExpression(expression string) (*govaluate.EvaluableExpression, error) {
	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(expression, expressionFunctions)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", generic.ErrInvalidFormula, expression, err)
	}
	for _, v := range compiled.Vars() {
		if v != "gross" && v != "taxable" {
			return nil, fmt.Errorf("%w: %q: unknown variable %q", generic.ErrInvalidFormula, expression, v)
		}
	}
	return compiled, nil
}

func (*ExpressionFormula) Type() CalculationType { return CalcFormula }
func (*ExpressionFormula) isFormula()            {}

func (f *ExpressionFormula) Validate() error {
	if f.compiled != nil {
		return nil
	}
	_, err := compileExpression(f.Expression)
	return err
}

func (f *ExpressionFormula) Compute(in Inputs) (decimal.Decimal, error) {
	compiled := f.compiled
	if compiled == nil {
		var err error
		if compiled, err = compileExpression(f.Expression); err != nil {
			return zero, err
		}
	}

	gross, _ := in.Gross.Float64()
	taxable, _ := in.Taxable.Float64()
	out, err := compiled.Evaluate(map[string]interface{}{
		"gross":   gross,
		"taxable": taxable,
	})
	if err != nil {
		return zero, fmt.Errorf("%w: evaluating %q: %v", generic.ErrInvalidFormula, f.Expression, err)
	}

	v, ok := out.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return zero, fmt.Errorf("%w: %q did not produce a finite number", generic.ErrInvalidFormula, f.Expression)
	}
	if v < 0 {
		return zero, nil
	}
	return decimal.NewFromFloat(v), nil
}
