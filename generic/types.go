/*
Package generic provides the shared value types of the EduSuite engine.

PURPOSE:
  Country, curriculum and payroll packages all talk about money, dates and
  effective periods. This package holds those building blocks so that every
  domain package agrees on precision, rounding and period boundaries.

KEY CONCEPTS IN THIS FILE (types.go):
  - RoundHalfUp: The single rounding rule used for anything we display or store
  - Identifiers: Type-safe country/template/staff/run IDs

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, never float64, for money
  2. Round late: Intermediate results keep full precision, rounding happens
     only when an amount is recorded
  3. Type Safety: Strong typing for IDs prevents mixing staff/template IDs

USAGE:
  gross := generic.MustParseDecimal("52000")
  nssf := generic.RoundHalfUp(gross.Mul(rate), 2)

SEE ALSO:
  - time.go: Date and Clock
  - period.go: Effective periods and academic years
  - errors.go: Error taxonomy
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMALS - Parsing and rounding
// =============================================================================

// MustParseDecimal parses s and panics on malformed input.
// Only use it for literals in tables and tests.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ParseDecimal parses user-supplied numeric text, trimming whitespace.
func ParseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// RoundHalfUp rounds to the given number of decimal places, halves away
// from zero (2.005 -> 2.01, 0.5 -> 1).
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// CountryCode is an ISO 3166-1 alpha-2 code. Only the codes registered in
// package country are valid.
type CountryCode string

// Normalize upper-cases and trims a user-supplied code.
func (c CountryCode) Normalize() CountryCode {
	return CountryCode(strings.ToUpper(strings.TrimSpace(string(c))))
}

type TemplateID string
type StaffID string
type RunID string
