/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (or wrap them with fmt.Errorf("...: %w")).

ERROR CATEGORIES:
  1. Input errors - Caller sent something unusable (negative gross, bad date)
  2. Configuration errors - Reference data is wrong (unknown country,
     broken tax bands, overlapping template versions)
  3. Lookup errors - Referenced record does not exist

  None of these are retryable: every computation is a pure function of its
  inputs, so retrying with the same inputs gives the same error. Only a
  cancelled or timed-out context is (IsRetryable).

USAGE:
  if errors.Is(err, generic.ErrUnknownCountry) {
      // 422 / reject the payroll batch
  }

  var bandErr *generic.InvalidTaxBandConfigurationError
  if errors.As(err, &bandErr) {
      log.Printf("template %s: %s", bandErr.TemplateID, bandErr.Reason)
  }

SEE ALSO:
  - statutory/calculator.go: Raises most of these
  - api/handlers.go: Maps them to HTTP status codes
*/
package generic

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownCountry is returned when a country code is not in the registry.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrInvalidTaxBandConfiguration is returned when progressive bands are
	// not contiguous from zero or do not end in an unbounded band.
	ErrInvalidTaxBandConfiguration = errors.New("invalid tax band configuration")

	// ErrInvalidInput is returned for unusable caller input such as a
	// negative gross salary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFormula is returned when a deduction formula payload cannot
	// be turned into a calculation.
	ErrInvalidFormula = errors.New("invalid formula")

	// ErrOverlappingPeriod is returned when two versions of the same
	// deduction would be active on the same date.
	ErrOverlappingPeriod = errors.New("overlapping effective periods")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrTemplateNotFound is returned when a referenced template doesn't exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrStaffNotFound is returned when a referenced staff member doesn't exist.
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrRunNotFound is returned when a referenced payroll run doesn't exist.
	ErrRunNotFound = errors.New("payroll run not found")

	// ErrDuplicateRun is returned when a run already exists for a country and period.
	ErrDuplicateRun = errors.New("payroll run already exists for period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownCountryError names the code that failed lookup.
type UnknownCountryError struct {
	Code CountryCode
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("unknown country: %q", string(e.Code))
}

func (e *UnknownCountryError) Unwrap() error {
	return ErrUnknownCountry
}

// InvalidTaxBandConfigurationError points at the offending band.
// BandIndex is -1 when the problem concerns the band list as a whole.
type InvalidTaxBandConfigurationError struct {
	TemplateID TemplateID
	BandIndex  int
	Reason     string
}

func (e *InvalidTaxBandConfigurationError) Error() string {
	where := ""
	if e.TemplateID != "" {
		where = fmt.Sprintf(" (template %s)", e.TemplateID)
	}
	if e.BandIndex >= 0 {
		return fmt.Sprintf("invalid tax band configuration%s: band %d: %s", where, e.BandIndex, e.Reason)
	}
	return fmt.Sprintf("invalid tax band configuration%s: %s", where, e.Reason)
}

func (e *InvalidTaxBandConfigurationError) Unwrap() error {
	return ErrInvalidTaxBandConfiguration
}

// InvalidInputError names the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// OverlappingPeriodError reports two versions of one deduction code that
// would both apply on the same day.
type OverlappingPeriodError struct {
	Country  CountryCode
	Code     string
	Existing TemplateID
	Incoming TemplateID
}

func (e *OverlappingPeriodError) Error() string {
	return fmt.Sprintf("overlapping effective periods for %s/%s: %s and %s",
		e.Country, e.Code, e.Existing, e.Incoming)
}

func (e *OverlappingPeriodError) Unwrap() error {
	return ErrOverlappingPeriod
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
// Calculations are deterministic, so only a cancelled or timed-out
// context qualifies; nothing in this taxonomy does.
func IsRetryable(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidFormula) ||
		errors.Is(err, ErrDuplicateRun)
}

// IsConfigurationError returns true if reference data (country tables or
// published templates) is at fault rather than the request.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownCountry) ||
		errors.Is(err, ErrInvalidTaxBandConfiguration) ||
		errors.Is(err, ErrOverlappingPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrStaffNotFound) ||
		errors.Is(err, ErrRunNotFound)
}
