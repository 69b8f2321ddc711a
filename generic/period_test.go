package generic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// EFFECTIVE PERIOD
// =============================================================================

func TestEffectivePeriod_HalfOpen(t *testing.T) {
	// GIVEN: [2024-01-01, 2024-07-01)
	// WHEN: Checking the boundaries
	// THEN: From is included, To is excluded

	to := MustParseDate("2024-07-01")
	p := EffectivePeriod{From: MustParseDate("2024-01-01"), To: &to}

	assert.False(t, p.Contains(MustParseDate("2023-12-31")))
	assert.True(t, p.Contains(MustParseDate("2024-01-01")))
	assert.True(t, p.Contains(MustParseDate("2024-06-30")))
	assert.False(t, p.Contains(MustParseDate("2024-07-01")))
	assert.False(t, p.IsOpen())

	open := EffectivePeriod{From: to}
	assert.True(t, open.Contains(MustParseDate("2099-01-01")))
	assert.Equal(t, "[2024-07-01, ∞)", open.String())
}

func TestEffectivePeriod_Overlaps(t *testing.T) {
	jul := MustParseDate("2024-07-01")
	first := EffectivePeriod{From: MustParseDate("2024-01-01"), To: &jul}

	// Successor starting on the predecessor's end does not overlap.
	assert.False(t, first.Overlaps(EffectivePeriod{From: jul}))
	assert.False(t, EffectivePeriod{From: jul}.Overlaps(first))

	assert.True(t, first.Overlaps(EffectivePeriod{From: MustParseDate("2024-06-30")}))
	assert.True(t, EffectivePeriod{From: MustParseDate("2023-01-01")}.Overlaps(first))
}

func TestEffectivePeriod_Validate(t *testing.T) {
	from := MustParseDate("2024-01-01")

	assert.NoError(t, EffectivePeriod{From: from}.Validate())
	assert.ErrorIs(t, EffectivePeriod{}.Validate(), ErrInvalidPeriod)

	same := from
	assert.ErrorIs(t, EffectivePeriod{From: from, To: &same}.Validate(), ErrInvalidPeriod)
}

// =============================================================================
// YEAR CONFIG / MONTH RANGE
// =============================================================================

func TestYearConfig_PeriodFor(t *testing.T) {
	tests := []struct {
		name  string
		start time.Month
		date  string
		want  Period
	}{
		{"calendar year", time.January, "2025-06-15", Period{MustParseDate("2025-01-01"), MustParseDate("2025-12-31")}},
		{"september year, autumn", time.September, "2024-10-01", Period{MustParseDate("2024-09-01"), MustParseDate("2025-08-31")}},
		{"september year, spring", time.September, "2025-03-01", Period{MustParseDate("2024-09-01"), MustParseDate("2025-08-31")}},
		{"invalid month falls back to january", 0, "2025-03-01", Period{MustParseDate("2025-01-01"), MustParseDate("2025-12-31")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := YearConfig{StartMonth: tt.start}.PeriodFor(MustParseDate(tt.date))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthRange_Wrapping(t *testing.T) {
	plain := MonthRange{Start: time.January, End: time.April}
	assert.True(t, plain.Contains(time.March))
	assert.False(t, plain.Contains(time.May))
	assert.False(t, plain.Wraps())

	autumn := MonthRange{Start: time.September, End: time.December}
	assert.True(t, autumn.Contains(time.October))
	assert.False(t, autumn.Wraps())

	winter := MonthRange{Start: time.November, End: time.February}
	assert.True(t, winter.Wraps())
	assert.True(t, winter.Contains(time.December))
	assert.True(t, winter.Contains(time.January))
	assert.False(t, winter.Contains(time.March))
}

// =============================================================================
// PAY PERIOD
// =============================================================================

func TestPayPeriod_PayDate(t *testing.T) {
	feb := PayPeriod{Year: 2025, Month: time.February}

	assert.Equal(t, "2025-02-25", feb.PayDate(25).String())
	assert.Equal(t, "2025-02-28", feb.PayDate(30).String(), "clamped to month end")
	assert.Equal(t, "2025-02-28", feb.PayDate(0).String(), "zero means last day")
	assert.Equal(t, "2024-02-29", PayPeriod{Year: 2024, Month: time.February}.PayDate(0).String())
}

func TestPayPeriod_ParseAndJSON(t *testing.T) {
	p, err := ParsePayPeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, PayPeriod{Year: 2025, Month: time.March}, p)
	assert.Equal(t, "2025-03-01", p.Start().String())
	assert.Equal(t, "2025-03-31", p.End().String())

	_, err = ParsePayPeriod("2025-13")
	assert.True(t, errors.Is(err, ErrInvalidPeriod))

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-03"`, string(data))

	var back PayPeriod
	require.NoError(t, json.Unmarshal([]byte(`"2024-12"`), &back))
	assert.Equal(t, PayPeriod{Year: 2024, Month: time.December}, back)
	assert.Equal(t, back, PayPeriodOf(MustParseDate("2024-12-31")))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrorHelpers(t *testing.T) {
	unknown := &UnknownCountryError{Code: "XX"}

	assert.True(t, IsConfigurationError(unknown))
	assert.False(t, IsClientError(unknown))
	assert.True(t, IsClientError(&InvalidInputError{Field: "gross_salary", Reason: "negative"}))
	assert.True(t, IsNotFound(ErrRunNotFound))
	assert.False(t, IsRetryable(unknown))
	assert.True(t, IsRetryable(fmt.Errorf("staff s1: %w", context.DeadlineExceeded)))
	assert.True(t, IsRetryable(context.Canceled))
}
