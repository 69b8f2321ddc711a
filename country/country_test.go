package country_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/generic"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return generic.MustParseDecimal(s) }

// =============================================================================
// REGISTRY
// =============================================================================

func TestGet_AllSupportedCodesResolve(t *testing.T) {
	codes := country.Supported()
	require.Len(t, codes, 7)

	for _, code := range codes {
		cfg, err := country.Get(code)
		require.NoError(t, err, code)
		assert.Equal(t, code, cfg.Code)
		assert.NotEmpty(t, cfg.Currency.Symbol)
		assert.NoError(t, cfg.Grading.Validate())
		assert.NoError(t, cfg.Calendar.Validate())
	}
}

func TestGet_IsCaseInsensitive(t *testing.T) {
	cfg, err := country.Get(" ke ")
	require.NoError(t, err)
	assert.Equal(t, country.Kenya, cfg.Code)
	assert.Equal(t, "KES", cfg.Currency.Code())
}

func TestGet_UnknownCountry(t *testing.T) {
	_, err := country.Get("XX")

	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrUnknownCountry))

	var unknown *generic.UnknownCountryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, generic.CountryCode("XX"), unknown.Code)
}

func TestParseCode(t *testing.T) {
	code, err := country.ParseCode("ng")
	require.NoError(t, err)
	assert.Equal(t, country.Nigeria, code)

	_, err = country.ParseCode("fr")
	assert.ErrorIs(t, err, generic.ErrUnknownCountry)
}

func TestGet_ReturnsCopies(t *testing.T) {
	// GIVEN: A caller that mutates the returned bands
	cfg, err := country.Get(country.Kenya)
	require.NoError(t, err)
	cfg.Grading.Bands[0].Grade = "Z"
	*cfg.Grading.Bands[0].Points = 99

	// THEN: The registry is unaffected
	again, err := country.Get(country.Kenya)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Grading.Bands[0].Grade)
	assert.Equal(t, 12, *again.Grading.Bands[0].Points)
}

// =============================================================================
// CURRENCY FORMATTING
// =============================================================================

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		code   generic.CountryCode
		amount string
		want   string
	}{
		{"kenya grouping", country.Kenya, "1234567.5", "KSh 1,234,567.50"},
		{"kenya half-up", country.Kenya, "2.005", "KSh 2.01"},
		{"uganda no decimals", country.Uganda, "33.5", "USh 34"},
		{"uganda rounds down", country.Uganda, "1000.49", "USh 1,000"},
		{"south africa separators", country.SouthAfrica, "1234.56", "R 1 234,56"},
		{"nigeria small", country.Nigeria, "999", "₦ 999.00"},
		{"negative", country.Kenya, "-1500", "-KSh 1,500.00"},
		{"zero", country.Ghana, "0", "GH₵ 0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := country.FormatCurrency(dec(tt.amount), tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCurrency_UnknownCountry(t *testing.T) {
	_, err := country.FormatCurrency(dec("1"), "US")
	assert.ErrorIs(t, err, generic.ErrUnknownCountry)
}

// =============================================================================
// GRADING
// =============================================================================

func TestGradeFromScore(t *testing.T) {
	tests := []struct {
		code  generic.CountryCode
		score string
		grade string
	}{
		{country.Kenya, "100", "A"},
		{country.Kenya, "80", "A"},
		{country.Kenya, "79", "A-"},
		{country.Kenya, "79.5", "A-"},
		{country.Kenya, "0", "E"},
		{country.Uganda, "72", "D2"},
		{country.Nigeria, "75", "A1"},
		{country.Nigeria, "39.99", "F9"},
		{country.SouthAfrica, "50", "4"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code)+"/"+tt.score, func(t *testing.T) {
			band, ok, err := country.GradeFromScore(dec(tt.score), tt.code)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.grade, band.Grade)
		})
	}
}

func TestGradeFromScore_ZeroPointsIsNotNoPoints(t *testing.T) {
	// GIVEN: Rwanda's F band, worth 0 points
	// WHEN: Grading a failing score
	// THEN: Points is set to 0 rather than left empty

	band, ok, err := country.GradeFromScore(dec("30"), country.Rwanda)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "F", band.Grade)
	require.NotNil(t, band.Points)
	assert.Equal(t, 0, *band.Points)

	// A scale without points leaves it nil
	none := country.GradingScale{ID: "plain", Bands: []country.GradeBand{
		{Grade: "Pass", Min: dec("0"), Max: dec("100")},
	}}
	pass, ok := none.Lookup(dec("40"))
	require.True(t, ok)
	assert.Nil(t, pass.Points)
}

func TestGradeFromScore_OutOfRange(t *testing.T) {
	for _, score := range []string{"-1", "100.01", "150"} {
		_, ok, err := country.GradeFromScore(dec(score), country.Kenya)
		require.NoError(t, err)
		assert.False(t, ok, score)
	}
}

func TestGradingScaleValidate_RejectsOverlapAndGaps(t *testing.T) {
	overlap := country.GradingScale{ID: "bad", Bands: []country.GradeBand{
		{Grade: "A", Min: dec("50"), Max: dec("100")},
		{Grade: "B", Min: dec("0"), Max: dec("50")},
	}}
	assert.Error(t, overlap.Validate())

	gap := country.GradingScale{ID: "bad", Bands: []country.GradeBand{
		{Grade: "A", Min: dec("60"), Max: dec("100")},
		{Grade: "B", Min: dec("0"), Max: dec("50")},
	}}
	assert.Error(t, gap.Validate())

	short := country.GradingScale{ID: "bad", Bands: []country.GradeBand{
		{Grade: "A", Min: dec("0"), Max: dec("90")},
	}}
	assert.Error(t, short.Validate())
}

// =============================================================================
// ACADEMIC CALENDAR
// =============================================================================

func TestCurrentTerm(t *testing.T) {
	tests := []struct {
		name  string
		code  generic.CountryCode
		clock generic.Clock
		term  string
		ok    bool
	}{
		{"kenya term 1", country.Kenya, generic.FixedClockOn(2025, time.February, 10), "Term 1", true},
		{"kenya april holiday", country.Kenya, generic.FixedClockOn(2025, time.April, 10), "", false},
		{"nigeria first term wraps into december", country.Nigeria, generic.FixedClockOn(2025, time.December, 1), "First Term", true},
		{"nigeria second term", country.Nigeria, generic.FixedClockOn(2026, time.January, 15), "Second Term", true},
		{"nigeria august holiday", country.Nigeria, generic.FixedClockOn(2025, time.August, 15), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, ok, err := country.CurrentTerm(tt.code, tt.clock)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.term, term.Name)
		})
	}
}

func TestCurrentAcademicYear_WrappingCalendar(t *testing.T) {
	// GIVEN: Nigeria runs September to July

	// WHEN: It is October 2025
	year, err := country.CurrentAcademicYear(country.Nigeria, generic.FixedClockOn(2025, time.October, 1))
	require.NoError(t, err)

	// THEN: The year started this September
	assert.Equal(t, "2025/2026", year.Label)
	assert.Equal(t, generic.NewDate(2025, time.September, 1), year.Start)
	assert.Equal(t, generic.NewDate(2026, time.July, 31), year.End)

	// WHEN: It is March 2026, before the start month
	year, err = country.CurrentAcademicYear(country.Nigeria, generic.FixedClockOn(2026, time.March, 1))
	require.NoError(t, err)

	// THEN: Still the same academic year
	assert.Equal(t, "2025/2026", year.Label)
}

func TestCurrentAcademicYear_CalendarYear(t *testing.T) {
	year, err := country.CurrentAcademicYear(country.Kenya, generic.FixedClockOn(2025, time.June, 1))
	require.NoError(t, err)

	assert.Equal(t, "2025", year.Label)
	assert.Equal(t, generic.NewDate(2025, time.January, 1), year.Start)
	assert.Equal(t, generic.NewDate(2025, time.November, 30), year.End)
}

func TestAcademicCalendarValidate_RejectsSharedMonth(t *testing.T) {
	cal := country.AcademicCalendar{
		StartMonth: time.January, EndMonth: time.December,
		Terms: []country.Term{
			{Name: "T1", Months: generic.MonthRange{Start: time.January, End: time.April}},
			{Name: "T2", Months: generic.MonthRange{Start: time.April, End: time.August}},
		},
	}
	assert.Error(t, cal.Validate())
}
