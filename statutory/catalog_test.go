package statutory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
	"github.com/edusuite/engine/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog() *statutory.Catalog {
	return statutory.NewCatalog(memory.NewTemplates())
}

func version(id, from string, rate string) statutory.Template {
	t := template(id, "NSSF", 10, percent(rate))
	t.EffectiveFrom = generic.MustParseDate(from)
	return t
}

// =============================================================================
// RESOLVE ACTIVE
// =============================================================================

func TestResolveActive_OrdersByCalculationOrder(t *testing.T) {
	c := template("c", "C", 30, percent("0.1"))
	a := template("a", "A", 10, percent("0.1"))
	b := template("b", "B", 20, percent("0.1"))

	active, err := statutory.ResolveActive([]statutory.Template{c, a, b}, "ke", payday)
	require.NoError(t, err)

	codes := make([]string, len(active))
	for i, tpl := range active {
		codes[i] = tpl.Code
	}
	assert.Equal(t, []string{"A", "B", "C"}, codes)
}

func TestResolveActive_DuplicateActiveCode(t *testing.T) {
	first := template("v1", "NSSF", 10, percent("0.06"))
	second := template("v2", "NSSF", 10, percent("0.07"))

	_, err := statutory.ResolveActive([]statutory.Template{first, second}, "KE", payday)

	var overlap *generic.OverlappingPeriodError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, "NSSF", overlap.Code)
	assert.Equal(t, generic.TemplateID("v1"), overlap.Existing)
	assert.Equal(t, generic.TemplateID("v2"), overlap.Incoming)
}

// =============================================================================
// PUBLISH
// =============================================================================

func TestPublish_ClosesPreviousOpenVersion(t *testing.T) {
	// GIVEN: an open version from 2024
	ctx := context.Background()
	catalog := newCatalog()
	_, err := catalog.Publish(ctx, version("v1", "2024-01-01", "0.06"))
	require.NoError(t, err)

	// WHEN: a new version starts in February 2025
	_, err = catalog.Publish(ctx, version("v2", "2025-02-01", "0.07"))
	require.NoError(t, err)

	// THEN: v1 ends where v2 starts
	v1, err := catalog.Get(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, v1.EffectiveTo)
	assert.Equal(t, "2025-02-01", v1.EffectiveTo.String())

	// AND: each date resolves to exactly one version
	jan, err := catalog.Active(ctx, "KE", generic.NewDate(2025, time.January, 31))
	require.NoError(t, err)
	require.Len(t, jan, 1)
	assert.Equal(t, generic.TemplateID("v1"), jan[0].ID)

	feb, err := catalog.Active(ctx, "KE", generic.NewDate(2025, time.February, 1))
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.Equal(t, generic.TemplateID("v2"), feb[0].ID)
}

func TestPublish_RejectsOverlapWithClosedVersion(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()

	closed := version("v1", "2024-01-01", "0.06")
	closed.EffectiveTo = datePtr("2025-01-01")
	_, err := catalog.Publish(ctx, closed)
	require.NoError(t, err)

	_, err = catalog.Publish(ctx, version("v2", "2024-06-01", "0.07"))

	var overlap *generic.OverlappingPeriodError
	require.True(t, errors.As(err, &overlap))
	assert.True(t, generic.IsConfigurationError(err))

	// Rejected publication leaves nothing behind
	history, err := catalog.History(ctx, "KE", "NSSF")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPublish_RejectsBackdatedVersionBeforeOpenOne(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	_, err := catalog.Publish(ctx, version("v1", "2025-01-01", "0.06"))
	require.NoError(t, err)

	_, err = catalog.Publish(ctx, version("v0", "2024-01-01", "0.05"))

	assert.ErrorIs(t, err, generic.ErrOverlappingPeriod)

	v1, err := catalog.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, v1.EffectiveTo, "failed publish must not close anything")
}

func TestPublish_AdjacentVersionsDoNotOverlap(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()

	old := version("v1", "2024-01-01", "0.06")
	old.EffectiveTo = datePtr("2025-01-01")
	_, err := catalog.Publish(ctx, old)
	require.NoError(t, err)

	_, err = catalog.Publish(ctx, version("v2", "2025-01-01", "0.07"))
	assert.NoError(t, err)
}

func TestPublish_Validation(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()

	unknown := version("x", "2025-01-01", "0.06")
	unknown.Country = "FR"
	_, err := catalog.Publish(ctx, unknown)
	assert.ErrorIs(t, err, generic.ErrUnknownCountry)

	badBands := version("y", "2025-01-01", "0.06")
	badBands.Code = "PAYE"
	badBands.Formula = statutory.TaxBandFormula{}
	_, err = catalog.Publish(ctx, badBands)
	var bandErr *generic.InvalidTaxBandConfigurationError
	require.True(t, errors.As(err, &bandErr))
	assert.Equal(t, generic.TemplateID("y"), bandErr.TemplateID)
}

func TestPublish_AssignsIDAndNormalizesCountry(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()

	tpl := version("", "2025-01-01", "0.06")
	tpl.Country = " ke "
	published, err := catalog.Publish(ctx, tpl)
	require.NoError(t, err)

	assert.NotEmpty(t, published.ID)
	assert.Equal(t, generic.CountryCode("KE"), published.Country)
}

func TestPublish_DuplicateID(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	_, err := catalog.Publish(ctx, version("v1", "2024-01-01", "0.06"))
	require.NoError(t, err)

	dup := version("v1", "2026-01-01", "0.07")
	dup.Code = "NHIF"
	_, err = catalog.Publish(ctx, dup)
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

// =============================================================================
// RETIRE / HISTORY
// =============================================================================

func TestRetire(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	_, err := catalog.Publish(ctx, version("v1", "2024-01-01", "0.06"))
	require.NoError(t, err)

	retired, err := catalog.Retire(ctx, "v1", generic.MustParseDate("2025-07-01"))
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", retired.EffectiveTo.String())

	active, err := catalog.Active(ctx, "KE", generic.MustParseDate("2025-07-01"))
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = catalog.Retire(ctx, "v1", generic.MustParseDate("2025-08-01"))
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)

	_, err = catalog.Retire(ctx, "missing", generic.MustParseDate("2025-08-01"))
	assert.True(t, generic.IsNotFound(err))
}

func TestHistory_OldestFirst(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()

	later := version("v2", "2025-01-01", "0.07")
	earlier := version("v1", "2023-01-01", "0.05")
	earlier.EffectiveTo = datePtr("2024-01-01")

	_, err := catalog.Publish(ctx, later)
	require.NoError(t, err)
	_, err = catalog.Publish(ctx, earlier)
	require.NoError(t, err)

	history, err := catalog.History(ctx, "KE", "NSSF")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, generic.TemplateID("v1"), history[0].ID)
	assert.Equal(t, generic.TemplateID("v2"), history[1].ID)
}

// =============================================================================
// CALCULATOR OVER A CATALOG
// =============================================================================

func TestCalculator_UsesVersionForPayDate(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()
	_, err := catalog.Publish(ctx, version("v1", "2024-01-01", "0.06"))
	require.NoError(t, err)
	_, err = catalog.Publish(ctx, version("v2", "2025-02-01", "0.07"))
	require.NoError(t, err)

	calc := statutory.NewCalculator(catalog)

	jan, err := calc.Compute(ctx, dec("10000"), "KE", generic.MustParseDate("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"600.00"}, amounts(jan))

	feb, err := calc.Compute(ctx, dec("10000"), "KE", generic.MustParseDate("2025-02-28"))
	require.NoError(t, err)
	assert.Equal(t, []string{"700.00"}, amounts(feb))
}

func TestCalculator_UnknownCountry(t *testing.T) {
	calc := statutory.NewCalculator(newCatalog())

	_, err := calc.Compute(context.Background(), dec("1000"), "XX", payday)

	var unknown *generic.UnknownCountryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, generic.CountryCode("XX"), unknown.Code)
}
