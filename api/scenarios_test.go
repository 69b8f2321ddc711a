/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Tests that each scenario sets up the expected state:
	- Templates are published and successors close predecessors
	- Staff are created
	- Runs are priced with the template versions of their period

These tests double as integration tests: they run against SQLite.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/payroll"
	"github.com/edusuite/engine/statutory"
	"github.com/edusuite/engine/store/sqlite"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupScenarioHandler(t *testing.T) (*Handler, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	catalog := statutory.NewCatalog(store)
	processor := payroll.NewProcessor(store, store, payroll.NewAggregator(catalog, zerolog.Nop()), 25)
	h := NewHandler(catalog, store, store, processor, zerolog.Nop())
	h.Reset = store.Reset
	return h, store
}

func findRun(t *testing.T, store *sqlite.Store, code generic.CountryCode, period generic.PayPeriod) *payroll.Run {
	t.Helper()
	run, err := store.FindRun(context.Background(), code, period)
	require.NoError(t, err)
	require.NotNil(t, run, "no %s run for %s", code, period)
	return run
}

func deductionFor(t *testing.T, run *payroll.Run, staff generic.StaffID, code string) statutory.AppliedDeduction {
	t.Helper()
	for _, slip := range run.Payslips {
		if slip.StaffID != staff {
			continue
		}
		for _, d := range slip.Result.Deductions {
			if d.Code == code {
				return d
			}
		}
	}
	t.Fatalf("no %s deduction for %s", code, staff)
	return statutory.AppliedDeduction{}
}

func TestScenario_KenyaSchool(t *testing.T) {
	// GIVEN: The kenya-school scenario
	// WHEN: Loading it
	// THEN: Four templates, six staff and a March run of the five active ones

	h, store := setupScenarioHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadKenyaSchoolScenario(ctx))

	templates, err := h.Catalog.List(ctx, "KE")
	require.NoError(t, err)
	assert.Len(t, templates, 4)

	staff, err := store.ListStaff(ctx, "KE")
	require.NoError(t, err)
	assert.Len(t, staff, 6)

	run := findRun(t, store, "KE", generic.PayPeriod{Year: 2025, Month: 3})
	assert.Equal(t, 5, run.Totals.Headcount)
	assert.Equal(t, "KES", run.Currency)
	assert.Equal(t, payroll.RunCompleted, run.Status)
}

func TestScenario_NSSFRateChange(t *testing.T) {
	// GIVEN: NSSF capped at 36,000 until February 2025, then at 72,000
	// WHEN: Loading the scenario (January and February runs)
	// THEN: A 38,500 salary pays 2,160 in January and 2,310 in February

	h, store := setupScenarioHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadNSSFRateChangeScenario(ctx))

	history, err := h.Catalog.History(ctx, "KE", "NSSF")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, generic.TemplateID("ke-nssf-2024"), history[0].ID)
	require.NotNil(t, history[0].EffectiveTo)
	assert.Equal(t, "2025-02-01", history[0].EffectiveTo.String())

	jan := findRun(t, store, "KE", generic.PayPeriod{Year: 2025, Month: 1})
	feb := findRun(t, store, "KE", generic.PayPeriod{Year: 2025, Month: 2})

	janNSSF := deductionFor(t, jan, "ke-004", "NSSF")
	febNSSF := deductionFor(t, feb, "ke-004", "NSSF")
	assert.Equal(t, generic.TemplateID("ke-nssf-2024"), janNSSF.TemplateID)
	assert.Equal(t, generic.TemplateID("ke-nssf-2025"), febNSSF.TemplateID)
	assert.True(t, decimal.NewFromInt(2160).Equal(janNSSF.Amount), janNSSF.Amount.String())
	assert.True(t, decimal.NewFromInt(2310).Equal(febNSSF.Amount), febNSSF.Amount.String())
}

func TestScenario_EastAfricaGroup(t *testing.T) {
	// GIVEN: Kenyan and Ugandan campuses
	// WHEN: Loading the scenario
	// THEN: One April run per country, each in its own currency

	h, store := setupScenarioHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadEastAfricaGroupScenario(ctx))

	april := generic.PayPeriod{Year: 2025, Month: 4}
	ke := findRun(t, store, "KE", april)
	ug := findRun(t, store, "UG", april)

	assert.Equal(t, 3, ke.Totals.Headcount)
	assert.Equal(t, "KES", ke.Currency)
	assert.Equal(t, 3, ug.Totals.Headcount)
	assert.Equal(t, "UGX", ug.Currency)
}

func TestScenario_NigeriaSchool(t *testing.T) {
	// GIVEN: The nigeria-school scenario
	// WHEN: Loading it
	// THEN: Templates and staff exist but no run has been filed

	h, store := setupScenarioHandler(t)
	ctx := context.Background()

	require.NoError(t, h.loadNigeriaSchoolScenario(ctx))

	templates, err := h.Catalog.List(ctx, "NG")
	require.NoError(t, err)
	assert.Len(t, templates, 3)

	runs, err := store.ListRuns(ctx, "NG")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestScenario_LoadViaAPIResetsPreviousData(t *testing.T) {
	// GIVEN: The kenya-school scenario loaded through the API
	// WHEN: Loading nigeria-school afterwards
	// THEN: Kenyan data is gone and the current scenario is nigeria-school

	h, store := setupScenarioHandler(t)
	env := &testEnv{handler: h, router: NewRouter(h, nil)}
	ctx := context.Background()

	rec := env.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "kenya-school"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nigeria-school"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	staff, err := store.ListStaff(ctx, "KE")
	require.NoError(t, err)
	assert.Empty(t, staff)

	rec = env.do(t, http.MethodGet, "/api/scenarios/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	current := decodeBody[ScenarioDTO](t, rec)
	assert.Equal(t, "nigeria-school", current.ID)
}

func TestScenario_UnknownAndDisabled(t *testing.T) {
	// GIVEN: An unknown scenario ID, and a handler without Reset
	// WHEN: Loading / routing
	// THEN: 400 for the unknown ID, 404 when scenarios are disabled

	h, _ := setupScenarioHandler(t)
	env := &testEnv{handler: h, router: NewRouter(h, nil)}

	rec := env.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/scenarios/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ScenarioDTO](t, rec), len(scenarios))

	disabled := newTestEnv(t)
	rec = disabled.do(t, http.MethodGet, "/api/scenarios/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
