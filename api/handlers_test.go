/*
handlers_test.go - HTTP tests for the API

Tests for:
- Country and curriculum lookups
- Template publish / retire / history and error mapping
- Single payslip computation
- Staff, payroll runs, duplicate-run conflict and xlsx export
- Request metrics labelled by route pattern
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edusuite/engine/factory"
	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/payroll"
	"github.com/edusuite/engine/statutory"
	"github.com/edusuite/engine/store/memory"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nssfTemplate = `{
	"id": "ke-nssf-2025",
	"country": "KE",
	"code": "NSSF",
	"name": "National Social Security Fund",
	"calculation_type": "percentage",
	"calculation_order": 10,
	"effective_from": "2025-01-01",
	"reduces_taxable_income": true,
	"employer_contribution_rate": "0.06",
	"formula": {"rate": "0.06"}
}`

type testEnv struct {
	handler *Handler
	router  *chi.Mux
	staff   *memory.Staff
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	catalog := statutory.NewCatalog(memory.NewTemplates())
	staff := memory.NewStaff()
	runs := memory.NewRuns()
	processor := payroll.NewProcessor(staff, runs, payroll.NewAggregator(catalog, zerolog.Nop()), 25)

	h := NewHandler(catalog, staff, runs, processor, zerolog.Nop())
	return &testEnv{handler: h, router: NewRouter(h, nil), staff: staff}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) publishNSSF(t *testing.T) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/templates", nssfTemplate)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// =============================================================================
// COUNTRIES
// =============================================================================

func TestCountries_ListAndGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/countries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]CountryDTO](t, rec)
	require.NotEmpty(t, all)
	assert.Equal(t, generic.CountryCode("KE"), all[0].Code)

	rec = env.do(t, http.MethodGet, "/api/countries/ke", "")
	require.Equal(t, http.StatusOK, rec.Code)
	kenya := decodeBody[CountryDTO](t, rec)
	assert.Equal(t, "KES", kenya.Currency.Code)
	assert.Equal(t, "KSh", kenya.Currency.Symbol)
	assert.Equal(t, "ke_kcse", kenya.Grading.ID)
	assert.Len(t, kenya.Calendar.Terms, 3)

	rec = env.do(t, http.MethodGet, "/api/countries/US", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCountries_FormatAndGrade(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/countries/KE/format?amount=1234567.5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "KSh 1,234,567.50", decodeBody[FormatResponse](t, rec).Formatted)

	rec = env.do(t, http.MethodGet, "/api/countries/KE/format?amount=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 74.5 sits between the B+ and A- integer bands and takes the lower one
	rec = env.do(t, http.MethodGet, "/api/countries/KE/grade?score=74.5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	grade := decodeBody[GradeResponse](t, rec)
	require.NotNil(t, grade.Grade)
	assert.Equal(t, "B+", grade.Grade.Grade)
	require.NotNil(t, grade.Grade.Points)
	assert.Equal(t, 10, *grade.Grade.Points)

	// A zero-point band still reports its points
	rec = env.do(t, http.MethodGet, "/api/countries/RW/grade?score=30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":0`)

	rec = env.do(t, http.MethodGet, "/api/countries/KE/grade?score=120", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[GradeResponse](t, rec).Grade)
}

func TestCountries_TermAndAcademicYear(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/countries/KE/term?date=2025-02-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	term := decodeBody[TermResponse](t, rec)
	require.NotNil(t, term.Term)
	assert.Equal(t, "Term 1", term.Term.Name)

	// April is a holiday month in Kenya
	rec = env.do(t, http.MethodGet, "/api/countries/KE/term?date=2025-04-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[TermResponse](t, rec).Term)

	rec = env.do(t, http.MethodGet, "/api/countries/KE/term?date=15-04-2025", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/countries/KE/academic-year?date=2025-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	year := decodeBody[AcademicYearDTO](t, rec)
	assert.Equal(t, "2025", year.Label)
	assert.Equal(t, "2025-11-30", year.End.String())
}

// =============================================================================
// CURRICULA
// =============================================================================

func TestCurricula(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/curricula?country=KE", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]CurriculumSummaryDTO](t, rec)
	require.NotEmpty(t, list)
	assert.True(t, list[0].Loaded)
	assert.Equal(t, generic.CountryCode("KE"), list[0].Country)

	rec = env.do(t, http.MethodGet, "/api/curricula/ke_cbc/subjects?level=junior_secondary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	subjects := decodeBody[[]SubjectDTO](t, rec)
	require.NotEmpty(t, subjects)
	assert.Equal(t, "ENG", subjects[0].Code)

	rec = env.do(t, http.MethodGet, "/api/curricula/ke_cbc/default-level?institution_type=junior_secondary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "junior_secondary", decodeBody[LevelDTO](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/api/curricula/ke_cbc/default-level", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/curricula/montessori", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// TEMPLATES
// =============================================================================

func TestTemplates_PublishListRetire(t *testing.T) {
	// GIVEN: an NSSF template published through the API
	env := newTestEnv(t)
	env.publishNSSF(t)

	// WHEN: listing what applies in March
	rec := env.do(t, http.MethodGet, "/api/templates?country=ke&date=2025-03-01", "")

	// THEN: the template is active
	require.Equal(t, http.StatusOK, rec.Code)
	active := decodeBody[[]factory.TemplateJSON](t, rec)
	require.Len(t, active, 1)
	assert.Equal(t, "ke-nssf-2025", active[0].ID)
	assert.Equal(t, "percentage", active[0].CalculationType)

	// WHEN: a successor is published from July
	successor := strings.Replace(nssfTemplate, `"ke-nssf-2025"`, `"ke-nssf-2025b"`, 1)
	successor = strings.Replace(successor, `"2025-01-01"`, `"2025-07-01"`, 1)
	rec = env.do(t, http.MethodPost, "/api/templates", successor)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN: the first version now ends where the successor starts
	rec = env.do(t, http.MethodGet, "/api/templates/ke-nssf-2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeBody[factory.TemplateJSON](t, rec)
	require.NotNil(t, first.EffectiveTo)
	assert.Equal(t, "2025-07-01", *first.EffectiveTo)

	rec = env.do(t, http.MethodGet, "/api/templates/history?country=KE&code=NSSF", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]factory.TemplateJSON](t, rec), 2)

	// AND: the successor can be retired once, but not twice
	rec = env.do(t, http.MethodPost, "/api/templates/ke-nssf-2025b/retire", `{"date": "2026-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	retired := decodeBody[factory.TemplateJSON](t, rec)
	require.NotNil(t, retired.EffectiveTo)
	assert.Equal(t, "2026-01-01", *retired.EffectiveTo)

	rec = env.do(t, http.MethodPost, "/api/templates/ke-nssf-2025b/retire", `{"date": "2026-02-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplates_ErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed body", http.MethodPost, "/api/templates", `{"country":`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/templates", strings.Replace(nssfTemplate, `"National Social Security Fund"`, `""`, 1), http.StatusBadRequest},
		{"unknown calculation type", http.MethodPost, "/api/templates", strings.Replace(nssfTemplate, `"percentage"`, `"lookup"`, 1), http.StatusBadRequest},
		{"rate above one", http.MethodPost, "/api/templates", strings.Replace(nssfTemplate, `{"rate": "0.06"}`, `{"rate": "6"}`, 1), http.StatusBadRequest},
		{"unsupported country", http.MethodPost, "/api/templates", strings.Replace(nssfTemplate, `"KE"`, `"US"`, 1), http.StatusUnprocessableEntity},
		{"broken bands", http.MethodPost, "/api/templates", `{
			"country": "KE", "code": "PAYE", "name": "PAYE", "calculation_type": "tax_band",
			"effective_from": "2025-01-01",
			"formula": {"bands": [{"lower": "0", "upper": "1000", "rate": "0.1"}]}
		}`, http.StatusUnprocessableEntity},
		{"unknown template", http.MethodGet, "/api/templates/nope", "", http.StatusNotFound},
		{"retire unknown", http.MethodPost, "/api/templates/nope/retire", `{"date": "2026-01-01"}`, http.StatusNotFound},
		{"retire without date", http.MethodPost, "/api/templates/nope/retire", `{}`, http.StatusBadRequest},
		{"list unsupported country", http.MethodGet, "/api/templates?country=US", "", http.StatusUnprocessableEntity},
		{"history without code", http.MethodGet, "/api/templates/history?country=KE", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			errResp := decodeBody[ErrorResponse](t, rec)
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

// =============================================================================
// PAYROLL
// =============================================================================

func TestComputePayslip(t *testing.T) {
	env := newTestEnv(t)
	env.publishNSSF(t)

	rec := env.do(t, http.MethodPost, "/api/payroll/compute",
		`{"country": "KE", "gross_salary": "10000", "effective_date": "2025-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		NetSalary                  decimal.Decimal              `json:"net_salary"`
		TotalEmployerContributions decimal.Decimal              `json:"total_employer_contributions"`
		Deductions                 []statutory.AppliedDeduction `json:"deductions"`
		NetFormatted               string                       `json:"net_formatted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NetSalary.Equal(decimal.NewFromInt(9400)), resp.NetSalary.String())
	assert.True(t, resp.TotalEmployerContributions.Equal(decimal.NewFromInt(600)))
	require.Len(t, resp.Deductions, 1)
	assert.Equal(t, "NSSF", resp.Deductions[0].Code)
	assert.Equal(t, "KSh 9,400.00", resp.NetFormatted)

	// Before the template existed nothing is deducted
	rec = env.do(t, http.MethodPost, "/api/payroll/compute",
		`{"country": "KE", "gross_salary": 10000, "effective_date": "2024-12-31"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Deductions)

	rec = env.do(t, http.MethodPost, "/api/payroll/compute",
		`{"country": "KE", "gross_salary": "-1", "effective_date": "2025-03-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/payroll/compute",
		`{"country": "US", "gross_salary": "1", "effective_date": "2025-03-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/payroll/compute", `{"country": "KE", "gross_salary": "1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaff_SaveAndGet(t *testing.T) {
	env := newTestEnv(t)

	// Without an ID one is assigned
	rec := env.do(t, http.MethodPost, "/api/staff",
		`{"name": "Achieng Otieno", "email": "achieng@example.ac.ke", "country": "ke", "gross_salary": "45000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[payroll.StaffMember](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, generic.CountryCode("KE"), created.Country)
	assert.True(t, created.Active)

	// Saving the same ID again replaces it
	rec = env.do(t, http.MethodPost, "/api/staff",
		`{"id": "`+string(created.ID)+`", "name": "Achieng Otieno", "country": "KE", "gross_salary": "50000", "active": false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/staff/"+string(created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[payroll.StaffMember](t, rec)
	assert.Equal(t, "50000", got.GrossSalary.String())
	assert.False(t, got.Active)
	assert.Equal(t, created.CreatedAt.Unix(), got.CreatedAt.Unix())

	rec = env.do(t, http.MethodGet, "/api/staff?country=KE", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]payroll.StaffMember](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/staff/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/staff", `{"name": "X", "email": "not-an-email", "country": "KE"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/staff", `{"name": "X", "country": "KE", "gross_salary": "-5"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayrollRuns_CreateGetExport(t *testing.T) {
	// GIVEN: NSSF published and two Kenyan staff
	env := newTestEnv(t)
	env.publishNSSF(t)
	ctx := context.Background()
	require.NoError(t, env.staff.SaveStaff(ctx, payroll.StaffMember{
		ID: "s1", Name: "Achieng", Country: "KE", GrossSalary: generic.MustParseDecimal("10000"), Active: true,
	}))
	require.NoError(t, env.staff.SaveStaff(ctx, payroll.StaffMember{
		ID: "s2", Name: "Baraka", Country: "KE", GrossSalary: generic.MustParseDecimal("20000"), Active: true,
	}))

	// WHEN: March is run
	rec := env.do(t, http.MethodPost, "/api/payroll/runs", `{"country": "KE", "period": "2025-03"}`)

	// THEN
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	run := decodeBody[payroll.Run](t, rec)
	assert.Equal(t, 2, run.Totals.Headcount)
	assert.True(t, run.Totals.Net.Equal(decimal.NewFromInt(28200)), run.Totals.Net.String())
	assert.Equal(t, payroll.RunCompleted, run.Status)

	// AND: the same period is a conflict
	rec = env.do(t, http.MethodPost, "/api/payroll/runs", `{"country": "KE", "period": "2025-03"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/payroll/runs", `{"country": "KE", "period": "March"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// AND: it reads back with payslips, and the list omits them
	rec = env.do(t, http.MethodGet, "/api/payroll/runs/"+string(run.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[payroll.Run](t, rec).Payslips, 2)

	rec = env.do(t, http.MethodGet, "/api/payroll/runs?country=KE", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[[]payroll.Run](t, rec)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Payslips)

	// AND: the register downloads as a workbook
	rec = env.do(t, http.MethodGet, "/api/payroll/runs/"+string(run.ID)+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll-KE-2025-03.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec = env.do(t, http.MethodGet, "/api/payroll/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// METRICS
// =============================================================================

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	env := newTestEnv(t)
	counter := requestCount.WithLabelValues("404", http.MethodGet, "/api/staff/{id}")
	before := testutil.ToFloat64(counter)

	env.do(t, http.MethodGet, "/api/staff/a", "")
	env.do(t, http.MethodGet, "/api/staff/b", "")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
