/*
handlers.go - HTTP request handlers for the REST API

PURPOSE:
  Implements all HTTP endpoints. Handlers are thin: they parse and
  validate the request, call the registries, the statutory catalog or the
  payroll processor, and format the response. No calculation happens here.

ENDPOINTS:
  Countries:
    GET    /api/countries                        List supported countries
    GET    /api/countries/{code}                 Country reference data
    GET    /api/countries/{code}/format?amount=  Format an amount in local currency
    GET    /api/countries/{code}/grade?score=    Grade for a percentage score
    GET    /api/countries/{code}/term?date=      Term running on date (default today)
    GET    /api/countries/{code}/academic-year   Academic year running on date

  Curricula:
    GET    /api/curricula                        All curriculum IDs, loaded or not
    GET    /api/curricula/{id}                   Levels and subjects
    GET    /api/curricula/{id}/subjects?level=   Subjects of a level (all if empty)
    GET    /api/curricula/{id}/default-level?institution_type=

  Templates:
    GET    /api/templates?country=&date=         Versions (active on date if given)
    POST   /api/templates                        Publish a new version
    GET    /api/templates/history?country=&code= Every version of a deduction
    GET    /api/templates/{id}                   One version
    POST   /api/templates/{id}/retire            Close a version without successor

  Payroll:
    POST   /api/payroll/compute                  Price one gross salary
    GET    /api/payroll/runs?country=            Runs, newest period first
    POST   /api/payroll/runs                     Run a country's payroll for a month
    GET    /api/payroll/runs/{id}                Run with payslips
    GET    /api/payroll/runs/{id}/export         Payroll register (xlsx)

  Staff:
    GET    /api/staff?country=                   Staff of a country
    POST   /api/staff                            Create or replace a staff member
    GET    /api/staff/{id}                       One staff member

  Scenarios (only when Handler.Reset is set):
    GET    /api/scenarios                        Available demo scenarios
    GET    /api/scenarios/current                Last loaded scenario
    POST   /api/scenarios/load                   Reset and load a scenario

ERROR HANDLING:
  Domain errors map to status codes in writeDomainError:
  - 400: Invalid input, malformed formula, validation failure
  - 404: Unknown template, staff member, run, curriculum or country path
  - 409: A run already exists for the period
  - 422: Configuration problems (unsupported country, broken tax bands,
         overlapping template versions)
  - 500: Anything else; details are logged, not returned

SEE ALSO:
  - server.go: Route definitions
  - dto.go: Request/response types
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/curriculum"
	"github.com/edusuite/engine/factory"
	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/payroll"
	"github.com/edusuite/engine/statutory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// requestTimeout bounds how long a payroll run may hold a request.
const requestTimeout = 2 * time.Minute

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	Catalog    *statutory.Catalog
	Calculator *statutory.Calculator
	Staff      payroll.StaffStore
	Runs       payroll.RunStore
	Processor  *payroll.Processor
	Templates  *factory.TemplateFactory
	Validate   *validator.Validate
	Clock      generic.Clock
	Logger     zerolog.Logger

	// Reset wipes all stored data. Demo scenarios are only routed when set.
	Reset func(ctx context.Context) error

	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler. Prices are read through the catalog.
func NewHandler(catalog *statutory.Catalog, staff payroll.StaffStore, runs payroll.RunStore, processor *payroll.Processor, logger zerolog.Logger) *Handler {
	return &Handler{
		Catalog:    catalog,
		Calculator: statutory.NewCalculator(catalog),
		Staff:      staff,
		Runs:       runs,
		Processor:  processor,
		Templates:  factory.NewTemplateFactory(),
		Validate:   validator.New(),
		Clock:      generic.SystemClock{},
		Logger:     logger,
	}
}

// =============================================================================
// COUNTRY ENDPOINTS
// =============================================================================

// ListCountries returns every supported country in registry order.
// GET /api/countries
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	all := country.All()
	dtos := make([]CountryDTO, 0, len(all))
	for _, cfg := range all {
		dtos = append(dtos, toCountryDTO(cfg))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCountry returns one country's reference data.
// GET /api/countries/{code}
func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.countryFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCountryDTO(cfg))
}

// FormatCurrency formats an amount the way the country prints money.
// GET /api/countries/{code}/format?amount=52000.5
func (h *Handler) FormatCurrency(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.countryFromPath(w, r)
	if !ok {
		return
	}

	amount, err := generic.ParseDecimal(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	writeJSON(w, http.StatusOK, FormatResponse{
		Country:   cfg.Code,
		Amount:    amount,
		Formatted: cfg.Currency.Format(amount),
	})
}

// GradeFromScore maps a percentage score onto the national grading scale.
// GET /api/countries/{code}/grade?score=74.5
func (h *Handler) GradeFromScore(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.countryFromPath(w, r)
	if !ok {
		return
	}

	score, err := generic.ParseDecimal(r.URL.Query().Get("score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid score", err)
		return
	}

	resp := GradeResponse{Country: cfg.Code, Score: score}
	if band, found := cfg.Grading.Lookup(score); found {
		dto := toGradeBandDTO(band)
		resp.Grade = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// CurrentTerm returns the term running on ?date, or today.
// GET /api/countries/{code}/term
func (h *Handler) CurrentTerm(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.countryFromPath(w, r)
	if !ok {
		return
	}
	clock, ok := h.clockFromQuery(w, r)
	if !ok {
		return
	}

	current, found, err := country.CurrentTerm(cfg.Code, clock)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := TermResponse{Country: cfg.Code, Date: generic.Today(clock)}
	if found {
		dto := toTermDTO(current)
		resp.Term = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// CurrentAcademicYear returns the academic year running on ?date, or today.
// GET /api/countries/{code}/academic-year
func (h *Handler) CurrentAcademicYear(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.countryFromPath(w, r)
	if !ok {
		return
	}
	clock, ok := h.clockFromQuery(w, r)
	if !ok {
		return
	}

	year, err := country.CurrentAcademicYear(cfg.Code, clock)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AcademicYearDTO{
		Country: cfg.Code,
		Label:   year.Label,
		Start:   year.Start,
		End:     year.End,
	})
}

// countryFromPath resolves {code}. An unsupported code in a path is a
// missing resource, so it answers 404 rather than 422.
func (h *Handler) countryFromPath(w http.ResponseWriter, r *http.Request) (country.Config, bool) {
	cfg, err := country.Get(generic.CountryCode(chi.URLParam(r, "code")))
	if err != nil {
		writeError(w, http.StatusNotFound, "Country not found", err)
		return country.Config{}, false
	}
	return cfg, true
}

// clockFromQuery freezes the clock on ?date when given.
func (h *Handler) clockFromQuery(w http.ResponseWriter, r *http.Request) (generic.Clock, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.clock(), true
	}
	d, err := generic.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return nil, false
	}
	return generic.FixedClockOn(d.Year(), d.Month(), d.Day()), true
}

// =============================================================================
// CURRICULUM ENDPOINTS
// =============================================================================

// ListCurricula returns the full curriculum enumeration. Curricula without
// loaded data are listed with loaded=false.
// GET /api/curricula
func (h *Handler) ListCurricula(w http.ResponseWriter, r *http.Request) {
	code := generic.CountryCode(r.URL.Query().Get("country")).Normalize()

	ids := curriculum.IDs()
	if code != "" {
		ids = curriculum.ForCountry(code)
	}

	dtos := make([]CurriculumSummaryDTO, 0, len(ids))
	for _, id := range ids {
		dto := CurriculumSummaryDTO{ID: id}
		if cfg := curriculum.Get(id); cfg != nil {
			dto.Name = cfg.Name
			dto.Country = cfg.Country
			dto.Loaded = true
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurriculum returns levels and subjects.
// GET /api/curricula/{id}
func (h *Handler) GetCurriculum(w http.ResponseWriter, r *http.Request) {
	cfg, ok := curriculumFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCurriculumDTO(cfg))
}

// SubjectsForLevel returns a level's subjects, or every subject when
// ?level is empty.
// GET /api/curricula/{id}/subjects?level=junior_secondary
func (h *Handler) SubjectsForLevel(w http.ResponseWriter, r *http.Request) {
	cfg, ok := curriculumFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSubjectDTOs(curriculum.SubjectsForLevel(cfg.ID, r.URL.Query().Get("level"))))
}

// DefaultLevel picks the level to preselect for an institution type.
// GET /api/curricula/{id}/default-level?institution_type=secondary
func (h *Handler) DefaultLevel(w http.ResponseWriter, r *http.Request) {
	cfg, ok := curriculumFromPath(w, r)
	if !ok {
		return
	}

	institution := curriculum.InstitutionType(r.URL.Query().Get("institution_type"))
	if institution == "" {
		writeError(w, http.StatusBadRequest, "institution_type is required", nil)
		return
	}

	level := curriculum.DefaultLevelForInstitutionType(cfg.ID, institution)
	if level == nil {
		writeError(w, http.StatusNotFound, "Curriculum has no levels", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLevelDTO(*level))
}

func curriculumFromPath(w http.ResponseWriter, r *http.Request) (*curriculum.Config, bool) {
	id := curriculum.ID(chi.URLParam(r, "id"))
	cfg := curriculum.Get(id)
	if cfg == nil {
		writeError(w, http.StatusNotFound, "Curriculum not found", fmt.Errorf("no data loaded for %s", id))
		return nil, false
	}
	return cfg, true
}

// =============================================================================
// TEMPLATE ENDPOINTS
// =============================================================================

// ListTemplates returns a country's template versions. With ?date only the
// versions active on that day are returned, in calculation order.
// GET /api/templates?country=KE&date=2025-03-01
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code, err := country.ParseCode(r.URL.Query().Get("country"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var templates []statutory.Template
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := generic.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		templates, err = h.Catalog.Active(ctx, code, date)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	} else {
		templates, err = h.Catalog.List(ctx, code)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}

	h.writeTemplates(w, r, templates)
}

// PublishTemplate publishes a new template version. An open predecessor
// of the same code is closed on the new version's effective_from.
// POST /api/templates
func (h *Handler) PublishTemplate(w http.ResponseWriter, r *http.Request) {
	var req factory.TemplateJSON
	if !h.decode(w, r, &req) {
		return
	}

	tpl, err := h.Templates.FromJSON(req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	published, err := h.Catalog.Publish(r.Context(), tpl)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.Logger.Info().
		Str("template", string(published.ID)).
		Str("country", string(published.Country)).
		Str("code", published.Code).
		Str("effective_from", published.EffectiveFrom.String()).
		Msg("template published")

	h.writeTemplate(w, r, http.StatusCreated, published)
}

// TemplateHistory returns every version of one deduction, oldest first.
// GET /api/templates/history?country=KE&code=PAYE
func (h *Handler) TemplateHistory(w http.ResponseWriter, r *http.Request) {
	code, err := country.ParseCode(r.URL.Query().Get("country"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	deduction := strings.TrimSpace(r.URL.Query().Get("code"))
	if deduction == "" {
		writeError(w, http.StatusBadRequest, "code is required", nil)
		return
	}

	versions, err := h.Catalog.History(r.Context(), code, deduction)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeTemplates(w, r, versions)
}

// GetTemplate returns one template version.
// GET /api/templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Catalog.Get(r.Context(), generic.TemplateID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeTemplate(w, r, http.StatusOK, tpl)
}

// RetireTemplate closes an open version without a successor.
// POST /api/templates/{id}/retire
func (h *Handler) RetireTemplate(w http.ResponseWriter, r *http.Request) {
	var req RetireTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	retired, err := h.Catalog.Retire(r.Context(), generic.TemplateID(chi.URLParam(r, "id")), at)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.Logger.Info().
		Str("template", string(retired.ID)).
		Str("effective_to", at.String()).
		Msg("template retired")

	h.writeTemplate(w, r, http.StatusOK, retired)
}

func (h *Handler) writeTemplate(w http.ResponseWriter, r *http.Request, status int, t statutory.Template) {
	dto, err := h.Templates.ToJSON(t)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, status, dto)
}

func (h *Handler) writeTemplates(w http.ResponseWriter, r *http.Request, templates []statutory.Template) {
	dtos := make([]factory.TemplateJSON, 0, len(templates))
	for _, t := range templates {
		dto, err := h.Templates.ToJSON(t)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYROLL ENDPOINTS
// =============================================================================

// ComputePayslip prices one gross salary with the templates active on
// effective_date. Nothing is stored.
// POST /api/payroll/compute
func (h *Handler) ComputePayslip(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := generic.ParseDate(req.EffectiveDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Calculator.Compute(r.Context(), req.GrossSalary, generic.CountryCode(req.Country), date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	formatted, err := country.FormatCurrency(result.NetSalary, result.Country)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ComputeResponse{Result: result, NetFormatted: formatted})
}

// ListRuns returns a country's runs without payslips.
// GET /api/payroll/runs?country=KE
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	code, err := country.ParseCode(r.URL.Query().Get("country"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	runs, err := h.Runs.ListRuns(r.Context(), code)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if runs == nil {
		runs = []payroll.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// CreateRun runs a country's payroll for one month and stores it.
// POST /api/payroll/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if !h.decode(w, r, &req) {
		return
	}

	period, err := generic.ParsePayPeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period format (use YYYY-MM)", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	run, err := h.Processor.Process(ctx, generic.CountryCode(req.Country), period)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

// GetRun returns a run with its payslips.
// GET /api/payroll/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ExportRun streams the payroll register as an Excel workbook.
// GET /api/payroll/runs/{id}/export
func (h *Handler) ExportRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runFromPath(w, r)
	if !ok {
		return
	}

	// Buffer first so a failed export can still answer with a JSON error.
	var buf bytes.Buffer
	if err := payroll.WriteRegisterXLSX(run, &buf); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	filename := fmt.Sprintf("payroll-%s-%s.xlsx", run.Country, run.Period)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) runFromPath(w http.ResponseWriter, r *http.Request) (*payroll.Run, bool) {
	id := generic.RunID(chi.URLParam(r, "id"))
	run, err := h.Runs.GetRun(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return nil, false
	}
	if run == nil {
		h.writeDomainError(w, r, fmt.Errorf("%w: %s", generic.ErrRunNotFound, id))
		return nil, false
	}
	return run, true
}

// =============================================================================
// STAFF ENDPOINTS
// =============================================================================

// ListStaff returns a country's staff ordered by name.
// GET /api/staff?country=KE
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	code, err := country.ParseCode(r.URL.Query().Get("country"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	staff, err := h.Staff.ListStaff(r.Context(), code)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if staff == nil {
		staff = []payroll.StaffMember{}
	}
	writeJSON(w, http.StatusOK, staff)
}

// SaveStaff creates a staff member, or replaces one when the ID exists.
// POST /api/staff
func (h *Handler) SaveStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaveStaffRequest
	if !h.decode(w, r, &req) {
		return
	}

	code, err := country.ParseCode(req.Country)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if req.GrossSalary.IsNegative() {
		h.writeDomainError(w, r, &generic.InvalidInputError{Field: "gross_salary", Reason: "must not be negative"})
		return
	}

	staff := payroll.StaffMember{
		ID:          generic.StaffID(strings.TrimSpace(req.ID)),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Country:     code,
		GrossSalary: req.GrossSalary,
		Active:      req.Active == nil || *req.Active,
		CreatedAt:   h.clock().Now().UTC(),
	}

	status := http.StatusCreated
	if staff.ID == "" {
		staff.ID = generic.StaffID(uuid.NewString())
	} else {
		existing, err := h.Staff.GetStaff(ctx, staff.ID)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		if existing != nil {
			staff.CreatedAt = existing.CreatedAt
			status = http.StatusOK
		}
	}

	if err := h.Staff.SaveStaff(ctx, staff); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, status, staff)
}

// GetStaff returns one staff member.
// GET /api/staff/{id}
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id := generic.StaffID(chi.URLParam(r, "id"))
	staff, err := h.Staff.GetStaff(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if staff == nil {
		h.writeDomainError(w, r, fmt.Errorf("%w: %s", generic.ErrStaffNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (h *Handler) clock() generic.Clock {
	if h.Clock == nil {
		return generic.SystemClock{}
	}
	return h.Clock
}

// decode reads a JSON body into v and runs the validator over it. On
// failure the 400 response is already written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.Validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, validationErrorToText(fe))
			}
			writeError(w, http.StatusBadRequest, "Validation failed", errors.New(strings.Join(msgs, "; ")))
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func validationErrorToText(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s", e.Field(), e.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", e.Field(), e.Param())
	case "email":
		return fmt.Sprintf("%s is not a valid email address", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s is not valid", e.Field())
}

// writeDomainError maps the engine's error taxonomy onto status codes.
// ErrDuplicateRun is checked before IsClientError, which also matches it.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, generic.ErrDuplicateRun):
		writeError(w, http.StatusConflict, "Payroll already run for period", err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case generic.IsConfigurationError(err):
		writeError(w, http.StatusUnprocessableEntity, "Configuration error", err)
	default:
		h.Logger.Error().
			Err(err).
			Str("request-id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
