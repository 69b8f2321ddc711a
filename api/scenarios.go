/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos and frontend development. Each scenario publishes
	statutory templates, creates staff and optionally runs payroll.

AVAILABLE SCENARIOS:

	kenya-school:      Kenyan deductions, six staff, March payroll run
	nssf-rate-change:  NSSF ceiling raised mid-year; January and February runs
	                   priced by different template versions
	east-africa-group: Kenyan and Ugandan campuses run separately
	nigeria-school:    Nigerian deductions and staff, no run yet

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Publish templates from package presets via the factory and catalog
 3. Create staff
 4. Optionally run payroll through the processor

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "kenya-school"}

NOTE:

	Scenarios reset the database. The routes only exist when the handler
	has a Reset function (DEMO_SCENARIOS=true).

SEE ALSO:
  - presets/templates.go: Template JSON builders
  - handlers.go: Handler.Reset
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/payroll"
	"github.com/edusuite/engine/presets"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "kenya-school",
		Name:        "Kenyan School",
		Description: "NSSF, SHIF, housing levy and PAYE with a completed March run",
		Category:    "payroll",
	},
	{
		ID:          "nssf-rate-change",
		Name:        "NSSF Rate Change",
		Description: "NSSF ceiling raised in February; runs either side use different versions",
		Category:    "catalog",
	},
	{
		ID:          "east-africa-group",
		Name:        "East Africa Group",
		Description: "Kenyan and Ugandan campuses with separate runs and currencies",
		Category:    "payroll",
	},
	{
		ID:          "nigeria-school",
		Name:        "Nigerian School",
		Description: "Pension, NHF and PAYE; staff ready for a first run",
		Category:    "payroll",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	var load func(ctx context.Context) error
	switch req.ScenarioID {
	case "kenya-school":
		load = h.loadKenyaSchoolScenario
	case "nssf-rate-change":
		load = h.loadNSSFRateChangeScenario
	case "east-africa-group":
		load = h.loadEastAfricaGroupScenario
	case "nigeria-school":
		load = h.loadNigeriaSchoolScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	if err := h.Reset(ctx); err != nil {
		h.writeDomainError(w, r, fmt.Errorf("failed to reset database: %w", err))
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		h.writeDomainError(w, r, fmt.Errorf("failed to load scenario %s: %w", req.ScenarioID, err))
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadKenyaSchoolScenario(ctx context.Context) error {
	if err := h.publishTemplates(ctx, presets.Kenya("2025-02-01")); err != nil {
		return err
	}
	if err := h.saveStaff(ctx, "KE", kenyanStaff); err != nil {
		return err
	}
	_, err := h.Processor.Process(ctx, "KE", generic.PayPeriod{Year: 2025, Month: time.March})
	return err
}

func (h *Handler) loadNSSFRateChangeScenario(ctx context.Context) error {
	// Before February 2025 the upper earnings limit was 36,000. That version
	// is an expression; the successor is a plain capped percentage.
	old := presets.ExpressionJSON("ke-nssf-2024", "KE", "NSSF", "National Social Security Fund",
		presets.OrderPension, "2024-02-01", "min(gross, 36000) * 0.06", true)
	docs := []string{
		old,
		presets.KenyaSHIFJSON("ke-shif-2024", "2024-10-01"),
		presets.KenyaHousingLevyJSON("ke-ahl-2024", "2024-03-19"),
		presets.KenyaPAYEJSON("ke-paye-2023", "2023-07-01"),
		// Publishing the successor closes ke-nssf-2024 on 2025-02-01.
		presets.KenyaNSSFJSON("ke-nssf-2025", "2025-02-01", "72000"),
	}
	if err := h.publishTemplates(ctx, docs); err != nil {
		return err
	}
	if err := h.saveStaff(ctx, "KE", kenyanStaff); err != nil {
		return err
	}
	for _, month := range []time.Month{time.January, time.February} {
		if _, err := h.Processor.Process(ctx, "KE", generic.PayPeriod{Year: 2025, Month: month}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadEastAfricaGroupScenario(ctx context.Context) error {
	docs := append(presets.Kenya("2025-02-01"), presets.Uganda("2025-01-01")...)
	if err := h.publishTemplates(ctx, docs); err != nil {
		return err
	}
	if err := h.saveStaff(ctx, "KE", kenyanStaff[:3]); err != nil {
		return err
	}
	if err := h.saveStaff(ctx, "UG", ugandanStaff); err != nil {
		return err
	}
	period := generic.PayPeriod{Year: 2025, Month: time.April}
	for _, code := range []generic.CountryCode{"KE", "UG"} {
		if _, err := h.Processor.Process(ctx, code, period); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadNigeriaSchoolScenario(ctx context.Context) error {
	if err := h.publishTemplates(ctx, presets.Nigeria("2025-01-01")); err != nil {
		return err
	}
	return h.saveStaff(ctx, "NG", nigerianStaff)
}

// =============================================================================
// HELPERS
// =============================================================================

type demoStaff struct {
	id, name, email, gross string
	active                 bool
}

var kenyanStaff = []demoStaff{
	{"ke-001", "Achieng Otieno", "achieng@demo.ac.ke", "185000", true},
	{"ke-002", "Baraka Mwangi", "baraka@demo.ac.ke", "92000", true},
	{"ke-003", "Chebet Kiprono", "chebet@demo.ac.ke", "64000", true},
	{"ke-004", "David Kamau", "david@demo.ac.ke", "38500", true},
	{"ke-005", "Esther Wanjiku", "esther@demo.ac.ke", "24000", true},
	{"ke-006", "Felix Odhiambo", "felix@demo.ac.ke", "52000", false},
}

var ugandanStaff = []demoStaff{
	{"ug-001", "Grace Nakato", "grace@demo.ac.ug", "3200000", true},
	{"ug-002", "Henry Ssemwanga", "henry@demo.ac.ug", "1450000", true},
	{"ug-003", "Irene Achan", "irene@demo.ac.ug", "780000", true},
}

var nigerianStaff = []demoStaff{
	{"ng-001", "Ifeoma Okafor", "ifeoma@demo.edu.ng", "650000", true},
	{"ng-002", "Tunde Adeyemi", "tunde@demo.edu.ng", "320000", true},
	{"ng-003", "Zainab Bello", "zainab@demo.edu.ng", "145000", true},
}

func (h *Handler) publishTemplates(ctx context.Context, docs []string) error {
	for _, js := range docs {
		tpl, err := h.Templates.ParseTemplate(js)
		if err != nil {
			return err
		}
		if _, err := h.Catalog.Publish(ctx, tpl); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) saveStaff(ctx context.Context, code generic.CountryCode, staff []demoStaff) error {
	now := h.clock().Now().UTC()
	for _, s := range staff {
		gross, err := generic.ParseDecimal(s.gross)
		if err != nil {
			return err
		}
		member := payroll.StaffMember{
			ID:          generic.StaffID(s.id),
			Name:        s.name,
			Email:       s.email,
			Country:     code,
			GrossSalary: gross,
			Active:      s.active,
			CreatedAt:   now,
		}
		if err := h.Staff.SaveStaff(ctx, member); err != nil {
			return err
		}
	}
	return nil
}
