/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Country:
    CountryDTO, CurrencyDTO, GradeBandDTO, TermDTO, AcademicYearDTO

  Curriculum:
    CurriculumSummaryDTO, CurriculumDTO, LevelDTO, SubjectDTO

  Template:
    factory.TemplateJSON (request and response), RetireTemplateRequest

  Payroll:
    ComputeRequest, ComputeResponse, SaveStaffRequest, CreateRunRequest

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags, checked by
  Handler.decode before any domain call. Domain rules (non-negative gross,
  supported country) are still enforced by the domain packages.

MONEY:
  Amounts are decimal strings ("52000.00"), never JSON numbers, so clients
  don't lose precision. Requests accept either form.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/template.go: TemplateJSON type
*/
package api

import (
	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/curriculum"
	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
	"github.com/shopspring/decimal"
)

// =============================================================================
// COUNTRIES
// =============================================================================

type CurrencyDTO struct {
	Code               string `json:"code"`
	Symbol             string `json:"symbol"`
	Decimals           int32  `json:"decimals"`
	ThousandsSeparator string `json:"thousands_separator"`
	DecimalSeparator   string `json:"decimal_separator"`
}

type GradeBandDTO struct {
	Grade  string          `json:"grade"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Points *int            `json:"points,omitempty"`
	Remark string          `json:"remark"`
}

type GradingScaleDTO struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Bands []GradeBandDTO `json:"bands"`
}

// TermDTO uses month numbers (1-12).
type TermDTO struct {
	Name       string `json:"name"`
	StartMonth int    `json:"start_month"`
	EndMonth   int    `json:"end_month"`
}

type CalendarDTO struct {
	StartMonth int       `json:"start_month"`
	EndMonth   int       `json:"end_month"`
	Terms      []TermDTO `json:"terms"`
}

// CountryDTO represents a supported country in API responses.
type CountryDTO struct {
	Code     generic.CountryCode `json:"code"`
	Name     string              `json:"name"`
	Currency CurrencyDTO         `json:"currency"`
	Grading  GradingScaleDTO     `json:"grading"`
	Calendar CalendarDTO         `json:"calendar"`
}

type FormatResponse struct {
	Country   generic.CountryCode `json:"country"`
	Amount    decimal.Decimal     `json:"amount"`
	Formatted string              `json:"formatted"`
}

// GradeResponse has a nil Grade when the score is outside [0, 100].
type GradeResponse struct {
	Country generic.CountryCode `json:"country"`
	Score   decimal.Decimal     `json:"score"`
	Grade   *GradeBandDTO       `json:"grade"`
}

// TermResponse has a nil Term during holidays.
type TermResponse struct {
	Country generic.CountryCode `json:"country"`
	Date    generic.Date        `json:"date"`
	Term    *TermDTO            `json:"term"`
}

type AcademicYearDTO struct {
	Country generic.CountryCode `json:"country"`
	Label   string              `json:"label"`
	Start   generic.Date        `json:"start"`
	End     generic.Date        `json:"end"`
}

func toCountryDTO(cfg country.Config) CountryDTO {
	dto := CountryDTO{
		Code: cfg.Code,
		Name: cfg.Name,
		Currency: CurrencyDTO{
			Code:               cfg.Currency.Code(),
			Symbol:             cfg.Currency.Symbol,
			Decimals:           cfg.Currency.Decimals,
			ThousandsSeparator: cfg.Currency.ThousandsSeparator,
			DecimalSeparator:   cfg.Currency.DecimalSeparator,
		},
		Grading: GradingScaleDTO{
			ID:    cfg.Grading.ID,
			Name:  cfg.Grading.Name,
			Bands: make([]GradeBandDTO, 0, len(cfg.Grading.Bands)),
		},
		Calendar: CalendarDTO{
			StartMonth: int(cfg.Calendar.StartMonth),
			EndMonth:   int(cfg.Calendar.EndMonth),
			Terms:      make([]TermDTO, 0, len(cfg.Calendar.Terms)),
		},
	}
	for _, b := range cfg.Grading.Bands {
		dto.Grading.Bands = append(dto.Grading.Bands, toGradeBandDTO(b))
	}
	for _, t := range cfg.Calendar.Terms {
		dto.Calendar.Terms = append(dto.Calendar.Terms, toTermDTO(t))
	}
	return dto
}

func toGradeBandDTO(b country.GradeBand) GradeBandDTO {
	return GradeBandDTO{Grade: b.Grade, Min: b.Min, Max: b.Max, Points: b.Points, Remark: b.Remark}
}

func toTermDTO(t country.Term) TermDTO {
	return TermDTO{Name: t.Name, StartMonth: int(t.Months.Start), EndMonth: int(t.Months.End)}
}

// =============================================================================
// CURRICULA
// =============================================================================

type CurriculumSummaryDTO struct {
	ID      curriculum.ID       `json:"id"`
	Name    string              `json:"name"`
	Country generic.CountryCode `json:"country,omitempty"`
	Loaded  bool                `json:"loaded"`
}

type AgeRangeDTO struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type LevelDTO struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	AgeRange       *AgeRangeDTO `json:"age_range,omitempty"`
	GradingScaleID string       `json:"grading_scale_id,omitempty"`
}

type SubjectDTO struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Compulsory bool   `json:"compulsory"`
}

type CurriculumDTO struct {
	ID       curriculum.ID           `json:"id"`
	Name     string                  `json:"name"`
	Country  generic.CountryCode     `json:"country,omitempty"`
	Levels   []LevelDTO              `json:"levels"`
	Subjects map[string][]SubjectDTO `json:"subjects"`
}

func toCurriculumDTO(cfg *curriculum.Config) CurriculumDTO {
	dto := CurriculumDTO{
		ID:       cfg.ID,
		Name:     cfg.Name,
		Country:  cfg.Country,
		Levels:   make([]LevelDTO, 0, len(cfg.Levels)),
		Subjects: make(map[string][]SubjectDTO, len(cfg.Subjects)),
	}
	for _, l := range cfg.Levels {
		dto.Levels = append(dto.Levels, toLevelDTO(l))
	}
	for level, subjects := range cfg.Subjects {
		dto.Subjects[level] = toSubjectDTOs(subjects)
	}
	return dto
}

func toLevelDTO(l curriculum.Level) LevelDTO {
	dto := LevelDTO{ID: l.ID, Name: l.Name, GradingScaleID: l.GradingScaleID}
	if l.AgeRange != nil {
		dto.AgeRange = &AgeRangeDTO{Min: l.AgeRange.Min, Max: l.AgeRange.Max}
	}
	return dto
}

func toSubjectDTOs(subjects []curriculum.Subject) []SubjectDTO {
	out := make([]SubjectDTO, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, SubjectDTO{Code: s.Code, Name: s.Name, Compulsory: s.Compulsory})
	}
	return out
}

// =============================================================================
// TEMPLATES
// =============================================================================

// RetireTemplateRequest closes an open template. Date is exclusive: the
// template stops applying on that day.
type RetireTemplateRequest struct {
	Date string `json:"date" validate:"required"`
}

// =============================================================================
// PAYROLL
// =============================================================================

// ComputeRequest prices a single gross salary without persisting anything.
type ComputeRequest struct {
	Country       string          `json:"country" validate:"required,len=2"`
	GrossSalary   decimal.Decimal `json:"gross_salary"`
	EffectiveDate string          `json:"effective_date" validate:"required"`
}

// ComputeResponse is the statutory result plus display strings.
type ComputeResponse struct {
	*statutory.Result
	NetFormatted string `json:"net_formatted"`
}

// SaveStaffRequest creates or replaces a staff member. Active defaults
// to true.
type SaveStaffRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required,max=200"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Country     string          `json:"country" validate:"required,len=2"`
	GrossSalary decimal.Decimal `json:"gross_salary"`
	Active      *bool           `json:"active"`
}

// CreateRunRequest triggers the payroll run of a country for a month
// ("2025-03").
type CreateRunRequest struct {
	Country string `json:"country" validate:"required,len=2"`
	Period  string `json:"period" validate:"required"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
