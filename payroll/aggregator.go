package payroll

import (
	"context"
	"fmt"

	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator prices a staff list for one country and period.
type Aggregator struct {
	Templates statutory.TemplateSource
	Workers   int
	Policy    ErrorPolicy
	Clock     generic.Clock
	Logger    zerolog.Logger
}

func NewAggregator(templates statutory.TemplateSource, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		Templates: templates,
		Workers:   DefaultWorkers,
		Policy:    ContinueOnError,
		Clock:     generic.SystemClock{},
		Logger:    logger,
	}
}

// Run computes one payslip per staff member. Templates are read once, so
// every payslip of the run sees the same catalog. Payslips keep the order
// of in.Staff.
//
// Under AbortOnError the first failing staff member cancels the remaining
// work and Run returns that error. Under ContinueOnError failures are
// recorded on the Run and the status becomes RunCompletedWithErrors.
// Cancelling ctx aborts the batch under either policy.
func (a *Aggregator) Run(ctx context.Context, in RunInput) (*Run, error) {
	cfg, err := country.Get(in.Country)
	if err != nil {
		return nil, err
	}
	if in.Period.IsZero() {
		return nil, &generic.InvalidInputError{Field: "period", Reason: "required"}
	}
	effective := in.EffectiveDate
	if effective.IsZero() {
		effective = in.Period.End()
	}

	log := a.Logger.With().
		Str("country", string(cfg.Code)).
		Str("period", in.Period.String()).
		Int("staff", len(in.Staff)).
		Logger()

	templates, err := a.Templates.Active(ctx, cfg.Code, effective)
	if err != nil {
		runFailures.WithLabelValues(string(cfg.Code)).Inc()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	slips := make([]*Payslip, len(in.Staff))
	failed := make([]error, len(in.Staff))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, staff := range in.Staff {
		i, staff := i, staff
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slip, err := a.payslip(cfg, staff, effective, templates)
			if err == nil {
				slips[i] = slip
				return nil
			}
			if a.Policy == AbortOnError {
				return fmt.Errorf("staff %s: %w", staff.ID, err)
			}
			failed[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		runFailures.WithLabelValues(string(cfg.Code)).Inc()
		log.Error().Err(err).Bool("retryable", generic.IsRetryable(err)).Msg("payroll run aborted")
		return nil, err
	}

	run := &Run{
		ID:            generic.RunID(uuid.NewString()),
		Country:       cfg.Code,
		Currency:      cfg.Currency.Code(),
		Period:        in.Period,
		EffectiveDate: effective,
		Status:        RunCompleted,
		Payslips:      make([]Payslip, 0, len(in.Staff)),
		CreatedAt:     a.clock().Now().UTC(),
	}
	for i, staff := range in.Staff {
		if failed[i] != nil {
			retryable := generic.IsRetryable(failed[i])
			run.Failures = append(run.Failures, StaffFailure{
				StaffID:   staff.ID,
				StaffName: staff.Name,
				Error:     failed[i].Error(),
				Retryable: retryable,
			})
			log.Warn().
				Err(failed[i]).
				Str("staff_id", string(staff.ID)).
				Bool("retryable", retryable).
				Msg("payslip failed")
			continue
		}
		run.Payslips = append(run.Payslips, *slips[i])
	}
	run.Totals = Summarize(run.Payslips)
	if len(run.Failures) > 0 {
		run.Status = RunCompletedWithErrors
		log.Warn().Int("failures", len(run.Failures)).Msg("payroll run completed with errors")
	}

	payslipsTotal.WithLabelValues(string(cfg.Code)).Add(float64(len(run.Payslips)))
	log.Info().
		Str("run_id", string(run.ID)).
		Str("net", run.Totals.Net.String()).
		Int("flagged", len(run.Totals.FlaggedForReview)).
		Msg("payroll run completed")
	return run, nil
}

func (a *Aggregator) payslip(cfg country.Config, staff StaffMember, effective generic.Date, templates []statutory.Template) (*Payslip, error) {
	if staff.Country.Normalize() != cfg.Code {
		return nil, &generic.InvalidInputError{
			Field:  "country",
			Reason: fmt.Sprintf("staff member is paid in %s, run is for %s", staff.Country, cfg.Code),
		}
	}
	result, err := statutory.ComputeDeductions(staff.GrossSalary, cfg.Code, effective, templates)
	if err != nil {
		return nil, err
	}
	return &Payslip{
		ID:           uuid.NewString(),
		StaffID:      staff.ID,
		StaffName:    staff.Name,
		Result:       result,
		NetFormatted: cfg.Currency.Format(result.NetSalary),
		NetInWords:   AmountInWords(result.NetSalary, result.Currency),
	}, nil
}

func (a *Aggregator) workers() int {
	if a.Workers <= 0 {
		return DefaultWorkers
	}
	return a.Workers
}

func (a *Aggregator) clock() generic.Clock {
	if a.Clock == nil {
		return generic.SystemClock{}
	}
	return a.Clock
}

// =============================================================================
// TOTALS
// =============================================================================

// Summarize totals a list of payslips.
func Summarize(slips []Payslip) Totals {
	totals := Totals{
		Gross:                 decimal.Zero,
		Deductions:            decimal.Zero,
		Net:                   decimal.Zero,
		EmployerContributions: decimal.Zero,
		ByCode:                []CodeTotal{},
		FlaggedForReview:      []generic.StaffID{},
	}
	index := make(map[string]int)

	for _, slip := range slips {
		r := slip.Result
		totals.Headcount++
		totals.Gross = totals.Gross.Add(r.GrossSalary)
		totals.Deductions = totals.Deductions.Add(r.TotalDeductions)
		totals.Net = totals.Net.Add(r.NetSalary)
		totals.EmployerContributions = totals.EmployerContributions.Add(r.TotalEmployerContributions)
		if r.RequiresReview {
			totals.FlaggedForReview = append(totals.FlaggedForReview, slip.StaffID)
		}

		for _, d := range r.Deductions {
			i, ok := index[d.Code]
			if !ok {
				i = len(totals.ByCode)
				index[d.Code] = i
				totals.ByCode = append(totals.ByCode, CodeTotal{
					Code:                 d.Code,
					Name:                 d.Name,
					Amount:               decimal.Zero,
					EmployerContribution: decimal.Zero,
				})
			}
			totals.ByCode[i].Amount = totals.ByCode[i].Amount.Add(d.Amount)
			totals.ByCode[i].EmployerContribution = totals.ByCode[i].EmployerContribution.Add(d.EmployerContribution)
		}
	}
	return totals
}
