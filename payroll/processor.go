package payroll

import (
	"context"
	"fmt"

	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/generic"
)

// =============================================================================
// PROCESSOR - Load staff, run, persist
// =============================================================================

// Processor ties the Aggregator to persistence. The HTTP handlers and the
// monthly scheduler both go through it so a period is never paid twice.
type Processor struct {
	Staff      StaffStore
	Runs       RunStore
	Aggregator *Aggregator
	PayDay     int // day of month templates are resolved on; 0 = last day
}

func NewProcessor(staff StaffStore, runs RunStore, aggregator *Aggregator, payDay int) *Processor {
	return &Processor{Staff: staff, Runs: runs, Aggregator: aggregator, PayDay: payDay}
}

// Process prices every active staff member of a country for period and
// stores the run.
func (p *Processor) Process(ctx context.Context, code generic.CountryCode, period generic.PayPeriod) (*Run, error) {
	code, err := country.ParseCode(string(code))
	if err != nil {
		return nil, err
	}

	existing, err := p.Runs.FindRun(ctx, code, period)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s %s is run %s", generic.ErrDuplicateRun, code, period, existing.ID)
	}

	all, err := p.Staff.ListStaff(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	active := make([]StaffMember, 0, len(all))
	for _, s := range all {
		if s.Active {
			active = append(active, s)
		}
	}

	run, err := p.Aggregator.Run(ctx, RunInput{
		Country:       code,
		Period:        period,
		EffectiveDate: period.PayDate(p.PayDay),
		Staff:         active,
	})
	if err != nil {
		return nil, err
	}
	if err := p.Runs.SaveRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Due reports whether the run for period should be triggered today: the pay
// day has arrived and no run exists yet.
func (p *Processor) Due(ctx context.Context, code generic.CountryCode, today generic.Date) (generic.PayPeriod, bool, error) {
	period := generic.PayPeriodOf(today)
	if today.Before(period.PayDate(p.PayDay)) {
		return period, false, nil
	}
	existing, err := p.Runs.FindRun(ctx, code, period)
	if err != nil {
		return period, false, err
	}
	return period, existing == nil, nil
}
