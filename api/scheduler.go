/*
scheduler.go - Automated monthly payroll scheduler

PURPOSE:
  Periodically checks every supported country and, once the month's pay
  day has arrived, runs payroll for the current month if nobody has run
  it manually yet.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Checks immediately on start, then on every tick
  - Processor.Due decides per country; the run store's uniqueness on
    (country, period) guards against racing a manual run
  - Countries without active staff are skipped
  - A failure for one country is logged and does not stop the others

CONFIGURATION:
  - SCHEDULER_INTERVAL: How often to check (default: 1 hour)
  - SCHEDULER_ENABLED: Whether the scheduler is active (default: false)
  - PAYROLL_PAY_DAY: Day of month from which a run is due

USAGE:
  scheduler := NewRunScheduler(processor, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CreateRun endpoint (manual run)
  - payroll/processor.go: Process and Due
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/payroll"
	"github.com/rs/zerolog"
)

// RunScheduler triggers monthly payroll runs.
type RunScheduler struct {
	Processor     *payroll.Processor
	CheckInterval time.Duration
	Enabled       bool
	Clock         generic.Clock
	Logger        zerolog.Logger

	ticker *time.Ticker
	stop   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRunScheduler creates a new scheduler.
func NewRunScheduler(processor *payroll.Processor, logger zerolog.Logger) *RunScheduler {
	return &RunScheduler{
		Processor:     processor,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Clock:         generic.SystemClock{},
		Logger:        logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins the scheduler.
func (rs *RunScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info().Msg("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rs.cancel = cancel
	rs.stop = make(chan struct{})
	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run(ctx)

	rs.Logger.Info().Dur("interval", rs.CheckInterval).Msg("started")
}

// Stop stops the scheduler and waits for an in-flight check to finish.
func (rs *RunScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.cancel()
		rs.wg.Wait()
		rs.ticker = nil
		rs.Logger.Info().Msg("stopped")
	}
}

func (rs *RunScheduler) run(ctx context.Context) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.CheckAndProcess(ctx)

	for {
		select {
		case <-rs.ticker.C:
			rs.CheckAndProcess(ctx)
		case <-rs.stop:
			return
		}
	}
}

// CheckAndProcess runs every country whose payroll is due today and
// returns the runs it created.
func (rs *RunScheduler) CheckAndProcess(ctx context.Context) []*payroll.Run {
	today := generic.Today(rs.clock())
	rs.Logger.Debug().Str("date", today.String()).Msg("checking for due payroll runs")

	var created []*payroll.Run
	for _, code := range country.Supported() {
		if ctx.Err() != nil {
			return created
		}

		period, due, err := rs.Processor.Due(ctx, code, today)
		if err != nil {
			rs.Logger.Error().Err(err).Str("country", string(code)).Msg("checking run")
			continue
		}
		if !due {
			continue
		}
		if staffed, err := rs.hasActiveStaff(ctx, code); err != nil || !staffed {
			if err != nil {
				rs.Logger.Error().Err(err).Str("country", string(code)).Msg("loading staff")
			}
			continue
		}

		run, err := rs.Processor.Process(ctx, code, period)
		if errors.Is(err, generic.ErrDuplicateRun) {
			// A manual run landed between Due and Process.
			continue
		}
		if err != nil {
			rs.Logger.Error().Err(err).
				Str("country", string(code)).
				Str("period", period.String()).
				Msg("scheduled run failed")
			continue
		}

		rs.Logger.Info().
			Str("country", string(code)).
			Str("period", period.String()).
			Str("run", string(run.ID)).
			Int("headcount", run.Totals.Headcount).
			Str("status", string(run.Status)).
			Msg("scheduled run completed")
		created = append(created, run)
	}
	return created
}

// hasActiveStaff keeps the scheduler from filing empty runs for countries
// the school does not operate in.
func (rs *RunScheduler) hasActiveStaff(ctx context.Context, code generic.CountryCode) (bool, error) {
	staff, err := rs.Processor.Staff.ListStaff(ctx, code)
	if err != nil {
		return false, err
	}
	for _, s := range staff {
		if s.Active {
			return true, nil
		}
	}
	return false, nil
}

func (rs *RunScheduler) clock() generic.Clock {
	if rs.Clock == nil {
		return generic.SystemClock{}
	}
	return rs.Clock
}
