package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/payroll"
)

// =============================================================================
// MEMORY STAFF STORE
// =============================================================================

// Staff implements payroll.StaffStore.
type Staff struct {
	mu    sync.RWMutex
	staff map[generic.StaffID]payroll.StaffMember
}

func NewStaff() *Staff {
	return &Staff{staff: make(map[generic.StaffID]payroll.StaffMember)}
}

var _ payroll.StaffStore = (*Staff)(nil)

func (m *Staff) SaveStaff(_ context.Context, s payroll.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff[s.ID] = s
	return nil
}

func (m *Staff) GetStaff(_ context.Context, id generic.StaffID) (*payroll.StaffMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Staff) ListStaff(_ context.Context, code generic.CountryCode) ([]payroll.StaffMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []payroll.StaffMember
	for _, s := range m.staff {
		if s.Country == code {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// MEMORY RUN STORE
// =============================================================================

// Runs implements payroll.RunStore.
type Runs struct {
	mu   sync.RWMutex
	runs map[generic.RunID]payroll.Run
}

func NewRuns() *Runs {
	return &Runs{runs: make(map[generic.RunID]payroll.Run)}
}

var _ payroll.RunStore = (*Runs)(nil)

func (m *Runs) SaveRun(_ context.Context, run *payroll.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.runs {
		if existing.Country == run.Country && existing.Period == run.Period {
			return fmt.Errorf("%w: %s %s", generic.ErrDuplicateRun, run.Country, run.Period)
		}
	}
	m.runs[run.ID] = *run
	return nil
}

func (m *Runs) GetRun(_ context.Context, id generic.RunID) (*payroll.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (m *Runs) FindRun(_ context.Context, code generic.CountryCode, period generic.PayPeriod) (*payroll.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, run := range m.runs {
		if run.Country == code && run.Period == period {
			return &run, nil
		}
	}
	return nil, nil
}

func (m *Runs) ListRuns(_ context.Context, code generic.CountryCode) ([]payroll.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []payroll.Run
	for _, run := range m.runs {
		if run.Country != code {
			continue
		}
		run.Payslips = nil
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period.Start().After(result[j].Period.Start())
	})
	return result, nil
}
