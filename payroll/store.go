package payroll

import (
	"context"

	"github.com/edusuite/engine/generic"
)

// =============================================================================
// STORES
// =============================================================================

// StaffStore persists staff members.
type StaffStore interface {
	// SaveStaff inserts or replaces a staff member.
	SaveStaff(ctx context.Context, s StaffMember) error

	// GetStaff returns nil, nil when the ID is unknown.
	GetStaff(ctx context.Context, id generic.StaffID) (*StaffMember, error)

	// ListStaff returns a country's staff ordered by name.
	ListStaff(ctx context.Context, country generic.CountryCode) ([]StaffMember, error)
}

// RunStore persists priced runs. A country has at most one run per period.
type RunStore interface {
	// SaveRun stores a run with its payslips. A second run for the same
	// country and period fails with generic.ErrDuplicateRun.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun returns the run with payslips, or nil, nil when unknown.
	GetRun(ctx context.Context, id generic.RunID) (*Run, error)

	// FindRun returns the run of a period, or nil, nil.
	FindRun(ctx context.Context, country generic.CountryCode, period generic.PayPeriod) (*Run, error)

	// ListRuns returns a country's runs newest period first, without payslips.
	ListRuns(ctx context.Context, country generic.CountryCode) ([]Run, error)
}
