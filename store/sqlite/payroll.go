package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/payroll"
	"github.com/edusuite/engine/statutory"
)

// =============================================================================
// STAFF STORE (payroll.StaffStore interface)
// =============================================================================

var (
	_ payroll.StaffStore = (*Store)(nil)
	_ payroll.RunStore   = (*Store)(nil)
)

// SaveStaff inserts or replaces a staff member.
func (s *Store) SaveStaff(ctx context.Context, m payroll.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO staff (id, name, email, country, gross_salary, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			country = excluded.country,
			gross_salary = excluded.gross_salary,
			active = excluded.active
	`

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Name, nullString(m.Email), m.Country,
		m.GrossSalary.String(), m.Active, formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save staff member: %w", err)
	}
	return nil
}

// GetStaff retrieves a staff member by ID.
func (s *Store) GetStaff(ctx context.Context, id generic.StaffID) (*payroll.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, country, gross_salary, active, created_at FROM staff WHERE id = ?", id)

	m, err := scanStaff(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListStaff returns a country's staff ordered by name.
func (s *Store) ListStaff(ctx context.Context, country generic.CountryCode) ([]payroll.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, country, gross_salary, active, created_at FROM staff WHERE country = ? ORDER BY name, id",
		country,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var result []payroll.StaffMember
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanStaff(row scanner) (payroll.StaffMember, error) {
	var (
		m         payroll.StaffMember
		email     sql.NullString
		gross     string
		createdAt string
	)
	if err := row.Scan(&m.ID, &m.Name, &email, &m.Country, &gross, &m.Active, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return m, err
		}
		return m, fmt.Errorf("failed to scan staff member: %w", err)
	}

	var err error
	if m.GrossSalary, err = generic.ParseDecimal(gross); err != nil {
		return m, fmt.Errorf("staff %s: %w", m.ID, err)
	}
	m.Email = email.String
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// =============================================================================
// RUN STORE (payroll.RunStore interface)
// =============================================================================

// SaveRun stores a run, its payslips and their deduction lines atomically.
func (s *Store) SaveRun(ctx context.Context, run *payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	totalsJSON, err := json.Marshal(run.Totals)
	if err != nil {
		return fmt.Errorf("failed to encode totals: %w", err)
	}
	var failuresJSON sql.NullString
	if len(run.Failures) > 0 {
		raw, err := json.Marshal(run.Failures)
		if err != nil {
			return fmt.Errorf("failed to encode failures: %w", err)
		}
		failuresJSON = nullString(string(raw))
	}

	return s.inTx(ctx, func(q querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO payroll_runs
			(id, country, period, currency, effective_date, status, totals_json, failures_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Country, run.Period.String(), run.Currency, run.EffectiveDate.String(),
			run.Status, string(totalsJSON), failuresJSON, formatTime(run.CreatedAt),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: %s %s", generic.ErrDuplicateRun, run.Country, run.Period)
			}
			return fmt.Errorf("failed to save run: %w", err)
		}

		for i, slip := range run.Payslips {
			if err := insertPayslip(ctx, q, run.ID, i, slip); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertPayslip(ctx context.Context, q querier, runID generic.RunID, position int, slip payroll.Payslip) error {
	r := slip.Result
	_, err := q.ExecContext(ctx, `
		INSERT INTO payslips
		(id, run_id, position, staff_id, staff_name, gross_salary, total_deductions, net_salary,
		 total_employer_contributions, requires_review, net_formatted, net_in_words)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		slip.ID, runID, position, slip.StaffID, slip.StaffName,
		r.GrossSalary.String(), r.TotalDeductions.String(), r.NetSalary.String(),
		r.TotalEmployerContributions.String(), r.RequiresReview, slip.NetFormatted, slip.NetInWords,
	)
	if err != nil {
		return fmt.Errorf("failed to save payslip for %s: %w", slip.StaffID, err)
	}

	for i, d := range r.Deductions {
		_, err := q.ExecContext(ctx, `
			INSERT INTO payslip_lines
			(payslip_id, position, template_id, code, name, calculation_type, amount,
			 employer_contribution, taxable_base, reduces_taxable_income)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			slip.ID, i, d.TemplateID, d.Code, d.Name, d.CalculationType,
			d.Amount.String(), d.EmployerContribution.String(), d.TaxableBase.String(), d.ReducesTaxableIncome,
		)
		if err != nil {
			return fmt.Errorf("failed to save payslip line %s: %w", d.Code, err)
		}
	}
	return nil
}

const runColumns = "id, country, period, currency, effective_date, status, totals_json, failures_json, created_at"

// GetRun retrieves a run with its payslips.
func (s *Store) GetRun(ctx context.Context, id generic.RunID) (*payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadRun(ctx, s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM payroll_runs WHERE id = ?", id))
}

// FindRun retrieves the run of a country and period with its payslips.
func (s *Store) FindRun(ctx context.Context, country generic.CountryCode, period generic.PayPeriod) (*payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadRun(ctx, s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM payroll_runs WHERE country = ? AND period = ?",
		country, period.String()))
}

func (s *Store) loadRun(ctx context.Context, row *sql.Row) (*payroll.Run, error) {
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if run.Payslips, err = s.loadPayslips(ctx, run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns a country's runs, newest period first, without payslips.
func (s *Store) ListRuns(ctx context.Context, country generic.CountryCode) ([]payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM payroll_runs WHERE country = ? ORDER BY period DESC", country)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row scanner) (payroll.Run, error) {
	var (
		run           payroll.Run
		period        string
		effectiveDate string
		totalsJSON    string
		failuresJSON  sql.NullString
		createdAt     string
	)
	err := row.Scan(&run.ID, &run.Country, &period, &run.Currency, &effectiveDate,
		&run.Status, &totalsJSON, &failuresJSON, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	if run.Period, err = generic.ParsePayPeriod(period); err != nil {
		return run, err
	}
	if run.EffectiveDate, err = generic.ParseDate(effectiveDate); err != nil {
		return run, err
	}
	if err := json.Unmarshal([]byte(totalsJSON), &run.Totals); err != nil {
		return run, fmt.Errorf("run %s: failed to decode totals: %w", run.ID, err)
	}
	if failuresJSON.Valid {
		if err := json.Unmarshal([]byte(failuresJSON.String), &run.Failures); err != nil {
			return run, fmt.Errorf("run %s: failed to decode failures: %w", run.ID, err)
		}
	}
	run.CreatedAt = parseTime(createdAt)
	return run, nil
}

func (s *Store) loadPayslips(ctx context.Context, run payroll.Run) ([]payroll.Payslip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, staff_name, gross_salary, total_deductions, net_salary,
		       total_employer_contributions, requires_review, net_formatted, net_in_words
		FROM payslips WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payslips: %w", err)
	}

	var slips []payroll.Payslip
	for rows.Next() {
		var (
			slip                             payroll.Payslip
			gross, deductions, net, employer string
		)
		result := &statutory.Result{
			Country:       run.Country,
			Currency:      run.Currency,
			EffectiveDate: run.EffectiveDate,
		}
		if err := rows.Scan(&slip.ID, &slip.StaffID, &slip.StaffName, &gross, &deductions, &net,
			&employer, &result.RequiresReview, &slip.NetFormatted, &slip.NetInWords); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		result.GrossSalary = generic.MustParseDecimal(gross)
		result.TotalDeductions = generic.MustParseDecimal(deductions)
		result.NetSalary = generic.MustParseDecimal(net)
		result.TotalEmployerContributions = generic.MustParseDecimal(employer)
		slip.Result = result
		slips = append(slips, slip)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Close before the line queries: :memory: databases have one connection.
	rows.Close()

	for i := range slips {
		lines, err := s.loadLines(ctx, slips[i].ID)
		if err != nil {
			return nil, err
		}
		slips[i].Result.Deductions = lines
	}
	return slips, nil
}

func (s *Store) loadLines(ctx context.Context, payslipID string) ([]statutory.AppliedDeduction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template_id, code, name, calculation_type, amount, employer_contribution,
		       taxable_base, reduces_taxable_income
		FROM payslip_lines WHERE payslip_id = ? ORDER BY position`, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payslip lines: %w", err)
	}
	defer rows.Close()

	lines := []statutory.AppliedDeduction{}
	for rows.Next() {
		var (
			d                      statutory.AppliedDeduction
			amount, employer, base string
		)
		if err := rows.Scan(&d.TemplateID, &d.Code, &d.Name, &d.CalculationType,
			&amount, &employer, &base, &d.ReducesTaxableIncome); err != nil {
			return nil, fmt.Errorf("failed to scan payslip line: %w", err)
		}
		d.Amount = generic.MustParseDecimal(amount)
		d.EmployerContribution = generic.MustParseDecimal(employer)
		d.TaxableBase = generic.MustParseDecimal(base)
		lines = append(lines, d)
	}
	return lines, rows.Err()
}
