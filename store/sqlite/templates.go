package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edusuite/engine/factory"
	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
)

// =============================================================================
// TEMPLATE STORE (statutory.TxTemplateStore interface)
// =============================================================================

var _ statutory.TxTemplateStore = (*Store)(nil)

var templateFactory = factory.NewTemplateFactory()

const templateColumns = `id, country, code, name, calculation_type, formula_json,
	calculation_order, effective_from, effective_to, reduces_taxable_income, employer_rate`

// AppendTemplate stores a new template version.
func (s *Store) AppendTemplate(ctx context.Context, t statutory.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendTemplate(ctx, s.db, t)
}

func appendTemplate(ctx context.Context, q querier, t statutory.Template) error {
	formulaJSON, err := templateFactory.FormulaToJSON(t.Formula)
	if err != nil {
		return err
	}

	var effectiveTo sql.NullString
	if t.EffectiveTo != nil {
		effectiveTo = nullString(t.EffectiveTo.String())
	}

	query := `
		INSERT INTO statutory_templates
		(id, country, code, name, calculation_type, formula_json, calculation_order,
		 effective_from, effective_to, reduces_taxable_income, employer_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = q.ExecContext(ctx, query,
		t.ID,
		t.Country,
		t.Code,
		t.Name,
		t.CalculationType(),
		string(formulaJSON),
		t.CalculationOrder,
		t.EffectiveFrom.String(),
		effectiveTo,
		t.ReducesTaxableIncome,
		t.EmployerRate.String(),
		formatTime(time.Now()),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &generic.InvalidInputError{Field: "id", Reason: fmt.Sprintf("template %s already exists", t.ID)}
		}
		return fmt.Errorf("failed to append template: %w", err)
	}
	return nil
}

// CloseTemplate sets effective_to on an open version. This is the only
// UPDATE the table ever sees.
func (s *Store) CloseTemplate(ctx context.Context, id generic.TemplateID, to generic.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return closeTemplate(ctx, s.db, id, to)
}

func closeTemplate(ctx context.Context, q querier, id generic.TemplateID, to generic.Date) error {
	res, err := q.ExecContext(ctx,
		"UPDATE statutory_templates SET effective_to = ? WHERE id = ? AND effective_to IS NULL",
		to.String(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to close template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		existing, err := getTemplate(ctx, q, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: %s", generic.ErrTemplateNotFound, id)
		}
		return fmt.Errorf("%w: template %s is already closed", generic.ErrInvalidPeriod, id)
	}
	return nil
}

// GetTemplate retrieves a template version by ID.
func (s *Store) GetTemplate(ctx context.Context, id generic.TemplateID) (*statutory.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getTemplate(ctx, s.db, id)
}

func getTemplate(ctx context.Context, q querier, id generic.TemplateID) (*statutory.Template, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+templateColumns+" FROM statutory_templates WHERE id = ?", id)

	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTemplates returns every version for a country in publication order.
func (s *Store) LoadTemplates(ctx context.Context, country generic.CountryCode) ([]statutory.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryTemplates(ctx, s.db,
		"SELECT "+templateColumns+" FROM statutory_templates WHERE country = ? ORDER BY seq",
		country)
}

// LoadTemplatesByCode returns every version of one deduction in publication order.
func (s *Store) LoadTemplatesByCode(ctx context.Context, country generic.CountryCode, code string) ([]statutory.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryTemplates(ctx, s.db,
		"SELECT "+templateColumns+" FROM statutory_templates WHERE country = ? AND code = ? ORDER BY seq",
		country, code)
}

func queryTemplates(ctx context.Context, q querier, query string, args ...any) ([]statutory.Template, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var result []statutory.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (statutory.Template, error) {
	var (
		t               statutory.Template
		calculationType string
		formulaJSON     string
		effectiveFrom   string
		effectiveTo     sql.NullString
		employerRate    string
	)

	err := row.Scan(
		&t.ID, &t.Country, &t.Code, &t.Name, &calculationType, &formulaJSON,
		&t.CalculationOrder, &effectiveFrom, &effectiveTo, &t.ReducesTaxableIncome, &employerRate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, err
		}
		return t, fmt.Errorf("failed to scan template: %w", err)
	}

	t.Formula, err = templateFactory.FormulaFromJSON(statutory.CalculationType(calculationType), []byte(formulaJSON))
	if err != nil {
		return t, fmt.Errorf("template %s: %w", t.ID, err)
	}
	if t.EffectiveFrom, err = generic.ParseDate(effectiveFrom); err != nil {
		return t, fmt.Errorf("template %s: %w", t.ID, err)
	}
	if effectiveTo.Valid {
		to, err := generic.ParseDate(effectiveTo.String)
		if err != nil {
			return t, fmt.Errorf("template %s: %w", t.ID, err)
		}
		t.EffectiveTo = &to
	}
	if t.EmployerRate, err = generic.ParseDecimal(employerRate); err != nil {
		return t, fmt.Errorf("template %s: %w", t.ID, err)
	}
	return t, nil
}

// =============================================================================
// TRANSACTIONAL STORE (statutory.TxTemplateStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store statutory.TemplateStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(q querier) error {
		return fn(&txTemplateStore{q: q})
	})
}

// txTemplateStore routes every call through the open transaction.
type txTemplateStore struct {
	q querier
}

func (ts *txTemplateStore) AppendTemplate(ctx context.Context, t statutory.Template) error {
	return appendTemplate(ctx, ts.q, t)
}

func (ts *txTemplateStore) CloseTemplate(ctx context.Context, id generic.TemplateID, to generic.Date) error {
	return closeTemplate(ctx, ts.q, id, to)
}

func (ts *txTemplateStore) GetTemplate(ctx context.Context, id generic.TemplateID) (*statutory.Template, error) {
	return getTemplate(ctx, ts.q, id)
}

func (ts *txTemplateStore) LoadTemplates(ctx context.Context, country generic.CountryCode) ([]statutory.Template, error) {
	return queryTemplates(ctx, ts.q,
		"SELECT "+templateColumns+" FROM statutory_templates WHERE country = ? ORDER BY seq",
		country)
}

func (ts *txTemplateStore) LoadTemplatesByCode(ctx context.Context, country generic.CountryCode, code string) ([]statutory.Template, error) {
	return queryTemplates(ctx, ts.q,
		"SELECT "+templateColumns+" FROM statutory_templates WHERE country = ? AND code = ? ORDER BY seq",
		country, code)
}
