// Package memory provides in-memory store implementations (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/edusuite/engine/generic"
	"github.com/edusuite/engine/statutory"
)

// =============================================================================
// MEMORY TEMPLATE STORE
// =============================================================================

// Templates implements statutory.TxTemplateStore.
type Templates struct {
	mu        sync.RWMutex
	templates []statutory.Template // publication order
	byID      map[generic.TemplateID]int
}

func NewTemplates() *Templates {
	return &Templates{byID: make(map[generic.TemplateID]int)}
}

var _ statutory.TxTemplateStore = (*Templates)(nil)

// AppendTemplate adds a version. Append-only.
func (m *Templates) AppendTemplate(_ context.Context, t statutory.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(t)
}

func (m *Templates) appendLocked(t statutory.Template) error {
	if _, dup := m.byID[t.ID]; dup {
		return &generic.InvalidInputError{Field: "id", Reason: fmt.Sprintf("template %s already exists", t.ID)}
	}
	m.byID[t.ID] = len(m.templates)
	m.templates = append(m.templates, t)
	return nil
}

func (m *Templates) CloseTemplate(_ context.Context, id generic.TemplateID, to generic.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked(id, to)
}

func (m *Templates) closeLocked(id generic.TemplateID, to generic.Date) error {
	i, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", generic.ErrTemplateNotFound, id)
	}
	if m.templates[i].EffectiveTo != nil {
		return fmt.Errorf("%w: template %s is already closed", generic.ErrInvalidPeriod, id)
	}
	end := to
	m.templates[i].EffectiveTo = &end
	return nil
}

func (m *Templates) GetTemplate(_ context.Context, id generic.TemplateID) (*statutory.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(id), nil
}

func (m *Templates) getLocked(id generic.TemplateID) *statutory.Template {
	i, ok := m.byID[id]
	if !ok {
		return nil
	}
	t := m.templates[i]
	return &t
}

func (m *Templates) LoadTemplates(_ context.Context, code generic.CountryCode) ([]statutory.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterLocked(func(t statutory.Template) bool { return t.Country == code }), nil
}

func (m *Templates) LoadTemplatesByCode(_ context.Context, code generic.CountryCode, deduction string) ([]statutory.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterLocked(func(t statutory.Template) bool {
		return t.Country == code && t.Code == deduction
	}), nil
}

func (m *Templates) filterLocked(keep func(statutory.Template) bool) []statutory.Template {
	var result []statutory.Template
	for _, t := range m.templates {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (m *Templates) WithTx(ctx context.Context, fn func(statutory.TemplateStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&txTemplatesView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type templatesSnapshot struct {
	templates []statutory.Template
	byID      map[generic.TemplateID]int
}

func (m *Templates) snapshot() templatesSnapshot {
	byID := make(map[generic.TemplateID]int, len(m.byID))
	for k, v := range m.byID {
		byID[k] = v
	}
	return templatesSnapshot{
		templates: append([]statutory.Template(nil), m.templates...),
		byID:      byID,
	}
}

func (m *Templates) restore(s templatesSnapshot) {
	m.templates = s.templates
	m.byID = s.byID
}

// txTemplatesView runs with the parent's lock already held.
type txTemplatesView struct {
	parent *Templates
}

func (tv *txTemplatesView) AppendTemplate(_ context.Context, t statutory.Template) error {
	return tv.parent.appendLocked(t)
}

func (tv *txTemplatesView) CloseTemplate(_ context.Context, id generic.TemplateID, to generic.Date) error {
	return tv.parent.closeLocked(id, to)
}

func (tv *txTemplatesView) GetTemplate(_ context.Context, id generic.TemplateID) (*statutory.Template, error) {
	return tv.parent.getLocked(id), nil
}

func (tv *txTemplatesView) LoadTemplates(_ context.Context, code generic.CountryCode) ([]statutory.Template, error) {
	return tv.parent.filterLocked(func(t statutory.Template) bool { return t.Country == code }), nil
}

func (tv *txTemplatesView) LoadTemplatesByCode(_ context.Context, code generic.CountryCode, deduction string) ([]statutory.Template, error) {
	return tv.parent.filterLocked(func(t statutory.Template) bool {
		return t.Country == code && t.Code == deduction
	}), nil
}
