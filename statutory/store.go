package statutory

import (
	"context"

	"github.com/edusuite/engine/generic"
)

// =============================================================================
// TEMPLATE STORE - Persistence of template versions
// =============================================================================

// TemplateStore persists template versions.
//
// Versions are append-only. The single permitted mutation is CloseTemplate,
// which sets EffectiveTo on a version that is still open. Everything else
// about a published template is frozen so that historical payslips can be
// recomputed exactly.
type TemplateStore interface {
	// AppendTemplate stores a new version.
	AppendTemplate(ctx context.Context, t Template) error

	// CloseTemplate sets EffectiveTo on an open version.
	CloseTemplate(ctx context.Context, id generic.TemplateID, to generic.Date) error

	// GetTemplate returns nil, nil when the ID is unknown.
	GetTemplate(ctx context.Context, id generic.TemplateID) (*Template, error)

	// LoadTemplates returns every version for a country in publication order.
	LoadTemplates(ctx context.Context, country generic.CountryCode) ([]Template, error)

	// LoadTemplatesByCode returns every version of one deduction in
	// publication order.
	LoadTemplatesByCode(ctx context.Context, country generic.CountryCode, code string) ([]Template, error)
}

// TxTemplateStore wraps TemplateStore with transaction support.
// Publishing a new version (close previous + append) must be atomic.
type TxTemplateStore interface {
	TemplateStore

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	WithTx(ctx context.Context, fn func(TemplateStore) error) error
}
