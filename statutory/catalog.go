package statutory

import (
	"context"
	"fmt"
	"sort"

	"github.com/edusuite/engine/country"
	"github.com/edusuite/engine/generic"
	"github.com/google/uuid"
)

// =============================================================================
// DATE RESOLUTION
// =============================================================================

// ResolveActive returns the templates of country active on date, ordered by
// CalculationOrder. Ties keep their input order. Two active versions of the
// same code mean the catalog data is corrupt and yield an
// *generic.OverlappingPeriodError.
func ResolveActive(templates []Template, code generic.CountryCode, date generic.Date) ([]Template, error) {
	code = code.Normalize()

	active := make([]Template, 0, len(templates))
	seen := make(map[string]generic.TemplateID)
	for _, t := range templates {
		if t.Country.Normalize() != code || !t.ActiveOn(date) {
			continue
		}
		if existing, dup := seen[t.Code]; dup {
			return nil, &generic.OverlappingPeriodError{
				Country: code, Code: t.Code, Existing: existing, Incoming: t.ID,
			}
		}
		seen[t.Code] = t.ID
		active = append(active, t)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CalculationOrder < active[j].CalculationOrder
	})
	return active, nil
}

// =============================================================================
// CATALOG - Versioned template publication
// =============================================================================

// TemplateSource supplies the templates active for a country on a date.
type TemplateSource interface {
	Active(ctx context.Context, code generic.CountryCode, date generic.Date) ([]Template, error)
}

// Catalog is the administrator-facing view of the template store. It
// enforces that versions of one deduction never overlap.
type Catalog struct {
	Store TxTemplateStore
}

func NewCatalog(store TxTemplateStore) *Catalog {
	return &Catalog{Store: store}
}

var _ TemplateSource = (*Catalog)(nil)

// Publish stores a new version. If an open version of the same code started
// earlier it is closed on the new version's EffectiveFrom; any other overlap
// is rejected. An empty ID is filled with a UUID.
func (c *Catalog) Publish(ctx context.Context, t Template) (Template, error) {
	t.Country = t.Country.Normalize()
	if !country.IsSupported(t.Country) {
		return Template{}, &generic.UnknownCountryError{Code: t.Country}
	}
	if t.ID == "" {
		t.ID = generic.TemplateID(uuid.NewString())
	}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}

	err := c.Store.WithTx(ctx, func(s TemplateStore) error {
		existing, err := s.GetTemplate(ctx, t.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &generic.InvalidInputError{Field: "id", Reason: fmt.Sprintf("template %s already exists", t.ID)}
		}

		versions, err := s.LoadTemplatesByCode(ctx, t.Country, t.Code)
		if err != nil {
			return err
		}
		for _, v := range versions {
			if !v.Period().Overlaps(t.Period()) {
				continue
			}
			if v.EffectiveTo == nil && v.EffectiveFrom.Before(t.EffectiveFrom) {
				if err := s.CloseTemplate(ctx, v.ID, t.EffectiveFrom); err != nil {
					return err
				}
				continue
			}
			return &generic.OverlappingPeriodError{
				Country: t.Country, Code: t.Code, Existing: v.ID, Incoming: t.ID,
			}
		}
		return s.AppendTemplate(ctx, t)
	})
	if err != nil {
		return Template{}, err
	}
	return t, nil
}

// Retire closes an open template on date at without a successor.
func (c *Catalog) Retire(ctx context.Context, id generic.TemplateID, at generic.Date) (Template, error) {
	var retired Template
	err := c.Store.WithTx(ctx, func(s TemplateStore) error {
		t, err := s.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%w: %s", generic.ErrTemplateNotFound, id)
		}
		if t.EffectiveTo != nil {
			return fmt.Errorf("%w: template %s already ends on %s", generic.ErrInvalidPeriod, id, t.EffectiveTo)
		}
		if !at.After(t.EffectiveFrom) {
			return fmt.Errorf("%w: retirement date %s must be after %s", generic.ErrInvalidPeriod, at, t.EffectiveFrom)
		}
		if err := s.CloseTemplate(ctx, id, at); err != nil {
			return err
		}
		retired = *t
		retired.EffectiveTo = &at
		return nil
	})
	return retired, err
}

// Get returns one template version.
func (c *Catalog) Get(ctx context.Context, id generic.TemplateID) (Template, error) {
	t, err := c.Store.GetTemplate(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if t == nil {
		return Template{}, fmt.Errorf("%w: %s", generic.ErrTemplateNotFound, id)
	}
	return *t, nil
}

// List returns every version published for a country.
func (c *Catalog) List(ctx context.Context, code generic.CountryCode) ([]Template, error) {
	return c.Store.LoadTemplates(ctx, code.Normalize())
}

// Active implements TemplateSource.
func (c *Catalog) Active(ctx context.Context, code generic.CountryCode, date generic.Date) ([]Template, error) {
	code = code.Normalize()
	if !country.IsSupported(code) {
		return nil, &generic.UnknownCountryError{Code: code}
	}
	all, err := c.Store.LoadTemplates(ctx, code)
	if err != nil {
		return nil, err
	}
	return ResolveActive(all, code, date)
}

// History returns every version of one deduction, oldest first.
func (c *Catalog) History(ctx context.Context, code generic.CountryCode, deduction string) ([]Template, error) {
	versions, err := c.Store.LoadTemplatesByCode(ctx, code.Normalize(), deduction)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].EffectiveFrom.Before(versions[j].EffectiveFrom)
	})
	return versions, nil
}
