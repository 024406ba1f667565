package facade

import (
	"context"

	"graphfacade/bulk"
	"graphfacade/model"
	"graphfacade/provider"
)

// ForEachOptions layers the façade-only `where` filter (§4.3's table:
// "Filter to apply before resolving items (façade-level forEach
// only)") atop bulk.Options.
type ForEachOptions struct {
	bulk.Options
	Where map[string]any
}

// ForEach lists entityType (applying Where, if set, as the provider's
// equality filter) and runs the resumable bulk processor over the
// result (§4.3).
func (d *Database) ForEach(ctx context.Context, entityType string, cb bulk.CallbackFunc, opts ForEachOptions) (bulk.Result, error) {
	if err := d.requireEntityType(entityType); err != nil {
		return bulk.Result{}, err
	}

	items, err := d.provider.List(ctx, entityType, provider.ListOptions{Where: opts.Where})
	if err != nil {
		return bulk.Result{}, err
	}

	boxed := make([]any, len(items))
	for i, item := range items {
		boxed[i] = item
	}

	if opts.PersistName == "" {
		opts.Options.PersistName = entityType + ".forEach"
	}
	return d.bulk.ForEach(ctx, boxed, cb, opts.Options)
}

// ForEachResolved runs the bulk processor over an already-resolved
// deferred query's items (e.g. one built from Query(...).Filter(...)),
// rather than listing entityType directly.
func (d *Database) ForEachResolved(ctx context.Context, items []model.Flat, cb bulk.CallbackFunc, opts bulk.Options) (bulk.Result, error) {
	boxed := make([]any, len(items))
	for i, item := range items {
		boxed[i] = item
	}
	return d.bulk.ForEach(ctx, boxed, cb, opts)
}
