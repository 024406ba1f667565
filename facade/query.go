package facade

import (
	"context"

	"graphfacade/model"
	"graphfacade/provider"
	"graphfacade/query"
)

// Query returns a deferred query rooted at list(entityType, opts) —
// the entry point for the §4.2 pipeline (Map/Filter/Sort/Limit/First,
// and ForEach via Database.ForEachResolved once resolved).
func (d *Database) Query(entityType string, opts provider.ListOptions) *query.Deferred {
	executor := func(ctx context.Context) (any, error) {
		if err := d.requireEntityType(entityType); err != nil {
			return nil, err
		}
		return d.provider.List(ctx, entityType, opts)
	}
	return query.New(executor, d.provider, d.schema, entityType)
}

// QueryOne returns a deferred query rooted at get(entityType, id).
func (d *Database) QueryOne(entityType, id string) *query.Deferred {
	executor := func(ctx context.Context) (any, error) {
		if err := d.requireEntityType(entityType); err != nil {
			return nil, err
		}
		body, found, err := d.provider.Get(ctx, entityType, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return body, nil
	}
	return query.New(executor, d.provider, d.schema, entityType)
}

// Resolve is a convenience that resolves a deferred query and asserts
// its result is an entity array, the shape ForEach expects.
func Resolve(ctx context.Context, d *query.Deferred) ([]model.Flat, error) {
	value, err := d.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	items, ok := value.([]model.Flat)
	if !ok {
		return nil, nil
	}
	return items, nil
}
