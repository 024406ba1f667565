package query

import (
	"context"
	"sync"

	apperrors "graphfacade/errors"
	"graphfacade/model"
	"graphfacade/schema"
)

// Executor produces a deferred query's value the first time it is
// resolved.
type Executor func(ctx context.Context) (any, error)

// Deferred is a chainable, access-tracking future over a provider
// read (§4.2). The zero value is not usable; construct via New or one
// of the chaining methods.
type Deferred struct {
	mu       sync.Mutex
	resolved bool
	value    any
	err      error
	executor Executor

	getter   Getter
	resolver schema.ParsedSchema

	// entityType names the schema type of the resolved value's
	// elements/fields, when known; used to look up relation info
	// during map's recording pass.
	entityType string

	parent       *Deferred
	propertyPath []string

	accessed map[string]bool
}

// New constructs a root deferred query backed by executor.
func New(executor Executor, getter Getter, resolver schema.ParsedSchema, entityType string) *Deferred {
	return &Deferred{
		executor:   executor,
		getter:     getter,
		resolver:   resolver,
		entityType: entityType,
		accessed:   make(map[string]bool),
	}
}

// Resolve runs the executor exactly once (idempotent resolution,
// testable property 3); subsequent calls return the memoised value.
func (d *Deferred) Resolve(ctx context.Context) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resolved {
		return d.value, d.err
	}
	d.resolved = true

	if d.parent != nil {
		parentValue, err := d.parent.Resolve(ctx)
		if err != nil {
			d.err = err
			return nil, err
		}
		d.value = walkPath(parentValue, d.propertyPath)
		return d.value, nil
	}

	value, err := d.executor(ctx)
	d.value, d.err = value, err
	return value, err
}

// walkPath descends field by field, returning nil as soon as an
// intermediate value is nil or not a map.
func walkPath(value any, path []string) any {
	current := value
	for _, field := range path {
		m, ok := current.(model.Flat)
		if !ok {
			return nil
		}
		current = m[field]
	}
	return current
}

// Field returns a new deferred query rooted at the same source with
// field appended to the property path — dotted property access
// without language proxies.
func (d *Deferred) Field(field string) *Deferred {
	d.mu.Lock()
	d.accessed[field] = true
	d.mu.Unlock()

	path := make([]string, len(d.propertyPath)+1)
	copy(path, d.propertyPath)
	path[len(path)-1] = field

	return &Deferred{
		getter:       d.getter,
		resolver:     d.resolver,
		parent:       d,
		propertyPath: path,
		accessed:     make(map[string]bool),
	}
}

// AccessedFields returns the set of top-level fields read via Field,
// used for schema inference.
func (d *Deferred) AccessedFields() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.accessed))
	for f := range d.accessed {
		out = append(out, f)
	}
	return out
}

// MapFunc is a map callback over a resolved array's items. During the
// recording pass it receives a *RecordingThing; during the real pass
// it receives a *HydratedThing. Both expose Get(field) any, so a
// single function value serves both passes.
type MapFunc func(item ThingReader, index int) any

// ThingReader is the shape a map callback reads through — either the
// recording-pass tracker or the post-hydration real value.
type ThingReader interface {
	Get(field string) any
}

// Map returns a new deferred query that performs the recording pass,
// batch relation hydration, and real pass described in §4.2, once its
// parent resolves to an array.
func (d *Deferred) Map(cb MapFunc) *Deferred {
	entityType := d.entityType
	resolver := d.resolver
	getter := d.getter

	return &Deferred{
		getter:   getter,
		resolver: resolver,
		accessed: make(map[string]bool),
		executor: func(ctx context.Context) (any, error) {
			parentValue, err := d.Resolve(ctx)
			if err != nil {
				return nil, err
			}
			items, ok := parentValue.([]model.Flat)
			if !ok {
				return nil, apperrors.NewNotMappableError()
			}
			return mapWithHydration(ctx, getter, resolver, entityType, items, cb)
		},
	}
}

// Filter, Sort, and Limit are pure-shape transforms over a resolved
// array; they never trigger hydration (§4.2).
func (d *Deferred) Filter(keep func(model.Flat, int) bool) *Deferred {
	return d.arrayTransform(func(items []model.Flat) []model.Flat {
		out := make([]model.Flat, 0, len(items))
		for i, item := range items {
			if keep(item, i) {
				out = append(out, item)
			}
		}
		return out
	})
}

func (d *Deferred) Sort(less func(a, b model.Flat) bool) *Deferred {
	return d.arrayTransform(func(items []model.Flat) []model.Flat {
		out := make([]model.Flat, len(items))
		copy(out, items)
		insertionSort(out, less)
		return out
	})
}

func insertionSort(items []model.Flat, less func(a, b model.Flat) bool) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}

func (d *Deferred) Limit(n int) *Deferred {
	return d.arrayTransform(func(items []model.Flat) []model.Flat {
		if n < len(items) {
			return items[:n]
		}
		return items
	})
}

func (d *Deferred) arrayTransform(transform func([]model.Flat) []model.Flat) *Deferred {
	return &Deferred{
		getter:   d.getter,
		resolver: d.resolver,
		accessed: make(map[string]bool),
		executor: func(ctx context.Context) (any, error) {
			value, err := d.Resolve(ctx)
			if err != nil {
				return nil, err
			}
			items, ok := value.([]model.Flat)
			if !ok {
				return value, nil
			}
			return transform(items), nil
		},
	}
}

// First returns element 0 of a resolved array (or nil if empty); a
// non-array resolves unchanged.
func (d *Deferred) First(ctx context.Context) (any, error) {
	value, err := d.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	items, ok := value.([]model.Flat)
	if !ok {
		return value, nil
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}
