package query

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"graphfacade/model"
	"graphfacade/schema"
)

// countingGetter wraps an in-memory table and counts Get calls, so
// tests can assert the batching bound in testable property 4.
type countingGetter struct {
	mu    sync.Mutex
	calls int
	data  map[string]map[string]model.Flat
}

func newCountingGetter() *countingGetter {
	return &countingGetter{data: make(map[string]map[string]model.Flat)}
}

func (g *countingGetter) put(entityType, id string, body model.Flat) {
	if g.data[entityType] == nil {
		g.data[entityType] = make(map[string]model.Flat)
	}
	g.data[entityType][id] = body
}

func (g *countingGetter) Get(_ context.Context, entityType, id string) (model.Flat, bool, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	body, ok := g.data[entityType][id]
	if !ok {
		return nil, false, nil
	}
	return body.Clone(), true, nil
}

func testSchema(t *testing.T) schema.ParsedSchema {
	t.Helper()
	parsed, err := schema.Parse(schema.RawSchema{
		"Customer": {"name": "string", "address": "Address"},
		"Address":  {"city": "string"},
	})
	require.NoError(t, err)
	return parsed
}

func TestMapHydratesRelationsWithDedupedCalls(t *testing.T) {
	resolver := testSchema(t)
	getter := newCountingGetter()
	getter.put("Address", "addr-1", model.Flat{model.KeyID: "addr-1", "city": "C1"})
	getter.put("Address", "addr-2", model.Flat{model.KeyID: "addr-2", "city": "C2"})
	getter.put("Address", "addr-3", model.Flat{model.KeyID: "addr-3", "city": "C3"})

	customers := []model.Flat{
		{model.KeyID: "cust-a", "name": "A", "address": "addr-1"},
		{model.KeyID: "cust-b", "name": "B", "address": "addr-2"},
		{model.KeyID: "cust-c", "name": "C", "address": "addr-3"},
	}

	root := New(func(ctx context.Context) (any, error) {
		return customers, nil
	}, getter, resolver, "Customer")

	mapped := root.Map(func(item ThingReader, _ int) any {
		address, _ := item.Get("address").(model.Flat)
		city := ""
		if address != nil {
			city, _ = address["city"].(string)
		}
		return map[string]any{"name": item.Get("name"), "city": city}
	})

	result, err := mapped.Resolve(context.Background())
	require.NoError(t, err)

	results, ok := result.([]any)
	require.True(t, ok)
	require.Equal(t, []any{
		map[string]any{"name": "A", "city": "C1"},
		map[string]any{"name": "B", "city": "C2"},
		map[string]any{"name": "C", "city": "C3"},
	}, results)

	require.Equal(t, 3, getter.calls, "exactly one Get per unique related id")
}

func TestResolveIsIdempotent(t *testing.T) {
	var execCount int
	d := New(func(ctx context.Context) (any, error) {
		execCount++
		return "value", nil
	}, nil, nil, "")

	v1, err := d.Resolve(context.Background())
	require.NoError(t, err)
	v2, err := d.Resolve(context.Background())
	require.NoError(t, err)

	require.Equal(t, v1, v2)
	require.Equal(t, 1, execCount)
}

func TestMapOverNonArrayFails(t *testing.T) {
	d := New(func(ctx context.Context) (any, error) {
		return "not an array", nil
	}, newCountingGetter(), schema.ParsedSchema{}, "Customer")

	mapped := d.Map(func(item ThingReader, _ int) any { return nil })
	_, err := mapped.Resolve(context.Background())
	require.Error(t, err)
}

func TestFirstOnEmptyAndNonArray(t *testing.T) {
	empty := New(func(ctx context.Context) (any, error) {
		return []model.Flat{}, nil
	}, nil, nil, "")
	first, err := empty.First(context.Background())
	require.NoError(t, err)
	require.Nil(t, first)

	scalar := New(func(ctx context.Context) (any, error) {
		return "x", nil
	}, nil, nil, "")
	first, err = scalar.First(context.Background())
	require.NoError(t, err)
	require.Equal(t, "x", first)
}

func TestFilterSortLimitDoNotHydrate(t *testing.T) {
	getter := newCountingGetter()
	root := New(func(ctx context.Context) (any, error) {
		return []model.Flat{
			{model.KeyID: "a", "rank": float64(2)},
			{model.KeyID: "b", "rank": float64(1)},
			{model.KeyID: "c", "rank": float64(3)},
		}, nil
	}, getter, schema.ParsedSchema{}, "Item")

	sorted := root.Sort(func(a, b model.Flat) bool {
		return a["rank"].(float64) < b["rank"].(float64)
	})
	limited := sorted.Limit(2)

	value, err := limited.Resolve(context.Background())
	require.NoError(t, err)
	items := value.([]model.Flat)
	require.Len(t, items, 2)
	require.Equal(t, "b", items[0].ID())
	require.Equal(t, "a", items[1].ID())
	require.Equal(t, 0, getter.calls)
}
