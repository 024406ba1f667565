package query

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"graphfacade/model"
)

// fetchConcurrency bounds the parallel provider.Get fan-out during
// batch hydration (§5: "internal parallelism allowed only for
// provider.get calls inside hydration").
const fetchConcurrency = 16

// Getter is the subset of the provider contract hydration needs.
type Getter interface {
	Get(ctx context.Context, entityType, id string) (model.Flat, bool, error)
}

func toIDs(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}
		return ids
	default:
		return nil
	}
}

func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// fetchByIDs loads entityType/id for every id, counting each call
// toward the caller's hydration call budget (testable property 4).
func fetchByIDs(ctx context.Context, getter Getter, entityType string, ids []string, calls *int) (map[string]model.Flat, error) {
	ids = dedup(ids)
	result := make(map[string]model.Flat, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(fetchConcurrency)
	group, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			mu.Lock()
			*calls++
			mu.Unlock()

			body, found, err := getter.Get(gctx, entityType, id)
			if err != nil {
				return err
			}
			if found {
				mu.Lock()
				result[id] = body
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// resolveRef maps a relation field's raw stored reference(s) onto the
// hydrated entity (or entities, for an array relation). Missing
// targets are dropped from arrays and yield nil for a single
// reference.
func resolveRef(raw any, isArray bool, byID map[string]model.Flat) any {
	ids := toIDs(raw)
	if isArray {
		out := make([]model.Flat, 0, len(ids))
		for _, id := range ids {
			if body, ok := byID[id]; ok {
				out = append(out, body)
			}
		}
		return out
	}
	if len(ids) == 0 {
		return nil
	}
	if body, ok := byID[ids[0]]; ok {
		return body
	}
	return nil
}

// hydrateRelation resolves one relation field across every item that
// read it, then recurses into any nested relation fields the
// recording pass discovered, grouping nested fetches across all
// parent entities loaded at this level.
func hydrateRelation(ctx context.Context, getter Getter, rec *RelationRecording, rawRefs []any, calls *int) (map[string]model.Flat, error) {
	ids := make([]string, 0, len(rawRefs))
	for _, raw := range rawRefs {
		ids = append(ids, toIDs(raw)...)
	}

	loaded, err := fetchByIDs(ctx, getter, rec.Type, ids, calls)
	if err != nil {
		return nil, err
	}

	for nestedField, nestedRec := range rec.NestedRelations {
		nestedRaw := make([]any, 0, len(loaded))
		for _, entity := range loaded {
			nestedRaw = append(nestedRaw, entity[nestedField])
		}
		nestedLoaded, err := hydrateRelation(ctx, getter, nestedRec, nestedRaw, calls)
		if err != nil {
			return nil, err
		}
		for id, entity := range loaded {
			entity[nestedField] = resolveRef(entity[nestedField], nestedRec.IsArray, nestedLoaded)
			loaded[id] = entity
		}
	}

	return loaded, nil
}
