package query

import (
	"context"

	"graphfacade/model"
	"graphfacade/schema"
)

// HydratedThing is what a map callback reads through during the real
// pass: scalar fields come straight from the stored body; relation
// fields the recording pass discovered are already replaced with
// their hydrated entity (or entities, for an array relation).
type HydratedThing struct {
	body     model.Flat
	hydrated map[string]any
}

func (h *HydratedThing) Get(field string) any {
	if v, ok := h.hydrated[field]; ok {
		return v
	}
	return h.body[field]
}

func mergeRelationRecordings(recordings []*RecordingThing) map[string]*RelationRecording {
	merged := make(map[string]*RelationRecording)
	for _, rt := range recordings {
		for field, rec := range rt.relations {
			existing, ok := merged[field]
			if !ok {
				merged[field] = rec
				continue
			}
			mergeRelationRecordingInto(existing, rec)
		}
	}
	return merged
}

func mergeRelationRecordingInto(dst, src *RelationRecording) {
	for path := range src.NestedPaths {
		dst.NestedPaths[path] = true
	}
	for field, srcNested := range src.NestedRelations {
		if dstNested, ok := dst.NestedRelations[field]; ok {
			mergeRelationRecordingInto(dstNested, srcNested)
		} else {
			dst.NestedRelations[field] = srcNested
		}
	}
}

// mapWithHydration implements §4.2's three-phase map: recording pass,
// batch hydration, real pass.
func mapWithHydration(ctx context.Context, getter Getter, resolver schema.ParsedSchema, entityType string, items []model.Flat, cb MapFunc) ([]any, error) {
	entity := resolver[entityType]

	// Phase 1: recording pass. Errors/panics from the callback are
	// swallowed here — they resurface in the real pass.
	recordings := make([]*RecordingThing, len(items))
	for i, item := range items {
		rt := newRecordingThing(item, entity, resolver)
		recordings[i] = rt
		func() {
			defer func() { recover() }()
			cb(rt, i)
		}()
	}

	// Phase 2: batch hydration, one fetch per distinct relation field,
	// deduplicated ids, recursing into nested relations.
	merged := mergeRelationRecordings(recordings)
	byField := make(map[string]map[string]model.Flat, len(merged))
	calls := 0
	for field, rec := range merged {
		rawRefs := make([]any, len(items))
		for i, item := range items {
			rawRefs[i] = item[field]
		}
		loaded, err := hydrateRelation(ctx, getter, rec, rawRefs, &calls)
		if err != nil {
			return nil, err
		}
		byField[field] = loaded
	}

	// Phase 3: real pass, with every recorded relation field on each
	// item replaced by its hydrated value.
	results := make([]any, len(items))
	for i, item := range items {
		overrides := make(map[string]any, len(merged))
		for field, rec := range merged {
			overrides[field] = resolveRef(item[field], rec.IsArray, byField[field])
		}
		ht := &HydratedThing{body: item, hydrated: overrides}
		results[i] = cb(ht, i)
	}

	return results, nil
}
