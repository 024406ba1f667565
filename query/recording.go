// Package query implements the deferred query/pipeline object (§4.2):
// a chainable, access-tracking future over a provider read, with
// two-phase batch relation hydration standing in for the source's
// runtime property-access proxy. Grounded in the teacher's
// application/queries/bus/query_bus.go (deferred dispatch) and
// application/queries/get_graph_data.go (a node-list-joined-against-
// edges read, generalized here into schema-driven relation batching).
//
// Go has no proxies, so the recording pass (§9 design note) is
// realized as RecordingThing: callers read fields via an explicit
// Get(field) call instead of dotted property access, and relation
// reads return a *RelationRecording that itself supports nested Get
// calls to the same depth the source's proxy would record.
package query

import (
	"graphfacade/model"
	"graphfacade/schema"
)

// RecordingThing is passed to a map callback during the recording
// pass. Every Get call is tracked; relation fields hand back a
// *RelationRecording instead of the raw reference so nested reads can
// be recorded too.
type RecordingThing struct {
	body      model.Flat
	entity    *schema.ParsedEntity
	resolver  schema.ParsedSchema
	relations map[string]*RelationRecording
}

func newRecordingThing(body model.Flat, entity *schema.ParsedEntity, resolver schema.ParsedSchema) *RecordingThing {
	return &RecordingThing{
		body:      body,
		entity:    entity,
		resolver:  resolver,
		relations: make(map[string]*RelationRecording),
	}
}

// Get returns the raw scalar value for a non-relation field, or a
// *RelationRecording for a relation field.
func (t *RecordingThing) Get(field string) any {
	if t.entity != nil {
		if pf, ok := t.entity.Field(field); ok && pf.IsRelation {
			return t.relationFor(field, pf)
		}
	}
	return t.body[field]
}

func (t *RecordingThing) relationFor(field string, pf schema.ParsedField) *RelationRecording {
	if rec, exists := t.relations[field]; exists {
		return rec
	}
	rec := newRelationRecording(field, pf.RelatedType, pf.IsArray, t.resolver)
	t.relations[field] = rec
	return rec
}

// RelationRecording notes that a relation field was read during the
// recording pass, and records any nested field reads on the
// (not-yet-hydrated) related entity — recursively, to whatever depth
// the schema resolves relations.
type RelationRecording struct {
	FieldName string
	Type      string
	IsArray   bool

	NestedPaths     map[string]bool
	NestedRelations map[string]*RelationRecording

	entity   *schema.ParsedEntity
	resolver schema.ParsedSchema
}

func newRelationRecording(field, relatedType string, isArray bool, resolver schema.ParsedSchema) *RelationRecording {
	return &RelationRecording{
		FieldName:       field,
		Type:            relatedType,
		IsArray:         isArray,
		NestedPaths:     make(map[string]bool),
		NestedRelations: make(map[string]*RelationRecording),
		entity:          resolver[relatedType],
		resolver:        resolver,
	}
}

// Get records a nested field read. If the nested field is itself a
// relation (per the related type's schema), it returns another
// *RelationRecording so the callback can keep chaining; otherwise it
// returns nil, since the recording pass never has real data to hand
// back — only the real pass (after hydration) does.
func (r *RelationRecording) Get(field string) any {
	r.NestedPaths[field] = true
	if r.entity == nil {
		return nil
	}
	pf, ok := r.entity.Field(field)
	if !ok || !pf.IsRelation {
		return nil
	}
	if nested, exists := r.NestedRelations[field]; exists {
		return nested
	}
	nested := newRelationRecording(field, pf.RelatedType, pf.IsArray, r.resolver)
	r.NestedRelations[field] = nested
	return nested
}
