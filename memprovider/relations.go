package memprovider

import (
	"context"

	"graphfacade/model"
)

// relationBucket is an insertion-ordered set of edges leaving one
// (fromType, fromId, relation) key, keyed by target for idempotent
// Relate/Unrelate while Related still answers in insertion order
// (§4.5.2).
type relationBucket struct {
	order    []string // target key, in insertion order
	byTarget map[string]model.RelationEdge
}

func newRelationBucket() *relationBucket {
	return &relationBucket{byTarget: make(map[string]model.RelationEdge)}
}

func (b *relationBucket) put(edge model.RelationEdge) {
	targetKey := edge.Target.String()
	if _, exists := b.byTarget[targetKey]; !exists {
		b.order = append(b.order, targetKey)
	}
	b.byTarget[targetKey] = edge
}

func (b *relationBucket) remove(targetKey string) bool {
	if _, exists := b.byTarget[targetKey]; !exists {
		return false
	}
	delete(b.byTarget, targetKey)
	for i, k := range b.order {
		if k == targetKey {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

func (b *relationBucket) targetsInOrder() []model.RelationTarget {
	out := make([]model.RelationTarget, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.byTarget[k].Target)
	}
	return out
}

// Relate adds an edge (fromType, fromId, relation) -> (toType, toId).
// Idempotent: re-adding the same edge is a no-op other than emitting
// "Relation.created" again — §4.5.2.
func (p *Provider) Relate(_ context.Context, fromType, fromID, relation, toType, toID string, meta map[string]any) error {
	key := model.RelationKey{FromType: fromType, FromID: fromID, Relation: relation}
	target := model.RelationTarget{Type: toType, ID: toID}

	p.mu.Lock()
	bucket, ok := p.relations[key.String()]
	if !ok {
		bucket = newRelationBucket()
		p.relations[key.String()] = bucket
	}
	bucket.put(model.RelationEdge{Key: key, Target: target, Meta: meta})
	p.mu.Unlock()

	objData := map[string]any{
		"from":     fromType + ":" + fromID,
		"relation": relation,
		"to":       toType + ":" + toID,
	}
	for k, v := range meta {
		objData[k] = v
	}
	p.recordAndNotify(model.Event{
		ID:         p.nextID(),
		Name:       "Relation.created",
		Object:     "Relation",
		ObjectData: objData,
		Timestamp:  p.now(),
	})
	return nil
}

// Unrelate removes the edge if present and emits "Relation.deleted".
func (p *Provider) Unrelate(_ context.Context, fromType, fromID, relation, toType, toID string) error {
	key := model.RelationKey{FromType: fromType, FromID: fromID, Relation: relation}
	target := model.RelationTarget{Type: toType, ID: toID}

	p.mu.Lock()
	bucket, ok := p.relations[key.String()]
	existed := false
	if ok {
		existed = bucket.remove(target.String())
		if len(bucket.order) == 0 {
			delete(p.relations, key.String())
		}
	}
	p.mu.Unlock()

	if !existed {
		return nil
	}

	p.recordAndNotify(model.Event{
		ID:   p.nextID(),
		Name: "Relation.deleted",
		Object: "Relation",
		ObjectData: map[string]any{
			"from":     fromType + ":" + fromID,
			"relation": relation,
			"to":       toType + ":" + toID,
		},
		Timestamp: p.now(),
	})
	return nil
}

// Related returns the set of hydrated targets in insertion order —
// §4.5.2.
func (p *Provider) Related(ctx context.Context, entityType, id, relation string) ([]model.Flat, error) {
	key := model.RelationKey{FromType: entityType, FromID: id, Relation: relation}

	p.mu.RLock()
	var targets []model.RelationTarget
	if bucket, ok := p.relations[key.String()]; ok {
		targets = bucket.targetsInOrder()
	}
	p.mu.RUnlock()

	out := make([]model.Flat, 0, len(targets))
	for _, t := range targets {
		body, found, _ := p.Get(ctx, t.Type, t.ID)
		if found {
			out = append(out, body)
		}
	}
	return out, nil
}

// deleteIncidentRelationsLocked removes every edge touching
// (entityType, id) in either direction. Must be called with p.mu held
// for writing.
func (p *Provider) deleteIncidentRelationsLocked(entityType, id string) {
	selfTarget := model.RelationTarget{Type: entityType, ID: id}.String()

	// Outgoing: any bucket whose key starts with this entity.
	for keyStr := range p.relations {
		if hasEntityPrefix(keyStr, entityType, id) {
			delete(p.relations, keyStr)
		}
	}

	// Incoming: scan every remaining bucket for this entity as target.
	for keyStr, bucket := range p.relations {
		if bucket.remove(selfTarget) && len(bucket.order) == 0 {
			delete(p.relations, keyStr)
		}
	}
}

func hasEntityPrefix(keyStr, entityType, id string) bool {
	prefix := entityType + ":" + id + ":"
	return len(keyStr) >= len(prefix) && keyStr[:len(prefix)] == prefix
}
