package memprovider

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "graphfacade/errors"
	"graphfacade/model"
	"graphfacade/provider"
)

// Get retrieves one entity, or (nil, false, nil) if absent.
func (p *Provider) Get(_ context.Context, entityType, id string) (model.Flat, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	byID, ok := p.entities[entityType]
	if !ok {
		return nil, false, nil
	}
	body, ok := byID[id]
	if !ok {
		return nil, false, nil
	}
	return body.Clone(), true, nil
}

// List returns a shallow-copied array, optionally filtered by
// equality (where), sorted (orderBy/order, nulls-last ascending /
// nulls-first descending), and paginated (limit/offset) — §4.5.1.
func (p *Provider) List(_ context.Context, entityType string, opts provider.ListOptions) ([]model.Flat, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	byID := p.entities[entityType]
	items := make([]model.Flat, 0, len(byID))
	for _, body := range byID {
		if matchesWhere(body, opts.Where) {
			items = append(items, body.Clone())
		}
	}

	if opts.OrderBy != "" {
		sortByField(items, opts.OrderBy, opts.Order)
	} else {
		// Deterministic default order by id, since map iteration order
		// is not stable.
		sort.Slice(items, func(i, j int) bool { return items[i].ID() < items[j].ID() })
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return []model.Flat{}, nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items, nil
}

func matchesWhere(body model.Flat, where map[string]any) bool {
	for k, v := range where {
		if body[k] != v {
			return false
		}
	}
	return true
}

// sortByField sorts items stably by field, nulls-last for ascending
// order and nulls-first for descending order (§4.5.1).
func sortByField(items []model.Flat, field, order string) {
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(items, func(i, j int) bool {
		vi, iPresent := items[i][field]
		vj, jPresent := items[j][field]
		if !iPresent && !jPresent {
			return false
		}
		if !iPresent {
			return desc // nil sorts last ascending, first descending
		}
		if !jPresent {
			return !desc
		}
		less, ok := compareValues(vi, vj)
		if !ok {
			return false
		}
		if desc {
			return !less
		}
		return less
	})
}

func compareValues(a, b any) (less bool, ok bool) {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av < bv, true
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv, true
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv, true
		}
	}
	return false, false
}

// Create generates an id if missing, refuses duplicates, stamps
// createdAt/updatedAt, triggers auto-embedding, and emits
// "{type}.created" — §4.5.1.
func (p *Provider) Create(ctx context.Context, entityType, id string, data model.Flat) (model.Flat, error) {
	if id == "" {
		id = p.nextID()
	}

	p.mu.Lock()
	if p.entities[entityType] == nil {
		p.entities[entityType] = make(map[string]model.Flat)
	}
	if _, exists := p.entities[entityType][id]; exists {
		p.mu.Unlock()
		return nil, apperrors.NewAlreadyExistsError(entityType, id).WithAction("create")
	}

	now := p.now()
	body := data.Clone()
	body[model.KeyID] = id
	body[model.KeyType] = entityType
	body["createdAt"] = now
	body["updatedAt"] = now
	p.entities[entityType][id] = body
	stored := body.Clone()
	p.mu.Unlock()

	p.reembed(ctx, entityType, id, stored)
	p.recordAndNotify(model.Event{
		ID:         p.nextID(),
		Name:       entityType + ".created",
		Object:     entityType,
		ObjectData: map[string]any{"id": id},
		Timestamp:  now,
	})

	p.logger.Debug("entity created", zap.String("type", entityType), zap.String("id", id))
	return stored, nil
}

// Update merges into existing (shallow), refreshes updatedAt,
// re-embeds, invalidates non-embedding artifacts for the entity, and
// emits "{type}.updated" — §4.5.1.
func (p *Provider) Update(ctx context.Context, entityType, id string, data model.Flat) (model.Flat, error) {
	p.mu.Lock()
	byID, ok := p.entities[entityType]
	if !ok {
		p.mu.Unlock()
		return nil, apperrors.NewNotFoundError(entityType, id).WithAction("update")
	}
	existing, ok := byID[id]
	if !ok {
		p.mu.Unlock()
		return nil, apperrors.NewNotFoundError(entityType, id).WithAction("update")
	}

	merged := existing.Clone()
	for k, v := range data {
		merged[k] = v
	}
	merged[model.KeyID] = id
	merged[model.KeyType] = entityType
	merged["updatedAt"] = p.now()
	byID[id] = merged
	stored := merged.Clone()
	p.mu.Unlock()

	p.invalidateArtifacts(entityType, id, true)
	p.reembed(ctx, entityType, id, stored)
	p.recordAndNotify(model.Event{
		ID:        p.nextID(),
		Name:      entityType + ".updated",
		Object:    entityType,
		ObjectData: map[string]any{"id": id},
		Timestamp: p.now(),
	})

	return stored, nil
}

// Delete removes the entity, all incident relation edges (both
// directions), all its artifacts, and emits "{type}.deleted" —
// §4.5.1. Returns false if the entity was absent.
func (p *Provider) Delete(_ context.Context, entityType, id string) (bool, error) {
	p.mu.Lock()
	byID, ok := p.entities[entityType]
	if !ok {
		p.mu.Unlock()
		return false, nil
	}
	if _, ok := byID[id]; !ok {
		p.mu.Unlock()
		return false, nil
	}
	delete(byID, id)
	p.deleteIncidentRelationsLocked(entityType, id)
	p.mu.Unlock()

	p.invalidateArtifacts(entityType, id, false)
	p.recordAndNotify(model.Event{
		ID:        p.nextID(),
		Name:      entityType + ".deleted",
		Object:    entityType,
		ObjectData: map[string]any{"id": id},
		Timestamp: p.now(),
	})
	return true, nil
}
