package memprovider

import (
	"context"
	"sort"

	apperrors "graphfacade/errors"
	"graphfacade/model"
	"graphfacade/provider"
	"graphfacade/schema"
)

// CreateAction derives (action, act, activity) from the supplied base
// verb via the conjugation rules, sets status pending, and emits
// "Action.created" — §4.5.5.
func (p *Provider) CreateAction(_ context.Context, opts provider.ActionCreate) (*model.Action, error) {
	base := opts.Action
	if base == "" {
		base = opts.Type
	}
	act, activity := opts.Act, opts.Activity
	if act == "" || activity == "" {
		_, derivedAct, derivedActivity := schema.Conjugate(base)
		if act == "" {
			act = derivedAct
		}
		if activity == "" {
			activity = derivedActivity
		}
	}

	id := opts.ID
	if id == "" {
		id = p.nextID()
	}

	action := &model.Action{
		ID:         id,
		Actor:      opts.Actor,
		Act:        act,
		Action:     base,
		Activity:   activity,
		Object:     opts.Object,
		ObjectData: opts.ObjectData,
		Status:     model.StatusPending,
		Total:      opts.Total,
		Meta:       opts.Meta,
		Priority:   opts.Priority,
		CreatedAt:  p.now(),
	}

	p.mu.Lock()
	if _, exists := p.actions[id]; exists {
		p.mu.Unlock()
		return nil, apperrors.NewAlreadyExistsError("Action", id).WithAction("createAction")
	}
	p.actions[id] = action
	stored := action.Clone()
	p.mu.Unlock()

	p.recordAndNotify(model.Event{
		ID:         p.nextID(),
		Name:       "Action.created",
		Object:     "Action",
		ObjectData: map[string]any{"id": id},
		Timestamp:  action.CreatedAt,
	})
	return stored, nil
}

// GetAction returns the Action by id, or (nil, false, nil) if absent.
func (p *Provider) GetAction(_ context.Context, id string) (*model.Action, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	action, ok := p.actions[id]
	if !ok {
		return nil, false, nil
	}
	return action.Clone(), true, nil
}

func lifecycleEventFor(status model.ActionStatus) string {
	switch status {
	case model.StatusActive:
		return "Action.started"
	case model.StatusCompleted:
		return "Action.completed"
	case model.StatusFailed:
		return "Action.failed"
	case model.StatusCancelled:
		return "Action.cancelled"
	default:
		return ""
	}
}

// UpdateAction applies updates, validating any status transition
// against the legal Action graph, stamping startedAt/completedAt as
// appropriate, and emitting the corresponding lifecycle event —
// §4.5.5.
func (p *Provider) UpdateAction(_ context.Context, id string, updates provider.ActionUpdate) (*model.Action, error) {
	p.mu.Lock()
	action, ok := p.actions[id]
	if !ok {
		p.mu.Unlock()
		return nil, apperrors.NewNotFoundError("Action", id).WithAction("updateAction")
	}

	var event string
	now := p.now()
	if updates.Status != nil && *updates.Status != action.Status {
		if !model.CanTransition(action.Status, *updates.Status) {
			p.mu.Unlock()
			return nil, apperrors.NewIllegalTransitionError("Action", string(action.Status), string(*updates.Status))
		}
		action.Status = *updates.Status
		if action.Status == model.StatusActive && action.StartedAt == nil {
			startedAt := now
			action.StartedAt = &startedAt
		}
		if action.Status.IsTerminal() {
			completedAt := now
			action.CompletedAt = &completedAt
		}
		event = lifecycleEventFor(action.Status)
	}

	if updates.Progress != nil {
		action.Progress = updates.Progress
	}
	if updates.Total != nil {
		action.Total = updates.Total
	}
	if updates.Result != nil {
		action.Result = updates.Result
	}
	if updates.Error != nil {
		action.Error = *updates.Error
	}
	if updates.Meta != nil {
		action.Meta = updates.Meta
	}
	if updates.BatchID != nil {
		action.BatchID = *updates.BatchID
	}
	if updates.BatchIndex != nil {
		action.BatchIndex = *updates.BatchIndex
	}
	if updates.BatchTotal != nil {
		action.BatchTotal = *updates.BatchTotal
	}
	action.Version++
	stored := action.Clone()
	p.mu.Unlock()

	if event != "" {
		p.recordAndNotify(model.Event{
			ID:         p.nextID(),
			Name:       event,
			Object:     "Action",
			ObjectData: map[string]any{"id": id},
			Timestamp:  now,
		})
	}
	return stored, nil
}

// ListActions filters Actions by status/actor/type, capped at limit.
func (p *Provider) ListActions(_ context.Context, opts provider.ActionListOptions) ([]*model.Action, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	statusSet := make(map[model.ActionStatus]bool, len(opts.Status))
	for _, s := range opts.Status {
		statusSet[s] = true
	}

	ids := make([]string, 0, len(p.actions))
	for id := range p.actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*model.Action, 0, len(ids))
	for _, id := range ids {
		action := p.actions[id]
		if len(statusSet) > 0 && !statusSet[action.Status] {
			continue
		}
		if opts.Actor != "" && action.Actor != opts.Actor {
			continue
		}
		if opts.Type != "" && action.Action != opts.Type {
			continue
		}
		out = append(out, action.Clone())
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// RetryAction requires current status failed and transitions back to
// pending, clearing the prior error — §4.5.5/§4.5.6.
func (p *Provider) RetryAction(_ context.Context, id string) (*model.Action, error) {
	p.mu.Lock()
	action, ok := p.actions[id]
	if !ok {
		p.mu.Unlock()
		return nil, apperrors.NewNotFoundError("Action", id).WithAction("retryAction")
	}
	if action.Status != model.StatusFailed {
		p.mu.Unlock()
		return nil, apperrors.NewIllegalTransitionError("Action", string(action.Status), string(model.StatusPending))
	}
	action.Status = model.StatusPending
	action.Error = ""
	action.StartedAt = nil
	action.CompletedAt = nil
	action.Version++
	stored := action.Clone()
	p.mu.Unlock()

	p.recordAndNotify(model.Event{
		ID:         p.nextID(),
		Name:       "Action.retried",
		Object:     "Action",
		ObjectData: map[string]any{"id": id},
		Timestamp:  p.now(),
	})
	return stored, nil
}

// CancelAction forbids terminal states and otherwise transitions to
// cancelled — §4.5.5.
func (p *Provider) CancelAction(_ context.Context, id string) (*model.Action, error) {
	p.mu.Lock()
	action, ok := p.actions[id]
	if !ok {
		p.mu.Unlock()
		return nil, apperrors.NewNotFoundError("Action", id).WithAction("cancelAction")
	}
	if action.Status.IsTerminal() {
		p.mu.Unlock()
		return nil, apperrors.NewIllegalTransitionError("Action", string(action.Status), string(model.StatusCancelled))
	}
	action.Status = model.StatusCancelled
	completedAt := p.now()
	action.CompletedAt = &completedAt
	action.Version++
	stored := action.Clone()
	p.mu.Unlock()

	p.recordAndNotify(model.Event{
		ID:         p.nextID(),
		Name:       "Action.cancelled",
		Object:     "Action",
		ObjectData: map[string]any{"id": id},
		Timestamp:  completedAt,
	})
	return stored, nil
}
