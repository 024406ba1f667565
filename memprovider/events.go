package memprovider

import (
	"context"

	"graphfacade/model"
	"graphfacade/provider"
)

// recordAndNotify appends an event to the in-memory log and notifies
// subscribers afterwards, with no lock held while handlers run — the
// shared-resource policy in §5 requires Emit never call a handler
// while holding the collection lock, since a handler may itself call
// back into the provider.
func (p *Provider) recordAndNotify(event model.Event) {
	p.mu.Lock()
	p.events = append(p.events, event)
	matching := make([]subscription, 0, len(p.subs))
	for _, sub := range p.subs {
		if event.MatchesPattern(sub.pattern) {
			matching = append(matching, sub)
		}
	}
	p.mu.Unlock()

	for _, sub := range matching {
		sub.handler(event)
	}
}

// Emit records a modern emit({...}) call and notifies subscribers.
func (p *Provider) Emit(_ context.Context, opts provider.EventEmit) (model.Event, error) {
	event := model.Event{
		ID:         p.nextID(),
		Actor:      opts.Actor,
		ActorData:  opts.ActorData,
		Name:       opts.Event,
		Object:     opts.Object,
		ObjectData: opts.ObjectData,
		Result:     opts.Result,
		ResultData: opts.ResultData,
		Meta:       opts.Meta,
		Timestamp:  p.now(),
	}
	p.recordAndNotify(event)
	return event, nil
}

// EmitLegacy is the older emit(name, data) call form, kept for callers
// that have not migrated to the structured opts form.
func (p *Provider) EmitLegacy(_ context.Context, name string, data map[string]any) (model.Event, error) {
	event := model.Event{
		ID:         p.nextID(),
		Name:       name,
		ObjectData: data,
		Timestamp:  p.now(),
	}
	p.recordAndNotify(event)
	return event, nil
}

// On subscribes handler to events matching pattern, returning an
// unsubscribe func.
func (p *Provider) On(pattern string, handler provider.EventHandler) (unsubscribe func()) {
	p.mu.Lock()
	id := len(p.subs)
	p.subs = append(p.subs, subscription{
		id:      id,
		pattern: pattern,
		handler: func(event model.Event) { handler(context.Background(), event) },
	})
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, sub := range p.subs {
			if sub.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// ListEvents returns events matching pattern, since (unix nanos,
// exclusive), in record order, most-recent-last, capped at limit.
func (p *Provider) ListEvents(_ context.Context, opts provider.EventListOptions) ([]model.Event, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]model.Event, 0, len(p.events))
	for _, event := range p.events {
		if opts.Pattern != "" && !event.MatchesPattern(opts.Pattern) {
			continue
		}
		if opts.Since > 0 && event.Timestamp.UnixNano() <= opts.Since {
			continue
		}
		out = append(out, event)
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[len(out)-opts.Limit:]
	}
	return out, nil
}

// ReplayEvents re-delivers matching past events to current
// subscribers, in their original record order, without appending them
// again to the log.
func (p *Provider) ReplayEvents(_ context.Context, opts provider.EventListOptions) error {
	p.mu.RLock()
	toReplay := make([]model.Event, 0)
	for _, event := range p.events {
		if opts.Pattern != "" && !event.MatchesPattern(opts.Pattern) {
			continue
		}
		if opts.Since > 0 && event.Timestamp.UnixNano() <= opts.Since {
			continue
		}
		toReplay = append(toReplay, event)
	}
	if opts.Limit > 0 && opts.Limit < len(toReplay) {
		toReplay = toReplay[len(toReplay)-opts.Limit:]
	}
	subs := make([]subscription, len(p.subs))
	copy(subs, p.subs)
	p.mu.RUnlock()

	for _, event := range toReplay {
		for _, sub := range subs {
			if event.MatchesPattern(sub.pattern) {
				sub.handler(event)
			}
		}
	}
	return nil
}
