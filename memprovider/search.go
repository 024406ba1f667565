package memprovider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"graphfacade/model"
	"graphfacade/provider"
)

// serializeFields renders the chosen fields of an entity (or every
// non-reserved field, if fields is empty) as lower-case text, joined
// in sorted-key order for determinism.
func serializeFields(body model.Flat, fields []string) string {
	keys := fields
	if len(keys) == 0 {
		keys = body.SortedKeys()
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v, ok := body[k]; ok {
			parts = append(parts, fmt.Sprintf("%v", v))
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// SearchText performs lexical search: a match scores 1 - index/length
// where index is the position of the (lower-cased) query within the
// serialized text; results are filtered by minScore and sorted by
// score descending — §4.5.3.
func (p *Provider) SearchText(_ context.Context, entityType, query string, opts provider.SearchOptions) ([]provider.SearchResult, error) {
	p.mu.RLock()
	byID := p.entities[entityType]
	bodies := make([]model.Flat, 0, len(byID))
	for _, body := range byID {
		bodies = append(bodies, body.Clone())
	}
	p.mu.RUnlock()
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].ID() < bodies[j].ID() })

	query = strings.ToLower(query)
	results := make([]provider.SearchResult, 0, len(bodies))
	for _, body := range bodies {
		text := serializeFields(body, opts.Fields)
		if text == "" {
			continue
		}
		idx := strings.Index(text, query)
		if idx < 0 {
			continue
		}
		score := 1 - float64(idx)/float64(len(text))
		if score < opts.MinScore {
			continue
		}
		results = append(results, provider.SearchResult{Entity: body, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if opts.Limit > 0 && opts.Limit < len(results) {
		results = results[:opts.Limit]
	}
	return results, nil
}
