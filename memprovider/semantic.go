package memprovider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"graphfacade/model"
	"graphfacade/provider"
	"graphfacade/semantic"
)

const embeddingArtifactType = "embedding"

// autoDetectEmbedFields selects every non-reserved, non-internal,
// non-timestamp string or string-array field for auto-embedding —
// §4.5.3: "all non-$/_/*At string or string-array fields".
func autoDetectEmbedFields(body model.Flat) []string {
	fields := make([]string, 0)
	for k, v := range body {
		if strings.HasPrefix(k, "$") || strings.HasPrefix(k, "_") || strings.HasSuffix(k, "At") {
			continue
		}
		switch val := v.(type) {
		case string:
			fields = append(fields, k)
		case []string:
			fields = append(fields, k)
		case []any:
			allStrings := true
			for _, item := range val {
				if _, ok := item.(string); !ok {
					allStrings = false
					break
				}
			}
			if allStrings {
				fields = append(fields, k)
			}
		}
	}
	sort.Strings(fields)
	return fields
}

func embeddingText(body model.Flat, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch v := body[f].(type) {
		case string:
			parts = append(parts, v)
		case []string:
			parts = append(parts, strings.Join(v, " "))
		case []any:
			strs := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					strs = append(strs, s)
				}
			}
			parts = append(parts, strings.Join(strs, " "))
		}
	}
	return strings.Join(parts, " ")
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// reembed recomputes and stores the "embedding" artifact for an
// entity after create/update — §4.5.3.
func (p *Provider) reembed(_ context.Context, entityType, id string, stored model.Flat) {
	p.mu.RLock()
	fields, pinned := p.embedFields[entityType]
	p.mu.RUnlock()
	if !pinned || len(fields) == 0 {
		fields = autoDetectEmbedFields(stored)
	}
	if len(fields) == 0 {
		return
	}

	text := embeddingText(stored, fields)
	vector := semantic.Embed(text)
	sum := sha256.Sum256([]byte(text))

	url := entityType + "/" + id
	p.mu.Lock()
	p.setArtifactLocked(url, embeddingArtifactType, map[string]any{
		"fields":     fields,
		"dimensions": semantic.Dimensions,
		"text":       firstN(text, 200),
		"hash":       hex.EncodeToString(sum[:]),
		"vector":     vector,
	})
	p.mu.Unlock()
}

func vectorFromArtifact(artifact *model.Artifact) ([]float64, bool) {
	if artifact == nil || artifact.Metadata == nil {
		return nil, false
	}
	vector, ok := artifact.Metadata["vector"].([]float64)
	return vector, ok
}

// SemanticSearch ranks candidates by cosine similarity between the
// query's embedding and each entity's stored embedding artifact —
// §4.5.3.
func (p *Provider) SemanticSearch(_ context.Context, entityType, query string, opts provider.SearchOptions) ([]provider.SearchResult, error) {
	queryVector := semantic.Embed(query)

	p.mu.RLock()
	byID := p.entities[entityType]
	type candidate struct {
		body   model.Flat
		vector []float64
	}
	candidates := make([]candidate, 0, len(byID))
	for id, body := range byID {
		artifact, ok := p.artifacts[model.ArtifactKey{URL: entityType + "/" + id, Type: embeddingArtifactType}]
		if !ok {
			continue
		}
		vector, ok := vectorFromArtifact(artifact)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{body: body.Clone(), vector: vector})
	}
	p.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].body.ID() < candidates[j].body.ID() })

	results := make([]provider.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		score := semantic.CosineSimilarity(queryVector, c.vector)
		if score < opts.MinScore {
			continue
		}
		results = append(results, provider.SearchResult{Entity: c.body, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if opts.Limit > 0 && opts.Limit < len(results) {
		results = results[:opts.Limit]
	}
	return results, nil
}

// HybridSearch fuses the lexical and semantic rankings via reciprocal
// rank fusion — §4.5.3.
func (p *Provider) HybridSearch(ctx context.Context, entityType, query string, opts provider.HybridSearchOptions) ([]provider.SearchResult, error) {
	ftsResults, err := p.SearchText(ctx, entityType, query, provider.SearchOptions{Fields: opts.Fields})
	if err != nil {
		return nil, err
	}
	semanticResults, err := p.SemanticSearch(ctx, entityType, query, provider.SearchOptions{Fields: opts.Fields})
	if err != nil {
		return nil, err
	}

	ftsOrder := make([]string, len(ftsResults))
	for i, r := range ftsResults {
		ftsOrder[i] = r.Entity.ID()
	}
	semanticOrder := make([]string, len(semanticResults))
	semanticScore := make(map[string]float64, len(semanticResults))
	entityByID := make(map[string]model.Flat, len(semanticResults)+len(ftsResults))
	for i, r := range semanticResults {
		semanticOrder[i] = r.Entity.ID()
		semanticScore[r.Entity.ID()] = r.Score
		entityByID[r.Entity.ID()] = r.Entity
	}
	for _, r := range ftsResults {
		if _, ok := entityByID[r.Entity.ID()]; !ok {
			entityByID[r.Entity.ID()] = r.Entity
		}
	}

	rrfOpts := semantic.RRFOptions{K: opts.K, FTSWeight: opts.FTSWeight, SemanticWeight: opts.SemanticWeight}

	ids := make([]string, 0, len(entityByID))
	for id := range entityByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]provider.SearchResult, 0, len(ids))
	for _, id := range ids {
		ftsRank := semantic.RankOf(ftsOrder, id)
		semanticRank := semantic.RankOf(semanticOrder, id)
		rrf := semantic.RRFScore(ftsRank, semanticRank, rrfOpts)
		results = append(results, provider.SearchResult{
			Entity:       entityByID[id],
			Score:        semanticScore[id],
			RRFScore:     rrf,
			FTSRank:      ftsRank,
			SemanticRank: semanticRank,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].RRFScore > results[j].RRFScore })
	if opts.Limit > 0 && opts.Limit < len(results) {
		results = results[:opts.Limit]
	}
	return results, nil
}
