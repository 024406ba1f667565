package memprovider

import (
	"strings"

	"context"

	"graphfacade/model"
)

// GetArtifact returns the artifact for (url, artifactType), if any.
func (p *Provider) GetArtifact(_ context.Context, url, artifactType string) (*model.Artifact, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	artifact, ok := p.artifacts[model.ArtifactKey{URL: url, Type: artifactType}]
	if !ok {
		return nil, false, nil
	}
	clone := *artifact
	return &clone, true, nil
}

// SetArtifact stores derived content for (url, artifactType).
func (p *Provider) SetArtifact(_ context.Context, url, artifactType string, content []byte, sourceHash string, metadata map[string]any) (*model.Artifact, error) {
	artifact := &model.Artifact{
		URL:        url,
		Type:       artifactType,
		SourceHash: sourceHash,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  p.now(),
	}
	p.mu.Lock()
	p.artifacts[model.ArtifactKey{URL: url, Type: artifactType}] = artifact
	p.mu.Unlock()

	clone := *artifact
	return &clone, nil
}

// DeleteArtifact removes one artifact slot.
func (p *Provider) DeleteArtifact(_ context.Context, url, artifactType string) error {
	p.mu.Lock()
	delete(p.artifacts, model.ArtifactKey{URL: url, Type: artifactType})
	p.mu.Unlock()
	return nil
}

// ListArtifacts returns every artifact whose URL matches exactly.
func (p *Provider) ListArtifacts(_ context.Context, url string) ([]*model.Artifact, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*model.Artifact, 0)
	for key, artifact := range p.artifacts {
		if key.URL == url {
			clone := *artifact
			out = append(out, &clone)
		}
	}
	return out, nil
}

// setArtifactLocked stores an artifact without touching p.mu — callers
// must already hold it for writing.
func (p *Provider) setArtifactLocked(url, artifactType string, metadata map[string]any) {
	p.artifacts[model.ArtifactKey{URL: url, Type: artifactType}] = &model.Artifact{
		URL:       url,
		Type:      artifactType,
		Metadata:  metadata,
		CreatedAt: p.now(),
	}
}

// invalidateArtifacts drops artifacts whose url-prefix matches
// entityType/id, the compact-form URL §6 documents for internal
// artifact keys. When keepEmbedding is true (update), the "embedding"
// artifact survives so reembed can replace it separately; when false
// (delete), every artifact for the entity is dropped — §4.5.1/§4.5.3.
func (p *Provider) invalidateArtifacts(entityType, id string, keepEmbedding bool) {
	prefix := entityType + "/" + id

	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.artifacts {
		if !strings.HasPrefix(key.URL, prefix) {
			continue
		}
		if keepEmbedding && key.Type == "embedding" {
			continue
		}
		delete(p.artifacts, key)
	}
}
