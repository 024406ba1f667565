// Package memprovider implements the provider contract entirely in
// process memory (§4.5): the reference back end used for tests,
// examples, and anywhere a durable store is unnecessary. Grounded in
// the teacher sibling backend's infrastructure/persistence/memory
// package (its one genuinely in-memory reference store, an
// operation-log keyed by id) generalized from a single-purpose
// operation log into the full provider contract: CRUD, relations,
// events, actions, artifacts, and search.
package memprovider

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"graphfacade/model"
)

// Provider is the in-memory reference implementation of
// provider.Provider plus the optional Actions/Events/Artifacts/
// SemanticSearch/HybridSearch surfaces.
//
// Shared-resource policy (§5): a single RWMutex serializes mutation of
// every collection (one writer OR N readers, matching the spec's
// policy for a threaded implementation); Emit records the event under
// the lock and then notifies subscribers after releasing it, so
// handlers that call back into the provider never deadlock on it.
type Provider struct {
	mu sync.RWMutex

	entities  map[string]map[string]model.Flat
	relations map[string]*relationBucket // RelationKey.String() -> ordered edge set
	events    []model.Event
	actions   map[string]*model.Action
	artifacts map[model.ArtifactKey]*model.Artifact

	subs   []subscription
	nextID func() string

	// embedFields optionally pins which fields are embedded per type;
	// absent types use auto-detection (§4.5.3).
	embedFields map[string][]string

	logger *zap.Logger
}

type subscription struct {
	id      int
	pattern string
	handler func(event model.Event)
}

// Option configures a new Provider.
type Option func(*Provider)

// WithLogger attaches a structured logger; a no-op logger is used
// otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithIDGenerator overrides id generation (tests use this for
// deterministic ids); defaults to uuid.
func WithIDGenerator(fn func() string) Option {
	return func(p *Provider) { p.nextID = fn }
}

// WithEmbedFields pins the fields auto-embedded for a given type,
// overriding auto-detection (§4.5.3).
func WithEmbedFields(entityType string, fields []string) Option {
	return func(p *Provider) {
		if p.embedFields == nil {
			p.embedFields = make(map[string][]string)
		}
		p.embedFields[entityType] = fields
	}
}

// New creates an empty in-memory provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		entities:    make(map[string]map[string]model.Flat),
		relations:   make(map[string]*relationBucket),
		actions:     make(map[string]*model.Action),
		artifacts:   make(map[model.ArtifactKey]*model.Artifact),
		embedFields: make(map[string][]string),
		logger:      zap.NewNop(),
		nextID:      newULikeID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsDurable reports that this provider's Actions survive only for the
// life of the process — it satisfies DurableCapable's shape so the
// recovery pass can still enumerate in-flight Actions within one run,
// but nothing here persists across restarts.
func (p *Provider) IsDurable() bool { return true }

func (p *Provider) now() time.Time { return time.Now() }
