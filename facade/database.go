// Package facade binds the schema parser, provider resolution, and
// the deferred-query/bulk/durable subsystems into one caller-facing
// value: Database (§9's design note — "the schema-relation info, the
// provider resolver, and the default execution queue are process-wide
// singletons by construction... better expressed as an explicit
// Database value carrying these, passed through calls"). The façade
// itself is named out of scope by §1 ("the thin public façade that
// merely forwards to the parser and provider") — everything here is
// exactly that: no new algorithms, only wiring and typed convenience
// methods over the packages that do the real work.
package facade

import (
	"context"

	"go.uber.org/zap"

	"graphfacade/bulk"
	"graphfacade/config"
	apperrors "graphfacade/errors"
	"graphfacade/internal/validate"
	"graphfacade/model"
	"graphfacade/provider"
	"graphfacade/query"
	"graphfacade/queue"
	"graphfacade/schema"
)

// Database is the bound set of singletons §9 calls for: the resolved
// schema, the provider the caller chose, the execution queue, and the
// bulk processor, plus the logger every component shares.
type Database struct {
	schema   schema.ParsedSchema
	provider provider.Provider
	queue    *queue.ExecutionQueue
	bulk     *bulk.Processor
	logger   *zap.Logger
	cfg      *config.Config

	actions  provider.Actions  // nil if provider doesn't implement it
	events   provider.Events   // nil if provider doesn't implement it
	artifact provider.Artifacts
}

// Option configures New.
type Option func(*Database)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Database) { d.logger = logger }
}

// WithConfig overrides config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(d *Database) { d.cfg = cfg }
}

// New parses raw against the schema parser (§4.1), binds p as the
// resolved provider, and constructs the execution queue and bulk
// processor around it.
func New(raw schema.RawSchema, p provider.Provider, opts ...Option) (*Database, error) {
	parsed, err := schema.Parse(raw)
	if err != nil {
		return nil, err
	}

	d := &Database{
		schema:   parsed,
		provider: p,
		logger:   zap.NewNop(),
		cfg:      config.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if actions, ok := p.(provider.Actions); ok {
		d.actions = actions
	}
	if events, ok := p.(provider.Events); ok {
		d.events = events
	}
	if artifacts, ok := p.(provider.Artifacts); ok {
		d.artifact = artifacts
	}

	d.queue = queue.New(d.cfg, d.logger, d.actions)
	d.bulk = bulk.New(d.actions, d.logger)

	return d, nil
}

// Schema exposes the resolved schema for callers that need to inspect
// nouns/edges directly.
func (d *Database) Schema() schema.ParsedSchema { return d.schema }

// Queue exposes the execution queue so a caller can register a
// BatchProvider before issuing durable work.
func (d *Database) Queue() *queue.ExecutionQueue { return d.queue }

// Nouns returns the inferred Noun metadata for every entity type the
// schema declares (§4.1 step 3).
func (d *Database) Nouns() map[string]schema.Noun {
	out := make(map[string]schema.Noun, len(d.schema))
	for typeName := range d.schema {
		out[typeName] = schema.NounRecord(typeName, d.schema, nil)
	}
	return out
}

// Edges returns the relation edges declared (or inferred) for one
// entity type (§4.1 step 4).
func (d *Database) Edges(entityType string) []schema.Edge {
	return schema.EdgeRecords(entityType, d.schema)
}

// Verbs conjugates base into its action/act/activity triple, the same
// derivation createAction uses when no explicit act/activity is
// supplied.
func (d *Database) Verbs(base string) (action, act, activity string) {
	return schema.Conjugate(base)
}

// requireEntityType validates entityType both against the resolved
// schema and, per §4.6, against the typename allowlist — the façade
// boundary is where that validation belongs; nothing past it (schema,
// provider, query, bulk, durable, queue) re-checks its input.
func (d *Database) requireEntityType(entityType string) error {
	if err := validate.TypeName(entityType); err != nil {
		return err
	}
	if _, ok := d.schema[entityType]; !ok {
		return apperrors.NewInputError("unknown entity type").WithType(entityType)
	}
	return nil
}

// requireID validates a caller-supplied id when non-empty; an empty
// id is left to the provider to generate (Create's documented case).
func requireID(id string) error {
	if id == "" {
		return nil
	}
	return validate.EntityID(id)
}

// Create creates one entity of entityType. id may be empty to let the
// provider generate one.
func (d *Database) Create(ctx context.Context, entityType, id string, data model.Flat) (model.Flat, error) {
	if err := d.requireEntityType(entityType); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	return d.provider.Create(ctx, entityType, id, data)
}

// Get retrieves one entity by id.
func (d *Database) Get(ctx context.Context, entityType, id string) (model.Flat, bool, error) {
	if err := d.requireEntityType(entityType); err != nil {
		return nil, false, err
	}
	if err := validate.EntityID(id); err != nil {
		return nil, false, err
	}
	return d.provider.Get(ctx, entityType, id)
}

// Update merges data into an existing entity.
func (d *Database) Update(ctx context.Context, entityType, id string, data model.Flat) (model.Flat, error) {
	if err := d.requireEntityType(entityType); err != nil {
		return nil, err
	}
	if err := validate.EntityID(id); err != nil {
		return nil, err
	}
	return d.provider.Update(ctx, entityType, id, data)
}

// Delete removes one entity and its incident relations/artifacts.
func (d *Database) Delete(ctx context.Context, entityType, id string) (bool, error) {
	if err := d.requireEntityType(entityType); err != nil {
		return false, err
	}
	if err := validate.EntityID(id); err != nil {
		return false, err
	}
	return d.provider.Delete(ctx, entityType, id)
}

// List retrieves entities of entityType without going through the
// deferred-query pipeline; use Query for chained map/filter/forEach.
func (d *Database) List(ctx context.Context, entityType string, opts provider.ListOptions) ([]model.Flat, error) {
	if err := d.requireEntityType(entityType); err != nil {
		return nil, err
	}
	return d.provider.List(ctx, entityType, opts)
}

// Relate, Unrelate, and Related forward directly to the provider
// (§4.5.2). Only the given edge is stored: neither the façade nor the
// in-memory provider adds or removes the schema-inferred inverse edge.
func (d *Database) Relate(ctx context.Context, fromType, fromID, relation, toType, toID string, meta map[string]any) error {
	return d.provider.Relate(ctx, fromType, fromID, relation, toType, toID, meta)
}

func (d *Database) Unrelate(ctx context.Context, fromType, fromID, relation, toType, toID string) error {
	return d.provider.Unrelate(ctx, fromType, fromID, relation, toType, toID)
}

func (d *Database) Related(ctx context.Context, entityType, id, relation string) ([]model.Flat, error) {
	return d.provider.Related(ctx, entityType, id, relation)
}

// SearchText, SemanticSearch, and HybridSearch forward to the
// provider's optional search surfaces when it implements them.
func (d *Database) SearchText(ctx context.Context, entityType, q string, opts provider.SearchOptions) ([]provider.SearchResult, error) {
	return d.provider.SearchText(ctx, entityType, q, opts)
}

func (d *Database) SemanticSearch(ctx context.Context, entityType, q string, opts provider.SearchOptions) ([]provider.SearchResult, error) {
	ss, ok := d.provider.(provider.SemanticSearch)
	if !ok {
		return nil, apperrors.NewInputError("provider does not implement semantic search").WithAction("semanticSearch")
	}
	return ss.SemanticSearch(ctx, entityType, q, opts)
}

func (d *Database) HybridSearch(ctx context.Context, entityType, q string, opts provider.HybridSearchOptions) ([]provider.SearchResult, error) {
	hs, ok := d.provider.(provider.HybridSearch)
	if !ok {
		return nil, apperrors.NewInputError("provider does not implement hybrid search").WithAction("hybridSearch")
	}
	return hs.HybridSearch(ctx, entityType, q, opts)
}

// Emit, On, ListEvents, and ReplayEvents forward to the provider's
// optional Events surface.
func (d *Database) Emit(ctx context.Context, opts provider.EventEmit) (model.Event, error) {
	if d.events == nil {
		return model.Event{}, apperrors.NewInputError("provider does not implement events").WithAction("emit")
	}
	return d.events.Emit(ctx, opts)
}

func (d *Database) On(pattern string, handler provider.EventHandler) (unsubscribe func(), err error) {
	if d.events == nil {
		return nil, apperrors.NewInputError("provider does not implement events").WithAction("on")
	}
	return d.events.On(pattern, handler), nil
}

func (d *Database) ListEvents(ctx context.Context, opts provider.EventListOptions) ([]model.Event, error) {
	if d.events == nil {
		return nil, apperrors.NewInputError("provider does not implement events").WithAction("listEvents")
	}
	return d.events.ListEvents(ctx, opts)
}

// Actions exposes the provider's optional durable-work surface
// directly, for callers that manage Actions themselves rather than
// through a durable.Promise.
func (d *Database) Actions() (provider.Actions, bool) { return d.actions, d.actions != nil }

// Artifacts exposes the provider's optional derived-content surface.
func (d *Database) Artifacts() (provider.Artifacts, bool) { return d.artifact, d.artifact != nil }
