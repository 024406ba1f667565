// Package provider declares the minimal CRUD/relation/event/action/
// artifact surface a storage back end must implement (§6). This is
// the single cross-cutting seam the rest of the core depends on;
// storage back-end implementations themselves (filesystem, SQL,
// columnar) are out of scope — only the interface they must satisfy
// lives here. Grounded in the teacher's application/ports/repositories.go,
// generalized from several narrow per-aggregate repositories
// (NodeRepository, EdgeRepository, GraphRepository, EventStore) into
// one typed-by-string-type provider contract.
package provider

import (
	"context"

	"graphfacade/model"
)

// ListOptions are the optional parameters list() accepts.
type ListOptions struct {
	Where   map[string]any
	OrderBy string
	Order   string // "asc" or "desc"
	Limit   int
	Offset  int
}

// SearchOptions are the optional parameters search() accepts.
type SearchOptions struct {
	Fields   []string
	MinScore float64
	Limit    int
}

// HybridSearchOptions layers §4.5.3's RRF options atop SearchOptions.
type HybridSearchOptions struct {
	SearchOptions
	K              float64
	FTSWeight      float64
	SemanticWeight float64
}

// SearchResult pairs a matched entity with its ranking scores. The
// $-prefixed field names in the spec ($score, $rrfScore, $ftsRank,
// $semanticRank) are represented as named fields here; Flatten mirrors
// them back onto the entity body the way the reference provider's
// callers expect.
type SearchResult struct {
	Entity       model.Flat
	Score        float64
	RRFScore     float64
	FTSRank      float64
	SemanticRank float64
}

// Flatten copies the result's scores onto its entity under the $-keys
// callers read.
func (r SearchResult) Flatten() model.Flat {
	out := r.Entity.Clone()
	out["$score"] = r.Score
	if r.RRFScore != 0 {
		out["$rrfScore"] = r.RRFScore
		out["$ftsRank"] = r.FTSRank
		out["$semanticRank"] = r.SemanticRank
	}
	return out
}

// CRUD is the required, always-present operation set (§6).
type CRUD interface {
	Get(ctx context.Context, entityType, id string) (model.Flat, bool, error)
	List(ctx context.Context, entityType string, opts ListOptions) ([]model.Flat, error)
	Create(ctx context.Context, entityType, id string, data model.Flat) (model.Flat, error)
	Update(ctx context.Context, entityType, id string, data model.Flat) (model.Flat, error)
	Delete(ctx context.Context, entityType, id string) (bool, error)
}

// Relations is the required relation operation set.
type Relations interface {
	Related(ctx context.Context, entityType, id, relation string) ([]model.Flat, error)
	Relate(ctx context.Context, fromType, fromID, relation, toType, toID string, meta map[string]any) error
	Unrelate(ctx context.Context, fromType, fromID, relation, toType, toID string) error
}

// Search is the required lexical search operation.
type Search interface {
	SearchText(ctx context.Context, entityType, query string, opts SearchOptions) ([]SearchResult, error)
}

// SemanticSearch is optional: a deterministic or model-backed
// embedding search.
type SemanticSearch interface {
	SemanticSearch(ctx context.Context, entityType, query string, opts SearchOptions) ([]SearchResult, error)
}

// HybridSearch is optional: reciprocal-rank fusion over lexical and
// semantic rankings.
type HybridSearch interface {
	HybridSearch(ctx context.Context, entityType, query string, opts HybridSearchOptions) ([]SearchResult, error)
}

// Provider is the required surface every back end implements.
type Provider interface {
	CRUD
	Relations
	Search
}

// ActionCreate are the fields createAction(opts) accepts (§4.5.5).
type ActionCreate struct {
	ID         string
	Actor      string
	Action     string // base verb; act/activity auto-derived if absent
	Act        string
	Activity   string
	Type       string // alternate spelling some callers use for Action
	Object     string
	ObjectData map[string]any
	Total      *int
	Meta       map[string]any
	Priority   int
}

// ActionUpdate are the fields updateAction(id, updates) accepts.
type ActionUpdate struct {
	Status   *model.ActionStatus
	Progress *int
	Total    *int
	Result   map[string]any
	Error    *string
	Meta     map[string]any

	// BatchID, BatchIndex, and BatchTotal stamp a batch-priority
	// submission's grouping onto the Action (§4.4.4); BatchIndex is a
	// pointer since 0 is its first, valid value.
	BatchID    *string
	BatchIndex *int
	BatchTotal *int
}

// ActionListOptions filter listActions.
type ActionListOptions struct {
	Status []model.ActionStatus
	Actor  string
	Type   string
	Limit  int
}

// Actions is the optional durable-work surface (§6).
type Actions interface {
	CreateAction(ctx context.Context, opts ActionCreate) (*model.Action, error)
	GetAction(ctx context.Context, id string) (*model.Action, bool, error)
	UpdateAction(ctx context.Context, id string, updates ActionUpdate) (*model.Action, error)
	ListActions(ctx context.Context, opts ActionListOptions) ([]*model.Action, error)
	RetryAction(ctx context.Context, id string) (*model.Action, error)
	CancelAction(ctx context.Context, id string) (*model.Action, error)
}

// EventEmit are the fields the modern emit({...}) form accepts.
type EventEmit struct {
	Actor      string
	ActorData  map[string]any
	Event      string
	Object     string
	ObjectData map[string]any
	Result     string
	ResultData map[string]any
	Meta       map[string]any
}

// EventHandler receives events matching a subscribed pattern.
type EventHandler func(ctx context.Context, event model.Event)

// EventListOptions filter listEvents.
type EventListOptions struct {
	Pattern string
	Since   int64 // unix nanos; 0 means unbounded
	Limit   int
}

// Events is the optional event surface (§6).
type Events interface {
	Emit(ctx context.Context, opts EventEmit) (model.Event, error)
	EmitLegacy(ctx context.Context, name string, data map[string]any) (model.Event, error)
	On(pattern string, handler EventHandler) (unsubscribe func())
	ListEvents(ctx context.Context, opts EventListOptions) ([]model.Event, error)
	ReplayEvents(ctx context.Context, opts EventListOptions) error
}

// Artifacts is the optional derived-content surface (§6).
type Artifacts interface {
	GetArtifact(ctx context.Context, url, artifactType string) (*model.Artifact, bool, error)
	SetArtifact(ctx context.Context, url, artifactType string, content []byte, sourceHash string, metadata map[string]any) (*model.Artifact, error)
	DeleteArtifact(ctx context.Context, url string, artifactType string) error
	ListArtifacts(ctx context.Context, url string) ([]*model.Artifact, error)
}

// DurableCapable is implemented by providers whose Actions surface
// supports crash recovery (§4.4.5): listing pending/active Actions at
// process start.
type DurableCapable interface {
	Actions
	IsDurable() bool
}
