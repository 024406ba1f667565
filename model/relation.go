package model

import "fmt"

// RelationKey addresses the set of edges leaving one (type, id) under
// one relation name: (fromType, fromId, relation) -> set<(toType,
// toId)>. Grounded in the teacher's EdgeReference (a lightweight edge
// pointer attached to the owning Node) generalized into a standalone,
// direction-aware adjacency key since relations are stored outside the
// entity body here.
type RelationKey struct {
	FromType string
	FromID   string
	Relation string
}

// String renders the adjacency-map key used internally by the
// in-memory provider: "fromType:fromId:relation".
func (k RelationKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.FromType, k.FromID, k.Relation)
}

// RelationTarget is one edge endpoint: (toType, toId).
type RelationTarget struct {
	Type string
	ID   string
}

// String renders the adjacency-map target used internally:
// "toType:toId".
func (t RelationTarget) String() string {
	return fmt.Sprintf("%s:%s", t.Type, t.ID)
}

// RelationEdge pairs a key and target with optional match metadata
// (§4.5.2's relate meta, e.g. {matchMode, similarity}).
type RelationEdge struct {
	Key    RelationKey
	Target RelationTarget
	Meta   map[string]any
}
