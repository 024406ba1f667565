// Package ids centralizes id generation for Things, Events, Actions,
// and Artifacts. Grounded in the teacher's domain/core/valueobjects/node_id.go
// (a uuid-backed value object), generalized from one entity kind into
// a single generator every component shares.
package ids

import "github.com/google/uuid"

// New returns a fresh random identifier.
func New() string {
	return uuid.New().String()
}
