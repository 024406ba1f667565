package memprovider

import "graphfacade/internal/ids"

// newULikeID is the default id generator.
func newULikeID() string {
	return ids.New()
}
