package facade

import (
	"context"

	"graphfacade/durable"
)

// Durable starts a durable promise scheduled through the façade's
// execution queue, mirrored onto an Action when the bound provider
// implements provider.Actions (§4.4.3).
func (d *Database) Durable(ctx context.Context, opts durable.Options) (*durable.Promise, error) {
	return durable.New(ctx, d.queue, d.actions, opts)
}
