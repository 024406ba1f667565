package durable

import (
	"context"
	"time"

	apperrors "graphfacade/errors"
	"graphfacade/provider"
)

const pollInterval = 50 * time.Millisecond

// waitDependencies polls each dependsOn Action until none remain
// pending or active, or until ceiling elapses — §4.4.3.
func waitDependencies(ctx context.Context, actions provider.Actions, dependsOn []string, ceiling time.Duration) error {
	deadline := time.Now().Add(ceiling)
	pending := make(map[string]bool, len(dependsOn))
	for _, id := range dependsOn {
		pending[id] = true
	}

	for {
		for id := range pending {
			action, found, err := actions.GetAction(ctx, id)
			if err != nil {
				return err
			}
			if !found || action.Status.IsTerminal() {
				delete(pending, id)
			}
		}
		if len(pending) == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return apperrors.NewTimeoutError("durable promise dependency wait ceiling exceeded").WithAction("dependsOn")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
