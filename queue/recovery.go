package queue

import (
	"context"

	"graphfacade/model"
	"graphfacade/provider"
)

// Recover implements crash recovery (§4.4.5): every Action found
// active is considered interrupted by the prior process's death and
// is transitioned to failed with an explicit reason; pending Actions
// are left as-is and counted.
func Recover(ctx context.Context, actions provider.DurableCapable) (interrupted, pending int, err error) {
	list, err := actions.ListActions(ctx, provider.ActionListOptions{
		Status: []model.ActionStatus{model.StatusPending, model.StatusActive},
	})
	if err != nil {
		return 0, 0, err
	}

	for _, action := range list {
		if action.Status == model.StatusPending {
			pending++
			continue
		}
		status := model.StatusFailed
		reason := "recovered: process restarted while active"
		if _, err := actions.UpdateAction(ctx, action.ID, provider.ActionUpdate{
			Status: &status,
			Error:  &reason,
		}); err != nil {
			return interrupted, pending, err
		}
		interrupted++
	}
	return interrupted, pending, nil
}

// RetryFailed moves matching failed Actions back to pending, clearing
// their error (§4.4.5). filter may be nil to retry every failed
// Action.
func RetryFailed(ctx context.Context, actions provider.DurableCapable, filter func(*model.Action) bool) (int, error) {
	list, err := actions.ListActions(ctx, provider.ActionListOptions{
		Status: []model.ActionStatus{model.StatusFailed},
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, action := range list {
		if filter != nil && !filter(action) {
			continue
		}
		if _, err := actions.RetryAction(ctx, action.ID); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
