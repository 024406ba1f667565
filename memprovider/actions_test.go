package memprovider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"graphfacade/model"
	"graphfacade/provider"
)

func TestCreateActionDerivesConjugation(t *testing.T) {
	p := New()
	action, err := p.CreateAction(context.Background(), provider.ActionCreate{
		Actor:  "user-1",
		Action: "publish",
		Object: "Post",
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, action.Status)
	require.Equal(t, "publishes", action.Act)
	require.Equal(t, "publishing", action.Activity)
}

func TestActionLifecycleTransitions(t *testing.T) {
	p := New()
	ctx := context.Background()
	action, err := p.CreateAction(ctx, provider.ActionCreate{Action: "create", Object: "Post"})
	require.NoError(t, err)

	active := model.StatusActive
	action, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &active})
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, action.Status)
	require.NotNil(t, action.StartedAt)

	completed := model.StatusCompleted
	action, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &completed})
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, action.Status)
	require.NotNil(t, action.CompletedAt)
}

func TestActionIllegalTransitionRejected(t *testing.T) {
	p := New()
	ctx := context.Background()
	action, err := p.CreateAction(ctx, provider.ActionCreate{Action: "create", Object: "Post"})
	require.NoError(t, err)

	completed := model.StatusCompleted
	_, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &completed})
	require.Error(t, err)
}

func TestRetryRequiresFailedStatus(t *testing.T) {
	p := New()
	ctx := context.Background()
	action, err := p.CreateAction(ctx, provider.ActionCreate{Action: "create", Object: "Post"})
	require.NoError(t, err)

	_, err = p.RetryAction(ctx, action.ID)
	require.Error(t, err)

	active := model.StatusActive
	_, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &active})
	require.NoError(t, err)
	failed := model.StatusFailed
	_, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &failed})
	require.NoError(t, err)

	retried, err := p.RetryAction(ctx, action.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, retried.Status)
}

func TestCancelForbidsTerminalStates(t *testing.T) {
	p := New()
	ctx := context.Background()
	action, err := p.CreateAction(ctx, provider.ActionCreate{Action: "create", Object: "Post"})
	require.NoError(t, err)

	active := model.StatusActive
	_, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &active})
	require.NoError(t, err)
	completed := model.StatusCompleted
	_, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &completed})
	require.NoError(t, err)

	_, err = p.CancelAction(ctx, action.ID)
	require.Error(t, err)
}
