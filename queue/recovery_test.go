package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"graphfacade/memprovider"
	"graphfacade/model"
	"graphfacade/provider"
)

func TestRecoverFailsInterruptedActiveActions(t *testing.T) {
	p := memprovider.New()
	ctx := context.Background()

	activeAction, err := p.CreateAction(ctx, provider.ActionCreate{Action: "process", Type: "Thing.forEach"})
	require.NoError(t, err)
	active := model.StatusActive
	_, err = p.UpdateAction(ctx, activeAction.ID, provider.ActionUpdate{Status: &active})
	require.NoError(t, err)

	pendingAction, err := p.CreateAction(ctx, provider.ActionCreate{Action: "process", Type: "Thing.forEach"})
	require.NoError(t, err)

	interrupted, pending, err := Recover(ctx, p)
	require.NoError(t, err)
	require.Equal(t, 1, interrupted)
	require.Equal(t, 1, pending)

	recovered, found, err := p.GetAction(ctx, activeAction.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusFailed, recovered.Status)
	require.NotEmpty(t, recovered.Error)

	stillPending, found, err := p.GetAction(ctx, pendingAction.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusPending, stillPending.Status)
}

func TestRetryFailedMovesBackToPendingAndClearsError(t *testing.T) {
	p := memprovider.New()
	ctx := context.Background()

	action, err := p.CreateAction(ctx, provider.ActionCreate{Action: "process", Type: "Thing.forEach"})
	require.NoError(t, err)
	active := model.StatusActive
	_, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &active})
	require.NoError(t, err)
	failed := model.StatusFailed
	errMsg := "boom"
	_, err = p.UpdateAction(ctx, action.ID, provider.ActionUpdate{Status: &failed, Error: &errMsg})
	require.NoError(t, err)

	count, err := RetryFailed(ctx, p, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	retried, found, err := p.GetAction(ctx, action.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusPending, retried.Status)
	require.Empty(t, retried.Error)
}

func TestRetryFailedHonorsFilter(t *testing.T) {
	p := memprovider.New()
	ctx := context.Background()

	keep, err := p.CreateAction(ctx, provider.ActionCreate{Action: "process", Type: "Keep.me"})
	require.NoError(t, err)
	drop, err := p.CreateAction(ctx, provider.ActionCreate{Action: "process", Type: "Drop.me"})
	require.NoError(t, err)

	for _, id := range []string{keep.ID, drop.ID} {
		active := model.StatusActive
		_, err := p.UpdateAction(ctx, id, provider.ActionUpdate{Status: &active})
		require.NoError(t, err)
		failed := model.StatusFailed
		_, err = p.UpdateAction(ctx, id, provider.ActionUpdate{Status: &failed})
		require.NoError(t, err)
	}

	count, err := RetryFailed(ctx, p, func(a *model.Action) bool { return a.Action == "process" && a.ID == keep.ID })
	require.NoError(t, err)
	require.Equal(t, 1, count)

	keptAction, _, err := p.GetAction(ctx, keep.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, keptAction.Status)

	droppedAction, _, err := p.GetAction(ctx, drop.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusFailed, droppedAction.Status)
}
