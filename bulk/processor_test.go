package bulk

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"graphfacade/memprovider"
	"graphfacade/model"
)

func makeItems(n int) []any {
	items := make([]any, n)
	for i := 0; i < n; i++ {
		items[i] = model.Flat{model.KeyID: fmt.Sprintf("item-%d", i)}
	}
	return items
}

// TestForEachResumesAfterInterruption implements the resumable-forEach
// scenario: a run is stopped partway through, then resumed from its
// persisted Action, and every item is accounted for exactly once.
func TestForEachResumesAfterInterruption(t *testing.T) {
	actions := memprovider.New()
	proc := New(actions, nil)
	items := makeItems(1000)

	var processedFirst int32
	stop := make(chan struct{})
	var stopOnce sync.Once

	first, err := proc.ForEach(context.Background(), items, func(_ context.Context, _ any, _ int) (any, error) {
		n := atomic.AddInt32(&processedFirst, 1)
		if n == 200 {
			stopOnce.Do(func() { close(stop) })
		}
		return nil, nil
	}, Options{
		Concurrency: 5,
		Persist:     true,
		PersistName: "Bulk.test",
		Signal:      stop,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ActionID)
	require.Less(t, first.Completed, 1000)

	action, found, err := actions.GetAction(context.Background(), first.ActionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusActive, action.Status)

	var processedSecond int32
	second, err := proc.ForEach(context.Background(), items, func(_ context.Context, _ any, _ int) (any, error) {
		atomic.AddInt32(&processedSecond, 1)
		return nil, nil
	}, Options{
		Concurrency: 5,
		Persist:     true,
		Resume:      first.ActionID,
	})
	require.NoError(t, err)

	require.Equal(t, 1000, second.Total)
	require.Equal(t, 1000, first.Completed+second.Completed)
	require.Equal(t, int(processedSecond), second.Completed)
	require.Equal(t, first.Completed, second.Skipped)

	finalAction, found, err := actions.GetAction(context.Background(), first.ActionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusCompleted, finalAction.Status)
}

// TestForEachAccountsForEveryItem is testable property 5: when a run
// is not cancelled, completed+failed+skipped always equals total, and
// errors has exactly one entry per failed item.
func TestForEachAccountsForEveryItem(t *testing.T) {
	proc := New(nil, nil)
	items := makeItems(20)

	result, err := proc.ForEach(context.Background(), items, func(_ context.Context, item any, index int) (any, error) {
		if index%5 == 0 {
			return nil, fmt.Errorf("boom at %d", index)
		}
		return item, nil
	}, Options{Concurrency: 4})
	require.NoError(t, err)

	require.Equal(t, 20, result.Total)
	require.Equal(t, result.Completed+result.Failed+result.Skipped, result.Total)
	require.False(t, result.Cancelled)
	require.Len(t, result.Errors, result.Failed)
	require.Equal(t, 4, result.Failed)
	require.Equal(t, 16, result.Completed)
}

// TestForEachRetriesThenSucceeds covers the retry onError decision.
func TestForEachRetriesThenSucceeds(t *testing.T) {
	proc := New(nil, nil)
	var attempts int32

	result, err := proc.ForEach(context.Background(), []any{model.Flat{model.KeyID: "only"}}, func(_ context.Context, _ any, _ int) (any, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return nil, fmt.Errorf("transient")
		}
		return "ok", nil
	}, Options{
		Concurrency:    1,
		MaxRetries:     5,
		RetryDelayFunc: func(int) time.Duration { return 0 },
		OnError:        func(error, any, int) OnErrorDecision { return OnErrorRetry },
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Completed)
	require.Equal(t, 0, result.Failed)
	require.Equal(t, int32(3), attempts)
}

// TestForEachStopHaltsFutureDispatch covers the stop onError decision.
func TestForEachStopHaltsFutureDispatch(t *testing.T) {
	proc := New(nil, nil)
	items := makeItems(50)

	result, err := proc.ForEach(context.Background(), items, func(_ context.Context, _ any, index int) (any, error) {
		if index == 0 {
			return nil, fmt.Errorf("fatal")
		}
		return nil, nil
	}, Options{
		Concurrency: 1,
		OnError:     func(error, any, int) OnErrorDecision { return OnErrorStop },
	})
	require.NoError(t, err)
	require.True(t, result.Cancelled)
	require.Less(t, result.Completed+result.Failed+result.Skipped, 50)
}

// TestForEachRequiresActionsForPersist covers the input-validation edge case.
func TestForEachRequiresActionsForPersist(t *testing.T) {
	proc := New(nil, nil)
	_, err := proc.ForEach(context.Background(), makeItems(1), func(context.Context, any, int) (any, error) {
		return nil, nil
	}, Options{Persist: true})
	require.Error(t, err)
}
