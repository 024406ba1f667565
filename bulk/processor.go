package bulk

import (
	"sync"
	"time"

	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"graphfacade/config"
	apperrors "graphfacade/errors"
	"graphfacade/model"
	"graphfacade/provider"
)

// Processor runs ForEach against an optional Actions-capable provider
// for persisted, resumable progress.
type Processor struct {
	actions provider.Actions
	logger  *zap.Logger
}

// New constructs a Processor. actions may be nil; Persist/Resume then
// fail with a typed input error.
func New(actions provider.Actions, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{actions: actions, logger: logger}
}

type runState struct {
	mu            sync.Mutex
	completed     int
	failed        int
	skipped       int
	errors        []ItemError
	processedIDs  map[string]bool
	terminalCount int
	cancelled     bool
	stopRequested bool
}

// ForEach processes items with cb, honoring opts (§4.3).
func (p *Processor) ForEach(ctx context.Context, items []any, cb CallbackFunc, opts Options) (Result, error) {
	start := time.Now()

	if (opts.Persist || opts.Resume != "") && p.actions == nil {
		return Result{}, apperrors.NewInputError("persist/resume requires an actions API").WithAction("forEach")
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = config.DefaultConfig().DefaultRetryDelay
	}
	persistEvery := opts.PersistEvery
	if persistEvery <= 0 {
		persistEvery = config.DefaultConfig().PersistEvery
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(error, any, int) OnErrorDecision { return OnErrorContinue }
	}

	state := &runState{processedIDs: make(map[string]bool)}
	var actionID string
	actionType := opts.PersistName
	if actionType == "" {
		actionType = "Bulk.forEach"
	}

	if opts.Resume != "" {
		action, found, err := p.actions.GetAction(ctx, opts.Resume)
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Result{}, apperrors.NewNotFoundError("Action", opts.Resume).WithAction("forEach")
		}
		actionID = action.ID
		for _, id := range processedIDsFromMeta(action.Meta) {
			state.processedIDs[id] = true
		}
		active := model.StatusActive
		if _, err := p.actions.UpdateAction(ctx, actionID, provider.ActionUpdate{Status: &active}); err != nil {
			return Result{}, err
		}
	} else if opts.Persist {
		total := len(items)
		action, err := p.actions.CreateAction(ctx, provider.ActionCreate{
			Action: "process",
			Object: actionType,
			Total:  &total,
			Meta:   map[string]any{"processedIds": []string{}},
		})
		if err != nil {
			return Result{}, err
		}
		actionID = action.ID
		active := model.StatusActive
		if _, err := p.actions.UpdateAction(ctx, actionID, provider.ActionUpdate{Status: &active}); err != nil {
			return Result{}, err
		}
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup

	for i, item := range items {
		i, item := i, item

		state.mu.Lock()
		stop := state.stopRequested
		state.mu.Unlock()
		if stop || cancelRequested(opts.Signal) {
			break
		}

		key := itemKey(item)
		if state.processedIDs[key] {
			state.mu.Lock()
			state.skipped++
			state.terminalCount++
			state.mu.Unlock()
			p.reportProgress(opts, state, len(items), item, start)
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			p.runOne(ctx, cb, item, i, key, opts, onError, retryDelay, state, len(items), start, persistEvery, actionID)
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	result := Result{
		Total:     len(items),
		Completed: state.completed,
		Failed:    state.failed,
		Skipped:   state.skipped,
		Elapsed:   elapsed,
		Errors:    state.errors,
		Cancelled: state.cancelled,
		ActionID:  actionID,
	}

	// An external kill (context cancellation or caller Signal, as
	// opposed to an onError "stop" decision) leaves the Action in its
	// active state: nothing finalizes it, so a later resume picks up
	// where processedIds left off, matching a real process crash.
	interrupted := !state.stopRequested && (ctx.Err() != nil || cancelRequested(opts.Signal))
	if actionID != "" {
		if interrupted {
			p.persistProgress(context.Background(), actionID, state)
		} else {
			p.finalizeAction(ctx, actionID, state, result)
		}
	}
	return result, nil
}

func cancelRequested(signal <-chan struct{}) bool {
	if signal == nil {
		return false
	}
	select {
	case <-signal:
		return true
	default:
		return false
	}
}

func processedIDsFromMeta(meta map[string]any) []string {
	raw, ok := meta["processedIds"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (p *Processor) runOne(ctx context.Context, cb CallbackFunc, item any, index int, key string, opts Options, onError OnErrorFunc, retryDelay time.Duration, state *runState, total int, start time.Time, persistEvery int, actionID string) {
	attempt := 0
	for {
		if cancelRequested(opts.Signal) {
			return
		}

		itemCtx := ctx
		var cancel context.CancelFunc
		if opts.Timeout > 0 {
			itemCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		}
		result, err := cb(itemCtx, item, index)
		if cancel != nil {
			cancel()
		}
		if itemCtx.Err() == context.DeadlineExceeded {
			err = apperrors.NewTimeoutError("forEach item timed out").WithIndex(index)
		}

		if err == nil {
			state.mu.Lock()
			state.completed++
			state.terminalCount++
			state.processedIDs[key] = true
			shouldPersist := actionID != "" && state.terminalCount%persistEvery == 0
			state.mu.Unlock()
			if opts.OnComplete != nil {
				opts.OnComplete(item, result, index)
			}
			if shouldPersist {
				p.persistProgress(ctx, actionID, state)
			}
			p.reportProgress(opts, state, total, item, start)
			return
		}

		decision := onError(err, item, index)
		if decision == OnErrorRetry && attempt < opts.MaxRetries {
			attempt++
			delay := retryDelay
			if opts.RetryDelayFunc != nil {
				delay = opts.RetryDelayFunc(attempt)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			continue
		}

		state.mu.Lock()
		switch decision {
		case OnErrorSkip:
			state.skipped++
		case OnErrorStop:
			state.failed++
			state.errors = append(state.errors, ItemError{Item: item, Error: err, Index: index})
			state.cancelled = true
			state.stopRequested = true
		default: // continue, or retry exhausted
			state.failed++
			state.errors = append(state.errors, ItemError{Item: item, Error: err, Index: index})
		}
		state.terminalCount++
		state.mu.Unlock()
		p.reportProgress(opts, state, total, item, start)
		return
	}
}

func (p *Processor) reportProgress(opts Options, state *runState, total int, current any, start time.Time) {
	if opts.OnProgress == nil {
		return
	}
	state.mu.Lock()
	completed, failed, skipped := state.completed, state.failed, state.skipped
	terminal := state.terminalCount
	state.mu.Unlock()

	elapsed := time.Since(start)
	progress := Progress{
		Total:     total,
		Completed: completed,
		Failed:    failed,
		Skipped:   skipped,
		Current:   current,
		Elapsed:   elapsed,
	}
	if elapsed > 0 {
		progress.Rate = float64(terminal) / elapsed.Seconds()
	}
	if progress.Rate > 0 && terminal > 0 && terminal < total {
		remaining := time.Duration(float64(total-terminal)/progress.Rate) * time.Second
		progress.Remaining = &remaining
	}
	opts.OnProgress(progress)
}

func (p *Processor) persistProgress(ctx context.Context, actionID string, state *runState) {
	state.mu.Lock()
	ids := make([]string, 0, len(state.processedIDs))
	for id := range state.processedIDs {
		ids = append(ids, id)
	}
	state.mu.Unlock()

	_, err := p.actions.UpdateAction(ctx, actionID, provider.ActionUpdate{
		Meta: map[string]any{"processedIds": ids},
	})
	if err != nil {
		p.logger.Warn("forEach progress persist failed", zap.String("actionId", actionID), zap.Error(err))
	}
}

func (p *Processor) finalizeAction(ctx context.Context, actionID string, state *runState, result Result) {
	p.persistProgress(ctx, actionID, state)

	status := model.StatusCompleted
	if result.Cancelled {
		status = model.StatusCancelled
	} else if result.Failed > 0 {
		status = model.StatusFailed
	}
	update := provider.ActionUpdate{
		Status: &status,
		Result: map[string]any{
			"total":     result.Total,
			"completed": result.Completed,
			"failed":    result.Failed,
			"skipped":   result.Skipped,
		},
	}
	if len(result.Errors) > 0 {
		errMsg := result.Errors[0].Error.Error()
		update.Error = &errMsg
	}
	if _, err := p.actions.UpdateAction(ctx, actionID, update); err != nil {
		p.logger.Warn("forEach finalize failed", zap.String("actionId", actionID), zap.Error(err))
	}
}
