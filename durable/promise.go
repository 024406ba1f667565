// Package durable implements the durable promise (§4.4.3): a handle
// over one logical unit of work whose lifecycle is mirrored as a
// persisted Action, scheduled through an ExecutionQueue, and aware of
// other Actions it depends on. Grounded in the teacher's
// application/sagas/saga.go (an in-memory state machine mirrored onto
// a persisted SagaState record) generalized from a saga's fixed step
// sequence into one externally supplied executor.
package durable

import (
	"context"
	"strings"
	"sync"
	"time"

	"graphfacade/config"
	apperrors "graphfacade/errors"
	"graphfacade/model"
	"graphfacade/provider"
	"graphfacade/queue"
)

// Executor is the unit of work a Promise mirrors as an Action.
type Executor func(ctx context.Context) (any, error)

// Options configure one durable promise.
type Options struct {
	Actor          string
	Method         string
	Args           map[string]any
	Priority       string // one of config.Tier*; defaults from the context frame, else standard
	ConcurrencyKey string
	DeferUntil     *time.Time
	DependsOn      []string // ids of Actions this promise waits on before executing
	Meta           map[string]any
	Executor       Executor

	// DependencyWaitCeiling overrides config.DefaultConfig().DependencyWaitCeiling.
	DependencyWaitCeiling time.Duration
}

// Promise is a promise-like handle whose observable contract is that
// of an ordinary future. Go has no native promise type, so the spec's
// "then/catch/finally" semantics are exposed the idiomatic way: Await
// blocks for the (memoised) result, Done reports completion for
// select-based waiting, and Cancel/Retry mirror the two named
// state-machine edges.
type Promise struct {
	mu       sync.Mutex
	once     sync.Once
	actions  provider.Actions
	actionID string
	method   string

	done     chan struct{}
	value    any
	err      error
	resolved bool
}

func verbOf(method string) string {
	if i := strings.LastIndexByte(method, '.'); i >= 0 {
		return method[i+1:]
	}
	return method
}

func resolvePriority(ctx context.Context, opts Options) string {
	if opts.Priority != "" {
		return opts.Priority
	}
	if p := queue.FrameFromContext(ctx).Priority; p != "" {
		return p
	}
	return config.TierStandard
}

// New constructs a durable promise and starts it. If actions is
// non-nil, an Action is created immediately (CreateAction derives its
// verb-triple from the method's final dot-segment) and the promise's
// lifecycle mirrors that Action's status thereafter.
func New(ctx context.Context, q *queue.ExecutionQueue, actions provider.Actions, opts Options) (*Promise, error) {
	if opts.Executor == nil {
		return nil, apperrors.NewInputError("durable promise requires an executor").WithAction(opts.Method)
	}
	if q == nil {
		return nil, apperrors.NewInputError("durable promise requires an execution queue").WithAction(opts.Method)
	}

	priority := resolvePriority(ctx, opts)
	p := &Promise{actions: actions, method: opts.Method, done: make(chan struct{})}

	if actions != nil {
		objectData := map[string]any{
			"method":   opts.Method,
			"args":     opts.Args,
			"priority": priority,
		}
		if opts.ConcurrencyKey != "" {
			objectData["concurrencyKey"] = opts.ConcurrencyKey
		}
		if opts.DeferUntil != nil {
			objectData["deferUntil"] = *opts.DeferUntil
		}
		if len(opts.DependsOn) > 0 {
			objectData["dependsOn"] = opts.DependsOn
		}
		action, err := actions.CreateAction(ctx, provider.ActionCreate{
			Actor:      opts.Actor,
			Action:     verbOf(opts.Method),
			Object:     opts.Method,
			ObjectData: objectData,
			Meta:       opts.Meta,
			Priority:   config.TierPriorityNumber[priority],
		})
		if err != nil {
			return nil, err
		}
		p.actionID = action.ID
	}

	go p.run(ctx, q, priority, opts)
	return p, nil
}

func (p *Promise) run(ctx context.Context, q *queue.ExecutionQueue, priority string, opts Options) {
	if len(opts.DependsOn) > 0 && p.actions != nil {
		ceiling := opts.DependencyWaitCeiling
		if ceiling <= 0 {
			ceiling = config.DefaultConfig().DependencyWaitCeiling
		}
		if err := waitDependencies(ctx, p.actions, opts.DependsOn, ceiling); err != nil {
			p.resolve(nil, err, true)
			return
		}
	}

	if opts.DeferUntil != nil {
		if delay := time.Until(*opts.DeferUntil); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				p.resolve(nil, ctx.Err(), true)
				return
			}
		}
	}

	if p.actionID != "" {
		active := model.StatusActive
		if _, err := p.actions.UpdateAction(ctx, p.actionID, provider.ActionUpdate{Status: &active}); err != nil {
			p.resolve(nil, err, true)
			return
		}
	}

	out := q.Enqueue(ctx, queue.Task{
		Method:   opts.Method,
		Priority: priority,
		ActionID: p.actionID,
		Run:      opts.Executor,
	})

	outcome := <-out
	p.resolve(outcome.Value, outcome.Err, true)
}

// resolve settles the promise exactly once. When persist is true and
// an actions API is attached, the matching Action is also transitioned
// to its terminal status; Cancel passes persist=false because
// CancelAction has already made that transition itself.
func (p *Promise) resolve(value any, err error, persist bool) {
	p.once.Do(func() {
		p.mu.Lock()
		p.value, p.err, p.resolved = value, err, true
		p.mu.Unlock()

		if persist && p.actionID != "" && p.actions != nil {
			p.persistTerminal(value, err)
		}
		close(p.done)
	})
}

func (p *Promise) persistTerminal(value any, err error) {
	ctx := context.Background()
	action, found, getErr := p.actions.GetAction(ctx, p.actionID)
	if getErr != nil || !found {
		return
	}
	if action.Status == model.StatusPending {
		active := model.StatusActive
		if _, updErr := p.actions.UpdateAction(ctx, p.actionID, provider.ActionUpdate{Status: &active}); updErr != nil {
			return
		}
	}
	if err != nil {
		status := model.StatusFailed
		msg := err.Error()
		_, _ = p.actions.UpdateAction(ctx, p.actionID, provider.ActionUpdate{Status: &status, Error: &msg})
		return
	}
	status := model.StatusCompleted
	_, _ = p.actions.UpdateAction(ctx, p.actionID, provider.ActionUpdate{Status: &status, Result: map[string]any{"value": value}})
}

// Await blocks until the promise settles (or ctx is done) and returns
// its memoised value/error. Safe to call more than once.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done reports settlement for select-based waiting.
func (p *Promise) Done() <-chan struct{} { return p.done }

// ActionID returns the mirrored Action's id, or "" if no actions API
// was attached.
func (p *Promise) ActionID() string { return p.actionID }

// Cancel is allowed only while the promise has not yet settled
// (§4.4.6): cooperative, it does not preempt an already-running
// executor.
func (p *Promise) Cancel(ctx context.Context) error {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return apperrors.NewIllegalTransitionError("Promise", "terminal", "cancelled").WithAction(p.method)
	}
	p.mu.Unlock()

	if p.actionID != "" && p.actions != nil {
		if _, err := p.actions.CancelAction(ctx, p.actionID); err != nil {
			return err
		}
	}
	p.resolve(nil, apperrors.NewInputError("cancelled").WithAction(p.method), false)
	return nil
}

// Retry is permitted only once the promise has failed; it moves the
// mirrored Action back to pending and returns a fresh Promise that
// runs opts' executor with opts' dependencies and priority under the
// original promise's method, reusing the existing Action rather than
// creating a new one.
func (p *Promise) Retry(ctx context.Context, q *queue.ExecutionQueue, opts Options) (*Promise, error) {
	p.mu.Lock()
	resolved, failed := p.resolved, p.err != nil
	p.mu.Unlock()
	if !resolved || !failed {
		return nil, apperrors.NewIllegalTransitionError("Promise", "non-failed", "pending").WithAction(p.method)
	}
	if p.actionID == "" || p.actions == nil {
		return nil, apperrors.NewInputError("retry requires an attached actions API").WithAction(p.method)
	}
	if _, err := p.actions.RetryAction(ctx, p.actionID); err != nil {
		return nil, err
	}

	next := &Promise{actions: p.actions, actionID: p.actionID, method: p.method, done: make(chan struct{})}
	priority := resolvePriority(ctx, opts)
	go next.run(ctx, q, priority, opts)
	return next, nil
}
