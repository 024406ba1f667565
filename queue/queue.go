package queue

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"graphfacade/config"
	"graphfacade/provider"
)

// Outcome is what a submitted Task resolves to.
type Outcome struct {
	Value any
	Err   error
}

// Task is one schedulable unit of work: a durable promise's executor,
// tagged with the method name (used for batch grouping) and priority
// tier.
type Task struct {
	Method   string
	Priority string
	ActionID string
	Run      func(ctx context.Context) (any, error)
}

// BatchRequest pairs a Task with the id a BatchProvider tracks it by;
// its position in the slice passed to SubmitBatch is its batch index.
type BatchRequest struct {
	CustomID string
	Task     Task
}

// BatchHandle is what SubmitBatch returns.
type BatchHandle struct {
	BatchID             string
	Count               int
	EstimatedCompletion *time.Time
}

// BatchStatus is what GetBatchStatus returns.
type BatchStatus struct {
	BatchID   string
	Completed int
	Total     int
	Done      bool
}

// BatchResult is one element of a BatchProvider's result stream.
type BatchResult struct {
	CustomID string
	ActionID string
	Status   string
	Result   any
	Err      error
}

// BatchProvider is where accumulated batch-priority work is submitted
// when one is registered for the task method's leading dot-segment
// (§4.4.4); absent a registration, batch work demotes to standard.
type BatchProvider interface {
	SubmitBatch(ctx context.Context, requests []BatchRequest) (BatchHandle, error)
	GetBatchStatus(ctx context.Context, batchID string) (BatchStatus, error)
	StreamResults(ctx context.Context, batchID string) (<-chan BatchResult, error)
}

type queuedTask struct {
	task   Task
	result chan Outcome
}

// ExecutionQueue holds per-priority-tier semaphores (§4.4.1) and the
// batch-window accumulator (§4.4.4).
type ExecutionQueue struct {
	cfg     *config.Config
	logger  *zap.Logger
	actions provider.Actions // nil if the bound provider has no Actions surface

	sems map[string]*semaphore.Weighted

	mu         sync.Mutex
	batch      []queuedTask
	batchTimer *time.Timer
	providers  map[string]BatchProvider
}

// New builds an ExecutionQueue from cfg (config.DefaultConfig() if
// nil). actions may be nil; when set, batch submissions stamp each
// Task's mirrored Action with its batch id/index/total (§4.4.4).
func New(cfg *config.Config, logger *zap.Logger, actions provider.Actions) *ExecutionQueue {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sems := make(map[string]*semaphore.Weighted, len(cfg.PriorityConcurrency))
	for tier, bound := range cfg.PriorityConcurrency {
		sems[tier] = semaphore.NewWeighted(int64(bound))
	}
	return &ExecutionQueue{
		cfg:       cfg,
		logger:    logger,
		actions:   actions,
		sems:      sems,
		providers: make(map[string]BatchProvider),
	}
}

// RegisterBatchProvider attaches bp for method names beginning with
// the given dot-segment (e.g. "openai" for "openai.chat").
func (q *ExecutionQueue) RegisterBatchProvider(name string, bp BatchProvider) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.providers[name] = bp
}

// Enqueue places task on its tier's queue and returns a channel that
// receives its single Outcome. Non-batch tiers drain immediately
// through the tier's semaphore; batch accumulates until the batch
// window elapses or maxBatchSize is reached.
func (q *ExecutionQueue) Enqueue(ctx context.Context, task Task) <-chan Outcome {
	result := make(chan Outcome, 1)
	priority := task.Priority
	if priority == "" {
		priority = config.TierStandard
	}

	if priority != config.TierBatch {
		sem := q.sems[priority]
		if sem == nil {
			sem = q.sems[config.TierStandard]
		}
		go q.runImmediate(ctx, task, sem, result)
		return result
	}

	q.enqueueBatch(ctx, task, result)
	return result
}

func (q *ExecutionQueue) runImmediate(ctx context.Context, task Task, sem *semaphore.Weighted, result chan Outcome) {
	if err := sem.Acquire(ctx, 1); err != nil {
		result <- Outcome{Err: err}
		return
	}
	defer sem.Release(1)
	value, err := task.Run(ctx)
	result <- Outcome{Value: value, Err: err}
}

func (q *ExecutionQueue) enqueueBatch(ctx context.Context, task Task, result chan Outcome) {
	window := q.cfg.BatchWindow
	if f := FrameFromContext(ctx); f.BatchWindow != 0 {
		window = f.BatchWindow
	}

	q.mu.Lock()
	q.batch = append(q.batch, queuedTask{task: task, result: result})
	full := len(q.batch) >= q.cfg.MaxBatchSize
	if q.batchTimer == nil {
		q.batchTimer = time.AfterFunc(window, func() { q.Flush(context.Background()) })
	}
	q.mu.Unlock()

	if full {
		q.Flush(ctx)
	}
}

// Flush groups queued batch tasks by the leading dot-segment of their
// method and submits each group to its registered BatchProvider, or
// demotes the group to standard priority when none is registered
// (§4.4.4). Safe to call early (e.g. to force a flush in tests); a
// flush with nothing queued is a no-op.
func (q *ExecutionQueue) Flush(ctx context.Context) {
	q.mu.Lock()
	pending := q.batch
	q.batch = nil
	if q.batchTimer != nil {
		q.batchTimer.Stop()
		q.batchTimer = nil
	}
	q.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	groups := make(map[string][]queuedTask)
	for _, qt := range pending {
		name := providerSegment(qt.task.Method)
		groups[name] = append(groups[name], qt)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := groups[name]
		q.mu.Lock()
		bp := q.providers[name]
		q.mu.Unlock()
		if bp == nil {
			q.demote(ctx, group)
			continue
		}
		q.submitToBatchProvider(ctx, bp, group)
	}
}

// stampBatch records batchID and each task's position (its unique
// batchIndex, per testable scenario S4) and the group's size onto the
// mirrored Action, when the queue was given an Actions surface and the
// task carries one (tasks enqueued outside a durable.Promise have no
// ActionID and are skipped).
func (q *ExecutionQueue) stampBatch(ctx context.Context, batchID string, group []queuedTask) {
	if q.actions == nil {
		return
	}
	total := len(group)
	for i, qt := range group {
		if qt.task.ActionID == "" {
			continue
		}
		index := i
		if _, err := q.actions.UpdateAction(ctx, qt.task.ActionID, provider.ActionUpdate{
			BatchID:    &batchID,
			BatchIndex: &index,
			BatchTotal: &total,
		}); err != nil {
			q.logger.Warn("failed to stamp batch onto action",
				zap.String("actionID", qt.task.ActionID), zap.String("batchID", batchID), zap.Error(err))
		}
	}
}

func providerSegment(method string) string {
	if i := strings.IndexByte(method, '.'); i >= 0 {
		return method[:i]
	}
	return method
}

func (q *ExecutionQueue) demote(ctx context.Context, group []queuedTask) {
	sem := q.sems[config.TierStandard]
	for _, qt := range group {
		go q.runImmediate(ctx, qt.task, sem, qt.result)
	}
}

func (q *ExecutionQueue) submitToBatchProvider(ctx context.Context, bp BatchProvider, group []queuedTask) {
	requests := make([]BatchRequest, len(group))
	byCustomID := make(map[string]queuedTask, len(group))
	for i, qt := range group {
		customID := fmt.Sprintf("%s-%d", qt.task.Method, i)
		requests[i] = BatchRequest{CustomID: customID, Task: qt.task}
		byCustomID[customID] = qt
	}

	handle, err := bp.SubmitBatch(ctx, requests)
	if err != nil {
		for _, qt := range group {
			qt.result <- Outcome{Err: err}
		}
		return
	}

	q.stampBatch(ctx, handle.BatchID, group)

	stream, err := bp.StreamResults(ctx, handle.BatchID)
	if err != nil {
		for _, qt := range group {
			qt.result <- Outcome{Err: err}
		}
		return
	}

	go func() {
		for r := range stream {
			qt, ok := byCustomID[r.CustomID]
			if !ok {
				continue
			}
			if r.Err != nil {
				qt.result <- Outcome{Err: r.Err}
				continue
			}
			qt.result <- Outcome{Value: r.Result}
		}
	}()
}
