// Package bulk implements the resumable forEach processor (§4.3):
// concurrency-limited, retry-and-timeout-aware iteration with
// persisted progress backed by the provider's Actions surface.
// Grounded in the teacher's infrastructure/persistence/dynamodb/outbox_processor.go
// (a persisted-cursor, retry-aware batch processor) and
// distributed_lock.go's backoff style.
package bulk

import (
	"context"
	"fmt"
	"time"

	"graphfacade/model"
)

// OnErrorDecision is what to do with an item whose callback failed.
type OnErrorDecision string

const (
	OnErrorContinue OnErrorDecision = "continue"
	OnErrorRetry    OnErrorDecision = "retry"
	OnErrorSkip     OnErrorDecision = "skip"
	OnErrorStop     OnErrorDecision = "stop"
)

// Progress is reported after every terminal item event.
type Progress struct {
	Index     int
	Total     int
	Completed int
	Failed    int
	Skipped   int
	Current   any
	Elapsed   time.Duration
	Remaining *time.Duration
	Rate      float64 // items/sec
}

// ItemError records one failed item.
type ItemError struct {
	Item  any
	Error error
	Index int
}

// Result is what ForEach returns.
type Result struct {
	Total     int
	Completed int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
	Errors    []ItemError
	Cancelled bool
	ActionID  string
}

// CallbackFunc is invoked once per item.
type CallbackFunc func(ctx context.Context, item any, index int) (any, error)

// OnErrorFunc decides how to handle one item's callback error.
type OnErrorFunc func(err error, item any, index int) OnErrorDecision

// RetryDelayFunc computes the backoff before retry attempt n (1-based).
type RetryDelayFunc func(attempt int) time.Duration

// Options configures one ForEach run. Zero values take the documented
// defaults (§4.3).
type Options struct {
	Concurrency    int            // default 1
	MaxRetries     int            // default 0
	RetryDelay     time.Duration  // default 1s
	RetryDelayFunc RetryDelayFunc // overrides RetryDelay when set
	Timeout        time.Duration  // default 0 (no per-item deadline)
	OnProgress     func(Progress)
	OnError        OnErrorFunc // default: always OnErrorContinue
	OnComplete     func(item any, result any, index int)
	Signal         <-chan struct{} // closed/receivable to request cancellation

	Persist     bool
	PersistName string // Action type; defaults to "Bulk.forEach"
	Resume      string // a previously persisted Action's id

	PersistEvery int // write processedIds every N terminal events; default from config
}

// itemKey derives item.$id ?? item.id ?? stringify(item) — §4.3 step 3.
func itemKey(item any) string {
	if flat, ok := item.(interface{ ID() string }); ok {
		if id := flat.ID(); id != "" {
			return id
		}
	}
	var fields map[string]any
	switch v := item.(type) {
	case model.Flat:
		fields = v
	case map[string]any:
		fields = v
	}
	if id, ok := fields["id"].(string); ok && id != "" {
		return id
	}
	return fmt.Sprintf("%v", item)
}

