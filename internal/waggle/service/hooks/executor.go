package hooks

import (
	"context"
	"fmt"
	"time"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
	"github.com/ravenhall/waggle/pkg/logger"
)

// DefaultHandlerTimeout bounds a single handler invocation when no timeout
// is configured.
const DefaultHandlerTimeout = 30 * time.Second

// ExecutorConfig holds the executor's tunables.
type ExecutorConfig struct {
	// HandlerTimeout is the per-handler wait bound (default 30s).
	HandlerTimeout time.Duration `json:"handler_timeout,omitempty"`
}

// CompletedExecutorConfig is the validated executor configuration.
type CompletedExecutorConfig struct {
	*ExecutorConfig
}

// Complete fills defaults.
func (c *ExecutorConfig) Complete() CompletedExecutorConfig {
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = DefaultHandlerTimeout
	}
	return CompletedExecutorConfig{c}
}

// ExecutionResult aggregates one dispatch across all matching handlers.
type ExecutionResult struct {
	// Event is the dispatched lifecycle moment.
	Event entity.Event `json:"event"`

	// HooksExecuted counts handlers actually invoked.
	HooksExecuted int `json:"hooks_executed"`

	// HooksFailed counts handlers that errored or timed out.
	HooksFailed int `json:"hooks_failed"`

	// Aborted is set when a handler short-circuited the dispatch.
	Aborted bool `json:"aborted"`

	// AbortReason carries the aborting handler's message.
	AbortReason string `json:"abort_reason,omitempty"`

	// Success is true only when no handler aborted.
	Success bool `json:"success"`

	// Results holds each invoked handler's result in execution order.
	Results []*entity.Result `json:"results,omitempty"`

	// UpdatedInput is the final replacement tool input; the last non-nil
	// value across handlers wins.
	UpdatedInput map[string]interface{} `json:"updated_input,omitempty"`

	// Elapsed is the total dispatch wall time.
	Elapsed time.Duration `json:"elapsed"`
}

// Executor dispatches events to registered handlers in priority order with
// per-handler timeout and fault isolation.
//
// Handlers run sequentially, highest priority first: lower-priority handlers
// may depend on side effects (such as an updated tool input) produced by
// higher-priority ones, so concurrency here would change semantics. The
// timeout cancels the wait, not the handler's in-flight work; handlers are
// expected to honor context cancellation.
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, cfg CompletedExecutorConfig) *Executor {
	return &Executor{
		registry: registry,
		timeout:  cfg.HandlerTimeout,
	}
}

// Registry returns the backing registry.
func (x *Executor) Registry() *Registry { return x.registry }

type handlerOutcome struct {
	result *entity.Result
	err    error
}

// Execute dispatches the event carried by hctx to all enabled, matching
// handlers. The passed context is never handed to handlers directly; each
// handler receives its own deep-copy snapshot.
func (x *Executor) Execute(ctx context.Context, hctx *entity.Context) (*ExecutionResult, error) {
	if hctx == nil {
		return nil, fmt.Errorf("nil hook context")
	}
	if !hctx.Event.Valid() {
		return nil, fmt.Errorf("unknown hook event %q", hctx.Event)
	}
	if hctx.Timestamp.IsZero() {
		hctx.Timestamp = time.Now()
	}

	start := time.Now()
	out := &ExecutionResult{Event: hctx.Event, Success: true}

	// Working copy owned by this dispatch; updated-input side effects are
	// applied here so later handlers observe them.
	working, err := hctx.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot hook context: %w", err)
	}

	for _, e := range x.registry.ForEvent(hctx.Event, true) {
		if !e.Matches(working) {
			continue
		}

		snap, err := working.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot hook context: %w", err)
		}

		outcome, timedOut := x.invoke(ctx, e, snap)
		out.HooksExecuted++

		switch {
		case timedOut:
			out.HooksFailed++
			logger.Warn("[Hooks] handler %s timed out after %s on %s", e.ID, x.timeout, hctx.Event)
			if e.Critical {
				out.Aborted = true
				out.AbortReason = fmt.Sprintf("critical handler %s timed out", entryLabel(e))
			}
		case outcome.err != nil:
			out.HooksFailed++
			out.Results = append(out.Results, entity.Failed(outcome.err))
			logger.Warn("[Hooks] handler %s failed on %s: %v", e.ID, hctx.Event, outcome.err)
			if e.Critical {
				out.Aborted = true
				out.AbortReason = fmt.Sprintf("critical handler %s failed: %v", entryLabel(e), outcome.err)
			}
		case outcome.result == nil:
			// Treat a nil result as an implicit success with no payload.
			out.Results = append(out.Results, entity.OK())
		default:
			res := outcome.result
			out.Results = append(out.Results, res)
			if !res.Success && !res.Abort {
				out.HooksFailed++
			}
			if res.Data != nil && res.Data.UpdatedInput != nil {
				out.UpdatedInput = res.Data.UpdatedInput
				if working.Tool != nil {
					working.Tool.Params = res.Data.UpdatedInput
				}
			}
			if res.Abort {
				out.Aborted = true
				out.AbortReason = res.Message
			}
		}

		if out.Aborted {
			break
		}
		if err := ctx.Err(); err != nil {
			out.Success = false
			out.Elapsed = time.Since(start)
			return out, err
		}
	}

	out.Success = !out.Aborted
	out.Elapsed = time.Since(start)
	return out, nil
}

// invoke runs one handler with the per-handler timeout. The second return
// is true when the wait was cancelled by the timeout.
func (x *Executor) invoke(ctx context.Context, e *Entry, snap *entity.Context) (handlerOutcome, bool) {
	hctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	ch := make(chan handlerOutcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- handlerOutcome{err: fmt.Errorf("handler panicked: %v", rec)}
			}
		}()
		res, err := e.Handler()(hctx, snap)
		ch <- handlerOutcome{result: res, err: err}
	}()

	select {
	case outcome := <-ch:
		return outcome, false
	case <-hctx.Done():
		return handlerOutcome{}, true
	}
}

func entryLabel(e *Entry) string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}
