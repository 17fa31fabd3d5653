package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
)

func newTestExecutor(t *testing.T, timeout time.Duration) (*Executor, *Registry) {
	t.Helper()
	r := NewRegistry()
	x := NewExecutor(r, (&ExecutorConfig{HandlerTimeout: timeout}).Complete())
	return x, r
}

func recordingHandler(calls *[]string, label string, res *entity.Result) Handler {
	return func(_ context.Context, _ *entity.Context) (*entity.Result, error) {
		*calls = append(*calls, label)
		return res, nil
	}
}

func TestExecuteRunsInPriorityOrder(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	var calls []string
	_, err := r.Register(entity.EventPreCommand, recordingHandler(&calls, "low", entity.OK()), 1, nil)
	require.NoError(t, err)
	_, err = r.Register(entity.EventPreCommand, recordingHandler(&calls, "high", entity.OK()), 10, nil)
	require.NoError(t, err)

	res, err := x.Execute(context.Background(), entity.NewContext(entity.EventPreCommand))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 2, res.HooksExecuted)
	require.Equal(t, []string{"high", "low"}, calls)
}

func TestExecuteAbortShortCircuits(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	var calls []string
	_, err := r.Register(entity.EventPreCommand, recordingHandler(&calls, "blocker", entity.Block("not allowed")), 10, nil)
	require.NoError(t, err)
	_, err = r.Register(entity.EventPreCommand, recordingHandler(&calls, "after", entity.OK()), 1, nil)
	require.NoError(t, err)

	res, err := x.Execute(context.Background(), entity.NewContext(entity.EventPreCommand))
	require.NoError(t, err)
	require.True(t, res.Aborted)
	require.False(t, res.Success)
	require.Equal(t, "not allowed", res.AbortReason)
	require.Equal(t, []string{"blocker"}, calls, "handlers after the abort must not run")
}

func TestExecuteUpdatedInputLastWins(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	first := &entity.Result{Success: true, Data: &entity.ResultData{
		UpdatedInput: map[string]interface{}{"command": "ls"},
	}}
	_, err := r.Register(entity.EventPreToolUse, func(_ context.Context, _ *entity.Context) (*entity.Result, error) {
		return first, nil
	}, 10, nil)
	require.NoError(t, err)

	// The lower-priority handler must observe the first handler's rewrite.
	var seen string
	second := &entity.Result{Success: true, Data: &entity.ResultData{
		UpdatedInput: map[string]interface{}{"command": "ls -la"},
	}}
	_, err = r.Register(entity.EventPreToolUse, func(_ context.Context, hctx *entity.Context) (*entity.Result, error) {
		seen, _ = hctx.Tool.Params["command"].(string)
		return second, nil
	}, 1, nil)
	require.NoError(t, err)

	hctx := entity.NewContext(entity.EventPreToolUse)
	hctx.Tool = &entity.ToolInvocation{Name: "Bash", Params: map[string]interface{}{"command": "pwd"}}

	res, err := x.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.Equal(t, "ls", seen)
	require.Equal(t, "ls -la", res.UpdatedInput["command"])
}

func TestExecuteHandlerErrorIsIsolated(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	_, err := r.Register(entity.EventPreCommand, func(_ context.Context, _ *entity.Context) (*entity.Result, error) {
		return nil, errors.New("boom")
	}, 10, nil)
	require.NoError(t, err)

	var ran bool
	_, err = r.Register(entity.EventPreCommand, func(_ context.Context, _ *entity.Context) (*entity.Result, error) {
		ran = true
		return entity.OK(), nil
	}, 1, nil)
	require.NoError(t, err)

	res, err := x.Execute(context.Background(), entity.NewContext(entity.EventPreCommand))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 1, res.HooksFailed)
	require.True(t, ran, "a non-critical failure must not stop the chain")
}

func TestExecuteCriticalErrorAborts(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	_, err := r.Register(entity.EventPreCommand, func(_ context.Context, _ *entity.Context) (*entity.Result, error) {
		return nil, errors.New("boom")
	}, 10, &RegisterOptions{Name: "critical-check", Critical: true})
	require.NoError(t, err)

	res, err := x.Execute(context.Background(), entity.NewContext(entity.EventPreCommand))
	require.NoError(t, err)
	require.True(t, res.Aborted)
	require.Contains(t, res.AbortReason, "critical-check")
}

func TestExecuteTimeout(t *testing.T) {
	x, r := newTestExecutor(t, 20*time.Millisecond)

	slow := func(ctx context.Context, _ *entity.Context) (*entity.Result, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return entity.OK(), nil
		}
	}

	_, err := r.Register(entity.EventPreCommand, slow, 10, nil)
	require.NoError(t, err)
	var ran bool
	_, err = r.Register(entity.EventPreCommand, func(_ context.Context, _ *entity.Context) (*entity.Result, error) {
		ran = true
		return entity.OK(), nil
	}, 1, nil)
	require.NoError(t, err)

	res, err := x.Execute(context.Background(), entity.NewContext(entity.EventPreCommand))
	require.NoError(t, err)
	require.True(t, res.Success, "a timeout on a non-critical handler is not fatal")
	require.Equal(t, 1, res.HooksFailed)
	require.True(t, ran)
}

func TestExecuteCriticalTimeoutAborts(t *testing.T) {
	x, r := newTestExecutor(t, 20*time.Millisecond)

	slow := func(ctx context.Context, _ *entity.Context) (*entity.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	_, err := r.Register(entity.EventPreCommand, slow, 10, &RegisterOptions{Critical: true})
	require.NoError(t, err)

	res, err := x.Execute(context.Background(), entity.NewContext(entity.EventPreCommand))
	require.NoError(t, err)
	require.True(t, res.Aborted)
	require.Contains(t, res.AbortReason, "timed out")
}

func TestExecutePanicIsRecovered(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	_, err := r.Register(entity.EventPreCommand, func(_ context.Context, _ *entity.Context) (*entity.Result, error) {
		panic("handler bug")
	}, 0, nil)
	require.NoError(t, err)

	res, err := x.Execute(context.Background(), entity.NewContext(entity.EventPreCommand))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 1, res.HooksFailed)
}

func TestExecuteSkipsDisabledAndNonMatching(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	var calls []string
	disabled, err := r.Register(entity.EventPreToolUse, recordingHandler(&calls, "disabled", entity.OK()), 10, nil)
	require.NoError(t, err)
	require.True(t, r.Disable(disabled))

	_, err = r.Register(entity.EventPreToolUse, recordingHandler(&calls, "edit-only", entity.OK()), 5,
		&RegisterOptions{Pattern: "^Edit$"})
	require.NoError(t, err)
	_, err = r.Register(entity.EventPreToolUse, recordingHandler(&calls, "all", entity.OK()), 1, nil)
	require.NoError(t, err)

	hctx := entity.NewContext(entity.EventPreToolUse)
	hctx.Tool = &entity.ToolInvocation{Name: "Bash"}

	res, err := x.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.HooksExecuted)
	require.Equal(t, []string{"all"}, calls)
}

func TestExecuteRejectsBadContext(t *testing.T) {
	x, _ := newTestExecutor(t, 0)

	_, err := x.Execute(context.Background(), nil)
	require.Error(t, err)

	_, err = x.Execute(context.Background(), entity.NewContext("bogus"))
	require.Error(t, err)
}

func TestHandlersGetSnapshotNotOriginal(t *testing.T) {
	x, r := newTestExecutor(t, 0)

	_, err := r.Register(entity.EventPreToolUse, func(_ context.Context, hctx *entity.Context) (*entity.Result, error) {
		hctx.Tool.Params["command"] = "mutated"
		return entity.OK(), nil
	}, 0, nil)
	require.NoError(t, err)

	hctx := entity.NewContext(entity.EventPreToolUse)
	hctx.Tool = &entity.ToolInvocation{Name: "Bash", Params: map[string]interface{}{"command": "pwd"}}

	_, err = x.Execute(context.Background(), hctx)
	require.NoError(t, err)
	require.Equal(t, "pwd", hctx.Tool.Params["command"], "caller's context must stay untouched")
}
