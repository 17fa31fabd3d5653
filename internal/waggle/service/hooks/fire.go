package hooks

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
)

// Convenience dispatch wrappers that build the context from simpler
// primitives. Each corresponds to one event family.

// ExecuteToolUse dispatches a generic tool event.
func (x *Executor) ExecuteToolUse(ctx context.Context, event entity.Event, tool string, params map[string]interface{}) (*ExecutionResult, error) {
	hctx := entity.NewContext(event)
	hctx.Tool = &entity.ToolInvocation{Name: tool, Params: params}
	return x.Execute(ctx, hctx)
}

// ExecuteEdit dispatches a file-edit event for the given path and mode.
func (x *Executor) ExecuteEdit(ctx context.Context, event entity.Event, path, mode string) (*ExecutionResult, error) {
	hctx := entity.NewContext(event)
	hctx.File = &entity.FileOperation{Path: path, Mode: mode}
	return x.Execute(ctx, hctx)
}

// ExecuteCommand dispatches a shell-command event. exitCode and output are
// only meaningful on post-command events.
func (x *Executor) ExecuteCommand(ctx context.Context, event entity.Event, raw, dir string, exitCode *int, output string) (*ExecutionResult, error) {
	hctx := entity.NewContext(event)
	hctx.Command = &entity.CommandInvocation{Raw: raw, Dir: dir, ExitCode: exitCode, Output: output}
	return x.Execute(ctx, hctx)
}

// ExecuteTask dispatches a task event.
func (x *Executor) ExecuteTask(ctx context.Context, event entity.Event, id, description, role string) (*ExecutionResult, error) {
	hctx := entity.NewContext(event)
	hctx.Task = &entity.TaskDescriptor{ID: id, Description: description, Role: role}
	return x.Execute(ctx, hctx)
}

// ExecuteSession dispatches a session-boundary event.
func (x *Executor) ExecuteSession(ctx context.Context, event entity.Event, sessionID string) (*ExecutionResult, error) {
	hctx := entity.NewContext(event)
	hctx.SessionID = sessionID
	return x.Execute(ctx, hctx)
}
