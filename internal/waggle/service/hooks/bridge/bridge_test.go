package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
)

func TestMapHostEventDisambiguatesToolEvents(t *testing.T) {
	cases := []struct {
		hostEvent string
		toolName  string
		want      entity.Event
	}{
		{"PreToolUse", "Bash", entity.EventPreCommand},
		{"PostToolUse", "Bash", entity.EventPostCommand},
		{"PreToolUse", "Edit", entity.EventPreEdit},
		{"PreToolUse", "Write", entity.EventPreEdit},
		{"PreToolUse", "Read", entity.EventPreEdit},
		{"PostToolUse", "MultiEdit", entity.EventPostEdit},
		{"PreToolUse", "Task", entity.EventPreTask},
		{"PostToolUse", "Task", entity.EventPostTask},
		{"PreToolUse", "WebSearch", entity.EventPreToolUse},
		{"PostToolUse", "", entity.EventPostToolUse},
		{"SessionStart", "", entity.EventSessionStart},
		{"Stop", "", entity.EventSessionEnd},
		{"UserPromptSubmit", "", entity.EventPreTask},
	}
	for _, tc := range cases {
		got, exact := MapHostEvent(tc.hostEvent, tc.toolName)
		require.Equal(t, tc.want, got, "%s/%s", tc.hostEvent, tc.toolName)
		require.True(t, exact)
	}
}

func TestMapHostEventDegradesUnknown(t *testing.T) {
	got, exact := MapHostEvent("SomethingNew", "")
	require.Equal(t, entity.EventPreToolUse, got)
	require.False(t, exact)
}

func TestToInternalContextCommand(t *testing.T) {
	exitCode := 1
	p := &HostPayload{
		SessionID:     "s1",
		Cwd:           "/work",
		HookEventName: "PostToolUse",
		ToolName:      "Bash",
		ToolInput:     map[string]interface{}{"command": "go vet ./..."},
		ToolOutput:    "exit status 1",
		ToolExitCode:  &exitCode,
	}

	hctx := ToInternalContext(p)
	require.Equal(t, entity.EventPostCommand, hctx.Event)
	require.Equal(t, "s1", hctx.SessionID)
	require.NotNil(t, hctx.Command)
	require.Equal(t, "go vet ./...", hctx.Command.Raw)
	require.Equal(t, "/work", hctx.Command.Dir)
	require.Equal(t, &exitCode, hctx.Command.ExitCode)
	require.Equal(t, "exit status 1", hctx.Command.Output)
	require.Equal(t, "Bash", hctx.Tool.Name)
}

func TestToInternalContextEdit(t *testing.T) {
	p := &HostPayload{
		HookEventName: "PreToolUse",
		ToolName:      "Write",
		ToolInput:     map[string]interface{}{"file_path": "main.go"},
	}

	hctx := ToInternalContext(p)
	require.Equal(t, entity.EventPreEdit, hctx.Event)
	require.NotNil(t, hctx.File)
	require.Equal(t, "main.go", hctx.File.Path)
	require.Equal(t, "write", hctx.File.Mode)
}

func TestToInternalContextReadMode(t *testing.T) {
	p := &HostPayload{
		HookEventName: "PreToolUse",
		ToolName:      "Read",
		ToolInput:     map[string]interface{}{"file_path": "go.sum"},
	}

	hctx := ToInternalContext(p)
	require.Equal(t, "read", hctx.File.Mode)
}

func TestToInternalContextTaskFallsBackToPrompt(t *testing.T) {
	p := &HostPayload{
		HookEventName: "UserPromptSubmit",
		Prompt:        "research caching options",
	}

	hctx := ToInternalContext(p)
	require.Equal(t, entity.EventPreTask, hctx.Event)
	require.NotNil(t, hctx.Task)
	require.Equal(t, "research caching options", hctx.Task.Description)
	require.Equal(t, "research caching options", hctx.Metadata["prompt"])
}

func TestToHostDecisionVerbs(t *testing.T) {
	ok := &hooks.ExecutionResult{Success: true}

	d := ToHostDecision(ok, "PreToolUse")
	require.Equal(t, DecisionAllow, d.Decision)
	require.True(t, d.Continue)

	d = ToHostDecision(ok, "PostToolUse")
	require.Equal(t, DecisionContinue, d.Decision)

	aborted := &hooks.ExecutionResult{Aborted: true, AbortReason: "too dangerous"}

	d = ToHostDecision(aborted, "PreToolUse")
	require.Equal(t, DecisionDeny, d.Decision)
	require.False(t, d.Continue)
	require.Equal(t, "too dangerous", d.Reason)

	d = ToHostDecision(aborted, "SessionStart")
	require.Equal(t, DecisionBlock, d.Decision)
}

func TestToHostDecisionDefaults(t *testing.T) {
	d := ToHostDecision(nil, "PostToolUse")
	require.Equal(t, DecisionBlock, d.Decision)
	require.NotEmpty(t, d.Reason)

	withInput := &hooks.ExecutionResult{
		Success:      true,
		UpdatedInput: map[string]interface{}{"command": "ls"},
	}
	d = ToHostDecision(withInput, "PreToolUse")
	require.Equal(t, "ls", d.UpdatedInput["command"])
}

func TestValidate(t *testing.T) {
	require.Error(t, (&HostPayload{}).Validate())
	require.NoError(t, (&HostPayload{HookEventName: "SessionStart"}).Validate())
}
