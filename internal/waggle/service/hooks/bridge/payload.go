// Package bridge translates the host runtime's hook protocol (one JSON
// exchange over stdin/stdout per invocation) into the internal event model
// and back.
package bridge

// HostPayload is the inbound hook invocation as emitted by the host runtime.
// Field names follow the host's wire contract.
type HostPayload struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	Cwd            string `json:"cwd,omitempty"`
	PermissionMode string `json:"permission_mode,omitempty"`

	// HookEventName is one of the host's fixed event vocabulary
	// (PreToolUse, PostToolUse, SessionStart, ...).
	HookEventName string `json:"hook_event_name"`

	ToolName     string                 `json:"tool_name,omitempty"`
	ToolInput    map[string]interface{} `json:"tool_input,omitempty"`
	ToolOutput   string                 `json:"tool_output,omitempty"`
	ToolSuccess  *bool                  `json:"tool_success,omitempty"`
	ToolExitCode *int                   `json:"tool_exit_code,omitempty"`

	Prompt string `json:"prompt,omitempty"`

	NotificationMessage string `json:"notification_message,omitempty"`
	NotificationLevel   string `json:"notification_level,omitempty"`
}

// Host decision values. The host accepts a small verb set; the bridge only
// ever emits the pairs below, chosen per host event.
const (
	DecisionAllow    = "allow"
	DecisionDeny     = "deny"
	DecisionBlock    = "block"
	DecisionContinue = "continue"
)

// HostDecision is the outbound decision payload the host expects.
type HostDecision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`

	// Continue tells the host whether to proceed with the intercepted
	// operation.
	Continue bool `json:"continue"`

	// UpdatedInput, when set, is the accepted replacement for the tool
	// input, forwarded verbatim from the handlers.
	UpdatedInput map[string]interface{} `json:"updatedInput,omitempty"`

	SuppressOutput bool `json:"suppressOutput,omitempty"`
}

// Exit codes for the CLI-invoked bridge, per the host convention: 0 lets the
// operation continue, 2 blocks it with the reason on stderr, anything else
// reports a bridge error.
const (
	ExitContinue = 0
	ExitError    = 1
	ExitBlock    = 2
)
