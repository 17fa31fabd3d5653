package entity

import (
	"time"

	"github.com/jinzhu/copier"
)

// ToolInvocation describes the tool call that triggered a tool event.
type ToolInvocation struct {
	// Name is the host tool name (e.g. "Edit", "Bash").
	Name string `json:"name"`

	// Params is the raw tool input as decoded from the host payload.
	Params map[string]interface{} `json:"params,omitempty"`
}

// FileOperation describes the file touched by an edit event.
type FileOperation struct {
	// Path is the file path being read or written.
	Path string `json:"path"`

	// Mode is "read", "write" or "delete".
	Mode string `json:"mode"`
}

// CommandInvocation describes the shell command behind a command event.
type CommandInvocation struct {
	// Raw is the full command text.
	Raw string `json:"raw"`

	// Dir is the working directory the command runs in.
	Dir string `json:"dir,omitempty"`

	// ExitCode is set on post-command events; nil before the command ran.
	ExitCode *int `json:"exit_code,omitempty"`

	// Output is the captured combined output, when available.
	Output string `json:"output,omitempty"`
}

// TaskDescriptor describes the task behind a task event.
type TaskDescriptor struct {
	// ID is the task identifier.
	ID string `json:"id"`

	// Description is the free-text task description.
	Description string `json:"description,omitempty"`

	// Role is the agent role the task is assigned to.
	Role string `json:"role,omitempty"`
}

// Context is the tagged record handed to handlers for one dispatch.
//
// A Context is created fresh per dispatch and never mutated after handlers
// return; each handler receives its own deep copy (see Snapshot) so one
// handler cannot leak state into the next.
type Context struct {
	// Event is the lifecycle moment being dispatched.
	Event Event `json:"event"`

	// Timestamp is when the dispatch was created.
	Timestamp time.Time `json:"timestamp"`

	// Tool is set for tool-derived events.
	Tool *ToolInvocation `json:"tool,omitempty"`

	// File is set for edit events.
	File *FileOperation `json:"file,omitempty"`

	// Command is set for command events.
	Command *CommandInvocation `json:"command,omitempty"`

	// Task is set for task events.
	Task *TaskDescriptor `json:"task,omitempty"`

	// SessionID identifies the host session this dispatch belongs to.
	SessionID string `json:"session_id,omitempty"`

	// AgentID identifies the local agent, when known.
	AgentID string `json:"agent_id,omitempty"`

	// Metadata carries free-form key/value pairs from the caller.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewContext creates a context for the given event, stamped now.
func NewContext(event Event) *Context {
	return &Context{
		Event:     event,
		Timestamp: time.Now(),
	}
}

// ToolName returns the tool name, or "" when the context has none.
func (c *Context) ToolName() string {
	if c.Tool == nil {
		return ""
	}
	return c.Tool.Name
}

// Snapshot returns a deep copy of the context. The executor hands each
// handler a snapshot so handlers get a read view of the dispatch.
func (c *Context) Snapshot() (*Context, error) {
	out := &Context{}
	if err := copier.CopyWithOption(out, c, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return out, nil
}
