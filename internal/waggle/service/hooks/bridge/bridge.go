package bridge

import (
	"fmt"
	"time"

	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
)

// ToInternalContext builds the internal dispatch context from a host
// payload. Translation never fails: unmappable events degrade to the
// documented defaults in MapHostEvent.
func ToInternalContext(p *HostPayload) *entity.Context {
	event, _ := MapHostEvent(p.HookEventName, p.ToolName)

	hctx := &entity.Context{
		Event:     event,
		Timestamp: time.Now(),
		SessionID: p.SessionID,
		Metadata:  map[string]interface{}{},
	}
	if p.Cwd != "" {
		hctx.Metadata["cwd"] = p.Cwd
	}
	if p.PermissionMode != "" {
		hctx.Metadata["permission_mode"] = p.PermissionMode
	}
	if p.TranscriptPath != "" {
		hctx.Metadata["transcript_path"] = p.TranscriptPath
	}
	if p.Prompt != "" {
		hctx.Metadata["prompt"] = p.Prompt
	}
	if p.NotificationMessage != "" {
		hctx.Metadata["notification_message"] = p.NotificationMessage
		hctx.Metadata["notification_level"] = p.NotificationLevel
	}
	if len(hctx.Metadata) == 0 {
		hctx.Metadata = nil
	}

	if p.ToolName != "" {
		hctx.Tool = &entity.ToolInvocation{Name: p.ToolName, Params: p.ToolInput}
	}

	switch event {
	case entity.EventPreEdit, entity.EventPostEdit:
		hctx.File = &entity.FileOperation{
			Path: stringParam(p.ToolInput, "file_path"),
			Mode: fileMode(p.ToolName),
		}
	case entity.EventPreCommand, entity.EventPostCommand:
		hctx.Command = &entity.CommandInvocation{
			Raw:      stringParam(p.ToolInput, "command"),
			Dir:      p.Cwd,
			ExitCode: p.ToolExitCode,
			Output:   p.ToolOutput,
		}
	case entity.EventPreTask, entity.EventPostTask:
		desc := stringParam(p.ToolInput, "description")
		if desc == "" {
			desc = p.Prompt
		}
		hctx.Task = &entity.TaskDescriptor{
			ID:          stringParam(p.ToolInput, "task_id"),
			Description: desc,
			Role:        stringParam(p.ToolInput, "subagent_type"),
		}
	}

	return hctx
}

// ToHostDecision maps an aggregated execution result back to the host's
// decision payload. An aborted dispatch always yields the blocking verb for
// the host event; anything else yields the continuing verb.
func ToHostDecision(res *hooks.ExecutionResult, hostEvent string) *HostDecision {
	blocking, continuing := decisionVerbs(hostEvent)

	if res == nil || res.Aborted {
		reason := "blocked by hook"
		if res != nil && res.AbortReason != "" {
			reason = res.AbortReason
		}
		return &HostDecision{
			Decision: blocking,
			Reason:   reason,
			Continue: false,
		}
	}

	return &HostDecision{
		Decision:     continuing,
		Continue:     true,
		UpdatedInput: res.UpdatedInput,
	}
}

// Validate rejects payloads the bridge cannot dispatch at all.
func (p *HostPayload) Validate() error {
	if p.HookEventName == "" {
		return fmt.Errorf("host payload missing hook_event_name")
	}
	return nil
}

func stringParam(params map[string]interface{}, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
