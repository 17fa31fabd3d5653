package bridge

import (
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/domain/entity"
	"github.com/ravenhall/waggle/pkg/logger"
)

// The host exposes a smaller event vocabulary than the internal model. The
// generic PreToolUse/PostToolUse pair is disambiguated into file, command
// and task events through the tool name; every other host event maps to a
// fixed internal event. Unknown combinations degrade to the documented
// default instead of failing, because the host always needs a well-formed
// decision back.

// toolClass buckets host tool names for disambiguation.
type toolClass int

const (
	classGeneric toolClass = iota
	classFileWrite
	classFileRead
	classCommand
	classTask
)

// toolClasses is the fixed lookup table from host tool name to class.
var toolClasses = map[string]toolClass{
	"Edit":         classFileWrite,
	"Write":        classFileWrite,
	"MultiEdit":    classFileWrite,
	"NotebookEdit": classFileWrite,
	"Read":         classFileRead,
	"Bash":         classCommand,
	"Task":         classTask,
}

// hostEventMap maps non-tool host events to internal events. Degraded
// mappings (host event with no exact internal counterpart) are noted inline.
var hostEventMap = map[string]entity.Event{
	"SessionStart":     entity.EventSessionStart,
	"SessionEnd":       entity.EventSessionEnd,
	"Stop":             entity.EventSessionEnd, // degraded: stop ends the session's work
	"SubagentStart":    entity.EventAgentSpawn,
	"SubagentStop":     entity.EventAgentTerminate,
	"UserPromptSubmit": entity.EventPreTask,          // degraded: a prompt is an incoming task
	"Notification":     entity.EventRoutingDecision,  // degraded: advisory notice
	"PreCompact":       entity.EventPreToolUse,       // degraded: generic pre hook
}

// MapHostEvent translates a host event name plus tool name into the internal
// event. The second return is false when the translation degraded to a
// default (a protocol translation gap, logged but never fatal).
func MapHostEvent(hostEvent, toolName string) (entity.Event, bool) {
	switch hostEvent {
	case "PreToolUse":
		switch toolClasses[toolName] {
		case classFileWrite, classFileRead:
			return entity.EventPreEdit, true
		case classCommand:
			return entity.EventPreCommand, true
		case classTask:
			return entity.EventPreTask, true
		default:
			return entity.EventPreToolUse, true
		}
	case "PostToolUse":
		switch toolClasses[toolName] {
		case classFileWrite, classFileRead:
			return entity.EventPostEdit, true
		case classCommand:
			return entity.EventPostCommand, true
		case classTask:
			return entity.EventPostTask, true
		default:
			return entity.EventPostToolUse, true
		}
	}

	if ev, ok := hostEventMap[hostEvent]; ok {
		return ev, true
	}

	logger.Warn("[Bridge] no internal mapping for host event %q, degrading to %s",
		hostEvent, entity.EventPreToolUse)
	return entity.EventPreToolUse, false
}

// fileMode returns the FileOperation mode for a file-class tool.
func fileMode(toolName string) string {
	if toolClasses[toolName] == classFileRead {
		return "read"
	}
	return "write"
}

// decisionVerbs returns the (blocking, continuing) verb pair the host
// expects for a given host event. Permission-style pre-tool exchanges use
// allow/deny; everything else uses continue/block.
func decisionVerbs(hostEvent string) (blocking, continuing string) {
	if hostEvent == "PreToolUse" {
		return DecisionDeny, DecisionAllow
	}
	return DecisionBlock, DecisionContinue
}
