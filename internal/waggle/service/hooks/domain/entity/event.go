package entity

// Event identifies a lifecycle moment that handlers can subscribe to.
//
// The internal vocabulary is deliberately wider than the host protocol's:
// the bridge disambiguates the host's generic tool events into file, command
// and task events using the tool name.
type Event string

const (
	// EventPreToolUse fires before any tool invocation that has no more
	// specific event below.
	EventPreToolUse Event = "pre_tool_use"

	// EventPostToolUse fires after a generic tool invocation completes.
	EventPostToolUse Event = "post_tool_use"

	// EventPreEdit fires before a file is created or modified.
	EventPreEdit Event = "pre_edit"

	// EventPostEdit fires after a file edit completes.
	EventPostEdit Event = "post_edit"

	// EventPreCommand fires before a shell command runs.
	EventPreCommand Event = "pre_command"

	// EventPostCommand fires after a shell command exits.
	EventPostCommand Event = "post_command"

	// EventPreTask fires before a task is delegated to an agent.
	EventPreTask Event = "pre_task"

	// EventPostTask fires after a delegated task completes.
	EventPostTask Event = "post_task"

	// EventSessionStart fires when an agent session begins.
	EventSessionStart Event = "session_start"

	// EventSessionEnd fires when an agent session ends.
	EventSessionEnd Event = "session_end"

	// EventAgentSpawn fires when a new agent joins the swarm.
	EventAgentSpawn Event = "agent_spawn"

	// EventAgentTerminate fires when an agent leaves the swarm.
	EventAgentTerminate Event = "agent_terminate"

	// EventRoutingDecision fires when a task-routing choice is made.
	EventRoutingDecision Event = "routing_decision"

	// EventPatternLearned fires when a new pattern is recorded.
	EventPatternLearned Event = "pattern_learned"
)

// Valid reports whether e is a known event.
func (e Event) Valid() bool {
	switch e {
	case EventPreToolUse, EventPostToolUse,
		EventPreEdit, EventPostEdit,
		EventPreCommand, EventPostCommand,
		EventPreTask, EventPostTask,
		EventSessionStart, EventSessionEnd,
		EventAgentSpawn, EventAgentTerminate,
		EventRoutingDecision, EventPatternLearned:
		return true
	}
	return false
}
