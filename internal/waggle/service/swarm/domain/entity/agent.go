package entity

import (
	"time"
)

// AgentStatus is an agent's membership state in the swarm.
type AgentStatus string

const (
	// AgentActive means the agent is participating.
	AgentActive AgentStatus = "active"

	// AgentInactive means the agent has left or gone quiet. Records are
	// never deleted, only marked inactive.
	AgentInactive AgentStatus = "inactive"
)

// Agent is the swarm's record of one participating agent identity. Counters
// are updated as a side effect of bus activity.
type Agent struct {
	// ID is the agent identity used as message sender/recipient.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name,omitempty"`

	// Status is the membership state.
	Status AgentStatus `json:"status"`

	// PatternsShared counts pattern broadcasts originated by this agent.
	PatternsShared int `json:"patterns_shared"`

	// HandoffsReceived counts handoffs addressed to this agent.
	HandoffsReceived int `json:"handoffs_received"`

	// HandoffsCompleted counts handoffs this agent carried to completion.
	HandoffsCompleted int `json:"handoffs_completed"`

	// RegisteredAt is when the agent first joined.
	RegisteredAt time.Time `json:"registered_at"`

	// LastSeen is the last time the agent touched the bus.
	LastSeen time.Time `json:"last_seen"`
}

// Active reports whether the agent counts toward consensus quorums.
func (a *Agent) Active() bool {
	return a.Status == AgentActive
}
