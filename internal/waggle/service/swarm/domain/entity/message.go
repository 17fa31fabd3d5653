package entity

import (
	"time"
)

// MessageType classifies a swarm message.
type MessageType string

const (
	// MessageContext shares working context between agents.
	MessageContext MessageType = "context"

	// MessagePattern announces a learned pattern (see Broadcast).
	MessagePattern MessageType = "pattern"

	// MessageConsensusVote carries a vote on a consensus request.
	MessageConsensusVote MessageType = "consensus_vote"

	// MessageHandoff carries a task-handoff notification.
	MessageHandoff MessageType = "handoff"

	// MessageGeneric is free-form agent-to-agent mail.
	MessageGeneric MessageType = "generic"
)

// BroadcastRecipient is the wildcard recipient meaning "every agent".
const BroadcastRecipient = "*"

// Message is one unit of agent-to-agent mail. Messages are append-only:
// created on send, never mutated afterwards except for the read marker.
//
// There is no live connection between agents; recipients poll the store, so
// the ordering guarantee is insertion order per recipient view, not a global
// total order across senders.
type Message struct {
	// ID is the unique message identifier.
	ID string `json:"id"`

	// From is the sending agent identity.
	From string `json:"from"`

	// To is the recipient identity, or BroadcastRecipient.
	To string `json:"to"`

	// Content is the message body.
	Content string `json:"content"`

	// Type classifies the message.
	Type MessageType `json:"type"`

	// Priority orders competing messages for a recipient; higher first.
	Priority int `json:"priority,omitempty"`

	// Read marks that the recipient has seen the message.
	Read bool `json:"read,omitempty"`

	// Ref links the message to a coordination entity (broadcast id,
	// consensus id, handoff id) when the type calls for one.
	Ref string `json:"ref,omitempty"`

	// CreatedAt is when the message was sent.
	CreatedAt time.Time `json:"created_at"`
}

// Broadcast reports whether the message is addressed to every agent.
func (m *Message) Broadcast() bool {
	return m.To == BroadcastRecipient
}

// VisibleTo reports whether the message belongs in agentID's view.
func (m *Message) VisibleTo(agentID string) bool {
	return m.To == agentID || m.Broadcast()
}
