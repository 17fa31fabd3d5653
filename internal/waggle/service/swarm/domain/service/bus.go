package service

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
)

// MessageBus is the durable agent-to-agent mail service.
//
// There is no live connection between agents: senders persist, recipients
// poll. Everything else in the swarm (patterns, consensus, handoffs) rides on
// top of it.
type MessageBus interface {
	// Send persists a message from one agent to another. The sender is
	// auto-registered and its heartbeat refreshed.
	Send(ctx context.Context, from, to, content string, typ entity.MessageType, priority int) (*entity.Message, error)

	// SendRef is Send with a coordination-entity reference attached.
	SendRef(ctx context.Context, from, to, content string, typ entity.MessageType, priority int, ref string) (*entity.Message, error)

	// Broadcast sends a generic message to every agent.
	Broadcast(ctx context.Context, from, content string) (*entity.Message, error)

	// GetMessages lists messages matching the filter, newest first.
	GetMessages(ctx context.Context, filter repo.MessageFilter) ([]*entity.Message, error)

	// MarkRead flags a message as seen by its recipient.
	MarkRead(ctx context.Context, id string) error

	// RegisterAgent adds an agent identity to the swarm, or refreshes it if
	// already known.
	RegisterAgent(ctx context.Context, id, name string) (*entity.Agent, error)

	// GetAgent retrieves one agent record.
	GetAgent(ctx context.Context, id string) (*entity.Agent, error)

	// GetAgents lists all agent records.
	GetAgents(ctx context.Context) ([]*entity.Agent, error)

	// UpdateAgent replaces an agent record (counter bumps, status changes).
	UpdateAgent(ctx context.Context, agent *entity.Agent) error
}
