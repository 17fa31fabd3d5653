package repo

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// MessageFilter narrows message listings.
type MessageFilter struct {
	// Agent selects the recipient view (direct messages plus broadcasts)
	// when non-empty.
	Agent string

	// From restricts to one sender when non-empty.
	From string

	// Type restricts to one message type when non-empty.
	Type entity.MessageType

	// UnreadOnly drops already-read messages.
	UnreadOnly bool

	// Limit bounds the result count; 0 means no limit.
	Limit int
}

// MessageRepository defines the persistence interface for swarm messages.
// Messages are append-only; the only mutation is the read marker.
type MessageRepository interface {
	// Create stores a new message.
	Create(ctx context.Context, msg *entity.Message) error
	// Get retrieves a message by ID.
	Get(ctx context.Context, id string) (*entity.Message, error)
	// List returns messages matching the filter, newest first.
	List(ctx context.Context, filter MessageFilter) ([]*entity.Message, error)
	// MarkRead flags a message as read.
	MarkRead(ctx context.Context, id string) error
}
