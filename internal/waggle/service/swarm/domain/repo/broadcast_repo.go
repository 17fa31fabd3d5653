package repo

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// BroadcastRepository defines the persistence interface for pattern
// broadcasts.
type BroadcastRepository interface {
	// Create stores a new broadcast.
	Create(ctx context.Context, b *entity.Broadcast) error
	// Get retrieves a broadcast by ID.
	Get(ctx context.Context, id string) (*entity.Broadcast, error)
	// Update replaces a broadcast (acknowledgment growth only).
	Update(ctx context.Context, b *entity.Broadcast) error
	// List returns broadcasts matching the filter, newest first.
	List(ctx context.Context, filter entity.BroadcastFilter) ([]*entity.Broadcast, error)
}
