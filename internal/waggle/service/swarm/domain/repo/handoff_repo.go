package repo

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// HandoffRepository defines the persistence interface for handoffs.
type HandoffRepository interface {
	// Create stores a new handoff.
	Create(ctx context.Context, h *entity.Handoff) error
	// Get retrieves a handoff by ID.
	Get(ctx context.Context, id string) (*entity.Handoff, error)
	// Update replaces a handoff (status transitions).
	Update(ctx context.Context, h *entity.Handoff) error
	// List returns all handoffs, newest first.
	List(ctx context.Context) ([]*entity.Handoff, error)
}
