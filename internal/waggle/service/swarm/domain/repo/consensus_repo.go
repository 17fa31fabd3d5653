package repo

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// ConsensusRepository defines the persistence interface for consensus
// requests.
type ConsensusRepository interface {
	// Create stores a new request.
	Create(ctx context.Context, c *entity.Consensus) error
	// Get retrieves a request by ID.
	Get(ctx context.Context, id string) (*entity.Consensus, error)
	// Update replaces a request (votes, resolution).
	Update(ctx context.Context, c *entity.Consensus) error
	// List returns all requests, newest first.
	List(ctx context.Context) ([]*entity.Consensus, error)
}
