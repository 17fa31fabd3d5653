package repo

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// AgentRepository defines the persistence interface for agent records.
// Records are never deleted, only marked inactive.
type AgentRepository interface {
	// Upsert stores or replaces an agent record.
	Upsert(ctx context.Context, agent *entity.Agent) error
	// Get retrieves an agent by ID.
	Get(ctx context.Context, id string) (*entity.Agent, error)
	// List returns all agent records.
	List(ctx context.Context) ([]*entity.Agent, error)
}
