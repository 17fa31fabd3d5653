package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
)

// AgentStore is an in-memory implementation of repo.AgentRepository.
type AgentStore struct {
	mu     sync.RWMutex
	agents map[string]*entity.Agent
}

// NewAgentStore creates a new AgentStore instance.
func NewAgentStore() *AgentStore {
	return &AgentStore{
		agents: make(map[string]*entity.Agent),
	}
}

// Upsert stores or replaces an agent record.
func (s *AgentStore) Upsert(_ context.Context, agent *entity.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *agent
	s.agents[agent.ID] = &clone
	return nil
}

// Get returns an agent by ID.
func (s *AgentStore) Get(_ context.Context, id string) (*entity.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[id]
	if !ok {
		return nil, errno.ErrAgentNotFound
	}
	clone := *agent
	return &clone, nil
}

// List returns all agent records, sorted by registration time.
func (s *AgentStore) List(_ context.Context) ([]*entity.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agents := make([]*entity.Agent, 0, len(s.agents))
	for _, agent := range s.agents {
		clone := *agent
		agents = append(agents, &clone)
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].RegisteredAt.Before(agents[j].RegisteredAt)
	})
	return agents, nil
}
