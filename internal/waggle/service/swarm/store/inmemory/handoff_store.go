package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
)

// HandoffStore is an in-memory implementation of repo.HandoffRepository.
type HandoffStore struct {
	mu       sync.RWMutex
	handoffs map[string]*entity.Handoff
}

// NewHandoffStore creates a new HandoffStore instance.
func NewHandoffStore() *HandoffStore {
	return &HandoffStore{
		handoffs: make(map[string]*entity.Handoff),
	}
}

// Create stores a new handoff.
func (s *HandoffStore) Create(_ context.Context, h *entity.Handoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handoffs[h.ID] = cloneHandoff(h)
	return nil
}

// Get returns a handoff by ID.
func (s *HandoffStore) Get(_ context.Context, id string) (*entity.Handoff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handoffs[id]
	if !ok {
		return nil, errno.ErrHandoffNotFound
	}
	return cloneHandoff(h), nil
}

// Update replaces an existing handoff.
func (s *HandoffStore) Update(_ context.Context, h *entity.Handoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handoffs[h.ID]; !ok {
		return errno.ErrHandoffNotFound
	}
	s.handoffs[h.ID] = cloneHandoff(h)
	return nil
}

// List returns all handoffs, newest first.
func (s *HandoffStore) List(_ context.Context) ([]*entity.Handoff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hs := make([]*entity.Handoff, 0, len(s.handoffs))
	for _, h := range s.handoffs {
		hs = append(hs, cloneHandoff(h))
	}
	sort.Slice(hs, func(i, j int) bool {
		return hs[i].CreatedAt.After(hs[j].CreatedAt)
	})
	return hs, nil
}

func cloneHandoff(h *entity.Handoff) *entity.Handoff {
	clone := *h
	clone.Context.ModifiedFiles = append([]string(nil), h.Context.ModifiedFiles...)
	clone.Context.PatternsUsed = append([]string(nil), h.Context.PatternsUsed...)
	clone.Context.Decisions = append([]string(nil), h.Context.Decisions...)
	clone.Context.Blockers = append([]string(nil), h.Context.Blockers...)
	clone.Context.NextSteps = append([]string(nil), h.Context.NextSteps...)
	if h.Result != nil {
		clone.Result = make(map[string]interface{}, len(h.Result))
		for k, v := range h.Result {
			clone.Result[k] = v
		}
	}
	return &clone
}
