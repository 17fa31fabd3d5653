package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
)

// BroadcastStore is an in-memory implementation of repo.BroadcastRepository.
type BroadcastStore struct {
	mu         sync.RWMutex
	broadcasts map[string]*entity.Broadcast
}

// NewBroadcastStore creates a new BroadcastStore instance.
func NewBroadcastStore() *BroadcastStore {
	return &BroadcastStore{
		broadcasts: make(map[string]*entity.Broadcast),
	}
}

// Create stores a new broadcast.
func (s *BroadcastStore) Create(_ context.Context, bc *entity.Broadcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts[bc.ID] = cloneBroadcast(bc)
	return nil
}

// Get returns a broadcast by ID.
func (s *BroadcastStore) Get(_ context.Context, id string) (*entity.Broadcast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bc, ok := s.broadcasts[id]
	if !ok {
		return nil, errno.ErrBroadcastNotFound
	}
	return cloneBroadcast(bc), nil
}

// Update replaces an existing broadcast.
func (s *BroadcastStore) Update(_ context.Context, bc *entity.Broadcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.broadcasts[bc.ID]; !ok {
		return errno.ErrBroadcastNotFound
	}
	s.broadcasts[bc.ID] = cloneBroadcast(bc)
	return nil
}

// List returns broadcasts matching the filter, newest first.
func (s *BroadcastStore) List(_ context.Context, filter entity.BroadcastFilter) ([]*entity.Broadcast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var bcs []*entity.Broadcast
	for _, bc := range s.broadcasts {
		if filter.Domain != "" && bc.Pattern.Domain != filter.Domain {
			continue
		}
		if bc.Pattern.Quality < filter.MinQuality {
			continue
		}
		bcs = append(bcs, cloneBroadcast(bc))
	}
	sort.Slice(bcs, func(i, j int) bool {
		return bcs[i].CreatedAt.After(bcs[j].CreatedAt)
	})
	if filter.Limit > 0 && len(bcs) > filter.Limit {
		bcs = bcs[:filter.Limit]
	}
	return bcs, nil
}

func cloneBroadcast(bc *entity.Broadcast) *entity.Broadcast {
	clone := *bc
	clone.AckedBy = append([]string(nil), bc.AckedBy...)
	return &clone
}
