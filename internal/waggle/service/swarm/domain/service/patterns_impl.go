package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/pkg/logger"
)

// patternChannelImpl implements the PatternChannel interface.
type patternChannelImpl struct {
	bus           MessageBus
	broadcastRepo repo.BroadcastRepository
	patterns      learning.Store // may be nil when no local learning store is wired
}

func NewPatternChannel(bus MessageBus, broadcastRepo repo.BroadcastRepository, patterns learning.Store) PatternChannel {
	return &patternChannelImpl{
		bus:           bus,
		broadcastRepo: broadcastRepo,
		patterns:      patterns,
	}
}

func (p *patternChannelImpl) BroadcastPattern(ctx context.Context, from string, pattern entity.Pattern) (*entity.Broadcast, error) {
	if pattern.Strategy == "" {
		return nil, errno.ErrEmptyStrategy
	}
	if pattern.Quality < 0 {
		pattern.Quality = 0
	}
	if pattern.Quality > 1 {
		pattern.Quality = 1
	}

	bc := &entity.Broadcast{
		ID:      uuid.NewString(),
		From:    from,
		Pattern: pattern,
	}
	msg, err := p.bus.SendRef(ctx, from, entity.BroadcastRecipient, pattern.Strategy, entity.MessagePattern, 0, bc.ID)
	if err != nil {
		return nil, err
	}
	bc.MessageID = msg.ID
	bc.CreatedAt = msg.CreatedAt

	if err := p.broadcastRepo.Create(ctx, bc); err != nil {
		return nil, fmt.Errorf("failed to persist broadcast: %w", err)
	}
	p.bumpPatternsShared(ctx, from)
	logger.Info("[Swarm] pattern broadcast %s from %s (domain=%s, quality=%.2f)",
		bc.ID, from, pattern.Domain, pattern.Quality)
	return bc, nil
}

func (p *patternChannelImpl) GetPatternBroadcasts(ctx context.Context, filter entity.BroadcastFilter) ([]*entity.Broadcast, error) {
	return p.broadcastRepo.List(ctx, filter)
}

func (p *patternChannelImpl) ImportBroadcastPattern(ctx context.Context, id, agentID string) (bool, error) {
	bc, err := p.broadcastRepo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !bc.Ack(agentID) {
		logger.Debug("[Swarm] broadcast %s already imported by %s", id, agentID)
		return false, nil
	}
	if err := p.broadcastRepo.Update(ctx, bc); err != nil {
		return false, fmt.Errorf("failed to record acknowledgment: %w", err)
	}
	if p.patterns != nil {
		// Keyed by broadcast ID so re-imports overwrite instead of
		// duplicating.
		err := p.patterns.Save(ctx, &learning.Pattern{
			ID:        bc.ID,
			Strategy:  bc.Pattern.Strategy,
			Domain:    bc.Pattern.Domain,
			Quality:   bc.Pattern.Quality,
			CreatedAt: bc.CreatedAt,
		})
		if err != nil {
			logger.Warn("[Swarm] failed to store imported pattern %s: %v", bc.ID, err)
		}
	}
	logger.Info("[Swarm] broadcast %s imported by %s (%d acks)", id, agentID, len(bc.AckedBy))
	return true, nil
}

func (p *patternChannelImpl) bumpPatternsShared(ctx context.Context, agentID string) {
	agent, err := p.bus.GetAgent(ctx, agentID)
	if err != nil {
		return
	}
	agent.PatternsShared++
	if err := p.bus.UpdateAgent(ctx, agent); err != nil {
		logger.Warn("[Swarm] failed to bump pattern counter for %s: %v", agentID, err)
	}
}
