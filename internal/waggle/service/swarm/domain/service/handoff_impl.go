package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/pkg/logger"
)

// handoffImpl implements the HandoffCoordinator interface.
type handoffImpl struct {
	bus         MessageBus
	handoffRepo repo.HandoffRepository
	now         func() time.Time
}

func NewHandoffCoordinator(bus MessageBus, handoffRepo repo.HandoffRepository) HandoffCoordinator {
	return &handoffImpl{
		bus:         bus,
		handoffRepo: handoffRepo,
		now:         time.Now,
	}
}

func (s *handoffImpl) InitiateHandoff(ctx context.Context, from, to, description string, hctx entity.HandoffContext) (*entity.Handoff, error) {
	if from == "" {
		return nil, errno.ErrEmptySender
	}
	if to == "" {
		return nil, errno.ErrEmptyRecipient
	}

	now := s.now()
	h := &entity.Handoff{
		ID:          uuid.NewString(),
		From:        from,
		To:          to,
		Description: description,
		Status:      entity.HandoffInitiated,
		Context:     hctx,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.handoffRepo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to persist handoff: %w", err)
	}

	notice := fmt.Sprintf("handoff offered: %s", description)
	if _, err := s.bus.SendRef(ctx, from, to, notice, entity.MessageHandoff, 1, h.ID); err != nil {
		logger.Warn("[Swarm] failed to notify %s of handoff %s: %v", to, h.ID, err)
	}
	s.bumpCounter(ctx, to, func(a *entity.Agent) { a.HandoffsReceived++ })
	logger.Info("[Swarm] handoff %s initiated from %s to %s", h.ID, from, to)
	return h, nil
}

func (s *handoffImpl) AcceptHandoff(ctx context.Context, id, agent string) (bool, error) {
	return s.transition(ctx, id, agent, entity.HandoffAccepted, nil)
}

func (s *handoffImpl) CompleteHandoff(ctx context.Context, id, agent string, result map[string]interface{}) (bool, error) {
	ok, err := s.transition(ctx, id, agent, entity.HandoffCompleted, result)
	if ok {
		s.bumpCounter(ctx, agent, func(a *entity.Agent) { a.HandoffsCompleted++ })
	}
	return ok, err
}

func (s *handoffImpl) RejectHandoff(ctx context.Context, id, agent string) (bool, error) {
	return s.transition(ctx, id, agent, entity.HandoffRejected, nil)
}

func (s *handoffImpl) GetHandoff(ctx context.Context, id string) (*entity.Handoff, error) {
	return s.handoffRepo.Get(ctx, id)
}

func (s *handoffImpl) GetPendingHandoffs(ctx context.Context, agent string) ([]*entity.Handoff, error) {
	all, err := s.handoffRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	var pending []*entity.Handoff
	for _, h := range all {
		if h.To == agent && h.Pending() {
			pending = append(pending, h)
		}
	}
	return pending, nil
}

func (s *handoffImpl) ListHandoffs(ctx context.Context) ([]*entity.Handoff, error) {
	return s.handoffRepo.List(ctx)
}

// transition applies one state-machine step. A refused step returns false
// with no error and leaves the record untouched.
func (s *handoffImpl) transition(ctx context.Context, id, agent string, to entity.HandoffStatus, result map[string]interface{}) (bool, error) {
	h, err := s.handoffRepo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !entity.NextHandoffStatus(h.Status, to) {
		logger.Warn("[Swarm] handoff %s refused transition %s -> %s", id, h.Status, to)
		return false, nil
	}

	h.Status = to
	h.UpdatedAt = s.now()
	if result != nil {
		h.Result = result
	}
	if err := s.handoffRepo.Update(ctx, h); err != nil {
		return false, fmt.Errorf("failed to persist handoff transition: %w", err)
	}

	counterpart := h.From
	if agent == h.From {
		counterpart = h.To
	}
	notice := fmt.Sprintf("handoff %s", to)
	if _, err := s.bus.SendRef(ctx, agent, counterpart, notice, entity.MessageHandoff, 0, h.ID); err != nil {
		logger.Warn("[Swarm] failed to notify %s of handoff %s transition: %v", counterpart, id, err)
	}
	logger.Info("[Swarm] handoff %s moved to %s by %s", id, to, agent)
	return true, nil
}

func (s *handoffImpl) bumpCounter(ctx context.Context, agentID string, bump func(*entity.Agent)) {
	agent, err := s.bus.GetAgent(ctx, agentID)
	if err != nil {
		return
	}
	bump(agent)
	if err := s.bus.UpdateAgent(ctx, agent); err != nil {
		logger.Warn("[Swarm] failed to update counters for %s: %v", agentID, err)
	}
}
