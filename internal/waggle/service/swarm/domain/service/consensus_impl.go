package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/pkg/errno"
	"github.com/ravenhall/waggle/pkg/logger"
)

// consensusImpl implements the ConsensusCoordinator interface.
type consensusImpl struct {
	bus           MessageBus
	consensusRepo repo.ConsensusRepository
	quorum        QuorumRule
	now           func() time.Time
}

func NewConsensusCoordinator(bus MessageBus, consensusRepo repo.ConsensusRepository, quorum QuorumRule) ConsensusCoordinator {
	if quorum == "" {
		quorum = QuorumAllActive
	}
	return &consensusImpl{
		bus:           bus,
		consensusRepo: consensusRepo,
		quorum:        quorum,
		now:           time.Now,
	}
}

func (s *consensusImpl) InitiateConsensus(ctx context.Context, initiator, question string, options []string, timeout time.Duration) (*entity.Consensus, error) {
	if question == "" {
		return nil, errno.ErrEmptyQuestion
	}
	if len(options) < 2 {
		return nil, errno.ErrTooFewOptions
	}
	if timeout <= 0 {
		timeout = DefaultConsensusTimeout
	}

	now := s.now()
	c := &entity.Consensus{
		ID:          uuid.NewString(),
		Question:    question,
		Options:     append([]string(nil), options...),
		Votes:       make(map[string]string),
		InitiatedBy: initiator,
		Deadline:    now.Add(timeout),
		Status:      entity.ConsensusPending,
		CreatedAt:   now,
	}
	if err := s.consensusRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to persist consensus request: %w", err)
	}

	announce := fmt.Sprintf("vote requested: %s [%s]", question, strings.Join(options, ", "))
	if _, err := s.bus.SendRef(ctx, initiator, entity.BroadcastRecipient, announce, entity.MessageConsensusVote, 1, c.ID); err != nil {
		logger.Warn("[Swarm] failed to announce consensus %s: %v", c.ID, err)
	}
	logger.Info("[Swarm] consensus %s opened by %s (deadline %s)", c.ID, initiator, c.Deadline.Format(time.RFC3339))
	return c, nil
}

func (s *consensusImpl) Vote(ctx context.Context, id, agent, choice string) (bool, error) {
	c, err := s.consensusRepo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	now := s.now()
	if s.resolveIfDue(ctx, c, now) {
		return false, nil
	}
	if !c.Open(now) {
		return false, nil
	}
	if !c.HasOption(choice) {
		return false, fmt.Errorf("%w: %q", errno.ErrUnknownOption, choice)
	}

	if c.Votes == nil {
		c.Votes = make(map[string]string)
	}
	c.Votes[agent] = choice

	if s.quorumMet(ctx, c) {
		c.Status = entity.ConsensusResolved
		c.Winner = c.PickWinner()
		logger.Info("[Swarm] consensus %s resolved by quorum: %s", c.ID, c.Winner)
	}
	if err := s.consensusRepo.Update(ctx, c); err != nil {
		return false, fmt.Errorf("failed to record vote: %w", err)
	}

	if _, err := s.bus.SendRef(ctx, agent, c.InitiatedBy, choice, entity.MessageConsensusVote, 0, c.ID); err != nil {
		logger.Warn("[Swarm] failed to deliver vote notice for %s: %v", c.ID, err)
	}
	return true, nil
}

func (s *consensusImpl) GetConsensus(ctx context.Context, id string) (*entity.Consensus, error) {
	c, err := s.consensusRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveIfDue(ctx, c, s.now())
	return c, nil
}

func (s *consensusImpl) GetPendingConsensus(ctx context.Context) ([]*entity.Consensus, error) {
	all, err := s.consensusRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var pending []*entity.Consensus
	for _, c := range all {
		if s.resolveIfDue(ctx, c, now) {
			continue
		}
		if c.Status == entity.ConsensusPending {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

// resolveIfDue closes a request whose deadline has passed and persists the
// outcome. Returns true when the request is no longer pending.
func (s *consensusImpl) resolveIfDue(ctx context.Context, c *entity.Consensus, now time.Time) bool {
	if c.Status != entity.ConsensusPending {
		return true
	}
	if now.Before(c.Deadline) {
		return false
	}
	if len(c.Votes) == 0 {
		c.Status = entity.ConsensusExpired
	} else {
		c.Status = entity.ConsensusResolved
		c.Winner = c.PickWinner()
	}
	if err := s.consensusRepo.Update(ctx, c); err != nil {
		logger.Warn("[Swarm] failed to persist resolution of consensus %s: %v", c.ID, err)
	}
	logger.Info("[Swarm] consensus %s closed at deadline (status=%s, winner=%q)", c.ID, c.Status, c.Winner)
	return true
}

// quorumMet checks the configured quorum rule against the active agent set.
func (s *consensusImpl) quorumMet(ctx context.Context, c *entity.Consensus) bool {
	agents, err := s.bus.GetAgents(ctx)
	if err != nil {
		logger.Warn("[Swarm] failed to list agents for quorum check: %v", err)
		return false
	}
	active := 0
	voted := 0
	for _, a := range agents {
		if !a.Active() {
			continue
		}
		active++
		if _, ok := c.Votes[a.ID]; ok {
			voted++
		}
	}
	if active == 0 {
		return false
	}
	switch s.quorum {
	case QuorumMajority:
		return voted > active/2
	default:
		return voted == active
	}
}
