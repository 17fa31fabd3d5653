package service

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/repo"
)

// Stats is a point-in-time summary of swarm activity.
type Stats struct {
	Agents           int             `json:"agents"`
	ActiveAgents     int             `json:"active_agents"`
	Messages         int             `json:"messages"`
	UnreadMessages   int             `json:"unread_messages"`
	Broadcasts       int             `json:"broadcasts"`
	PendingConsensus int             `json:"pending_consensus"`
	PendingHandoffs  int             `json:"pending_handoffs"`
	PerAgent         []*entity.Agent `json:"per_agent,omitempty"`
}

// StatsCollector aggregates counters across all swarm stores.
type StatsCollector struct {
	messageRepo   repo.MessageRepository
	agentRepo     repo.AgentRepository
	broadcastRepo repo.BroadcastRepository
	consensusRepo repo.ConsensusRepository
	handoffRepo   repo.HandoffRepository
}

func NewStatsCollector(
	messageRepo repo.MessageRepository,
	agentRepo repo.AgentRepository,
	broadcastRepo repo.BroadcastRepository,
	consensusRepo repo.ConsensusRepository,
	handoffRepo repo.HandoffRepository,
) *StatsCollector {
	return &StatsCollector{
		messageRepo:   messageRepo,
		agentRepo:     agentRepo,
		broadcastRepo: broadcastRepo,
		consensusRepo: consensusRepo,
		handoffRepo:   handoffRepo,
	}
}

// Collect walks every store once. Counts are advisory snapshots, not a
// transaction.
func (s *StatsCollector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	agents, err := s.agentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats.Agents = len(agents)
	for _, a := range agents {
		if a.Active() {
			stats.ActiveAgents++
		}
	}
	stats.PerAgent = agents

	msgs, err := s.messageRepo.List(ctx, repo.MessageFilter{})
	if err != nil {
		return nil, err
	}
	stats.Messages = len(msgs)
	for _, m := range msgs {
		if !m.Read {
			stats.UnreadMessages++
		}
	}

	bcs, err := s.broadcastRepo.List(ctx, entity.BroadcastFilter{})
	if err != nil {
		return nil, err
	}
	stats.Broadcasts = len(bcs)

	cs, err := s.consensusRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cs {
		if c.Status == entity.ConsensusPending {
			stats.PendingConsensus++
		}
	}

	hs, err := s.handoffRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range hs {
		if h.Pending() {
			stats.PendingHandoffs++
		}
	}
	return stats, nil
}
