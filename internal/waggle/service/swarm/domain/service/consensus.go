package service

import (
	"context"
	"time"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// QuorumRule decides when a consensus request resolves before its deadline.
type QuorumRule string

const (
	// QuorumAllActive resolves once every active agent has voted.
	QuorumAllActive QuorumRule = "all-active"

	// QuorumMajority resolves once more than half the active agents voted.
	QuorumMajority QuorumRule = "majority"
)

// DefaultConsensusTimeout bounds voting when the caller gives no deadline.
const DefaultConsensusTimeout = 5 * time.Minute

// ConsensusCoordinator runs timed votes among swarm agents.
//
// Deadlines are evaluated lazily by whichever operation touches the request
// next; there is no background timer.
type ConsensusCoordinator interface {
	// InitiateConsensus opens a vote and announces it on the bus.
	InitiateConsensus(ctx context.Context, initiator, question string, options []string, timeout time.Duration) (*entity.Consensus, error)

	// Vote records an agent's choice. It returns false when the request is
	// already resolved or past its deadline, or the choice is not one of
	// the declared options. A re-vote before the deadline overwrites the
	// agent's earlier choice.
	Vote(ctx context.Context, id, agent, choice string) (bool, error)

	// GetConsensus retrieves a request, resolving it first if its deadline
	// has passed.
	GetConsensus(ctx context.Context, id string) (*entity.Consensus, error)

	// GetPendingConsensus lists requests still accepting votes.
	GetPendingConsensus(ctx context.Context) ([]*entity.Consensus, error)
}
