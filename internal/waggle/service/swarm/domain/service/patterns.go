package service

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// PatternChannel propagates learned patterns across the swarm with
// acknowledgment tracking. It rides on the MessageBus: every broadcast also
// produces a bus message so polling agents notice it.
type PatternChannel interface {
	// BroadcastPattern shares a pattern with every agent.
	BroadcastPattern(ctx context.Context, from string, pattern entity.Pattern) (*entity.Broadcast, error)

	// GetPatternBroadcasts lists broadcasts matching the filter, newest
	// first.
	GetPatternBroadcasts(ctx context.Context, filter entity.BroadcastFilter) ([]*entity.Broadcast, error)

	// ImportBroadcastPattern copies a broadcast pattern into the local
	// learning store and acknowledges it. Idempotent: a repeat import by the
	// same agent returns false and changes nothing.
	ImportBroadcastPattern(ctx context.Context, id, agentID string) (bool, error)
}
