package service

import (
	"context"

	"github.com/ravenhall/waggle/internal/waggle/service/swarm/domain/entity"
)

// HandoffCoordinator transfers in-flight tasks between two agents through a
// small monotonic state machine.
//
// Transitions return false, not an error, when the store shows the handoff
// already moved on. Two agents racing the same transition are expected; the
// loser treats false as "someone else already moved it".
type HandoffCoordinator interface {
	// InitiateHandoff proposes a transfer and notifies the recipient.
	InitiateHandoff(ctx context.Context, from, to, description string, hctx entity.HandoffContext) (*entity.Handoff, error)

	// AcceptHandoff moves an initiated handoff to accepted.
	AcceptHandoff(ctx context.Context, id, agent string) (bool, error)

	// CompleteHandoff moves an accepted handoff to completed with an
	// optional result payload.
	CompleteHandoff(ctx context.Context, id, agent string, result map[string]interface{}) (bool, error)

	// RejectHandoff declines an initiated or accepted handoff.
	RejectHandoff(ctx context.Context, id, agent string) (bool, error)

	// GetHandoff retrieves one handoff.
	GetHandoff(ctx context.Context, id string) (*entity.Handoff, error)

	// GetPendingHandoffs lists handoffs awaiting action by the given agent
	// as recipient.
	GetPendingHandoffs(ctx context.Context, agent string) ([]*entity.Handoff, error)

	// ListHandoffs lists every handoff, newest first.
	ListHandoffs(ctx context.Context) ([]*entity.Handoff, error)
}
