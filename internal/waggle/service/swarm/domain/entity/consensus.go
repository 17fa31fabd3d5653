package entity

import (
	"time"
)

// ConsensusStatus is the lifecycle state of a consensus request.
type ConsensusStatus string

const (
	// ConsensusPending means voting is open.
	ConsensusPending ConsensusStatus = "pending"

	// ConsensusResolved means a winner was picked (quorum or deadline).
	ConsensusResolved ConsensusStatus = "resolved"

	// ConsensusExpired means the deadline passed with no votes at all.
	ConsensusExpired ConsensusStatus = "expired"
)

// Consensus is a timed multi-agent vote over a fixed option list.
//
// Deadlines are evaluated lazily: a request past its deadline is resolved by
// the next operation that touches it, using the local process clock. That is
// an accepted limitation for advisory coordination; no distributed clock is
// assumed.
type Consensus struct {
	// ID is the request identifier.
	ID string `json:"id"`

	// Question is what the swarm is deciding.
	Question string `json:"question"`

	// Options is the ordered list of choices. Order matters: ties resolve
	// to the earliest-declared option.
	Options []string `json:"options"`

	// Votes maps agent identity to chosen option. An agent re-voting
	// before the deadline overwrites its earlier choice.
	Votes map[string]string `json:"votes,omitempty"`

	// InitiatedBy is the proposing agent.
	InitiatedBy string `json:"initiated_by,omitempty"`

	// Deadline closes voting.
	Deadline time.Time `json:"deadline"`

	// Status is the lifecycle state.
	Status ConsensusStatus `json:"status"`

	// Winner is the chosen option once Status is resolved.
	Winner string `json:"winner,omitempty"`

	// CreatedAt is when voting opened.
	CreatedAt time.Time `json:"created_at"`
}

// HasOption reports whether choice is one of the declared options.
func (c *Consensus) HasOption(choice string) bool {
	for _, opt := range c.Options {
		if opt == choice {
			return true
		}
	}
	return false
}

// Open reports whether the request still accepts votes at the given time.
func (c *Consensus) Open(now time.Time) bool {
	return c.Status == ConsensusPending && now.Before(c.Deadline)
}

// Tally counts votes per option.
func (c *Consensus) Tally() map[string]int {
	tally := make(map[string]int, len(c.Options))
	for _, choice := range c.Votes {
		tally[choice]++
	}
	return tally
}

// PickWinner returns the most-voted option. Ties break toward the option
// declared first; with no votes at all it returns "".
func (c *Consensus) PickWinner() string {
	tally := c.Tally()
	winner := ""
	best := 0
	for _, opt := range c.Options {
		if n := tally[opt]; n > best {
			winner = opt
			best = n
		}
	}
	return winner
}
