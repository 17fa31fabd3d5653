package errno

import (
	"errors"
)

var (
	ErrAgentNotFound     = errors.New("agent not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrBroadcastNotFound = errors.New("pattern broadcast not found")
	ErrConsensusNotFound = errors.New("consensus request not found")
	ErrHandoffNotFound   = errors.New("handoff not found")

	ErrEmptySender       = errors.New("empty sender")
	ErrEmptyRecipient    = errors.New("empty recipient")
	ErrEmptyStrategy     = errors.New("empty pattern strategy")
	ErrEmptyQuestion     = errors.New("empty consensus question")
	ErrTooFewOptions     = errors.New("consensus needs at least two options")
	ErrUnknownOption     = errors.New("option not in consensus request")
	ErrInvalidTransition = errors.New("invalid handoff transition")
)
