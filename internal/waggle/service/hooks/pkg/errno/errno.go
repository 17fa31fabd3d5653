package errno

import (
	"errors"
)

var (
	ErrDuplicateEntry = errors.New("hook entry id already registered")
	ErrUnknownEvent   = errors.New("unknown hook event")
	ErrNilHandler     = errors.New("nil hook handler")
	ErrBadPattern     = errors.New("invalid tool-name pattern")
	ErrEntryNotFound  = errors.New("hook entry not found")
)
