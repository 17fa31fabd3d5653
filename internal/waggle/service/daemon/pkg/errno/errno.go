package errno

import (
	"errors"
)

var (
	ErrUnknownTrigger   = errors.New("unknown trigger type")
	ErrAtCapacity       = errors.New("dispatcher at capacity")
	ErrQueueFull        = errors.New("dispatcher queue full")
	ErrWorkerNotFound   = errors.New("worker not found")
	ErrDispatcherClosed = errors.New("dispatcher closed")
)
