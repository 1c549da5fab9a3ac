package kernel

import "errors"

// Sentinel errors matching the kernel's flat, recoverable error
// taxonomy. Every kernel operation either succeeds and mutates state, or
// fails with one of these and leaves state unchanged.
var (
	ErrInvalidConfig  = errors.New("kernel: invalid config")
	ErrInvalidOrder   = errors.New("kernel: invalid order")
	ErrDuplicateID    = errors.New("kernel: duplicate order id")
	ErrOrderBookFull  = errors.New("kernel: order book full")
	ErrNotFound       = errors.New("kernel: order not found")
	ErrInvalidTick    = errors.New("kernel: invalid tick")
	ErrLengthMismatch = errors.New("kernel: batch arrays of differing lengths")
	ErrDestroyed      = errors.New("kernel: handle destroyed")
)
