package simulation

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned before a run starts when its inputs cannot
	// drive a simulation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvariantViolation aborts a run when a strategy leaves the block tree
	// or its own state inconsistent.
	ErrInvariantViolation = errors.New("invariant violation")
	ErrUnknownKind        = errors.New("unknown miner kind")
)
