package raft

import "errors"

// Recoverable, local-only protocol conditions. None of these except
// ErrShuttingDown ever propagate past the handler that encounters them;
// ErrShuttingDown is returned to callers of Propose, ChangeConfiguration
// and Status once the node has stopped.
var (
	ErrStaleTerm          = errors.New("raft: message term is stale")
	ErrLogInconsistency   = errors.New("raft: append-entries consistency check failed")
	ErrDoubleVote         = errors.New("raft: already voted this term")
	ErrConfigRegression   = errors.New("raft: configuration entry is not newer than the current one")
	ErrNotLeader          = errors.New("raft: this node is not the leader")
	ErrShuttingDown       = errors.New("raft: node is shutting down")
)

// Fatal conditions: construction aborts and the node never starts.
var (
	ErrConfigurationInvariantViolation = errors.New("raft: invalid bootstrap configuration")
	ErrTimerMisconfigured              = errors.New("raft: heartbeat-interval must be less than election-timeout.min")
)
