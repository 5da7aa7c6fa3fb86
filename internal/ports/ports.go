// Package ports declares the seams between the core RoleStateMachine and
// its external collaborators:
// the message bus, the application state machine, and the persistence
// adapter. Concrete implementations live in internal/bus, internal/
// statemachine and internal/storage.
package ports

import "raftkit/internal/raft/wire"

// MessageBus delivers wire envelopes between named members. Delivery is
// best-effort, unordered, and may drop or duplicate — the core tolerates
// this through AppendEntries idempotence and at-most-one-vote-per-term
// voting.
type MessageBus interface {
	// Send delivers msg to the member named `to`. Errors are logged by the
	// caller and otherwise swallowed: a dropped send is indistinguishable
	// from a dropped network packet, which the protocol already tolerates.
	Send(to string, msg wire.Envelope) error
}

// Receiver is the inbound half of the bus contract: whatever wires a
// MessageBus implementation to a RaftNode registers one of these per
// member so inbound envelopes reach that node's mailbox.
type Receiver interface {
	Receive(from string, msg wire.Envelope)
}

// StateMachine is the capability the embedding application supplies:
// apply(command) -> reply. The core invokes Apply exactly once per
// committed user entry, in commit order, on its single logical thread of
// execution. It is never invoked for configuration entries.
type StateMachine interface {
	Apply(command any) (reply any, err error)
}

// Persistence is the adapter boundary for durable
// state; a purely in-memory implementation is valid. The core calls these
// synchronously from within its handler, so a slow adapter slows the node,
// but never corrupts it.
type Persistence interface {
	PersistVote(term uint64, votedFor string) error
	PersistTerm(term uint64) error
	AppendEntry(entry wire.PersistedEntry) error
	TruncateAfter(index uint64) error
	ReadAll() (term uint64, votedFor string, entries []wire.PersistedEntry, err error)
}
