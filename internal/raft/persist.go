package raft

import (
	"log/slog"

	"raftkit/internal/raft/wire"
)

// persistVoteAndTerm durably records the current term and vote before any
// reply that depends on them is sent, satisfying Election Safety even
// across a crash and restart. A nil persistence (single-process test
// harnesses) is a legal no-op.
func (n *Node) persistVoteAndTerm() {
	if n.persistence == nil {
		return
	}
	if err := n.persistence.PersistTerm(n.term); err != nil {
		slog.Error("raft: persisting term failed", "id", n.id, "term", n.term, "error", err)
	}
	if err := n.persistence.PersistVote(n.term, n.votedFor); err != nil {
		slog.Error("raft: persisting vote failed", "id", n.id, "term", n.term, "error", err)
	}
}

// persistAppend durably records a newly appended entry before any
// AppendSuccessful/VoteGranted reply that depends on it is sent.
func (n *Node) persistAppend(e wire.Entry) {
	if n.persistence == nil {
		return
	}
	if err := n.persistence.AppendEntry(wire.PersistedEntry{Index: e.Index, Term: e.Term, Command: e.Command, Client: e.Client}); err != nil {
		slog.Error("raft: persisting entry failed", "id", n.id, "index", e.Index, "error", err)
	}
}

// persistTruncate durably discards the persisted suffix after index,
// mirroring the in-memory log truncation a consistency-check failure
// triggers.
func (n *Node) persistTruncate(index uint64) {
	if n.persistence == nil {
		return
	}
	if err := n.persistence.TruncateAfter(index); err != nil {
		slog.Error("raft: persisting truncate failed", "id", n.id, "index", index, "error", err)
	}
}
