package raft

import (
	"raftkit/internal/metrics"
	"raftkit/internal/raft/wire"
	"raftkit/internal/testevents"
)

// applyCommitted applies every newly committed entry to the application
// state machine, in order, exactly once (State Machine Safety). Entries
// that encode a configuration change are never handed to the application
// — they exist purely to drive membership.
func (n *Node) applyCommitted() {
	for _, e := range n.log.Between(n.lastApplied, n.log.CommittedIndex()) {
		n.lastApplied = e.Index
		metrics.RaftEntriesCommitted.Inc()
		n.events.Publish(testevents.Event{Kind: testevents.EntryCommitted, Term: n.term, Index: e.Index})

		if isConfigurationCommand(e.Command) {
			continue
		}
		if n.sm == nil {
			continue
		}

		reply, err := n.sm.Apply(e.Command)
		if e.Client == "" {
			continue
		}
		msg := wire.CommandApplied{Index: e.Index, Reply: reply}
		if err != nil {
			msg.Err = err.Error()
		}
		n.send(e.Client, wire.Envelope{From: n.id, To: e.Client, CommandApplied: &msg})
	}
}

