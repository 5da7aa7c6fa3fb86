package raft

import "raftkit/internal/metrics"

// updateMetrics refreshes the package-level gauges after every processed
// event. It is called synchronously from the actor's own goroutine rather
// than from a separate polling ticker, so no lock is needed around node
// state — a deliberate departure from a collector goroutine sampling
// Status() on an interval.
func (n *Node) updateMetrics() {
	metrics.RaftRole.Set(float64(n.role))
	metrics.RaftTerm.Set(float64(n.term))
	metrics.RaftCommitIndex.Set(float64(n.log.CommittedIndex()))
	metrics.RaftLastIndex.Set(float64(n.log.LastIndex()))
	metrics.RaftPeersTotal.Set(float64(len(n.config.Members())))
}
