package raft

import (
	"log/slog"

	"raftkit/internal/logindex"
	"raftkit/internal/metrics"
	"raftkit/internal/testevents"
)

// handleElectionTimeout fires on both the initial follower timeout and a
// split-vote candidate timeout; a leader's timer is stopped on entry to
// Leader, so this should only ever observe Follower or Candidate, but a
// Leader firing is ignored defensively rather than treated as fatal. A node
// that is not a member of its own effective configuration (one removed by
// a committed membership change) re-arms its timer without campaigning.
func (n *Node) handleElectionTimeout() {
	if n.role == Leader {
		return
	}
	if !memberOf(n.config.Members(), n.id) {
		n.electionTimer.Reset()
		return
	}
	n.startElection()
}

// becomeFollower transitions to Follower without changing term: used when
// AppendEntries arrives from a same-term leader while this node was
// Candidate, and when a leader steps down after a committed configuration
// excludes it.
func (n *Node) becomeFollower(leader string) {
	wasLeader := n.role == Leader
	n.role = Follower
	n.votesGranted = nil
	if wasLeader {
		n.exitLeader()
	}
	if leader != "" {
		n.lastKnownLeader = leader
	}
	n.electionTimer.Reset()
}

// startElection implements the Candidate-entry actions: increment term,
// vote for self, persist, broadcast RequestVote to every peer in the
// current configuration, and arm a fresh randomized timeout.
func (n *Node) startElection() {
	n.role = Candidate
	n.term++
	n.votedFor = n.id
	n.votesGranted = map[string]struct{}{n.id: {}}
	n.persistVoteAndTerm()
	n.electionTimer.Reset()
	metrics.RaftElectionsStarted.Inc()
	n.events.Publish(testevents.Event{Kind: testevents.BeginElection, Term: n.term})

	lastIndex := n.log.LastIndex()
	lastTerm := n.log.LastTerm()
	for _, peer := range n.config.Members() {
		if peer == n.id {
			continue
		}
		n.send(peer, envelopeRequestVote(n.id, peer, n.term, lastIndex, lastTerm))
	}

	if n.hasQuorum() {
		// Solitary cluster of one: self-vote alone is already a majority.
		n.becomeLeader()
	}
}

func (n *Node) hasQuorum() bool {
	acked := make(map[string]struct{}, len(n.votesGranted))
	for v := range n.votesGranted {
		acked[v] = struct{}{}
	}
	return n.config.HasQuorum(acked)
}

// becomeLeader implements the Leader-entry actions: reset replication
// progress optimistically to lastIndex+1/0, send an immediate empty
// AppendEntries round to assert authority, and arm the heartbeat ticker.
// The election timer is stopped — a leader never times out itself.
func (n *Node) becomeLeader() {
	n.role = Leader
	n.lastKnownLeader = n.id
	n.votesGranted = nil
	n.electionTimer.Stop()

	n.nextIndex = logindex.New()
	n.matchIndex = logindex.New()
	last := n.log.LastIndex()
	for _, peer := range n.config.Members() {
		if peer == n.id {
			continue
		}
		n.nextIndex.Put(peer, last+1)
		n.matchIndex.Put(peer, 0)
	}
	n.matchIndex.Put(n.id, last)

	metrics.RaftElectionsWon.Inc()
	n.events.Publish(testevents.Event{Kind: testevents.ElectedAsLeader, Term: n.term})
	slog.Info("raft: elected leader", "id", n.id, "term", n.term)

	n.heartbeatTicker = newHeartbeatTicker(n.cfg.HeartbeatInterval)
	n.replicateToAllPeers()
}

// exitLeader discards leader-only state and stops the heartbeat ticker
// when stepping down, whether forced by a higher term or a committed
// configuration that excludes this node.
func (n *Node) exitLeader() {
	if n.heartbeatTicker != nil {
		n.heartbeatTicker.Stop()
		n.heartbeatTicker = nil
	}
	n.nextIndex = nil
	n.matchIndex = nil
	n.pendingStepDown = false
	n.electionTimer.Reset()
}
