package raft

import (
	"raftkit/internal/clusterconfig"
	"raftkit/internal/raftlog"
	"raftkit/internal/raft/wire"
)

const defaultBatchSize = 64

// handleClientCommand appends command to the log when this node is
// leader, or redirects the client toward the last known leader otherwise
// — redirect with a hint rather than silently drop.
func (n *Node) handleClientCommand(client string, command any) {
	if n.role != Leader {
		if client != "" {
			n.send(client, wire.Envelope{From: n.id, To: client, ClientRedirect: &wire.ClientRedirect{LeaderHint: n.lastKnownLeader}})
		}
		return
	}
	n.appendAsLeader(client, command)
}

func (n *Node) appendAsLeader(client string, command any) {
	entry := raftlog.Entry{Index: n.log.LastIndex() + 1, Term: n.term, Command: command, Client: client}
	n.log.Append(entry)
	n.persistAppend(wire.Entry{Index: entry.Index, Term: entry.Term, Command: entry.Command, Client: entry.Client})
	n.adoptConfigurationAtAppend(entry.Index, entry.Command)
	n.matchIndex.Put(n.id, entry.Index)
	n.replicateToAllPeers()
	n.maybeAdvanceCommit()
}

// proposeConfigurationChange drives a live membership change by first
// appending a JointConsensusClusterConfiguration entry spanning the old
// and target membership, deferring the closing StableClusterConfiguration
// entry until the joint entry commits (see maybeCompleteJointConsensusOrStepDown).
func (n *Node) proposeConfigurationChange(members []string) {
	if n.role != Leader || n.config.IsJoint() {
		return
	}
	joint := clusterconfig.NextJoint(n.config, members)
	n.appendAsLeader("", JointConsensusClusterConfiguration{Old: joint.Old(), New: joint.New()})
}

// handleHeartbeatTick is the Leader-only periodic replication trigger.
func (n *Node) handleHeartbeatTick() {
	if n.role != Leader {
		return
	}
	n.replicateToAllPeers()
}

func (n *Node) replicateToAllPeers() {
	for _, peer := range n.config.Members() {
		if peer == n.id {
			continue
		}
		n.replicateTo(peer)
	}
}

func (n *Node) replicateTo(peer string) {
	next := n.nextIndex.ValueFor(peer)
	if next == 0 {
		next = 1
	}
	prevIndex := next - 1
	prevTerm := n.log.TermAt(prevIndex)
	entries := n.log.EntriesFrom(next, batchSizeOrDefault(n.cfg.DefaultAppendEntriesBatchSize))

	wireEntries := make([]wire.Entry, len(entries))
	for i, e := range entries {
		wireEntries[i] = wire.Entry{Index: e.Index, Term: e.Term, Command: e.Command, Client: e.Client}
	}

	n.send(peer, wire.Envelope{
		From: n.id,
		To:   peer,
		AppendEntries: &wire.AppendEntries{
			Term:         n.term,
			LeaderId:     n.id,
			PrevLogIndex: prevIndex,
			PrevLogTerm:  prevTerm,
			Entries:      wireEntries,
			LeaderCommit: n.log.CommittedIndex(),
		},
	})
}

func batchSizeOrDefault(n int) int {
	if n <= 0 {
		return defaultBatchSize
	}
	return n
}

// handleAppendSuccessful advances nextIndex/matchIndex for the replying
// peer — keyed by the message's actual sender, not by an assumed single
// "the follower" — and recomputes the commit index.
func (n *Node) handleAppendSuccessful(from string, msg wire.AppendSuccessful) {
	if n.role != Leader || msg.Term != n.term {
		return
	}
	n.matchIndex.PutIfGreater(from, msg.MatchIndex)
	n.nextIndex.Put(from, msg.MatchIndex+1)
	n.maybeAdvanceCommit()
}

// handleAppendRejected backs nextIndex off for the replying peer and
// retries immediately with an earlier PrevLogIndex: the peer's reported
// LastIndex+1, or one below the current nextIndex when that is not lower,
// never below 1. Every rejection at the current term lowers nextIndex this
// way, including a late or duplicate one that arrives after an
// AppendSuccessful has already advanced it; the next success moves it
// forward again.
func (n *Node) handleAppendRejected(from string, msg wire.AppendRejected) {
	if n.role != Leader || msg.Term != n.term {
		return
	}
	target := msg.LastIndex + 1
	if target == 0 {
		target = 1
	}
	if current := n.nextIndex.ValueFor(from); current > 0 && target >= current {
		target = current - 1
		if target == 0 {
			target = 1
		}
	}
	n.nextIndex.PutIfSmaller(from, target)
	n.replicateTo(from)
}

// maybeAdvanceCommit implements the commit rule: a leader may only
// advance commitIndex to N if a quorum of the effective configuration has
// matchIndex >= N AND log[N].term == currentTerm (State Machine Safety —
// a leader never commits an entry from a prior term purely by counting
// replicas).
func (n *Node) maybeAdvanceCommit() {
	candidate := n.config.ConsensusForIndex(n.matchIndex)
	if candidate <= n.log.CommittedIndex() {
		return
	}
	if n.log.TermAt(candidate) != n.term {
		return
	}
	n.log.Commit(candidate)
	n.applyCommitted()
	n.maybeCompleteJointConsensusOrStepDown()
}

// maybeCompleteJointConsensusOrStepDown implements the second half of a
// membership change: once the joint entry commits, the leader appends the
// closing Stable entry; once a Stable entry excluding this node commits,
// the leader steps down rather than continuing to coordinate a cluster it
// is no longer part of rather than the instant the entry is merely appended.
func (n *Node) maybeCompleteJointConsensusOrStepDown() {
	if n.config.IsJoint() && n.log.CommittedIndex() >= n.configEntryIndex {
		n.appendAsLeader("", clusterStableCommand(n.config))
		return
	}
	if !n.config.IsJoint() && n.log.CommittedIndex() >= n.configEntryIndex && !n.config.IsPartOfNewConfiguration(n.id) {
		n.pendingStepDown = true
	}
	if n.pendingStepDown {
		n.becomeFollower("")
	}
}

// clusterStableCommand builds the closing Stable entry via NextStable
// rather than reading cfg.New() directly, so the configuration's version
// lineage advances the same way it does for every other transition.
func clusterStableCommand(cfg clusterconfig.Configuration) any {
	return StableClusterConfiguration{Members: clusterconfig.NextStable(cfg).New()}
}
