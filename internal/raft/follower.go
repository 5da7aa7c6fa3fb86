package raft

import (
	"raftkit/internal/metrics"
	"raftkit/internal/raftlog"
	"raftkit/internal/raft/wire"
)

// handleRequestVote implements the granting rule: a vote is granted only
// once per term, to at most one candidate, and only when that candidate's
// log is at least as up to date as this node's own (Election Safety +
// Leader Completeness). By the time this runs, dispatch has already
// aligned terms so req.Term == n.term.
func (n *Node) handleRequestVote(from string, req wire.RequestVote) {
	grant := (n.votedFor == "" || n.votedFor == req.CandidateId) && n.candidateLogIsUpToDate(req.LastLogIndex, req.LastLogTerm)

	if grant {
		n.votedFor = req.CandidateId
		n.persistVoteAndTerm()
		n.electionTimer.Reset()
		metrics.RaftVotesGranted.Inc()
		n.send(from, wire.Envelope{From: n.id, To: from, VoteGranted: &wire.VoteGranted{Term: n.term}})
		return
	}
	metrics.RaftVotesDenied.Inc()
	n.send(from, wire.Envelope{From: n.id, To: from, VoteDenied: &wire.VoteDenied{Term: n.term}})
}

func (n *Node) candidateLogIsUpToDate(lastLogIndex, lastLogTerm uint64) bool {
	ownTerm := n.log.LastTerm()
	if lastLogTerm != ownTerm {
		return lastLogTerm > ownTerm
	}
	return lastLogIndex >= n.log.LastIndex()
}

// handleAppendEntries implements the follower side of replication: the
// consistency check against PrevLogIndex/PrevLogTerm, truncation of any
// conflicting suffix, appending the new entries, advancing the local
// commit pointer, and replying with the outcome. By the time this runs,
// dispatch has already aligned terms so req.Term == n.term.
func (n *Node) handleAppendEntries(from string, req wire.AppendEntries) {
	if n.role == Candidate {
		n.becomeFollower(req.LeaderId)
	} else {
		n.lastKnownLeader = req.LeaderId
		n.electionTimer.Reset()
	}

	if !n.log.HasEntry(req.PrevLogIndex, req.PrevLogTerm) {
		metrics.RaftAppendRejects.Inc()
		n.send(from, wire.Envelope{From: n.id, To: from, AppendRejected: &wire.AppendRejected{Term: n.term, LastIndex: n.log.LastIndex()}})
		return
	}

	conflictAt := uint64(0)
	for i, e := range req.Entries {
		idx := req.PrevLogIndex + uint64(i) + 1
		if !n.log.HasEntry(idx, e.Term) {
			conflictAt = idx
			break
		}
	}
	if conflictAt > 0 {
		n.log.TruncateAfter(conflictAt - 1)
		n.persistTruncate(conflictAt - 1)
		n.revertConfigurationAfterTruncate()
		for _, e := range req.Entries {
			if e.Index < conflictAt {
				continue
			}
			entry := raftlog.Entry{Index: e.Index, Term: e.Term, Command: e.Command, Client: e.Client}
			n.log.Append(entry)
			n.persistAppend(wire.Entry{Index: entry.Index, Term: entry.Term, Command: entry.Command, Client: entry.Client})
			n.adoptConfigurationAtAppend(entry.Index, entry.Command)
		}
	}

	if req.LeaderCommit > n.log.CommittedIndex() {
		newCommit := req.LeaderCommit
		if last := n.log.LastIndex(); newCommit > last {
			newCommit = last
		}
		n.log.Commit(newCommit)
		n.applyCommitted()
	}

	n.send(from, wire.Envelope{From: n.id, To: from, AppendSuccessful: &wire.AppendSuccessful{Term: n.term, MatchIndex: n.log.LastIndex()}})
}
