package raft

import "raftkit/internal/raft/wire"

// handleVoteGranted tallies a vote and, once a majority of the current
// configuration (old and new, if joint) has granted, transitions to
// Leader. Votes received after this node already left Candidate (stale
// replies from a prior election, or after becoming Leader/Follower) are
// ignored — votesGranted is nil outside Candidate.
func (n *Node) handleVoteGranted(from string, msg wire.VoteGranted) {
	if n.role != Candidate || msg.Term != n.term {
		return
	}
	n.votesGranted[from] = struct{}{}
	if n.hasQuorum() {
		n.becomeLeader()
	}
}

// handleVoteDenied is a no-op beyond the uniform term handling already
// applied in dispatch: a denial at the current term simply means one
// fewer vote than hoped for, with no state change required.
func (n *Node) handleVoteDenied(from string, msg wire.VoteDenied) {}
