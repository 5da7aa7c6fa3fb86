package raft

import (
	"log/slog"

	"raftkit/internal/clusterconfig"
	"raftkit/internal/metrics"
	"raftkit/internal/raft/wire"
)

// handle is the single entry point every mailbox item passes through.
// It applies the uniform term precondition to inbound RPCs
// before dispatching on (role, event).
func (n *Node) handle(e event) {
	switch ev := e.(type) {
	case electionTimeoutFired:
		n.handleElectionTimeout()

	case heartbeatTickFired:
		n.handleHeartbeatTick()

	case rpcReceived:
		n.handleRPC(ev.from, ev.msg)

	case clientCommand:
		n.handleClientCommand(ev.client, ev.command)

	case changeConfiguration:
		n.handleChangeConfiguration(ev.members)

	case statusRequest:
		n.handleStatusRequest(ev.reply)

	default:
		slog.Warn("raft: unknown event type", "id", n.id, "event", e)
	}
}

// handleRPC applies the uniform higher/lower-term precondition and
// dispatches to the role-specific handler for msg's concrete kind.
func (n *Node) handleRPC(from string, msg wire.Envelope) {
	metrics.RaftMessagesTotal.WithLabelValues("in", msg.Kind()).Inc()

	isRequest := msg.AppendEntries != nil || msg.RequestVote != nil
	isTermBearing := isRequest || msg.VoteGranted != nil || msg.VoteDenied != nil || msg.AppendSuccessful != nil || msg.AppendRejected != nil
	if isTermBearing {
		if t := msg.Term(); t > n.term {
			n.stepDownToFollower(t)
		} else if t < n.term && isRequest {
			n.rejectStaleTerm(from, msg)
			return
		}
	}

	switch {
	case msg.RequestVote != nil:
		n.handleRequestVote(from, *msg.RequestVote)
	case msg.AppendEntries != nil:
		n.handleAppendEntries(from, *msg.AppendEntries)
	case msg.VoteGranted != nil:
		n.handleVoteGranted(from, *msg.VoteGranted)
	case msg.VoteDenied != nil:
		n.handleVoteDenied(from, *msg.VoteDenied)
	case msg.AppendSuccessful != nil:
		n.handleAppendSuccessful(from, *msg.AppendSuccessful)
	case msg.AppendRejected != nil:
		n.handleAppendRejected(from, *msg.AppendRejected)
	case msg.ClientMessage != nil:
		n.handleClientCommand(msg.ClientMessage.Client, msg.ClientMessage.Command)
	case msg.RequestConfig != nil:
		n.handleRequestConfiguration(from)
	case msg.AskForState != nil:
		n.handleAskForState(from)
	default:
		slog.Warn("raft: unhandled envelope kind", "id", n.id, "from", from, "kind", msg.Kind())
	}
}

// stepDownToFollower implements the uniform precondition: any RPC with a
// higher term forces this node to Follower at that term, with no vote
// recorded yet.
func (n *Node) stepDownToFollower(term uint64) {
	if n.role == Leader {
		n.exitLeader()
	} else if n.role == Candidate {
		n.votesGranted = nil
	}
	n.role = Follower
	n.setTerm(term)
	n.votedFor = ""
	n.persistVoteAndTerm()
	n.electionTimer.Reset()
}

func (n *Node) rejectStaleTerm(from string, msg wire.Envelope) {
	switch {
	case msg.RequestVote != nil:
		n.send(from, wire.Envelope{From: n.id, To: from, VoteDenied: &wire.VoteDenied{Term: n.term}})
	case msg.AppendEntries != nil:
		n.send(from, wire.Envelope{From: n.id, To: from, AppendRejected: &wire.AppendRejected{Term: n.term, LastIndex: n.log.LastIndex()}})
	}
}

func (n *Node) setTerm(term uint64) {
	n.term = term
}

func (n *Node) send(to string, msg wire.Envelope) {
	if n.bus == nil || to == n.id {
		return
	}
	metrics.RaftMessagesTotal.WithLabelValues("out", msg.Kind()).Inc()
	if err := n.bus.Send(to, msg); err != nil {
		slog.Debug("raft: send failed", "id", n.id, "to", to, "kind", msg.Kind(), "error", err)
	}
}

func (n *Node) handleStatusRequest(reply chan Status) {
	s := Status{
		Role:            n.role,
		Term:            n.term,
		VotedFor:        n.votedFor,
		LastKnownLeader: n.lastKnownLeader,
		LastIndex:       n.log.LastIndex(),
		CommitIndex:     n.log.CommittedIndex(),
		Members:         n.config.Members(),
	}
	select {
	case reply <- s:
	default:
	}
}

func (n *Node) handleRequestConfiguration(from string) {
	n.send(from, wire.Envelope{From: n.id, To: from, ChangeConfiguration: &wire.ChangeConfiguration{Members: n.config.Members()}})
}

func (n *Node) handleAskForState(from string) {
	n.send(from, wire.Envelope{From: n.id, To: from, IAmInState: &wire.IAmInState{Role: n.role.String(), Term: n.term}})
}

func (n *Node) handleChangeConfiguration(members []string) {
	// A freshly constructed node (no log entries, still at term 0) just
	// seeds its bootstrap configuration (cluster discovery delivering the
	// initial peer set). After that, membership changes go through the
	// leader's joint-consensus log entries, and proposeConfigurationChange
	// ignores the request on any non-leader.
	if n.log.LastIndex() == 0 && n.term == 0 {
		n.config = clusterconfig.Stable(members)
		n.bootstrapConfig = n.config
		return
	}
	n.proposeConfigurationChange(members)
}
