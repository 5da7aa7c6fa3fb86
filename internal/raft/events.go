package raft

import "raftkit/internal/raft/wire"

// event is the sum type of everything that can arrive in a node's
// mailbox: timer fires, peer RPCs, client commands, and admin commands.
// Processing one event to completion is the unit of serialization for
// the whole node.
type event interface{ isEvent() }

type electionTimeoutFired struct{}

func (electionTimeoutFired) isEvent() {}

type heartbeatTickFired struct{}

func (heartbeatTickFired) isEvent() {}

// rpcReceived wraps an inbound peer envelope.
type rpcReceived struct {
	from string
	msg  wire.Envelope
}

func (rpcReceived) isEvent() {}

// clientCommand is a client's proposed command.
type clientCommand struct {
	client  string
	command any
}

func (clientCommand) isEvent() {}

// changeConfiguration is the bootstrap/admin injection of a configuration.
type changeConfiguration struct {
	members []string
}

func (changeConfiguration) isEvent() {}

// statusRequest lets a caller outside the actor query a consistent
// snapshot of node state without any shared mutable memory: the reply is
// produced by the loop goroutine and handed back over a channel, which is
// itself just another outbound send.
type statusRequest struct {
	reply chan Status
}

func (statusRequest) isEvent() {}

// Status is a point-in-time snapshot of a node's externally visible state.
type Status struct {
	Role        Role
	Term        uint64
	VotedFor    string
	LastKnownLeader string
	LastIndex   uint64
	CommitIndex uint64
	Members     []string
}
