package raft

import (
	"time"

	"raftkit/internal/electiontimer"
	"raftkit/internal/raft/wire"
)

func newHeartbeatTicker(interval time.Duration) *electiontimer.Ticker {
	return electiontimer.NewTicker(interval)
}

func envelopeRequestVote(from, to string, term, lastLogIndex, lastLogTerm uint64) wire.Envelope {
	return wire.Envelope{
		From: from,
		To:   to,
		RequestVote: &wire.RequestVote{
			Term:         term,
			CandidateId:  from,
			LastLogIndex: lastLogIndex,
			LastLogTerm:  lastLogTerm,
		},
	}
}
