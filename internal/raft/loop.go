package raft

import (
	"log/slog"
	"time"
)

// runLoop is the single per-node actor: every event — timer fire, peer
// RPC, client command, or admin command — is processed to completion
// before the next one is read, so the log and role transitions are
// totally ordered. No branch below ever blocks on I/O.
func (n *Node) runLoop() {
	for {
		// A nil heartbeatTicker (Follower/Candidate) yields a nil channel,
		// which blocks forever in select — exactly the "no heartbeats
		// outside Leader" behavior we want, with no role check needed here.
		var heartbeatC <-chan time.Time
		if n.heartbeatTicker != nil {
			heartbeatC = n.heartbeatTicker.C()
		}

		select {
		case <-n.stopCh:
			slog.Debug("raft node stopping", "id", n.id)
			return

		case <-n.electionTimer.C():
			n.handle(electionTimeoutFired{})

		case <-heartbeatC:
			n.handle(heartbeatTickFired{})

		case e := <-n.mailbox:
			n.handle(e)
		}

		n.updateMetrics()
	}
}
