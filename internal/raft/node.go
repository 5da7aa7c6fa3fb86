// Package raft implements the RoleStateMachine: the Follower/Candidate/
// Leader transitions, AppendEntries/RequestVote handling, and
// joint-consensus membership changes. Each Node is a
// single-threaded actor — every field below is owned
// exclusively by the goroutine started in Start and is never touched from
// any other goroutine. External callers only ever hand events to the
// mailbox channel.
package raft

import (
	"fmt"
	"log/slog"
	"sync"

	"raftkit/internal/clusterconfig"
	"raftkit/internal/electiontimer"
	"raftkit/internal/logindex"
	"raftkit/internal/ports"
	"raftkit/internal/raft/wire"
	"raftkit/internal/raftlog"
	"raftkit/internal/testevents"
)

const mailboxSize = 256

// Node is one cluster member's Raft engine.
type Node struct {
	id   string
	cfg  Config
	bus  ports.MessageBus
	sm   ports.StateMachine
	persistence ports.Persistence
	events testevents.Publisher

	mailbox chan event
	stopCh  chan struct{}
	stopped sync.WaitGroup

	// --- owned exclusively by the loop goroutine below this line ---

	role     Role
	term     uint64
	votedFor string
	config   clusterconfig.Configuration
	// configEntryIndex is the log index of the entry that produced the
	// current config, or 0 if config is still the bootstrap configuration
	// with no corresponding log entry.
	configEntryIndex uint64
	bootstrapConfig clusterconfig.Configuration
	log      *raftlog.Log
	lastApplied uint64
	lastKnownLeader string

	electionTimer   *electiontimer.Timer
	heartbeatTicker *electiontimer.Ticker

	// Candidate-only state, reset on every role entry.
	votesGranted map[string]struct{}

	// Leader-only state, reset on every role entry.
	nextIndex  *logindex.Map
	matchIndex *logindex.Map
	// pendingStepDown is set when a configuration change that excludes
	// this node commits; the leader then steps down in the same handler,
	// after the committed entries have been applied and replied to.
	pendingStepDown bool
}

// NewNode constructs a node that has not yet been started. bootstrap is
// the initial Stable membership; it must be non-empty and contain id, or
// construction fails with ErrConfigurationInvariantViolation (fatal).
func NewNode(id string, bootstrap []string, bus ports.MessageBus, sm ports.StateMachine, persistence ports.Persistence, cfg Config, pub testevents.Publisher) (*Node, error) {
	cfg = cfg.withDefaults()
	if err := electiontimer.Validate(cfg.ElectionTimeoutMin, cfg.ElectionTimeoutMax, cfg.HeartbeatInterval); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTimerMisconfigured, err)
	}
	if len(bootstrap) == 0 {
		return nil, fmt.Errorf("%w: empty membership", ErrConfigurationInvariantViolation)
	}
	if !memberOf(bootstrap, id) {
		return nil, fmt.Errorf("%w: %s is absent from its own bootstrap configuration", ErrConfigurationInvariantViolation, id)
	}
	if pub == nil {
		pub = testevents.NoOp{}
	}

	n := &Node{
		id:          id,
		cfg:         cfg,
		bus:         bus,
		sm:          sm,
		persistence: persistence,
		events:      pub,
		mailbox:     make(chan event, mailboxSize),
		stopCh:      make(chan struct{}),
		role:        Follower,
		config:      clusterconfig.Stable(bootstrap),
		bootstrapConfig: clusterconfig.Stable(bootstrap),
		log:         raftlog.New(),
		electionTimer: electiontimer.New(cfg.ElectionTimeoutMin, cfg.ElectionTimeoutMax),
	}

	if persistence != nil {
		if err := n.recover(); err != nil {
			return nil, fmt.Errorf("raft: recovering persisted state: %w", err)
		}
	}

	return n, nil
}

func memberOf(members []string, id string) bool {
	for _, m := range members {
		if m == id {
			return true
		}
	}
	return false
}

func (n *Node) recover() error {
	term, votedFor, entries, err := n.persistence.ReadAll()
	if err != nil {
		return err
	}
	n.term = term
	n.votedFor = votedFor
	for _, e := range entries {
		n.log.Append(raftlog.Entry{Index: e.Index, Term: e.Term, Command: e.Command, Client: e.Client})
		if cfgEntry, ok := configurationIn(e.Command); ok && cfgEntry.IsNewerThan(n.config) {
			n.config = cfgEntry
			n.configEntryIndex = e.Index
		}
	}
	return nil
}

// Start launches the node's actor loop in its own goroutine and arms the
// election timer. It returns immediately.
func (n *Node) Start() {
	n.electionTimer.Reset()
	n.stopped.Add(1)
	go func() {
		defer n.stopped.Done()
		n.runLoop()
	}()
	slog.Info("raft node started", "id", n.id, "members", n.config.Members())
}

// Stop halts the actor loop and waits for it to exit.
func (n *Node) Stop() {
	close(n.stopCh)
	n.stopped.Wait()
	n.electionTimer.Stop()
	if n.heartbeatTicker != nil {
		n.heartbeatTicker.Stop()
	}
}

// Receive implements ports.Receiver: it hands an inbound envelope to the
// node's mailbox. It blocks only until the mailbox accepts the event or
// the node stops, never on node-internal processing.
func (n *Node) Receive(from string, msg wire.Envelope) {
	select {
	case n.mailbox <- rpcReceived{from: from, msg: msg}:
	case <-n.stopCh:
	}
}

// Propose hands a client command to the node's mailbox to be appended
// once (and if) this node is leader. Propose does not block on
// replication or commit; the apply result is routed back to client over
// the MessageBus once the entry commits.
func (n *Node) Propose(client string, command any) error {
	select {
	case n.mailbox <- clientCommand{client: client, command: command}:
		return nil
	case <-n.stopCh:
		return ErrShuttingDown
	}
}

// ChangeConfiguration injects a bootstrap or administrative
// ChangeConfiguration command. On a node with no log entries that is
// still at term 0, it replaces the bootstrap configuration. Otherwise it
// is a membership change: a Leader with no joint change in progress
// appends a joint-consensus entry for it, and any other node ignores it.
func (n *Node) ChangeConfiguration(members []string) error {
	select {
	case n.mailbox <- changeConfiguration{members: members}:
		return nil
	case <-n.stopCh:
		return ErrShuttingDown
	}
}

// Status returns a point-in-time snapshot of this node's state.
func (n *Node) Status() (Status, error) {
	reply := make(chan Status, 1)
	select {
	case n.mailbox <- statusRequest{reply: reply}:
	case <-n.stopCh:
		return Status{}, ErrShuttingDown
	}
	select {
	case s := <-reply:
		return s, nil
	case <-n.stopCh:
		return Status{}, ErrShuttingDown
	}
}

// ID returns this node's MemberId.
func (n *Node) ID() string { return n.id }
