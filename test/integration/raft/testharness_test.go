// Package integration runs a full in-process cluster of raft.Nodes over
// the local in-process bus and exercises leader election, replication,
// and membership changes the way a real deployment would observe them.
package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"raftkit/internal/bus/local"
	"raftkit/internal/raft"
	"raftkit/internal/statemachine/kvapp"
	"raftkit/internal/storage"
)

// TestNode bundles one cluster member's constructed pieces so scenario
// tests can reach into its state machine or stop it independently.
type TestNode struct {
	ID    string
	Node  *raft.Node
	App   *kvapp.App
	mu    sync.Mutex
	stopped bool
}

// TestCluster wires N raft.Nodes over a shared local.Bus.
type TestCluster struct {
	t     *testing.T
	bus   *local.Bus
	mu    sync.RWMutex
	nodes map[string]*TestNode
}

// NewTestCluster returns an empty cluster ready for StartNodes.
func NewTestCluster(t *testing.T) *TestCluster {
	return &TestCluster{
		t:     t,
		bus:   local.New(),
		nodes: make(map[string]*TestNode),
	}
}

func nodeID(i int) string { return fmt.Sprintf("node-%d", i+1) }

// StartNodes constructs and starts n nodes, all sharing one bootstrap
// configuration so they can elect a leader immediately.
func (tc *TestCluster) StartNodes(n int) error {
	members := make([]string, n)
	for i := 0; i < n; i++ {
		members[i] = nodeID(i)
	}

	cfg := raft.Config{
		ElectionTimeoutMin:            100 * time.Millisecond,
		ElectionTimeoutMax:            200 * time.Millisecond,
		HeartbeatInterval:             20 * time.Millisecond,
		DefaultAppendEntriesBatchSize: 16,
	}

	for _, id := range members {
		app := kvapp.New()
		node, err := raft.NewNode(id, members, tc.bus, app, storage.NewMemory(), cfg, nil)
		if err != nil {
			return fmt.Errorf("NewNode(%s): %w", id, err)
		}
		tc.bus.Register(id, node)
		node.Start()

		tc.mu.Lock()
		tc.nodes[id] = &TestNode{ID: id, Node: node, App: app}
		tc.mu.Unlock()
	}
	return nil
}

// WaitForLeader polls every running node's Status until one reports
// Leader, or timeout elapses.
func (tc *TestCluster) WaitForLeader(timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timeout waiting for leader")
		case <-ticker.C:
			if leader := tc.GetLeader(); leader != nil {
				return leader.ID, nil
			}
		}
	}
}

// WaitForLeaderConvergence waits until every running node agrees on the
// same LastKnownLeader.
func (tc *TestCluster) WaitForLeaderConvergence(timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timeout waiting for leader convergence")
		case <-ticker.C:
			if leader, ok := tc.leaderConverged(); ok {
				return leader, nil
			}
		}
	}
}

func (tc *TestCluster) leaderConverged() (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	var leader string
	first := true
	for _, n := range tc.nodes {
		if n.isStopped() {
			continue
		}
		status, err := n.Node.Status()
		if err != nil || status.LastKnownLeader == "" {
			return "", false
		}
		if first {
			leader = status.LastKnownLeader
			first = false
		} else if status.LastKnownLeader != leader {
			return "", false
		}
	}
	if first {
		return "", false
	}
	return leader, true
}

// GetLeader returns the first running node currently reporting the
// Leader role, or nil.
func (tc *TestCluster) GetLeader() *TestNode {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	for _, n := range tc.nodes {
		if n.isStopped() {
			continue
		}
		status, err := n.Node.Status()
		if err == nil && status.Role == raft.Leader {
			return n
		}
	}
	return nil
}

// GetFollowers returns every running node not currently Leader.
func (tc *TestCluster) GetFollowers() []*TestNode {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	var out []*TestNode
	for _, n := range tc.nodes {
		if n.isStopped() {
			continue
		}
		status, err := n.Node.Status()
		if err == nil && status.Role != raft.Leader {
			out = append(out, n)
		}
	}
	return out
}

// GetNode returns the node registered under id, or nil.
func (tc *TestCluster) GetNode(id string) *TestNode {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.nodes[id]
}

// ProposeValue finds the current leader and proposes a SET command for
// key/value, failing if no leader is available.
func (tc *TestCluster) ProposeValue(key, value string) error {
	leader := tc.GetLeader()
	if leader == nil {
		return fmt.Errorf("no leader available")
	}
	return leader.Node.Propose("", kvapp.NewCommand(kvapp.OpSet, key, value))
}

// StopNode stops the node and unregisters it from the bus so future
// Sends to it fail the way a crashed or partitioned member would.
func (tc *TestCluster) StopNode(id string) error {
	tc.mu.RLock()
	n, ok := tc.nodes[id]
	tc.mu.RUnlock()
	if !ok {
		return fmt.Errorf("node %q not found", id)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return nil
	}
	tc.bus.Unregister(id)
	n.Node.Stop()
	n.stopped = true
	return nil
}

// RestartNode replaces a stopped node with a freshly constructed one
// bound to the same bootstrap membership and a brand new store, the way a
// crashed member that lost its unflushed state would rejoin: whatever it
// never durably committed before going down, it comes back without.
func (tc *TestCluster) RestartNode(id string) error {
	tc.mu.RLock()
	target := make([]string, 0, len(tc.nodes))
	for memberID := range tc.nodes {
		target = append(target, memberID)
	}
	tc.mu.RUnlock()

	cfg := raft.Config{
		ElectionTimeoutMin:            100 * time.Millisecond,
		ElectionTimeoutMax:            200 * time.Millisecond,
		HeartbeatInterval:             20 * time.Millisecond,
		DefaultAppendEntriesBatchSize: 16,
	}

	app := kvapp.New()
	node, err := raft.NewNode(id, target, tc.bus, app, storage.NewMemory(), cfg, nil)
	if err != nil {
		return fmt.Errorf("NewNode(%s): %w", id, err)
	}
	tc.bus.Register(id, node)
	node.Start()

	tc.mu.Lock()
	tc.nodes[id] = &TestNode{ID: id, Node: node, App: app}
	tc.mu.Unlock()
	return nil
}

// WaitForAppliedValue polls node's App until key reads back value, or
// timeout elapses.
func (tc *TestCluster) WaitForAppliedValue(node *TestNode, key, value string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s=%s to apply on %s", key, value, node.ID)
		case <-ticker.C:
			if v, ok := node.App.Get(key); ok && v == value {
				return nil
			}
		}
	}
}

// Cleanup stops every node that is still running.
func (tc *TestCluster) Cleanup() {
	tc.mu.RLock()
	ids := make([]string, 0, len(tc.nodes))
	for id := range tc.nodes {
		ids = append(ids, id)
	}
	tc.mu.RUnlock()

	for _, id := range ids {
		_ = tc.StopNode(id)
	}
}

func (n *TestNode) isStopped() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopped
}
