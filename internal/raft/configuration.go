package raft

import (
	"encoding/gob"
	"log/slog"

	"raftkit/internal/clusterconfig"
)

func init() {
	gob.Register(StableClusterConfiguration{})
	gob.Register(JointConsensusClusterConfiguration{})
}

// StableClusterConfiguration and JointConsensusClusterConfiguration are the
// two distinguished Command kinds this package recognizes; every other
// command value is opaque and passed through to the application state
// machine.
type StableClusterConfiguration struct {
	Members []string
}

type JointConsensusClusterConfiguration struct {
	Old []string
	New []string
}

// configurationIn reports whether command is one of the two distinguished
// configuration kinds and, if so, the Configuration it represents.
func configurationIn(command any) (clusterconfig.Configuration, bool) {
	switch c := command.(type) {
	case StableClusterConfiguration:
		return clusterconfig.Stable(c.Members), true
	case JointConsensusClusterConfiguration:
		return clusterconfig.Joint(c.Old, c.New), true
	default:
		return clusterconfig.Configuration{}, false
	}
}

// isConfigurationCommand reports whether command is a configuration-change
// command (either kind) — these are never delivered to the application
// state machine.
func isConfigurationCommand(command any) bool {
	_, ok := configurationIn(command)
	return ok
}

// adoptConfigurationAtAppend implements the "configuration adopted at
// append time, not commit time" rule: called immediately after appending
// entry at index, whether as leader or follower. A configuration entry
// that is not newer than the one already in effect is a regression —
// e.g. a stale AppendEntries replaying an older joint-consensus entry
// behind a since-adopted later one — and is ignored rather than adopted.
func (n *Node) adoptConfigurationAtAppend(index uint64, command any) {
	cfg, ok := configurationIn(command)
	if !ok {
		return
	}
	if !cfg.IsNewerThan(n.config) {
		slog.Warn("raft: ignoring non-newer configuration entry", "id", n.id, "index", index, "error", ErrConfigRegression)
		return
	}
	n.config = cfg
	n.configEntryIndex = index
}

// revertConfigurationAfterTruncate implements the follower-truncation
// half of the same rule: after discarding a suffix, recompute the
// effective configuration from what remains in the log, falling back to
// the bootstrap configuration if no configuration entry remains. Each
// candidate is still required to be newer than the one adopted so far,
// for the same reason adoptConfigurationAtAppend requires it: a
// regressive entry may still be physically present in the log even
// though it was never adopted when it was appended.
func (n *Node) revertConfigurationAfterTruncate() {
	effective := n.bootstrapConfig
	effectiveIndex := uint64(0)
	for _, e := range n.log.All() {
		cfg, ok := configurationIn(e.Command)
		if !ok || !cfg.IsNewerThan(effective) {
			continue
		}
		effective = cfg
		effectiveIndex = e.Index
	}
	n.config = effective
	n.configEntryIndex = effectiveIndex
}
