// Package clusterconfig implements the cluster membership type: a Stable
// configuration or a Joint (old, new) transitional one, and the quorum
// arithmetic a RoleStateMachine needs over either shape.
package clusterconfig

import "raftkit/internal/logindex"

// Configuration is a cluster membership view. Exactly one of the two
// constructors below should be used; the zero value is not meaningful.
type Configuration struct {
	old   []string // non-nil only for a Joint configuration
	new   []string // the "new" set for Joint, or the sole set for Stable
	joint bool

	// version orders successive configurations so a node can tell whether
	// an incoming configuration entry supersedes its current one.
	version uint64
}

// Stable returns a configuration with a single membership set.
func Stable(members []string) Configuration {
	return Configuration{new: cloneSet(members), version: 1}
}

// Joint returns a transitional configuration requiring overlapping quorums
// across old and new.
func Joint(old, new []string) Configuration {
	return Configuration{old: cloneSet(old), new: cloneSet(new), joint: true, version: 1}
}

func cloneSet(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// IsJoint reports whether this is a transitional (old,new) configuration.
func (c Configuration) IsJoint() bool { return c.joint }

// Members returns every member referenced by this configuration: for
// Stable, its sole set; for Joint, the union of old and new.
func (c Configuration) Members() []string {
	if !c.joint {
		return cloneSet(c.new)
	}
	seen := make(map[string]struct{}, len(c.old)+len(c.new))
	var out []string
	for _, sets := range [][]string{c.old, c.new} {
		for _, m := range sets {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				out = append(out, m)
			}
		}
	}
	return out
}

// Old returns the old set of a Joint configuration, or nil for Stable.
func (c Configuration) Old() []string { return cloneSet(c.old) }

// New returns the new set of a Joint configuration, or the sole set of a
// Stable one.
func (c Configuration) New() []string { return cloneSet(c.new) }

// IsPartOfNewConfiguration reports whether self is a member of the
// "new" view: the sole set for Stable, the new set for Joint. A leader
// uses this to decide whether it must eventually step down.
func (c Configuration) IsPartOfNewConfiguration(self string) bool {
	return contains(c.new, self)
}

// IsNewerThan reports a version ordering between two configurations: a
// Joint that carries other's view as its "old" half is newer than other,
// and a Stable derived from a Joint is newer than that Joint. Otherwise it
// compares version counters, which only NextJoint and NextStable advance;
// configurations built directly with Stable or Joint (such as those
// rebuilt from log entries) all carry version 1, so between those only the
// two steps above count as newer, and a stale or unrelated configuration
// entry is rejected (a regressive configuration change).
func (c Configuration) IsNewerThan(other Configuration) bool {
	if c.joint && !other.joint && sameSet(c.old, other.new) {
		return true
	}
	if !c.joint && other.joint && sameSet(c.new, other.new) {
		return true
	}
	return c.version > other.version
}

// nextVersion returns the version number that orders a configuration after
// base — used when constructing the Joint/Stable entries a leader appends.
func nextVersion(base Configuration) uint64 { return base.version + 1 }

// NextJoint builds the Joint(old=current.New(), new=targetMembers)
// configuration a leader appends to begin a membership change.
func NextJoint(current Configuration, targetMembers []string) Configuration {
	j := Joint(current.New(), targetMembers)
	j.version = nextVersion(current)
	return j
}

// NextStable builds the Stable(new) configuration a leader appends once a
// Joint configuration commits.
func NextStable(current Configuration) Configuration {
	if !current.joint {
		return current
	}
	s := Stable(current.new)
	s.version = nextVersion(current)
	return s
}

// HasQuorum reports whether the given set of acknowledging members forms a
// quorum under this configuration: for Stable, a majority of its members;
// for Joint, a majority of old AND a majority of new.
func (c Configuration) HasQuorum(acked map[string]struct{}) bool {
	if !c.joint {
		return isMajority(c.new, acked)
	}
	return isMajority(c.old, acked) && isMajority(c.new, acked)
}

func isMajority(members []string, acked map[string]struct{}) bool {
	if len(members) == 0 {
		return false
	}
	count := 0
	for _, m := range members {
		if _, ok := acked[m]; ok {
			count++
		}
	}
	return count >= len(members)/2+1
}

// ConsensusForIndex returns the largest index held by a quorum of idx under
// this configuration. For Joint it is min(consensusOver(old),
// consensusOver(new)); for Stable it is the (lower-)median over its members.
func (c Configuration) ConsensusForIndex(idx *logindex.Map) uint64 {
	if !c.joint {
		return idx.ConsensusOver(c.new)
	}
	oldN := idx.ConsensusOver(c.old)
	newN := idx.ConsensusOver(c.new)
	if oldN < newN {
		return oldN
	}
	return newN
}

func contains(set []string, v string) bool {
	for _, m := range set {
		if m == v {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, m := range a {
		seen[m] = struct{}{}
	}
	for _, m := range b {
		if _, ok := seen[m]; !ok {
			return false
		}
	}
	return true
}
