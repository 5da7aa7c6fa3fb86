package clusterconfig

import (
	"testing"

	"raftkit/internal/logindex"
)

func TestStable_Quorum(t *testing.T) {
	c := Stable([]string{"A", "B", "C"})

	if c.HasQuorum(ackSet("A")) {
		t.Fatalf("one of three should not be a quorum")
	}
	if !c.HasQuorum(ackSet("A", "B")) {
		t.Fatalf("two of three should be a quorum")
	}
}

func TestJoint_RequiresMajorityOfBothSets(t *testing.T) {
	c := Joint([]string{"A", "B", "C"}, []string{"A", "B", "D"})

	if c.HasQuorum(ackSet("A", "D")) {
		t.Fatalf("majority of new alone is not sufficient")
	}
	if c.HasQuorum(ackSet("A", "C")) {
		t.Fatalf("majority of old alone is not sufficient")
	}
	if !c.HasQuorum(ackSet("A", "B")) {
		t.Fatalf("A,B is a majority of both old and new")
	}
}

func TestIsPartOfNewConfiguration(t *testing.T) {
	j := Joint([]string{"A", "B", "C"}, []string{"A", "B", "D"})
	if j.IsPartOfNewConfiguration("C") {
		t.Fatalf("C left in the new configuration")
	}
	if !j.IsPartOfNewConfiguration("D") {
		t.Fatalf("D should be part of the new configuration")
	}
}

func TestIsNewerThan(t *testing.T) {
	stable := Stable([]string{"A", "B", "C"})
	joint := NextJoint(stable, []string{"A", "B", "D"})
	nextStable := NextStable(joint)

	if !joint.IsNewerThan(stable) {
		t.Fatalf("joint carrying stable's view as old should be newer")
	}
	if !nextStable.IsNewerThan(joint) {
		t.Fatalf("stable derived from joint should be newer than the joint")
	}
	if stable.IsNewerThan(joint) {
		t.Fatalf("stable should not be newer than the joint derived from it")
	}
}

func TestConsensusForIndex_Joint_IsMinOfBothQuorums(t *testing.T) {
	idx := logindex.New()
	idx.Put("A", 10)
	idx.Put("B", 8)
	idx.Put("C", 5)
	idx.Put("D", 2)

	j := Joint([]string{"A", "B", "C"}, []string{"A", "B", "D"})

	// old={A,B,C}: sorted [5,8,10] -> median 8
	// new={A,B,D}: sorted [2,8,10] -> median 8
	if got := j.ConsensusForIndex(idx); got != 8 {
		t.Fatalf("expected consensus index 8, got %d", got)
	}

	idx.Put("D", 1)
	// new={A,B,D}: sorted [1,8,10] -> median still 8
	idx.Put("C", 1)
	// old={A,B,C}: sorted [1,8,10] -> median 8
	if got := j.ConsensusForIndex(idx); got != 8 {
		t.Fatalf("expected consensus index 8, got %d", got)
	}
}

func TestConsensusForIndex_Stable_LowerMedianOnEvenCount(t *testing.T) {
	idx := logindex.New()
	idx.Put("A", 10)
	idx.Put("B", 7)
	idx.Put("C", 5)
	idx.Put("D", 1)

	s := Stable([]string{"A", "B", "C", "D"})
	if got := s.ConsensusForIndex(idx); got != 5 {
		t.Fatalf("expected lower-median 5, got %d", got)
	}
}

func ackSet(members ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out
}
