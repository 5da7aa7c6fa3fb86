package raftlog

import "testing"

func TestLog_EmptyLogSentinel(t *testing.T) {
	l := New()
	if l.LastIndex() != 0 {
		t.Fatalf("expected LastIndex=0, got %d", l.LastIndex())
	}
	if l.TermAt(0) != 0 {
		t.Fatalf("expected TermAt(0)=0, got %d", l.TermAt(0))
	}
	if !l.HasEntry(0, 0) {
		t.Fatalf("expected empty log to match the (0,0) sentinel")
	}
}

func TestLog_AppendAndQuery(t *testing.T) {
	l := New()
	l.Append(Entry{Index: 1, Term: 1, Command: "w1"})
	l.Append(Entry{Index: 2, Term: 1, Command: "w2"})
	l.Append(Entry{Index: 3, Term: 2, Command: "w3"})

	if l.LastIndex() != 3 {
		t.Fatalf("expected LastIndex=3, got %d", l.LastIndex())
	}
	if l.LastTerm() != 2 {
		t.Fatalf("expected LastTerm=2, got %d", l.LastTerm())
	}
	if !l.HasEntry(2, 1) {
		t.Fatalf("expected entry at (2,1) to match")
	}
	if l.HasEntry(2, 2) {
		t.Fatalf("did not expect entry at (2,2) to match")
	}
}

func TestLog_AppendNonContiguousPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on non-contiguous append")
		}
	}()
	l := New()
	l.Append(Entry{Index: 2, Term: 1})
}

func TestLog_EntriesFromRespectsBatchSize(t *testing.T) {
	l := New()
	for i := uint64(1); i <= 10; i++ {
		l.Append(Entry{Index: i, Term: 1})
	}

	got := l.EntriesFrom(3, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	if got[0].Index != 3 || got[len(got)-1].Index != 7 {
		t.Fatalf("unexpected range: first=%d last=%d", got[0].Index, got[len(got)-1].Index)
	}
}

func TestLog_TruncateAfterDiscardsSuffix(t *testing.T) {
	l := New()
	for i := uint64(1); i <= 5; i++ {
		l.Append(Entry{Index: i, Term: 1})
	}
	l.Commit(4)

	l.TruncateAfter(2)

	if l.LastIndex() != 2 {
		t.Fatalf("expected LastIndex=2 after truncate, got %d", l.LastIndex())
	}
	if l.CommittedIndex() != 2 {
		t.Fatalf("expected committedIndex clamped to 2, got %d", l.CommittedIndex())
	}
}

func TestLog_CommitIsMonotonic(t *testing.T) {
	l := New()
	l.Append(Entry{Index: 1, Term: 1})
	l.Append(Entry{Index: 2, Term: 1})

	l.Commit(2)
	l.Commit(1)

	if l.CommittedIndex() != 2 {
		t.Fatalf("expected committedIndex to stay at 2, got %d", l.CommittedIndex())
	}
}

func TestLog_BetweenIsExclusiveInclusive(t *testing.T) {
	l := New()
	for i := uint64(1); i <= 4; i++ {
		l.Append(Entry{Index: i, Term: 1})
	}

	got := l.Between(1, 3)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Index != 2 || got[1].Index != 3 {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestLog_ReplayingAppendEntriesTwiceIsIdempotent(t *testing.T) {
	l1 := New()
	l2 := New()

	batch := []Entry{
		{Index: 1, Term: 1, Command: "w1"},
		{Index: 2, Term: 1, Command: "w2"},
	}

	apply := func(l *Log) {
		for _, e := range batch {
			if l.LastIndex() >= e.Index {
				l.TruncateAfter(e.Index - 1)
			}
			l.Append(e)
		}
	}

	apply(l1)
	apply(l2)
	apply(l2) // replay

	if l1.LastIndex() != l2.LastIndex() {
		t.Fatalf("expected identical logs after replay, got %d vs %d", l1.LastIndex(), l2.LastIndex())
	}
	for i := uint64(1); i <= l1.LastIndex(); i++ {
		if l1.TermAt(i) != l2.TermAt(i) {
			t.Fatalf("term mismatch at index %d", i)
		}
	}
}
