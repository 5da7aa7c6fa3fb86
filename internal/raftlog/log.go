// Package raftlog implements the replicated, append-only log every
// RaftNode keeps locally: a term-tagged sequence of entries plus a commit
// pointer. The log is owned exclusively by its node's actor loop and is
// never accessed concurrently; it carries no internal locking.
package raftlog

// Entry is a single record in the replicated log. Index is 1-based and
// strictly increasing; Term is nondecreasing along the log. Client, when
// non-empty, names the member that should receive the apply reply once the
// entry commits.
type Entry struct {
	Index   uint64
	Term    uint64
	Command any
	Client  string
}

// Log is the in-memory replicated log. Index 0 is a sentinel meaning
// "empty"; TermAt(0) is always 0. The log is conceptually infinite —
// compaction/snapshotting is out of scope (see internal/raft/snapshot.go).
type Log struct {
	entries   []Entry // entries[i] has Index i+1
	committed uint64
}

// New returns an empty log at index 0.
func New() *Log {
	return &Log{}
}

// Append adds entry to the end of the log. The caller is responsible for
// assigning entry.Index == LastIndex()+1; Append panics on a non-contiguous
// index since that would violate Log Matching.
func (l *Log) Append(entry Entry) {
	if entry.Index != l.LastIndex()+1 {
		panic("raftlog: non-contiguous append")
	}
	l.entries = append(l.entries, entry)
}

// LastIndex returns the index of the last entry, or 0 if the log is empty.
func (l *Log) LastIndex() uint64 {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[len(l.entries)-1].Index
}

// LastTerm returns the term of the last entry, or 0 if the log is empty.
func (l *Log) LastTerm() uint64 {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[len(l.entries)-1].Term
}

// TermAt returns the term of the entry at index, or 0 for the sentinel
// index 0 or any index the log does not (yet, or any longer) hold.
func (l *Log) TermAt(index uint64) uint64 {
	if index == 0 {
		return 0
	}
	e, ok := l.at(index)
	if !ok {
		return 0
	}
	return e.Term
}

// HasEntry reports whether the log holds an entry at index with the given
// term — the AppendEntries consistency check.
func (l *Log) HasEntry(index, term uint64) bool {
	if index == 0 {
		return term == 0
	}
	e, ok := l.at(index)
	return ok && e.Term == term
}

func (l *Log) at(index uint64) (Entry, bool) {
	if index < 1 || index > l.LastIndex() {
		return Entry{}, false
	}
	first := l.entries[0].Index
	if index < first {
		return Entry{}, false
	}
	return l.entries[index-first], true
}

// EntriesFrom returns up to maxCount entries starting at index (inclusive).
// An empty result is a valid heartbeat payload.
func (l *Log) EntriesFrom(index uint64, maxCount int) []Entry {
	if index == 0 {
		index = 1
	}
	if index > l.LastIndex() {
		return nil
	}
	e, ok := l.at(index)
	if !ok {
		return nil
	}
	first := l.entries[0].Index
	start := e.Index - first
	end := len(l.entries)
	if maxCount > 0 && start+uint64(maxCount) < uint64(end) {
		end = int(start) + maxCount
	}
	out := make([]Entry, end-int(start))
	copy(out, l.entries[start:end])
	return out
}

// Between returns entries with index in (fromExclusive, toInclusive].
func (l *Log) Between(fromExclusive, toInclusive uint64) []Entry {
	if toInclusive <= fromExclusive {
		return nil
	}
	return l.EntriesFrom(fromExclusive+1, int(toInclusive-fromExclusive))
}

// TruncateAfter discards every entry with index > index. Only a follower
// reverting a conflicting suffix reported by the leader does this; a
// leader's own log is append-only (Leader Append-Only invariant).
func (l *Log) TruncateAfter(index uint64) {
	if index >= l.LastIndex() {
		return
	}
	e, ok := l.at(index + 1)
	if !ok {
		if index == 0 {
			l.entries = nil
		}
		return
	}
	first := l.entries[0].Index
	l.entries = l.entries[:e.Index-first]
	if l.committed > l.LastIndex() {
		l.committed = l.LastIndex()
	}
}

// Commit advances the commit pointer to index. It is a no-op if index does
// not move the pointer forward — committedIndex is monotonic.
func (l *Log) Commit(index uint64) {
	if index > l.committed && index <= l.LastIndex() {
		l.committed = index
	}
}

// CommittedIndex returns the current commit pointer.
func (l *Log) CommittedIndex() uint64 {
	return l.committed
}

// All returns every entry currently held, oldest first. Used to recompute
// the effective configuration after a truncation.
func (l *Log) All() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
