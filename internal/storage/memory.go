package storage

import (
	"sync"

	"raftkit/internal/raft/wire"
)

// Memory is a non-durable ports.Persistence implementation: state lives
// only in process memory and is lost on restart. It is the default for
// single-process clusters and test harnesses that don't need to exercise
// crash recovery.
type Memory struct {
	mu       sync.Mutex
	term     uint64
	votedFor string
	entries  []wire.PersistedEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) PersistTerm(term uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.term = term
	return nil
}

func (m *Memory) PersistVote(term uint64, votedFor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.term = term
	m.votedFor = votedFor
	return nil
}

func (m *Memory) AppendEntry(entry wire.PersistedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// TruncateAfter discards every entry with Index > index.
func (m *Memory) TruncateAfter(index uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0:0]
	for _, e := range m.entries {
		if e.Index <= index {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *Memory) ReadAll() (uint64, string, []wire.PersistedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]wire.PersistedEntry, len(m.entries))
	copy(entries, m.entries)
	return m.term, m.votedFor, entries, nil
}
