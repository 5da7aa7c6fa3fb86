// Package storage implements the two Persistence adapters a RaftNode can be
// constructed with: a durable, tidwall/wal-backed WALStorage for production
// deployments, and an in-memory Memory store for tests and single-process demos
// where durability across restarts is not required.
package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/wal"

	"raftkit/internal/metrics"
	"raftkit/internal/raft/wire"
)

const (
	recordTypeEntry byte = 1
	recordTypeHardState byte = 2
)

type hardState struct {
	Term     uint64
	VotedFor string
}

type entryRecord struct {
	Index   uint64
	Term    uint64
	Command any
	Client  string
}

// WALStorage persists votes, terms, and log entries to a tidwall/wal log on
// disk. Entries and hard-state updates share one WAL index space; a
// separate entryIndex map records which WAL record holds each live raft
// index. TruncateAfter drops entries from that map rather than cutting the
// WAL, and ReadAll returns only the records the map still points at.
type WALStorage struct {
	mu sync.Mutex

	log *wal.Log
	hs  hardState

	nextIdx    uint64
	entryIndex map[uint64]uint64 // raft log index -> WAL index
}

// OpenWALStorage opens (creating if absent) a WAL-backed store rooted at
// dir and replays it into memory.
func OpenWALStorage(dir string) (*WALStorage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}
	log, err := wal.Open(filepath.Join(dir, "wal"), wal.DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("storage: wal.Open: %w", err)
	}
	s := &WALStorage{log: log, nextIdx: 1, entryIndex: make(map[uint64]uint64)}
	if err := s.replay(); err != nil {
		log.Close()
		return nil, err
	}
	return s, nil
}

func (s *WALStorage) replay() error {
	empty, err := s.log.IsEmpty()
	if err != nil {
		return fmt.Errorf("storage: wal.IsEmpty: %w", err)
	}
	if empty {
		return nil
	}
	first, err := s.log.FirstIndex()
	if err != nil {
		return fmt.Errorf("storage: wal.FirstIndex: %w", err)
	}
	last, err := s.log.LastIndex()
	if err != nil {
		return fmt.Errorf("storage: wal.LastIndex: %w", err)
	}
	for walIdx := first; walIdx <= last; walIdx++ {
		data, err := s.log.Read(walIdx)
		if err != nil {
			return fmt.Errorf("storage: wal.Read(%d): %w", walIdx, err)
		}
		recType, payload, err := unmarshalRecord(data)
		if err != nil {
			return fmt.Errorf("storage: corrupt record at %d: %w", walIdx, err)
		}
		switch recType {
		case recordTypeHardState:
			var hs hardState
			if err := gobDecode(payload, &hs); err != nil {
				return fmt.Errorf("storage: decode hardstate at %d: %w", walIdx, err)
			}
			s.hs = hs
		case recordTypeEntry:
			var e entryRecord
			if err := gobDecode(payload, &e); err != nil {
				return fmt.Errorf("storage: decode entry at %d: %w", walIdx, err)
			}
			// Appends are contiguous, so a record for index i supersedes
			// any earlier record above i that a truncation discarded.
			for raftIdx := range s.entryIndex {
				if raftIdx > e.Index {
					delete(s.entryIndex, raftIdx)
				}
			}
			s.entryIndex[e.Index] = walIdx
		}
		s.nextIdx = walIdx + 1
	}
	return nil
}

// PersistTerm implements ports.Persistence.
func (s *WALStorage) PersistTerm(term uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hs.Term = term
	return s.appendHardStateLocked()
}

// PersistVote implements ports.Persistence.
func (s *WALStorage) PersistVote(term uint64, votedFor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hs.Term = term
	s.hs.VotedFor = votedFor
	return s.appendHardStateLocked()
}

func (s *WALStorage) appendHardStateLocked() error {
	start := time.Now()
	payload, err := gobEncode(s.hs)
	if err != nil {
		return fmt.Errorf("storage: encode hardstate: %w", err)
	}
	if err := s.log.Write(s.nextIdx, marshalRecord(recordTypeHardState, payload)); err != nil {
		return fmt.Errorf("storage: wal.Write: %w", err)
	}
	s.nextIdx++
	metrics.WALWritesTotal.Inc()
	metrics.WALWriteDuration.Observe(time.Since(start).Seconds())
	return s.log.Sync()
}

// AppendEntry implements ports.Persistence.
func (s *WALStorage) AppendEntry(entry wire.PersistedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	payload, err := gobEncode(entryRecord{Index: entry.Index, Term: entry.Term, Command: entry.Command, Client: entry.Client})
	if err != nil {
		return fmt.Errorf("storage: encode entry: %w", err)
	}
	if err := s.log.Write(s.nextIdx, marshalRecord(recordTypeEntry, payload)); err != nil {
		return fmt.Errorf("storage: wal.Write: %w", err)
	}
	s.entryIndex[entry.Index] = s.nextIdx
	s.nextIdx++
	metrics.WALWritesTotal.Inc()
	metrics.WALWriteDuration.Observe(time.Since(start).Seconds())
	return s.log.Sync()
}

// TruncateAfter implements ports.Persistence: it discards every persisted
// entry with raft log index > index. Since a truncation is always followed
// by fresh appends at the same position, the discarded WAL records are left
// in place as dead space rather than physically removed — only
// entryIndex's view of "what is live" changes. On reopen, replay drops
// them again once it reaches the fresh entry record written after the
// truncation; a truncation with no later append is not recorded in the
// WAL and does not survive a reopen.
func (s *WALStorage) TruncateAfter(index uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for raftIdx := range s.entryIndex {
		if raftIdx > index {
			delete(s.entryIndex, raftIdx)
		}
	}
	return nil
}

// ReadAll implements ports.Persistence.
func (s *WALStorage) ReadAll() (uint64, string, []wire.PersistedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byWALIdx := make(map[uint64]uint64, len(s.entryIndex))
	for raftIdx, walIdx := range s.entryIndex {
		byWALIdx[walIdx] = raftIdx
	}

	empty, err := s.log.IsEmpty()
	if err != nil {
		return 0, "", nil, fmt.Errorf("storage: wal.IsEmpty: %w", err)
	}
	if empty {
		return s.hs.Term, s.hs.VotedFor, nil, nil
	}
	first, err := s.log.FirstIndex()
	if err != nil {
		return 0, "", nil, fmt.Errorf("storage: wal.FirstIndex: %w", err)
	}
	last, err := s.log.LastIndex()
	if err != nil {
		return 0, "", nil, fmt.Errorf("storage: wal.LastIndex: %w", err)
	}

	var entries []wire.PersistedEntry
	for walIdx := first; walIdx <= last; walIdx++ {
		if _, live := byWALIdx[walIdx]; !live {
			continue
		}
		data, err := s.log.Read(walIdx)
		if err != nil {
			return 0, "", nil, fmt.Errorf("storage: wal.Read(%d): %w", walIdx, err)
		}
		recType, payload, err := unmarshalRecord(data)
		if err != nil || recType != recordTypeEntry {
			continue
		}
		var e entryRecord
		if err := gobDecode(payload, &e); err != nil {
			return 0, "", nil, fmt.Errorf("storage: decode entry at %d: %w", walIdx, err)
		}
		entries = append(entries, wire.PersistedEntry{Index: e.Index, Term: e.Term, Command: e.Command, Client: e.Client})
	}

	return s.hs.Term, s.hs.VotedFor, entries, nil
}

// Close releases the underlying WAL file handle.
func (s *WALStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Close()
}

func marshalRecord(recType byte, payload []byte) []byte {
	buf := make([]byte, 1+binary.MaxVarintLen64+len(payload))
	buf[0] = recType
	n := binary.PutUvarint(buf[1:], uint64(len(payload)))
	copy(buf[1+n:], payload)
	return buf[:1+n+len(payload)]
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func unmarshalRecord(data []byte) (byte, []byte, error) {
	if len(data) < 2 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	recType := data[0]
	length, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	start := 1 + n
	end := start + int(length)
	if end > len(data) {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return recType, data[start:end], nil
}
