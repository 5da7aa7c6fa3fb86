package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"raftkit/internal/raft/wire"
)

func TestWALStoragePersistsHardStateAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenWALStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.PersistVote(3, "node-2"))
	require.NoError(t, s.PersistTerm(5))
	require.NoError(t, s.Close())

	reopened, err := OpenWALStorage(dir)
	require.NoError(t, err)
	defer reopened.Close()

	term, votedFor, entries, err := reopened.ReadAll()
	require.NoError(t, err)
	require.Equal(t, uint64(5), term)
	require.Equal(t, "node-2", votedFor)
	require.Empty(t, entries)
}

func TestWALStorageReplaysEntriesAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenWALStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.AppendEntry(wire.PersistedEntry{Index: 1, Term: 1, Command: "set-a", Client: "c1"}))
	require.NoError(t, s.AppendEntry(wire.PersistedEntry{Index: 2, Term: 1, Command: "set-b", Client: "c1"}))
	require.NoError(t, s.AppendEntry(wire.PersistedEntry{Index: 3, Term: 2, Command: "set-c", Client: "c2"}))
	require.NoError(t, s.Close())

	reopened, err := OpenWALStorage(dir)
	require.NoError(t, err)
	defer reopened.Close()

	_, _, entries, err := reopened.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, uint64(1), entries[0].Index)
	require.Equal(t, "set-a", entries[0].Command)
	require.Equal(t, uint64(3), entries[2].Index)
	require.Equal(t, uint64(2), entries[2].Term)
}

func TestWALStorageTruncateAfterDropsEntriesFromReadAll(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenWALStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.AppendEntry(wire.PersistedEntry{Index: 1, Term: 1, Command: "a"}))
	require.NoError(t, s.AppendEntry(wire.PersistedEntry{Index: 2, Term: 1, Command: "b"}))
	require.NoError(t, s.AppendEntry(wire.PersistedEntry{Index: 3, Term: 1, Command: "c"}))

	require.NoError(t, s.TruncateAfter(1))
	require.NoError(t, s.AppendEntry(wire.PersistedEntry{Index: 2, Term: 2, Command: "b-rewritten"}))

	_, _, entries, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Command)
	require.Equal(t, "b-rewritten", entries[1].Command)
	require.Equal(t, uint64(2), entries[1].Term)

	require.NoError(t, s.Close())
}

func TestWALStorageReadAllOnEmptyLog(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenWALStorage(dir)
	require.NoError(t, err)
	defer s.Close()

	term, votedFor, entries, err := s.ReadAll()
	require.NoError(t, err)
	require.Zero(t, term)
	require.Empty(t, votedFor)
	require.Empty(t, entries)
}
