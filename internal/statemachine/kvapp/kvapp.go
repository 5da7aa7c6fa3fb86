// Package kvapp is a minimal key-value application used to exercise a
// raft.Node end to end: a tiny ports.StateMachine that commands get
// applied against once they commit.
package kvapp

import (
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Op names the mutation a Command performs.
type Op string

const (
	OpSet    Op = "SET"
	OpDelete Op = "DELETE"
	OpGet    Op = "GET"
)

// Command is the application-level command type this package recognizes.
// Every committed entry whose Command is a Command value is routed here;
// anything else (the raft package's own configuration commands) never
// reaches Apply. RequestID is a client-generated correlation id: unlike a
// local counter, a uuid can be assigned independently by many client
// processes without coordination and still be safely used to match a
// CommandApplied reply back to the request that produced it.
type Command struct {
	RequestID string
	Op        Op
	Key       string
	Value     any
}

// NewCommand builds a Command with a fresh correlation id.
func NewCommand(op Op, key string, value any) Command {
	return Command{RequestID: uuid.NewString(), Op: op, Key: key, Value: value}
}

func init() {
	gob.Register(Command{})
}

// Reply is returned from Apply for every command it executes; a missing key
// is a normal reply with Found=false, not a fault that would otherwise be
// confused with a communication failure. A command Apply cannot execute
// (wrong type, unknown Op) gets a Go error and no Reply; Apply leaves Err
// empty. RequestID echoes the originating Command's id.
type Reply struct {
	RequestID string
	Value     any
	Found     bool
	Err       string
}

// App is a sync.RWMutex-guarded in-memory key-value store. It is driven
// exclusively from the single goroutine that calls Apply as entries
// commit, so the lock here only protects concurrent reads made through
// Get from outside that goroutine (e.g. a read-only status endpoint).
type App struct {
	mu   sync.RWMutex
	data map[string]any
}

// New returns an empty store.
func New() *App {
	return &App{data: make(map[string]any)}
}

// Apply implements ports.StateMachine.
func (a *App) Apply(command any) (any, error) {
	cmd, ok := command.(Command)
	if !ok {
		return nil, fmt.Errorf("kvapp: unexpected command type %T", command)
	}

	switch cmd.Op {
	case OpSet:
		a.mu.Lock()
		a.data[cmd.Key] = cmd.Value
		a.mu.Unlock()
		return Reply{RequestID: cmd.RequestID}, nil

	case OpDelete:
		a.mu.Lock()
		delete(a.data, cmd.Key)
		a.mu.Unlock()
		return Reply{RequestID: cmd.RequestID}, nil

	case OpGet:
		a.mu.RLock()
		v, found := a.data[cmd.Key]
		a.mu.RUnlock()
		if !found {
			return Reply{RequestID: cmd.RequestID, Found: false}, nil
		}
		return Reply{RequestID: cmd.RequestID, Value: v, Found: true}, nil

	default:
		return nil, fmt.Errorf("kvapp: unknown op %q", cmd.Op)
	}
}

// Get reads the current value for key directly, bypassing the log —
// useful for tests and read-only status surfaces that tolerate
// reading stale or uncommitted-elsewhere state.
func (a *App) Get(key string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.data[key]
	return v, ok
}
