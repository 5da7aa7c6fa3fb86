// Package local implements an in-process ports.MessageBus: every member
// runs in the same process and Send is a direct function call into the
// target's mailbox. It is the bus single-process demos and the
// integration test harness run over, where a real network hop between
// members would only add flakiness without exercising anything new.
package local

import (
	"fmt"
	"sync"

	"raftkit/internal/ports"
	"raftkit/internal/raft/wire"
)

// Bus fans Send calls out to whichever Receiver last registered for the
// destination member. Registration and delivery are safe to call from
// any goroutine.
type Bus struct {
	mu        sync.RWMutex
	receivers map[string]ports.Receiver
}

// New returns an empty bus; members join it via Register.
func New() *Bus {
	return &Bus{receivers: make(map[string]ports.Receiver)}
}

// Register associates id with receiver, replacing any previous
// registration — used both for initial cluster setup and to reattach a
// node that restarted under the same id.
func (b *Bus) Register(id string, receiver ports.Receiver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receivers[id] = receiver
}

// Unregister removes id, simulating that member being partitioned away or
// shut down: subsequent Sends to it silently fail.
func (b *Bus) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.receivers, id)
}

// Send implements ports.MessageBus.
func (b *Bus) Send(to string, msg wire.Envelope) error {
	b.mu.RLock()
	receiver, ok := b.receivers[to]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("local: no receiver registered for %q", to)
	}
	receiver.Receive(msg.From, msg)
	return nil
}
