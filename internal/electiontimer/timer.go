// Package electiontimer provides the randomized timeout source a follower
// or candidate uses to detect a missing leader, and the fixed-interval
// ticker a leader uses to schedule heartbeats.
package electiontimer

import (
	"fmt"
	"math/rand"
	"time"
)

// Validate enforces that heartbeat-interval must be strictly less
// than election-timeout.min, or a leader's own heartbeats could race a
// follower's timeout into spurious elections. Fatal at node construction.
func Validate(minTimeout, maxTimeout, heartbeatInterval time.Duration) error {
	if minTimeout <= 0 || maxTimeout <= 0 {
		return fmt.Errorf("electiontimer: election timeout bounds must be positive")
	}
	if maxTimeout < minTimeout {
		return fmt.Errorf("electiontimer: election-timeout.max (%s) must be >= election-timeout.min (%s)", maxTimeout, minTimeout)
	}
	if heartbeatInterval <= 0 {
		return fmt.Errorf("electiontimer: heartbeat-interval must be positive")
	}
	if heartbeatInterval >= minTimeout {
		return fmt.Errorf("electiontimer: heartbeat-interval (%s) must be < election-timeout.min (%s)", heartbeatInterval, minTimeout)
	}
	return nil
}

// Timer produces a fresh randomized duration uniformly in [min, max] each
// time it is armed. Arming replaces any previously armed instance
// atomically: the node loop only ever reads the latest Timer.C.
type Timer struct {
	min, max time.Duration
	rng      *rand.Rand
	t        *time.Timer
	c        chan time.Time
}

// New returns an unarmed Timer. Call Reset to arm it for the first time.
func New(min, max time.Duration) *Timer {
	return &Timer{
		min: min,
		max: max,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		c:   make(chan time.Time, 1),
	}
}

// C is the channel the node loop selects on; it receives exactly one value
// per armed period, at the randomized deadline, unless Stop or a prior
// Reset cancels it first.
func (t *Timer) C() <-chan time.Time { return t.c }

// Reset stops any previously armed timer and arms a new one with a fresh
// randomized duration in [min, max].
func (t *Timer) Reset() {
	t.Stop()
	d := t.min
	if t.max > t.min {
		d += time.Duration(t.rng.Int63n(int64(t.max-t.min) + 1))
	}
	t.t = time.AfterFunc(d, func() {
		select {
		case t.c <- time.Now():
		default:
		}
	})
}

// Stop cancels any armed timer without sending.
func (t *Timer) Stop() {
	if t.t != nil {
		t.t.Stop()
	}
	// drain any pending fire so the next Reset starts clean.
	select {
	case <-t.c:
	default:
	}
}

// Ticker is a fixed-interval repeating timer, used by a Leader for
// heartbeats.
type Ticker struct {
	ticker *time.Ticker
}

// NewTicker starts a repeating ticker at interval.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{ticker: time.NewTicker(interval)}
}

// C is the channel that fires every interval.
func (t *Ticker) C() <-chan time.Time { return t.ticker.C }

// Stop halts the ticker permanently.
func (t *Ticker) Stop() { t.ticker.Stop() }
