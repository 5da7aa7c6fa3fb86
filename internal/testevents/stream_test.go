package testevents

import "testing"

func TestCollector_RecordsInOrder(t *testing.T) {
	c := NewCollector()
	c.Publish(Event{Kind: BeginElection, Term: 1})
	c.Publish(Event{Kind: ElectedAsLeader, Term: 1})
	c.Publish(Event{Kind: EntryCommitted, Index: 1})

	events := c.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Kind != BeginElection || events[2].Kind != EntryCommitted {
		t.Fatalf("unexpected event order: %+v", events)
	}

	last, ok := c.Last()
	if !ok || last.Kind != EntryCommitted || last.Index != 1 {
		t.Fatalf("unexpected last event: %+v ok=%v", last, ok)
	}
}

func TestNoOp_DiscardsEvents(t *testing.T) {
	var p Publisher = NoOp{}
	p.Publish(Event{Kind: BeginElection})
}

func TestLoggingPublisher_ImplementsPublisher(t *testing.T) {
	var p Publisher = NewLoggingPublisher("node-1")
	p.Publish(Event{Kind: ElectedAsLeader, Term: 2})
}
