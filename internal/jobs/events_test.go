package jobs

import (
	"testing"

	"hwp-converter/internal/domain"
)

// TestEventBusAssignsSequenceAndTimestamp checks publish bookkeeping.
func TestEventBusAssignsSequenceAndTimestamp(t *testing.T) {
	bus := NewEventBus(10)

	first := bus.Publish(Event{BatchID: "b1", Type: EventTypeStatus, Status: domain.BatchStatusRunning})
	second := bus.Publish(Event{BatchID: "b1", Type: EventTypeOutcome})

	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("seqs = %d, %d", first.Seq, second.Seq)
	}
	if first.Timestamp.IsZero() || second.Timestamp.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

// TestEventBusSinceReturnsOnlyNewer checks incremental reads.
func TestEventBusSinceReturnsOnlyNewer(t *testing.T) {
	bus := NewEventBus(10)
	for i := 0; i < 5; i++ {
		bus.Publish(Event{BatchID: "b1", Type: EventTypeOutcome})
	}

	got := bus.Since(3)
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].Seq != 4 || got[1].Seq != 5 {
		t.Fatalf("seqs = %d, %d", got[0].Seq, got[1].Seq)
	}
}

// TestEventBusBoundsHistory checks old events are trimmed.
func TestEventBusBoundsHistory(t *testing.T) {
	bus := NewEventBus(3)
	for i := 0; i < 6; i++ {
		bus.Publish(Event{BatchID: "b1", Type: EventTypeOutcome})
	}

	got := bus.Since(0)
	if len(got) != 3 {
		t.Fatalf("events = %d, want 3", len(got))
	}
	if got[0].Seq != 4 {
		t.Fatalf("oldest retained seq = %d, want 4", got[0].Seq)
	}
}

// TestEventBusSinceEmpty checks nil result on empty history.
func TestEventBusSinceEmpty(t *testing.T) {
	bus := NewEventBus(3)
	if got := bus.Since(0); got != nil {
		t.Fatalf("events = %v, want nil", got)
	}
}
