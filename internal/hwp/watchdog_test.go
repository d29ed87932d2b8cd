package hwp

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// TestGuardReturnsCallResultBeforeDeadline checks the fast path.
func TestGuardReturnsCallResultBeforeDeadline(t *testing.T) {
	w := NewWatchdog(time.Second)

	var kills atomic.Int32
	callErr := errors.New("save failed")
	err := w.Guard(time.Second,
		func() error { kills.Add(1); return nil },
		func() error { return callErr },
	)

	if !errors.Is(err, callErr) {
		t.Fatalf("error = %v, want call error", err)
	}
	if kills.Load() != 0 {
		t.Fatalf("kill invoked for a call that returned in time")
	}
}

// TestGuardKillsHungCall checks deadline expiry terminates the host.
func TestGuardKillsHungCall(t *testing.T) {
	w := NewWatchdog(time.Second)

	var kills atomic.Int32
	release := make(chan struct{})
	defer close(release)

	err := w.Guard(10*time.Millisecond,
		func() error { kills.Add(1); return nil },
		func() error { <-release; return nil },
	)

	var hung *HostHungError
	if !errors.As(err, &hung) {
		t.Fatalf("error = %v, want *HostHungError", err)
	}
	if hung.Deadline != 10*time.Millisecond {
		t.Fatalf("deadline = %s", hung.Deadline)
	}
	if kills.Load() != 1 {
		t.Fatalf("kill calls = %d, want 1", kills.Load())
	}
}

// TestGuardNeverKillsTwice checks the settled flag is claimed once.
func TestGuardNeverKillsTwice(t *testing.T) {
	w := NewWatchdog(time.Second)

	var kills atomic.Int32
	for i := 0; i < 20; i++ {
		_ = w.Guard(time.Millisecond,
			func() error { kills.Add(1); return nil },
			func() error { time.Sleep(time.Millisecond); return nil },
		)
	}

	if kills.Load() > 20 {
		t.Fatalf("kill calls = %d, want at most one per guarded call", kills.Load())
	}
}

// TestDeadlineForScalesWithSize checks large-document scaling and cap.
func TestDeadlineForScalesWithSize(t *testing.T) {
	w := NewWatchdog(45 * time.Second)

	if got := w.DeadlineFor(0); got != 45*time.Second {
		t.Fatalf("empty file deadline = %s", got)
	}
	if got := w.DeadlineFor(512 << 10); got != 45*time.Second {
		t.Fatalf("small file deadline = %s", got)
	}
	if got := w.DeadlineFor(10 << 20); got != 45*time.Second+10*time.Second {
		t.Fatalf("10 MiB deadline = %s", got)
	}
	if got := w.DeadlineFor(1 << 40); got != 10*time.Minute {
		t.Fatalf("huge file deadline = %s, want cap", got)
	}
}

// TestNewWatchdogDefaultsBase checks zero config falls back to default.
func TestNewWatchdogDefaultsBase(t *testing.T) {
	w := NewWatchdog(0)
	if got := w.DeadlineFor(0); got != 45*time.Second {
		t.Fatalf("default deadline = %s", got)
	}
}
