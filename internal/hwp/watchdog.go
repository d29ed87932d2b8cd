package hwp

import (
	"fmt"
	"sync/atomic"
	"time"
)

// HostHungError reports a forced host termination after the deadline
// expired with the call still in flight. The session behind the call is
// invalid and must be rebuilt.
type HostHungError struct {
	Deadline time.Duration `json:"deadline"`
}

// Error formats watchdog terminations for outcomes and events.
func (e *HostHungError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("host did not respond within %s and was terminated", e.Deadline)
}

// Watchdog bounds the wall-clock time of each host call and
// force-terminates the host when a call exceeds its deadline.
type Watchdog struct {
	base        time.Duration
	perMegabyte time.Duration
	max         time.Duration
}

// NewWatchdog creates a watchdog with the given base deadline.
func NewWatchdog(base time.Duration) *Watchdog {
	if base <= 0 {
		base = 45 * time.Second
	}
	return &Watchdog{
		base:        base,
		perMegabyte: time.Second,
		max:         10 * time.Minute,
	}
}

// DeadlineFor scales the base deadline for very large documents.
func (w *Watchdog) DeadlineFor(sizeBytes int64) time.Duration {
	deadline := w.base
	if sizeBytes > 1<<20 {
		deadline += time.Duration(sizeBytes>>20) * w.perMegabyte
	}
	if deadline > w.max {
		deadline = w.max
	}
	return deadline
}

// Guard runs call and force-terminates the host if it has not returned
// within deadline. The settled flag is claimed exactly once, by either
// the call or the timer, so a call that returned in time is never
// followed by a kill even when teardown afterward is slow.
func (w *Watchdog) Guard(deadline time.Duration, kill func() error, call func() error) error {
	done := make(chan error, 1)
	var settled atomic.Bool

	go func() {
		err := call()
		if settled.CompareAndSwap(false, true) {
			done <- err
		}
	}()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		if !settled.CompareAndSwap(false, true) {
			// The call won the race with the timer.
			return <-done
		}
		if kill != nil {
			_ = kill()
		}
		return &HostHungError{Deadline: deadline}
	}
}
