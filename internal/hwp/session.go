package hwp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hwp-converter/internal/domain"
)

// Session is one live, handshaken connection to the automation host.
// At most one session exists per process; it is reused across jobs
// until closed or killed by the watchdog.
type Session struct {
	driver        Driver
	handshakeDone bool
	createdAt     time.Time
}

// CreatedAt returns the session creation timestamp.
func (s *Session) CreatedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.createdAt
}

// AttemptFailure records one failed connect strategy.
type AttemptFailure struct {
	Strategy ConnectStrategy `json:"strategy"`
	Err      error           `json:"-"`
}

// SessionError reports that the host stayed unreachable after every
// connect strategy was exhausted. Fatal to the whole batch.
type SessionError struct {
	Attempts []AttemptFailure `json:"attempts"`
}

// Error summarizes each attempted strategy and its failure.
func (e *SessionError) Error() string {
	if e == nil {
		return ""
	}

	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", attempt.Strategy, attempt.Err))
	}
	return fmt.Sprintf("automation host unreachable after %d connect strategies (%s)",
		len(e.Attempts), strings.Join(parts, "; "))
}

// ConversionError reports a failed save-as for one document. Fails only
// the current job.
type ConversionError struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Err    error  `json:"-"`
}

// Error formats conversion failures for outcomes and events.
func (e *ConversionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("convert %s to %s: %v", e.Path, e.Format, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *ConversionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Adapter owns the host session lifecycle and every host interaction.
type Adapter struct {
	newDriver   func() Driver
	strategies  []ConnectStrategy
	settleDelay time.Duration
	sleep       func(time.Duration)
}

// NewAdapter constructs the production adapter with the platform driver
// and the default reconnect strategy order.
func NewAdapter() *Adapter {
	return &Adapter{
		newDriver:   NewDriver,
		strategies:  DefaultConnectStrategies(),
		settleDelay: 300 * time.Millisecond,
		sleep:       time.Sleep,
	}
}

// Open establishes a session, trying each connect strategy in order and
// performing the security/popup-suppression handshake exactly once.
// Exhausting all strategies surfaces a SessionError.
func (a *Adapter) Open() (*Session, error) {
	driver := a.newDriver()

	var attempts []AttemptFailure
	for _, strategy := range a.strategies {
		if err := driver.Connect(strategy); err != nil {
			attempts = append(attempts, AttemptFailure{Strategy: strategy, Err: err})
			continue
		}

		// Some host versions lack the security module; registration
		// failure is tolerated, dialog suppression is not.
		_ = driver.RegisterSecurityModule()
		if err := driver.SuppressDialogs(); err != nil {
			attempts = append(attempts, AttemptFailure{Strategy: strategy, Err: err})
			continue
		}

		return &Session{
			driver:        driver,
			handshakeDone: true,
			createdAt:     time.Now(),
		}, nil
	}

	return nil, &SessionError{Attempts: attempts}
}

// ConvertOne performs a single open, save-as, discard-close cycle. A
// save-as rejected for its argument count is retried once with the
// trailing optional argument of newer host versions.
func (a *Adapter) ConvertOne(session *Session, sourcePath, outputPath string, format domain.TargetFormat) error {
	if session == nil || !session.handshakeDone {
		return &ConversionError{
			Path:   sourcePath,
			Format: string(format),
			Err:    errors.New("no live host session"),
		}
	}

	spec, ok := domain.SpecFor(format)
	if !ok {
		return &ConversionError{
			Path:   sourcePath,
			Format: string(format),
			Err:    fmt.Errorf("unknown target format"),
		}
	}

	if err := session.driver.OpenDocument(sourcePath); err != nil {
		return &ConversionError{Path: sourcePath, Format: string(format), Err: err}
	}

	// The host's internal state is not consistent immediately after open.
	a.sleep(a.settleDelay)

	err := session.driver.SaveAs(outputPath, spec.HostFilter)
	if errors.Is(err, ErrArityMismatch) {
		err = session.driver.SaveAsWithOptions(outputPath, spec.HostFilter, "")
	}

	// Discard on close, also after failure, so no save-changes prompt
	// can block the next job.
	_ = session.driver.CloseDocument()

	if err != nil {
		return &ConversionError{Path: sourcePath, Format: string(format), Err: err}
	}
	return nil
}

// Close shuts the host down gracefully, discarding any open document
// state. Close never fails; teardown errors are ignored.
func (a *Adapter) Close(session *Session) {
	if session == nil {
		return
	}
	_ = session.driver.Quit()
	session.handshakeDone = false
}

// Kill force-terminates the host process behind the session.
func (a *Adapter) Kill(session *Session) error {
	if session == nil {
		return nil
	}
	session.handshakeDone = false
	return session.driver.Kill()
}

// NewAdapterForTests constructs an adapter with injectable dependencies.
func NewAdapterForTests(newDriver func() Driver, strategies []ConnectStrategy, sleep func(time.Duration)) *Adapter {
	return &Adapter{
		newDriver:   newDriver,
		strategies:  strategies,
		settleDelay: time.Millisecond,
		sleep:       sleep,
	}
}
