package hwp

import (
	"errors"
	"testing"
	"time"

	"hwp-converter/internal/domain"
)

// fakeDriver simulates the automation host control protocol.
type fakeDriver struct {
	connect        func(strategy ConnectStrategy) error
	saveAs         func(path, filter string) error
	saveAsOptions  func(path, filter, options string) error
	openDocument   func(path string) error
	suppressErr    error
	registerErr    error
	registerCalls  int
	suppressCalls  int
	openCalls      []string
	saveCalls      []string
	optionCalls    []string
	closeCalls     int
	quitCalls      int
	killCalls      int
	connectedWith  []ConnectStrategy
}

func (f *fakeDriver) Connect(strategy ConnectStrategy) error {
	f.connectedWith = append(f.connectedWith, strategy)
	if f.connect == nil {
		return nil
	}
	return f.connect(strategy)
}

func (f *fakeDriver) RegisterSecurityModule() error {
	f.registerCalls++
	return f.registerErr
}

func (f *fakeDriver) SuppressDialogs() error {
	f.suppressCalls++
	return f.suppressErr
}

func (f *fakeDriver) OpenDocument(path string) error {
	f.openCalls = append(f.openCalls, path)
	if f.openDocument == nil {
		return nil
	}
	return f.openDocument(path)
}

func (f *fakeDriver) SaveAs(path, filter string) error {
	f.saveCalls = append(f.saveCalls, path)
	if f.saveAs == nil {
		return nil
	}
	return f.saveAs(path, filter)
}

func (f *fakeDriver) SaveAsWithOptions(path, filter, options string) error {
	f.optionCalls = append(f.optionCalls, path)
	if f.saveAsOptions == nil {
		return nil
	}
	return f.saveAsOptions(path, filter, options)
}

func (f *fakeDriver) CloseDocument() error { f.closeCalls++; return nil }
func (f *fakeDriver) Quit() error          { f.quitCalls++; return nil }
func (f *fakeDriver) Kill() error          { f.killCalls++; return nil }

// newTestAdapter builds an adapter around one fake driver.
func newTestAdapter(driver *fakeDriver, strategies ...ConnectStrategy) *Adapter {
	if len(strategies) == 0 {
		strategies = DefaultConnectStrategies()
	}
	return NewAdapterForTests(func() Driver { return driver }, strategies, func(time.Duration) {})
}

// TestOpenFirstStrategySucceeds checks that later strategies stay untried.
func TestOpenFirstStrategySucceeds(t *testing.T) {
	driver := &fakeDriver{}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if session == nil || !session.handshakeDone {
		t.Fatalf("session not handshaken: %+v", session)
	}
	if len(driver.connectedWith) != 1 || driver.connectedWith[0] != ConnectFresh {
		t.Fatalf("connect attempts = %v", driver.connectedWith)
	}
	if driver.suppressCalls != 1 {
		t.Fatalf("suppress calls = %d, want 1", driver.suppressCalls)
	}
}

// TestOpenFallsBackThroughStrategies checks the escalation order.
func TestOpenFallsBackThroughStrategies(t *testing.T) {
	driver := &fakeDriver{
		connect: func(strategy ConnectStrategy) error {
			if strategy == ConnectClearCache {
				return nil
			}
			return errors.New("host busy")
		},
	}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if session == nil {
		t.Fatalf("session is nil")
	}

	want := []ConnectStrategy{ConnectFresh, ConnectIgnoreCache, ConnectClearCache}
	if len(driver.connectedWith) != len(want) {
		t.Fatalf("connect attempts = %v", driver.connectedWith)
	}
	for i, strategy := range want {
		if driver.connectedWith[i] != strategy {
			t.Fatalf("attempt %d = %s, want %s", i, driver.connectedWith[i], strategy)
		}
	}
}

// TestOpenExhaustedStrategiesReturnsSessionError checks the fatal path.
func TestOpenExhaustedStrategiesReturnsSessionError(t *testing.T) {
	driver := &fakeDriver{
		connect: func(ConnectStrategy) error { return errors.New("no host") },
	}
	adapter := newTestAdapter(driver)

	_, err := adapter.Open()
	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("error = %v, want *SessionError", err)
	}
	if len(sessionErr.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(sessionErr.Attempts))
	}
}

// TestOpenToleratesSecurityModuleFailure checks registration is optional.
func TestOpenToleratesSecurityModuleFailure(t *testing.T) {
	driver := &fakeDriver{registerErr: errors.New("module missing")}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if session == nil || !session.handshakeDone {
		t.Fatalf("session not handshaken despite tolerated registration failure")
	}
}

// TestOpenRequiresDialogSuppression checks suppression failures escalate.
func TestOpenRequiresDialogSuppression(t *testing.T) {
	driver := &fakeDriver{suppressErr: errors.New("no such method")}
	adapter := newTestAdapter(driver, ConnectFresh)

	_, err := adapter.Open()
	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("error = %v, want *SessionError", err)
	}
}

// TestConvertOneHappyPath checks open, save-as, close ordering.
func TestConvertOneHappyPath(t *testing.T) {
	driver := &fakeDriver{}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := adapter.ConvertOne(session, "/docs/a.hwp", "/docs/a.pdf", domain.FormatPDF); err != nil {
		t.Fatalf("ConvertOne() error = %v", err)
	}
	if len(driver.openCalls) != 1 || driver.openCalls[0] != "/docs/a.hwp" {
		t.Fatalf("open calls = %v", driver.openCalls)
	}
	if len(driver.saveCalls) != 1 || driver.saveCalls[0] != "/docs/a.pdf" {
		t.Fatalf("save calls = %v", driver.saveCalls)
	}
	if len(driver.optionCalls) != 0 {
		t.Fatalf("fallback save used without arity mismatch: %v", driver.optionCalls)
	}
	if driver.closeCalls != 1 {
		t.Fatalf("close calls = %d, want 1", driver.closeCalls)
	}
}

// TestConvertOneRetriesOnArityMismatch checks the dual-arity fallback.
func TestConvertOneRetriesOnArityMismatch(t *testing.T) {
	driver := &fakeDriver{
		saveAs: func(string, string) error { return ErrArityMismatch },
	}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := adapter.ConvertOne(session, "/docs/a.hwp", "/docs/a.pdf", domain.FormatPDF); err != nil {
		t.Fatalf("ConvertOne() error = %v", err)
	}
	if len(driver.optionCalls) != 1 {
		t.Fatalf("fallback calls = %d, want 1", len(driver.optionCalls))
	}
}

// TestConvertOneClosesAfterSaveFailure checks discard-close always runs.
func TestConvertOneClosesAfterSaveFailure(t *testing.T) {
	driver := &fakeDriver{
		saveAs: func(string, string) error { return errors.New("disk full") },
	}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	convErr := adapter.ConvertOne(session, "/docs/a.hwp", "/docs/a.pdf", domain.FormatPDF)
	var conversionErr *ConversionError
	if !errors.As(convErr, &conversionErr) {
		t.Fatalf("error = %v, want *ConversionError", convErr)
	}
	if driver.closeCalls != 1 {
		t.Fatalf("close calls = %d, want 1", driver.closeCalls)
	}
}

// TestConvertOneRejectsDeadSession checks the no-session guard.
func TestConvertOneRejectsDeadSession(t *testing.T) {
	adapter := newTestAdapter(&fakeDriver{})

	err := adapter.ConvertOne(nil, "/docs/a.hwp", "/docs/a.pdf", domain.FormatPDF)
	var conversionErr *ConversionError
	if !errors.As(err, &conversionErr) {
		t.Fatalf("error = %v, want *ConversionError", err)
	}
}

// TestCloseIsIdempotentAndSilent checks graceful teardown semantics.
func TestCloseIsIdempotentAndSilent(t *testing.T) {
	driver := &fakeDriver{}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	adapter.Close(session)
	adapter.Close(nil)
	if driver.quitCalls != 1 {
		t.Fatalf("quit calls = %d, want 1", driver.quitCalls)
	}
	if session.handshakeDone {
		t.Fatalf("handshake flag not cleared on close")
	}
}

// TestKillInvalidatesSession checks forced termination bookkeeping.
func TestKillInvalidatesSession(t *testing.T) {
	driver := &fakeDriver{}
	adapter := newTestAdapter(driver)

	session, err := adapter.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := adapter.Kill(session); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}
	if driver.killCalls != 1 {
		t.Fatalf("kill calls = %d, want 1", driver.killCalls)
	}
	if session.handshakeDone {
		t.Fatalf("handshake flag not cleared on kill")
	}
}
