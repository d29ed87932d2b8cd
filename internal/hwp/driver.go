package hwp

import "errors"

// ConnectStrategy names one way of establishing a connection to the
// automation host. The list of strategies tried for a new session is
// configuration, not fixed behavior.
type ConnectStrategy string

const (
	// ConnectFresh launches or binds a new host instance.
	ConnectFresh ConnectStrategy = "fresh"
	// ConnectIgnoreCache bypasses any cached registration and binds a
	// running host instance before creating a new one.
	ConnectIgnoreCache ConnectStrategy = "ignore-cache"
	// ConnectClearCache drops cached component state and retries.
	ConnectClearCache ConnectStrategy = "clear-cache"
)

// DefaultConnectStrategies returns the reconnect order for new sessions.
func DefaultConnectStrategies() []ConnectStrategy {
	return []ConnectStrategy{ConnectFresh, ConnectIgnoreCache, ConnectClearCache}
}

var (
	// ErrArityMismatch marks a save-as call rejected because of its
	// argument count. Host versions differ in the arity they expect.
	ErrArityMismatch = errors.New("host rejected call argument count")

	// ErrHostUnavailable is returned where no automation host exists.
	ErrHostUnavailable = errors.New("automation host is not available on this platform")
)

// Driver abstracts the synchronous control protocol of the automation
// host: connect, one-time security registration and dialog suppression,
// open, save-as (two arities), discard-close, quit, and force-kill.
type Driver interface {
	Connect(strategy ConnectStrategy) error
	RegisterSecurityModule() error
	SuppressDialogs() error
	OpenDocument(path string) error
	SaveAs(path, hostFilter string) error
	SaveAsWithOptions(path, hostFilter, options string) error
	CloseDocument() error
	Quit() error
	Kill() error
}

// hostProgIDs lists host registrations in priority order.
var hostProgIDs = []string{
	"HWPControl.HwpCtrl.1",
	"HwpObject.HwpObject",
	"HWPFrame.HwpObject",
}
