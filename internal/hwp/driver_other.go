//go:build !windows

package hwp

// unsupportedDriver stands in on platforms without the automation host.
type unsupportedDriver struct{}

// NewDriver returns a driver that reports the host as unavailable.
func NewDriver() Driver {
	return unsupportedDriver{}
}

func (unsupportedDriver) Connect(ConnectStrategy) error             { return ErrHostUnavailable }
func (unsupportedDriver) RegisterSecurityModule() error             { return ErrHostUnavailable }
func (unsupportedDriver) SuppressDialogs() error                    { return ErrHostUnavailable }
func (unsupportedDriver) OpenDocument(string) error                 { return ErrHostUnavailable }
func (unsupportedDriver) SaveAs(string, string) error               { return ErrHostUnavailable }
func (unsupportedDriver) SaveAsWithOptions(_, _, _ string) error    { return ErrHostUnavailable }
func (unsupportedDriver) CloseDocument() error                      { return ErrHostUnavailable }
func (unsupportedDriver) Quit() error                               { return ErrHostUnavailable }
func (unsupportedDriver) Kill() error                               { return ErrHostUnavailable }

// ProbeHost reports the host as unavailable off Windows.
func ProbeHost() error {
	return ErrHostUnavailable
}
