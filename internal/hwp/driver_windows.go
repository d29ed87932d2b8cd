//go:build windows

package hwp

import (
	"errors"
	"fmt"
	"os/exec"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// dispBadParamCount is the COM status for a wrong argument count.
const dispBadParamCount = 0x8002000E

// hostProcessName is the executable image the force-kill targets.
const hostProcessName = "Hwp.exe"

// comDriver controls the HWP automation host through its COM interface.
type comDriver struct {
	object *ole.IDispatch
	progID string
}

// NewDriver returns the COM-backed automation host driver.
func NewDriver() Driver {
	return &comDriver{}
}

// Connect binds the host object using the requested strategy. Each
// registered ProgID is tried in priority order.
func (d *comDriver) Connect(strategy ConnectStrategy) error {
	// Repeated initialization of the apartment is harmless.
	_ = ole.CoInitialize(0)

	if strategy == ConnectClearCache {
		d.release()
		ole.CoUninitialize()
		_ = ole.CoInitialize(0)
	}

	var errs []error
	for _, progID := range hostProgIDs {
		object, err := d.bind(progID, strategy)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", progID, err))
			continue
		}

		d.object = object
		d.progID = progID
		return nil
	}

	return fmt.Errorf("no host registration responded: %w", errors.Join(errs...))
}

// bind creates or attaches the host dispatch object for one ProgID.
func (d *comDriver) bind(progID string, strategy ConnectStrategy) (*ole.IDispatch, error) {
	if strategy == ConnectIgnoreCache {
		if unknown, err := oleutil.GetActiveObject(progID); err == nil {
			return unknown.QueryInterface(ole.IID_IDispatch)
		}
	}

	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		return nil, err
	}
	return unknown.QueryInterface(ole.IID_IDispatch)
}

// RegisterSecurityModule registers the file-path checker so the host
// skips its security confirmation popup for local file access.
func (d *comDriver) RegisterSecurityModule() error {
	_, err := oleutil.CallMethod(d.object, "RegisterModule", "FilePathCheckDLL", "FilePathCheckerModuleExample")
	return err
}

// SuppressDialogs disables host message boxes for unattended operation.
func (d *comDriver) SuppressDialogs() error {
	_, err := oleutil.CallMethod(d.object, "SetMessageBoxMode", 0x00000001)
	return err
}

// OpenDocument opens the source file, forcing open even when the host
// considers it locked by another instance.
func (d *comDriver) OpenDocument(path string) error {
	_, err := oleutil.CallMethod(d.object, "Open", path, "HWP", "forceopen:true")
	return err
}

// SaveAs invokes the two-argument save-as variant.
func (d *comDriver) SaveAs(path, hostFilter string) error {
	_, err := oleutil.CallMethod(d.object, "SaveAs", path, hostFilter)
	return classifyCallError(err)
}

// SaveAsWithOptions invokes the three-argument save-as variant used by
// newer host versions.
func (d *comDriver) SaveAsWithOptions(path, hostFilter, options string) error {
	_, err := oleutil.CallMethod(d.object, "SaveAs", path, hostFilter, options)
	return classifyCallError(err)
}

// CloseDocument discards the current document without a save prompt.
func (d *comDriver) CloseDocument() error {
	_, err := oleutil.CallMethod(d.object, "Clear", 1)
	return err
}

// Quit discards all open documents and shuts the host down.
func (d *comDriver) Quit() error {
	_, clearErr := oleutil.CallMethod(d.object, "Clear", 3)
	_, quitErr := oleutil.CallMethod(d.object, "Quit")
	d.release()
	ole.CoUninitialize()

	if quitErr != nil {
		return quitErr
	}
	return clearErr
}

// Kill force-terminates the host process. Used when the host is wedged
// and no longer answers calls.
func (d *comDriver) Kill() error {
	d.release()
	return exec.Command("taskkill", "/F", "/IM", hostProcessName).Run()
}

// release drops the held dispatch reference.
func (d *comDriver) release() {
	if d.object != nil {
		d.object.Release()
		d.object = nil
	}
}

// classifyCallError maps a COM bad-parameter-count failure onto
// ErrArityMismatch so callers can apply the arity fallback.
func classifyCallError(err error) error {
	if err == nil {
		return nil
	}

	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && uint32(oleErr.Code()) == dispBadParamCount {
		return fmt.Errorf("%w: %v", ErrArityMismatch, err)
	}
	return err
}

// ProbeHost reports whether any host registration resolves on this
// machine without instantiating the host.
func ProbeHost() error {
	for _, progID := range hostProgIDs {
		if _, err := ole.CLSIDFromProgID(progID); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no automation host registration found (tried %d ProgIDs)", len(hostProgIDs))
}
