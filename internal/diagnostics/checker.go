package diagnostics

import (
	"fmt"
	"os"
	"strings"
	"time"

	"hwp-converter/internal/domain"
	"hwp-converter/internal/hwp"
)

// Checker validates the automation host and required filesystem paths.
type Checker struct {
	probeHost  func() error
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS and host dependencies.
func NewChecker() *Checker {
	return &Checker{
		probeHost:  hwp.ProbeHost,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkHost(),
		c.checkOutputDir(settings),
		c.checkBackupRoot(settings.BackupRoot),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkHost verifies an automation host registration is present.
func (c *Checker) checkHost() domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "automation_host",
		Name: "Automation host",
	}

	if err := c.probeHost(); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Automation host is not reachable: %v", err)
		item.Hint = "Install Hancom Office and make sure its automation components are registered."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Automation host registration found."
	return item
}

// checkOutputDir validates the configured output directory when outputs
// are not written beside their sources.
func (c *Checker) checkOutputDir(settings domain.Settings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if settings.SameFolder {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "Outputs are written beside their source files."
		return item
	}

	if strings.TrimSpace(settings.OutputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where converted files can be written."
		return item
	}

	if msg := c.probeWritable(settings.OutputDir); msg != "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = msg
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", settings.OutputDir)
	return item
}

// checkBackupRoot validates the pre-conversion backup location. A
// failure here is reported but never blocks conversion.
func (c *Checker) checkBackupRoot(backupRoot string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "backup_root",
		Name: "Backup folder",
	}

	if strings.TrimSpace(backupRoot) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Backup folder is empty; pre-conversion backups will be skipped."
		item.Hint = "Set a backup folder to keep safety copies of source documents."
		return item
	}

	if msg := c.probeWritable(backupRoot); msg != "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = msg
		item.Hint = "Backups will be skipped until the folder is writable."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", backupRoot)
	return item
}

// probeWritable creates the directory if needed and verifies write
// access; it returns an empty string on success.
func (c *Checker) probeWritable(dir string) string {
	if err := c.mkdirAll(dir, 0o755); err != nil {
		return fmt.Sprintf("Cannot create directory: %s", dir)
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		return fmt.Sprintf("Directory is not writable: %s", dir)
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)
	return ""
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	probeHost func() error,
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		probeHost:  probeHost,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
