package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hwp-converter/internal/config"
	"hwp-converter/internal/domain"
)

// InstallOrFixDiagnostic applies a remediation for one failed
// diagnostic item and returns the refreshed report.
func (a *App) InstallOrFixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	settingsChanged := false
	var fixErr error

	switch id {
	case "automation_host":
		// Installing the host suite needs an interactive installer;
		// nothing safe to automate from here.
		fixErr = fmt.Errorf("install Hancom Office manually, then refresh diagnostics")
	case "output_dir":
		settings, settingsChanged, fixErr = fixOutputDir(settings)
	case "backup_root":
		settings, settingsChanged, fixErr = fixBackupRoot(settings)
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	report := a.refreshDiagnosticsFromSettings(settings)
	return report, fixErr
}

// fixOutputDir falls back to the default output directory when none is
// configured, then creates it.
func fixOutputDir(settings domain.Settings) (domain.Settings, bool, error) {
	changed := false
	if strings.TrimSpace(settings.OutputDir) == "" {
		settings.OutputDir = config.DefaultSettings().OutputDir
		changed = true
	}

	if err := os.MkdirAll(settings.OutputDir, 0o755); err != nil {
		return settings, changed, fmt.Errorf("create output directory %s: %w", settings.OutputDir, err)
	}
	return settings, changed, nil
}

// fixBackupRoot falls back to the default backup root when none is
// configured, then creates it.
func fixBackupRoot(settings domain.Settings) (domain.Settings, bool, error) {
	changed := false
	if strings.TrimSpace(settings.BackupRoot) == "" {
		settings.BackupRoot = config.DefaultSettings().BackupRoot
		changed = true
	}

	if err := os.MkdirAll(filepath.Clean(settings.BackupRoot), 0o755); err != nil {
		return settings, changed, fmt.Errorf("create backup directory %s: %w", settings.BackupRoot, err)
	}
	return settings, changed, nil
}

// refreshDiagnosticsFromSettings reruns checks and caches the report.
func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	report := a.checker.Run(settings)

	a.mu.Lock()
	a.Settings = settings
	a.Diagnostics = report
	a.mu.Unlock()

	return report
}
