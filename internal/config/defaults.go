package config

import (
	"os"
	"path/filepath"

	"hwp-converter/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		OutputDir:         filepath.Join(homeDir, "Documents", "Converted"),
		SameFolder:        true,
		IncludeSubfolders: false,
		Overwrite:         false,
		Format:            domain.FormatPDF,
		BackupRoot:        filepath.Join(homeDir, ".hwp-converter", "backups"),
		WatchdogSeconds:   45,
	}
}
