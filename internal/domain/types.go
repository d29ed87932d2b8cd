package domain

import "time"

// DestinationPolicy selects where a job's output file is placed.
type DestinationPolicy string

const (
	DestinationSameFolder DestinationPolicy = "same-folder"
	DestinationFixed      DestinationPolicy = "fixed-folder"
)

// OverwritePolicy controls collision handling for output paths.
type OverwritePolicy string

const (
	OverwriteAllow  OverwritePolicy = "allow"
	OverwriteRename OverwritePolicy = "rename-on-conflict"
)

// ConversionJob describes one document conversion. Immutable once enqueued.
type ConversionJob struct {
	ID          string            `json:"id"`
	SourcePath  string            `json:"sourcePath"`
	Format      TargetFormat      `json:"format"`
	Destination DestinationPolicy `json:"destination"`
	OutputDir   string            `json:"outputDir,omitempty"`
	Overwrite   OverwritePolicy   `json:"overwrite"`
}

// OutcomeStatus is the terminal state of one conversion job.
type OutcomeStatus string

const (
	OutcomeSuccess   OutcomeStatus = "success"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeCancelled OutcomeStatus = "cancelled"
)

// ConversionOutcome is produced exactly once per enqueued job.
type ConversionOutcome struct {
	JobID       string        `json:"jobId"`
	Status      OutcomeStatus `json:"status"`
	OutputPath  string        `json:"outputPath,omitempty"`
	BackupPath  string        `json:"backupPath,omitempty"`
	ErrorDetail string        `json:"errorDetail,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// BackupRecord describes one pre-conversion safety copy.
type BackupRecord struct {
	SourcePath string    `json:"sourcePath"`
	BackupPath string    `json:"backupPath"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BatchStatus tracks the lifecycle of a whole conversion batch.
type BatchStatus string

const (
	BatchStatusIdle         BatchStatus = "idle"
	BatchStatusInitializing BatchStatus = "initializing"
	BatchStatusRunning      BatchStatus = "running"
	BatchStatusDraining     BatchStatus = "draining"
	BatchStatusCompleted    BatchStatus = "completed"
	BatchStatusFailed       BatchStatus = "failed"
)

// Batch stores the current batch identity and progress counters.
type Batch struct {
	ID        string      `json:"id"`
	Status    BatchStatus `json:"status"`
	Total     int         `json:"total"`
	Completed int         `json:"completed"`
}

// Settings contains user-selectable runtime configuration.
type Settings struct {
	OutputDir         string       `json:"outputDir"`
	SameFolder        bool         `json:"sameFolder"`
	IncludeSubfolders bool         `json:"includeSubfolders"`
	Overwrite         bool         `json:"overwrite"`
	Format            TargetFormat `json:"format"`
	BackupRoot        string       `json:"backupRoot"`
	WatchdogSeconds   int          `json:"watchdogSeconds"`
}
