package convert

import (
	"context"
	"errors"
	"os"
	"time"

	"hwp-converter/internal/backup"
	"hwp-converter/internal/domain"
	"hwp-converter/internal/hwp"
)

// Batch phases reported through Request.OnPhase.
const (
	PhaseInitializing = "initializing"
	PhaseRunning      = "running"
	PhaseDraining     = "draining"
	PhaseCompleted    = "completed"
)

// Request carries one batch of jobs and execution callbacks. Callbacks
// are notifications only and must not block the worker.
type Request struct {
	Jobs       []domain.ConversionJob
	OnPhase    func(phase string)
	OnProgress func(completed, total int, outcome domain.ConversionOutcome)
}

// hostSession isolates the automation session adapter for testability.
type hostSession interface {
	Open() (*hwp.Session, error)
	ConvertOne(session *hwp.Session, sourcePath, outputPath string, format domain.TargetFormat) error
	Close(session *hwp.Session)
	Kill(session *hwp.Session) error
}

// pathResolver computes final output paths before any filesystem mutation.
type pathResolver interface {
	Resolve(job domain.ConversionJob) (string, error)
}

// backupTaker performs the best-effort pre-conversion copy.
type backupTaker interface {
	Backup(sourcePath string) backup.Result
}

// Orchestrator drives one batch of conversion jobs sequentially over a
// single host session. The host is non-reentrant, so no two conversions
// ever run concurrently; only one Orchestrator may be active against
// the host per process.
type Orchestrator struct {
	session  hostSession
	resolver pathResolver
	backups  backupTaker
	watchdog *hwp.Watchdog
	now      func() time.Time
	fileSize func(path string) int64
}

// New constructs the production orchestrator.
func New(session *hwp.Adapter, resolver pathResolver, backups backupTaker, watchdog *hwp.Watchdog) *Orchestrator {
	return &Orchestrator{
		session:  session,
		resolver: resolver,
		backups:  backups,
		watchdog: watchdog,
		now:      time.Now,
		fileSize: statSize,
	}
}

// Run processes jobs in submission order and returns one terminal
// outcome per job. Cancellation is cooperative and checked between jobs
// only; an in-flight host call is never preempted. Only a failure to
// open (or rebuild) the host session is returned as a batch error.
func (o *Orchestrator) Run(ctx context.Context, req Request) ([]domain.ConversionOutcome, error) {
	total := len(req.Jobs)
	outcomes := make([]domain.ConversionOutcome, 0, total)

	emitPhase(req.OnPhase, PhaseInitializing)
	session, err := o.session.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		o.session.Close(session)
	}()

	emitPhase(req.OnPhase, PhaseRunning)
	cancelled := false
	for _, job := range req.Jobs {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
			emitPhase(req.OnPhase, PhaseDraining)
		}
		if cancelled {
			// No filesystem or host call is made for drained jobs.
			outcome := domain.ConversionOutcome{
				JobID:  job.ID,
				Status: domain.OutcomeCancelled,
			}
			outcomes = append(outcomes, outcome)
			emitProgress(req.OnProgress, len(outcomes), total, outcome)
			continue
		}

		start := o.now()

		// The output path is fixed before backup or conversion touch
		// the filesystem, so a crash mid-job leaves no renamed files.
		outputPath, resolveErr := o.resolver.Resolve(job)
		if resolveErr != nil {
			outcome := domain.ConversionOutcome{
				JobID:       job.ID,
				Status:      domain.OutcomeFailed,
				ErrorDetail: resolveErr.Error(),
				Elapsed:     o.now().Sub(start),
			}
			outcomes = append(outcomes, outcome)
			emitProgress(req.OnProgress, len(outcomes), total, outcome)
			continue
		}

		backupPath := ""
		if o.backups != nil {
			if res := o.backups.Backup(job.SourcePath); res.Record != nil {
				backupPath = res.Record.BackupPath
			}
		}

		deadline := o.watchdog.DeadlineFor(o.fileSize(job.SourcePath))
		current := session
		convErr := o.watchdog.Guard(deadline,
			func() error { return o.session.Kill(current) },
			func() error { return o.session.ConvertOne(current, job.SourcePath, outputPath, job.Format) },
		)

		var hung *hwp.HostHungError
		if errors.As(convErr, &hung) {
			outcome := domain.ConversionOutcome{
				JobID:       job.ID,
				Status:      domain.OutcomeFailed,
				BackupPath:  backupPath,
				ErrorDetail: convErr.Error(),
				Elapsed:     o.now().Sub(start),
			}
			outcomes = append(outcomes, outcome)
			emitProgress(req.OnProgress, len(outcomes), total, outcome)

			// The killed session is discarded, not closed; the next
			// job needs a freshly opened one.
			session = nil
			fresh, openErr := o.session.Open()
			if openErr != nil {
				return outcomes, openErr
			}
			session = fresh
			continue
		}

		if convErr != nil {
			outcome := domain.ConversionOutcome{
				JobID:       job.ID,
				Status:      domain.OutcomeFailed,
				BackupPath:  backupPath,
				ErrorDetail: convErr.Error(),
				Elapsed:     o.now().Sub(start),
			}
			outcomes = append(outcomes, outcome)
			emitProgress(req.OnProgress, len(outcomes), total, outcome)
			continue
		}

		outcome := domain.ConversionOutcome{
			JobID:      job.ID,
			Status:     domain.OutcomeSuccess,
			OutputPath: outputPath,
			BackupPath: backupPath,
			Elapsed:    o.now().Sub(start),
		}
		outcomes = append(outcomes, outcome)
		emitProgress(req.OnProgress, len(outcomes), total, outcome)
	}

	emitPhase(req.OnPhase, PhaseCompleted)
	return outcomes, nil
}

// emitPhase forwards phase updates when callback is configured.
func emitPhase(cb func(phase string), phase string) {
	if cb != nil {
		cb(phase)
	}
}

// emitProgress forwards per-job outcomes when callback is configured.
func emitProgress(cb func(completed, total int, outcome domain.ConversionOutcome), completed, total int, outcome domain.ConversionOutcome) {
	if cb != nil {
		cb(completed, total, outcome)
	}
}

// statSize returns the file size or zero when the file is unreadable.
func statSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// NewForTests constructs an orchestrator with injectable dependencies.
func NewForTests(session hostSession, resolver pathResolver, backups backupTaker, watchdog *hwp.Watchdog) *Orchestrator {
	return &Orchestrator{
		session:  session,
		resolver: resolver,
		backups:  backups,
		watchdog: watchdog,
		now:      time.Now,
		fileSize: func(string) int64 { return 0 },
	}
}
