package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"hwp-converter/internal/backup"
	"hwp-converter/internal/config"
	"hwp-converter/internal/convert"
	"hwp-converter/internal/diagnostics"
	"hwp-converter/internal/domain"
	"hwp-converter/internal/hwp"
	"hwp-converter/internal/jobs"
	"hwp-converter/internal/outpath"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var documentDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "HWP documents",
		Pattern:     "*.hwp;*.hwpx",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App wires configuration, batch state, the conversion engine, and UI
// runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Batches     *jobs.Manager
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	newRunner   func(settings domain.Settings) batchRunner

	mu            sync.Mutex
	activeBatchID string
	cancel        context.CancelFunc
	events        *jobs.EventBus
	runtimeCtx    context.Context
}

// batchRunner isolates the conversion orchestrator behind an interface.
type batchRunner interface {
	Run(ctx context.Context, req convert.Request) ([]domain.ConversionOutcome, error)
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".hwp-converter", "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	return &App{
		Settings:    settings,
		Store:       store,
		Batches:     jobs.NewManager(),
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		newRunner:   newOrchestrator,
		events:      jobs.NewEventBus(1000),
	}, nil
}

// newOrchestrator assembles the conversion engine for one batch. The
// settings snapshot taken at batch start stays fixed for its lifetime.
func newOrchestrator(settings domain.Settings) batchRunner {
	watchdog := hwp.NewWatchdog(time.Duration(settings.WatchdogSeconds) * time.Second)
	return convert.New(hwp.NewAdapter(), outpath.NewResolver(), backup.NewManager(settings.BackupRoot), watchdog)
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "HWP Converter",
		Width:       900,
		Height:      760,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// Formats lists the selectable output formats for the UI.
func (a *App) Formats() []domain.FormatSpec {
	return domain.AllFormats()
}

// PickInputFiles opens a native file dialog for document selection.
func (a *App) PickInputFiles() ([]string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return nil, err
	}

	paths, err := wailsruntime.OpenMultipleFilesDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select documents",
		Filters: documentDialogFilter,
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// PickInputFolder opens a native directory picker for a folder whose
// documents will be converted as a batch.
func (a *App) PickInputFolder() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select folder to convert",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for converted files.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickBackupDirectory opens a native directory picker for the backup root.
func (a *App) PickBackupDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select backup directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// RefreshDiagnostics reloads settings and reruns environment checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	return a.refreshDiagnosticsFromSettings(settings), nil
}

// StartConversion validates inputs, builds a batch from persisted
// settings, and runs it asynchronously on a dedicated worker.
func (a *App) StartConversion(inputPaths []string) (domain.Batch, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Batch{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	jobList, err := buildJobs(inputPaths, settings)
	if err != nil {
		return domain.Batch{}, err
	}

	batchID := uuid.NewString()
	if err := a.Batches.Start(batchID, len(jobList)); err != nil {
		return domain.Batch{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.activeBatchID = batchID
	a.cancel = cancel
	a.Settings = settings
	a.mu.Unlock()

	a.publishStatus(batchID, domain.BatchStatusInitializing, fmt.Sprintf("Batch started with %d files", len(jobList)))

	go a.runBatch(ctx, batchID, jobList, settings)
	return a.Batches.Current(), nil
}

// CancelConversion requests cooperative cancellation of the running
// batch. A job already in flight with the host is never interrupted.
func (a *App) CancelConversion() error {
	a.mu.Lock()
	cancel := a.cancel
	activeBatchID := a.activeBatchID
	a.mu.Unlock()

	if cancel == nil {
		return jobs.ErrNoRunningBatch
	}

	cancel()
	if activeBatchID != "" {
		a.publishStatus(activeBatchID, domain.BatchStatusDraining, "Cancellation requested")
	}
	return nil
}

// CurrentBatch returns current batch metadata and status.
func (a *App) CurrentBatch() domain.Batch {
	return a.Batches.Current()
}

// BatchEvents returns all events with sequence greater than sinceSeq.
func (a *App) BatchEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// runBatch executes the orchestrator and maps phases and outcomes to
// batch events.
func (a *App) runBatch(ctx context.Context, batchID string, jobList []domain.ConversionJob, settings domain.Settings) {
	runner := a.newRunner(settings)

	req := convert.Request{
		Jobs: jobList,
		OnPhase: func(phase string) {
			status, ok := mapPhaseToStatus(phase)
			if !ok {
				return
			}
			if err := a.Batches.Transition(status); err == nil {
				a.publishStatus(batchID, status, "Batch "+phase)
			}
		},
		OnProgress: func(completed, total int, outcome domain.ConversionOutcome) {
			a.Batches.Advance()
			a.publishEvent(jobs.Event{
				BatchID:   batchID,
				Type:      jobs.EventTypeOutcome,
				JobID:     outcome.JobID,
				Outcome:   outcome.Status,
				Output:    outcome.OutputPath,
				Backup:    outcome.BackupPath,
				Detail:    outcome.ErrorDetail,
				Completed: completed,
				Total:     total,
			})
		},
	}

	outcomes, err := runner.Run(ctx, req)
	if err != nil {
		_ = a.Batches.Transition(domain.BatchStatusFailed)
		a.publishStatus(batchID, domain.BatchStatusFailed, "Batch failed")
		a.publishEvent(jobs.Event{
			BatchID: batchID,
			Type:    jobs.EventTypeError,
			Status:  domain.BatchStatusFailed,
			Message: err.Error(),
		})
		a.clearActiveBatch(batchID)
		return
	}

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Status == domain.OutcomeSuccess {
			succeeded++
		}
	}

	a.publishEvent(jobs.Event{
		BatchID:   batchID,
		Type:      jobs.EventTypeResult,
		Status:    domain.BatchStatusCompleted,
		Message:   fmt.Sprintf("Converted %d of %d files", succeeded, len(outcomes)),
		Completed: len(outcomes),
		Total:     len(outcomes),
	})
	a.clearActiveBatch(batchID)
}

// buildJobs expands the selection into immutable conversion jobs. A
// directory entry is scanned for convertible documents, descending into
// subfolders when configured.
func buildJobs(inputPaths []string, settings domain.Settings) ([]domain.ConversionJob, error) {
	if len(inputPaths) == 0 {
		return nil, fmt.Errorf("no input files selected")
	}

	destination := domain.DestinationFixed
	if settings.SameFolder {
		destination = domain.DestinationSameFolder
	}
	overwrite := domain.OverwriteRename
	if settings.Overwrite {
		overwrite = domain.OverwriteAllow
	}

	jobList := make([]domain.ConversionJob, 0, len(inputPaths))
	for _, path := range inputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}

		info, err := os.Stat(trimmed)
		if err != nil {
			return nil, fmt.Errorf("cannot access input path: %s", trimmed)
		}

		if info.IsDir() {
			found, err := collectFolderJobs(trimmed, settings, destination, overwrite)
			if err != nil {
				return nil, err
			}
			jobList = append(jobList, found...)
			continue
		}

		if !domain.SupportedInput(trimmed) {
			return nil, fmt.Errorf("unsupported file type: %s", filepath.Base(trimmed))
		}
		jobList = append(jobList, newJob(trimmed, settings.OutputDir, settings, destination, overwrite))
	}

	if len(jobList) == 0 {
		return nil, fmt.Errorf("no convertible documents selected")
	}
	return jobList, nil
}

// collectFolderJobs scans a folder for convertible documents. Under a
// fixed output folder, a found document's relative subtree is mirrored
// below it.
func collectFolderJobs(root string, settings domain.Settings, destination domain.DestinationPolicy, overwrite domain.OverwritePolicy) ([]domain.ConversionJob, error) {
	var jobList []domain.ConversionJob

	appendDoc := func(path string) {
		outputDir := settings.OutputDir
		if destination == domain.DestinationFixed {
			if rel, err := filepath.Rel(root, filepath.Dir(path)); err == nil && rel != "." {
				outputDir = filepath.Join(settings.OutputDir, rel)
			}
		}
		jobList = append(jobList, newJob(path, outputDir, settings, destination, overwrite))
	}

	if settings.IncludeSubfolders {
		walkErr := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && domain.SupportedInput(path) {
				appendDoc(path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("scan folder %s: %w", root, walkErr)
		}
		return jobList, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan folder %s: %w", root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && domain.SupportedInput(entry.Name()) {
			appendDoc(filepath.Join(root, entry.Name()))
		}
	}
	return jobList, nil
}

// newJob builds one immutable conversion job from the captured policies.
func newJob(sourcePath, outputDir string, settings domain.Settings, destination domain.DestinationPolicy, overwrite domain.OverwritePolicy) domain.ConversionJob {
	return domain.ConversionJob{
		ID:          uuid.NewString(),
		SourcePath:  sourcePath,
		Format:      settings.Format,
		Destination: destination,
		OutputDir:   outputDir,
		Overwrite:   overwrite,
	}
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(batchID string, status domain.BatchStatus, message string) {
	a.publishEvent(jobs.Event{
		BatchID: batchID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "batch:event", published)
	}
}

// clearActiveBatch clears cancellation handles for completed batch IDs.
func (a *App) clearActiveBatch(batchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeBatchID == batchID {
		a.activeBatchID = ""
		a.cancel = nil
	}
}

// mapPhaseToStatus maps orchestrator phase names to batch statuses.
func mapPhaseToStatus(phase string) (domain.BatchStatus, bool) {
	switch phase {
	case convert.PhaseInitializing:
		return domain.BatchStatusInitializing, true
	case convert.PhaseRunning:
		return domain.BatchStatusRunning, true
	case convert.PhaseDraining:
		return domain.BatchStatusDraining, true
	case convert.PhaseCompleted:
		return domain.BatchStatusCompleted, true
	default:
		return "", false
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims user inputs and applies defaults for missing
// format and watchdog values.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.BackupRoot = strings.TrimSpace(settings.BackupRoot)
	if _, ok := domain.SpecFor(settings.Format); !ok {
		settings.Format = domain.FormatPDF
	}
	if settings.WatchdogSeconds <= 0 {
		settings.WatchdogSeconds = config.DefaultSettings().WatchdogSeconds
	}
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
