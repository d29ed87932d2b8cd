package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hwp-converter/internal/domain"
)

// Result reports either a completed backup or the reason it was skipped.
// A skip is informational only and never fails the enclosing job.
type Result struct {
	Record  *domain.BackupRecord `json:"record,omitempty"`
	Skipped string               `json:"skipped,omitempty"`
}

// Manager copies source documents into a dated backup tree before
// conversion. All failures are converted into skipped results.
type Manager struct {
	root     string
	now      func() time.Time
	open     func(name string) (*os.File, error)
	create   func(name string) (*os.File, error)
	mkdirAll func(path string, perm os.FileMode) error
	stat     func(name string) (os.FileInfo, error)
}

// NewManager constructs the production backup manager for one root.
func NewManager(root string) *Manager {
	return &Manager{
		root:     root,
		now:      time.Now,
		open:     os.Open,
		create:   os.Create,
		mkdirAll: os.MkdirAll,
		stat:     os.Stat,
	}
}

// Backup copies the source file byte-for-byte into a dated subfolder
// under the backup root. The original is never modified or removed.
func (m *Manager) Backup(sourcePath string) Result {
	if strings.TrimSpace(m.root) == "" {
		return Result{Skipped: "backup root is not configured"}
	}

	dir := filepath.Join(m.root, m.now().Format("2006-01-02"))
	if err := m.mkdirAll(dir, 0o755); err != nil {
		return Result{Skipped: fmt.Sprintf("cannot create backup folder: %v", err)}
	}

	target := m.freeName(dir, filepath.Base(sourcePath))
	if err := m.copyFile(sourcePath, target); err != nil {
		return Result{Skipped: fmt.Sprintf("cannot copy %s: %v", sourcePath, err)}
	}

	return Result{Record: &domain.BackupRecord{
		SourcePath: sourcePath,
		BackupPath: target,
		CreatedAt:  m.now().UTC(),
	}}
}

// freeName picks an unoccupied file name inside the dated folder.
func (m *Manager) freeName(dir, base string) string {
	candidate := filepath.Join(dir, base)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext := filepath.Ext(base)

	for counter := 1; ; counter++ {
		if _, err := m.stat(candidate); err != nil {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, counter, ext))
	}
}

// copyFile writes a byte-identical copy of src at dst.
func (m *Manager) copyFile(src, dst string) error {
	in, err := m.open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := m.create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// NewManagerForTests constructs a manager with injectable dependencies.
func NewManagerForTests(
	root string,
	now func() time.Time,
	open func(name string) (*os.File, error),
	create func(name string) (*os.File, error),
	mkdirAll func(path string, perm os.FileMode) error,
) *Manager {
	return &Manager{
		root:     root,
		now:      now,
		open:     open,
		create:   create,
		mkdirAll: mkdirAll,
		stat:     os.Stat,
	}
}
