package outpath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"hwp-converter/internal/domain"
)

// PathError reports an output destination that cannot be used.
type PathError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error formats destination failures for outcomes and events.
func (e *PathError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("output path %s: %s", e.Path, e.Message)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Resolver computes final output paths for conversion jobs. It performs
// existence and writability checks only; it never writes output itself.
type Resolver struct {
	stat       func(name string) (os.FileInfo, error)
	mkdirAll   func(path string, perm os.FileMode) error
	createTemp func(dir, pattern string) (*os.File, error)
	remove     func(name string) error
}

// NewResolver constructs the production resolver with OS dependencies.
func NewResolver() *Resolver {
	return &Resolver{
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Resolve maps a job to its final output path. Under rename-on-conflict
// it appends an incrementing " (n)" disambiguator and never returns a
// path that is already occupied.
func (r *Resolver) Resolve(job domain.ConversionJob) (string, error) {
	spec, ok := domain.SpecFor(job.Format)
	if !ok {
		return "", &PathError{
			Path:    job.SourcePath,
			Message: fmt.Sprintf("unknown target format: %s", job.Format),
		}
	}

	dir := filepath.Dir(job.SourcePath)
	if job.Destination == domain.DestinationFixed {
		dir = strings.TrimSpace(job.OutputDir)
		if dir == "" {
			return "", &PathError{
				Path:    job.SourcePath,
				Message: "output folder is not set",
			}
		}
	}

	if err := r.ensureWritableDir(dir); err != nil {
		return "", err
	}

	base := filepath.Base(job.SourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	candidate := filepath.Join(dir, stem+spec.Extension)

	if job.Overwrite == domain.OverwriteAllow {
		return candidate, nil
	}

	// A name counts as free only on a definite not-exist answer; any
	// other stat failure could hide an occupied path.
	for counter := 1; ; counter++ {
		_, err := r.stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", &PathError{
				Path:    candidate,
				Message: "cannot check for an existing file",
				Err:     err,
			}
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, counter, spec.Extension))
	}
}

// ensureWritableDir creates the destination folder if needed and probes
// write permission explicitly instead of inferring it from a later
// failed write.
func (r *Resolver) ensureWritableDir(dir string) error {
	if err := r.mkdirAll(dir, 0o755); err != nil {
		return &PathError{
			Path:    dir,
			Message: "destination folder cannot be created",
			Err:     err,
		}
	}

	tmpFile, err := r.createTemp(dir, ".write-check-*")
	if err != nil {
		return &PathError{
			Path:    dir,
			Message: "destination folder is not writable",
			Err:     err,
		}
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = r.remove(tmpPath)
	return nil
}

// NewResolverForTests constructs a resolver with injectable dependencies.
func NewResolverForTests(
	stat func(name string) (os.FileInfo, error),
	mkdirAll func(path string, perm os.FileMode) error,
	createTemp func(dir, pattern string) (*os.File, error),
	remove func(name string) error,
) *Resolver {
	return &Resolver{
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
