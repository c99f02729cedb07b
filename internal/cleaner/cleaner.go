package cleaner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fenilsonani/dupliremover/internal/job"
	"github.com/fenilsonani/dupliremover/internal/progress"
	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/internal/security"
)

const (
	// DefaultMaxRetries bounds attempts on a file that is busy
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the first backoff step, doubled on every retry
	DefaultRetryDelay = 100 * time.Millisecond
)

// Options configures an Executor
type Options struct {
	DryRun        bool
	MaxRetries    int
	RetryDelay    time.Duration
	VerifyContent bool
}

// Result represents the outcome of one deletion request
type Result struct {
	ScanID         string
	Deleted        []string
	DeletedSize    int64
	AlreadyDeleted []string
	Failures       []*DeletionError
	DryRun         bool
}

// DeletedCount returns how many files were removed by this request
func (r *Result) DeletedCount() int {
	return len(r.Deleted)
}

// Executor deletes files a scan reported as duplicates
type Executor struct {
	opts             Options
	validator        *security.PathValidator
	hasher           *scanner.Hasher
	manifest         *Manifest
	progressReporter *progress.ProgressReporter
	logger           *slog.Logger
}

// New creates a new Executor
func New(opts Options, validator *security.PathValidator, logger *slog.Logger) *Executor {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if validator == nil {
		validator = security.NewPathValidator()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		opts:      opts,
		validator: validator,
		hasher:    scanner.NewHasher(0),
		logger:    logger,
	}
}

// SetManifest enables the deletion audit log
func (e *Executor) SetManifest(m *Manifest) {
	e.manifest = m
}

// SetProgressReporter sets a custom progress reporter
func (e *Executor) SetProgressReporter(pr *progress.ProgressReporter) {
	e.progressReporter = pr
}

// DryRun reports whether the executor only simulates deletions
func (e *Executor) DryRun() bool {
	return e.opts.DryRun
}

// Delete removes the requested duplicates of j. Every path is validated and
// deleted while holding the job's write lock, so the scan cannot regroup
// underneath a deletion. Per-path problems are reported in the result; the
// returned error is only set when ctx ends before all paths were handled.
func (e *Executor) Delete(ctx context.Context, j *job.Job, paths []string) (*Result, error) {
	result := &Result{
		ScanID: j.ID(),
		DryRun: e.opts.DryRun,
	}
	startTime := time.Now()
	var entries []ManifestEntry
	// A dry run leaves the job untouched, so repeats are tracked here
	simulated := make(map[string]bool)

	e.reportDeleteProgress(result, progress.PhaseDeleting, "", 0, len(paths), startTime)

	err := j.Update(func(tx *job.Tx) error {
		for i, raw := range paths {
			if err := ctx.Err(); err != nil {
				for _, rest := range paths[i:] {
					result.Failures = append(result.Failures, &DeletionError{Path: rest, Reason: ErrorUnknown, Original: err})
				}
				return err
			}

			path := raw
			if path != "" {
				path = filepath.Clean(path)
			}
			e.reportDeleteProgress(result, progress.PhaseDeleting, path, i, len(paths), startTime)

			if simulated[path] {
				result.AlreadyDeleted = append(result.AlreadyDeleted, path)
				continue
			}

			record, delErr := e.deleteOne(ctx, tx, path)
			switch {
			case delErr != nil:
				result.Failures = append(result.Failures, delErr)
			case record == nil:
				result.AlreadyDeleted = append(result.AlreadyDeleted, path)
			default:
				result.Deleted = append(result.Deleted, path)
				result.DeletedSize += record.Size
				if e.opts.DryRun {
					simulated[path] = true
				} else {
					canonical, _ := tx.Canonical(record.Hash)
					entries = append(entries, ManifestEntry{
						ScanID:        tx.ScanID(),
						Path:          path,
						Hash:          record.Hash,
						Size:          record.Size,
						CanonicalPath: canonical.Path,
						DeletedAt:     time.Now(),
					})
				}
			}
		}
		return nil
	})

	e.reportDeleteProgress(result, progress.PhaseComplete, "", len(paths), len(paths), startTime)

	if e.manifest != nil && len(entries) > 0 {
		if mErr := e.manifest.Append(context.WithoutCancel(ctx), entries); mErr != nil {
			e.logger.Warn("failed to write deletion manifest", "path", e.manifest.Path(), "error", mErr)
		}
	}

	e.logger.Info("duplicate deletion finished",
		"scan_id", result.ScanID,
		"requested", len(paths),
		"deleted", result.DeletedCount(),
		"already_deleted", len(result.AlreadyDeleted),
		"failed", len(result.Failures),
		"dry_run", result.DryRun)

	return result, err
}

// deleteOne validates and removes a single path. It returns the removed
// record, nil with no error when the path was already gone, or the reason
// the path was refused.
func (e *Executor) deleteOne(ctx context.Context, tx *job.Tx, path string) (*scanner.FileRecord, *DeletionError) {
	if path == "" {
		return nil, newValidationError(path, ErrorInvalidPath, "empty path")
	}

	if tx.WasRemoved(path) {
		return nil, nil
	}

	record, ok := tx.Lookup(path)
	if !ok {
		return nil, newValidationError(path, ErrorNotInScan, "path was not reported by scan %s", tx.ScanID())
	}
	if !record.Duplicate {
		return nil, newValidationError(path, ErrorNotDuplicate, "path is the kept copy of its group")
	}

	if err := e.validator.ValidatePathForDeletion(path); err != nil {
		return nil, &DeletionError{Path: path, Reason: ErrorInvalidPath, Original: err}
	}

	canonical, ok := tx.Canonical(record.Hash)
	if !ok || canonical.Path == path {
		return nil, newValidationError(path, ErrorNotDuplicate, "no other copy recorded")
	}
	if _, err := os.Lstat(canonical.Path); err != nil {
		return nil, newValidationError(path, ErrorCanonicalMissing, "kept copy %s: %v", canonical.Path, err)
	}

	if _, err := IsSafeToDelete(path); err != nil {
		if os.IsNotExist(err) {
			// Removed outside of this scan
			if !e.opts.DryRun {
				tx.Remove(path)
			}
			return nil, nil
		}
		return nil, CategorizeError(path, err)
	}

	if e.opts.VerifyContent {
		hash, err := e.hasher.Hash(ctx, path)
		if err != nil {
			return nil, CategorizeError(path, err)
		}
		if hash != record.Hash {
			return nil, newValidationError(path, ErrorContentChanged, "fingerprint %s differs from scanned %s", hash, record.Hash)
		}
	}

	if e.opts.DryRun {
		return &record, nil
	}

	if err := e.removeWithRetry(ctx, path); err != nil {
		if err.Reason == ErrorFileNotFound {
			tx.Remove(path)
			return nil, nil
		}
		return nil, err
	}

	tx.Remove(path)
	return &record, nil
}

// removeWithRetry attempts to delete a file with retries for transient errors
func (e *Executor) removeWithRetry(ctx context.Context, path string) *DeletionError {
	delay := e.opts.RetryDelay

	var lastErr *DeletionError
	for attempt := 0; attempt < e.opts.MaxRetries; attempt++ {
		lastErr = CategorizeError(path, os.Remove(path))
		if lastErr == nil {
			return nil
		}

		if !lastErr.Retryable {
			// Not retryable (permission denied, path invalid, etc.), give up
			return lastErr
		}

		// On last attempt, don't sleep
		if attempt < e.opts.MaxRetries-1 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			}
			delay *= 2
		}
	}

	// All retries exhausted - return last error
	return lastErr
}

// reportDeleteProgress reports deletion progress to listeners
func (e *Executor) reportDeleteProgress(result *Result, phase progress.Phase, currentFile string, processed, total int, startTime time.Time) {
	if e.progressReporter == nil {
		return
	}

	e.progressReporter.UpdateDeleteProgress(&progress.DeleteProgress{
		ScanID:       result.ScanID,
		Phase:        phase,
		CurrentFile:  currentFile,
		Processed:    processed,
		TotalFiles:   total,
		DeletedFiles: result.DeletedCount(),
		DeletedSize:  result.DeletedSize,
		FailedFiles:  len(result.Failures),
		DryRun:       result.DryRun,
		StartTime:    startTime,
	})
}

