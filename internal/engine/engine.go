// Package engine ties the scan pipeline, the job store and the deletion
// executor together behind the operations exposed by the API and the CLI.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fenilsonani/dupliremover/internal/cleaner"
	"github.com/fenilsonani/dupliremover/internal/config"
	"github.com/fenilsonani/dupliremover/internal/event"
	"github.com/fenilsonani/dupliremover/internal/job"
	"github.com/fenilsonani/dupliremover/internal/platform"
	"github.com/fenilsonani/dupliremover/internal/progress"
	"github.com/fenilsonani/dupliremover/internal/recent"
	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/internal/security"
)

// pollInterval is how often Wait re-checks a job's status
const pollInterval = 20 * time.Millisecond

// Engine runs scans in the background and serves their results
type Engine struct {
	store    *job.Store
	recent   *recent.List
	pipeline *scanner.Pipeline
	executor *cleaner.Executor
	progress *progress.ProgressReporter
	bus      *event.Bus
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu orders wg.Add in StartScan against Shutdown
	mu     sync.Mutex
	closed bool
}

// Option customizes an Engine
type Option func(*options)

type options struct {
	storeOpts []job.Option
}

// WithStoreOptions passes options through to the job store
func WithStoreOptions(opts ...job.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// New creates an engine from cfg. A nil bus disables event publishing.
func New(cfg *config.Config, logger *slog.Logger, bus *event.Bus, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.GetDefault()
	}
	if logger == nil {
		logger = slog.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	chunkSize, err := cfg.ChunkSizeBytes()
	if err != nil {
		return nil, err
	}

	reporter := progress.NewProgressReporter()

	pipeline := scanner.NewPipeline(scanner.Options{
		Workers:         cfg.Scan.Workers,
		ChunkSize:       chunkSize,
		BatchSize:       cfg.Scan.BatchSize,
		FlushInterval:   cfg.Scan.FlushInterval,
		ExcludePatterns: cfg.Scan.ExcludePatterns,
	}, logger.With("component", "pipeline"))
	pipeline.SetProgressReporter(reporter)

	executor := cleaner.New(cleaner.Options{
		DryRun:        cfg.Deletion.DryRun,
		MaxRetries:    cfg.Deletion.MaxRetries,
		RetryDelay:    cfg.Deletion.RetryDelay,
		VerifyContent: cfg.Deletion.VerifyContent,
	}, newPathValidator(cfg.Deletion.ProtectedPaths), logger.With("component", "cleaner"))
	executor.SetProgressReporter(reporter)
	if cfg.Deletion.ManifestPath != "" {
		executor.SetManifest(cleaner.NewManifest(cfg.Deletion.ManifestPath))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		store:    job.NewStore(o.storeOpts...),
		recent:   recent.New(cfg.Recent.Capacity),
		pipeline: pipeline,
		executor: executor,
		progress: reporter,
		bus:      bus,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func newPathValidator(extra []string) *security.PathValidator {
	var protected []string
	if info, err := platform.GetInfo(); err == nil {
		protected = append(protected, info.ProtectedPaths...)
	}
	return security.NewPathValidator(append(protected, extra...)...)
}

// ValidateDirectory reports whether dir can be scanned
func (e *Engine) ValidateDirectory(dir string) error {
	return security.ValidateDirectory(dir)
}

// StartScan validates dir, registers a PENDING scan and runs it in the
// background. It returns as soon as the scan is registered. The scan itself
// runs until it finishes or the engine shuts down; ctx only bounds the setup.
func (e *Engine) StartScan(ctx context.Context, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.reserve(); err != nil {
		return "", err
	}
	launched := false
	defer func() {
		if !launched {
			e.wg.Done()
		}
	}()

	if err := security.ValidateDirectory(dir); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	j, err := e.store.Create(abs)
	if err != nil {
		return "", err
	}
	e.recent.Add(j.Directory())

	e.logger.Info("scan started", "scan_id", j.ID(), "directory", j.Directory())
	e.publish(event.Event{
		Type:   event.ScanStarted,
		ScanID: j.ID(),
		Data:   map[string]any{"directory": j.Directory()},
	})

	launched = true
	go e.run(j)

	return j.ID(), nil
}

// reserve counts a scan goroutine against Shutdown's wait, unless the engine
// is already shutting down
func (e *Engine) reserve() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("engine is shut down: %w", context.Canceled)
	}
	e.wg.Add(1)
	return nil
}

func (e *Engine) run(j *job.Job) {
	defer e.wg.Done()

	if err := j.Start(); err != nil {
		e.logger.Error("failed to start scan", "scan_id", j.ID(), "error", err)
		return
	}

	started := time.Now()
	runErr := e.pipeline.Run(e.ctx, j.ID(), j.Directory(), j)

	if runErr != nil {
		if err := j.Fail(runErr); err != nil {
			e.logger.Error("failed to record scan failure", "scan_id", j.ID(), "error", err)
		}
		e.logger.Error("scan failed", "scan_id", j.ID(), "directory", j.Directory(), "error", runErr)
		e.publish(event.Event{
			Type:   event.ScanFailed,
			ScanID: j.ID(),
			Data: map[string]any{
				"directory": j.Directory(),
				"error":     runErr.Error(),
			},
		})
		return
	}

	if err := j.Complete(); err != nil {
		e.logger.Error("failed to complete scan", "scan_id", j.ID(), "error", err)
		return
	}

	result := j.Snapshot()
	e.logger.Info("scan completed",
		"scan_id", j.ID(),
		"files", result.TotalFiles,
		"duplicates", result.DuplicateCount,
		"warnings", len(result.Warnings),
		"duration", time.Since(started).Round(time.Millisecond))
	e.publish(event.Event{
		Type:   event.ScanCompleted,
		ScanID: j.ID(),
		Data: map[string]any{
			"directory":   j.Directory(),
			"files":       result.TotalFiles,
			"duplicates":  result.DuplicateCount,
			"reclaimable": result.ReclaimableSize,
		},
	})
}

// GetScanResult returns a snapshot of the scan with the given id
func (e *Engine) GetScanResult(id string) (scanner.ScanResult, error) {
	j, err := e.store.Get(id)
	if err != nil {
		return scanner.ScanResult{}, err
	}
	return j.Snapshot(), nil
}

// ListScanResults returns a snapshot of every scan in creation order
func (e *Engine) ListScanResults() []scanner.ScanResult {
	return e.store.Snapshots()
}

// DuplicatePaths returns every path the scan currently flags as a duplicate
func (e *Engine) DuplicatePaths(id string) ([]string, error) {
	j, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	return j.DuplicatePaths(), nil
}

// DeleteDuplicates removes the given duplicates of a scan. It only fails
// for an unknown scan or a cancelled ctx; refused paths are reported in the
// result.
func (e *Engine) DeleteDuplicates(ctx context.Context, id string, paths []string) (*cleaner.Result, error) {
	j, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	result, err := e.executor.Delete(ctx, j, paths)
	if result != nil {
		e.publish(event.Event{
			Type:   event.DuplicatesDeleted,
			ScanID: id,
			Data: map[string]any{
				"deleted": result.DeletedCount(),
				"failed":  len(result.Failures),
				"freed":   result.DeletedSize,
				"dry_run": result.DryRun,
			},
		})
	}
	return result, err
}

// RecentDirectories returns the scanned directories, most recent first
func (e *Engine) RecentDirectories() []string {
	return e.recent.Items()
}

// Progress returns the progress reporter shared by scans and deletions
func (e *Engine) Progress() *progress.ProgressReporter {
	return e.progress
}

// Wait blocks until the scan reaches a terminal status or ctx ends, and
// returns the latest snapshot either way
func (e *Engine) Wait(ctx context.Context, id string) (scanner.ScanResult, error) {
	j, err := e.store.Get(id)
	if err != nil {
		return scanner.ScanResult{}, err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for !j.Status().Terminal() {
		select {
		case <-ctx.Done():
			return j.Snapshot(), ctx.Err()
		case <-ticker.C:
		}
	}
	return j.Snapshot(), nil
}

// Shutdown cancels running scans and waits for their goroutines to exit
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	if n := e.store.Active(); n > 0 {
		e.logger.Info("cancelling active scans", "active", n)
	}
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("engine stopped", "scans", e.store.Len())
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for scans to stop: %w", ctx.Err())
	}
}

func (e *Engine) publish(ev event.Event) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(ev)
}
