package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fenilsonani/dupliremover/internal/progress"
)

// Sink receives the output of a pipeline run. Append is only ever called from
// one goroutine; Warn may be called concurrently.
type Sink interface {
	Append(batch []FileRecord)
	Warn(w Warning)
}

// Options configures a Pipeline
type Options struct {
	Workers         int
	ChunkSize       int
	BatchSize       int
	FlushInterval   time.Duration
	ExcludePatterns []string
}

// Pipeline walks a directory, hashes every regular file on a bounded worker
// pool and commits categorized records to a Sink in batches
type Pipeline struct {
	opts     Options
	walker   *Walker
	hash     func(ctx context.Context, path string) (string, error)
	logger   *slog.Logger
	reporter *progress.ProgressReporter
}

// NewPipeline creates a new pipeline
func NewPipeline(opts Options, logger *slog.Logger) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		opts:   opts,
		walker: NewWalker(opts.ExcludePatterns),
		hash:   NewHasher(opts.ChunkSize).Hash,
		logger: logger,
	}
}

// SetProgressReporter sets the progress reporter
func (p *Pipeline) SetProgressReporter(reporter *progress.ProgressReporter) {
	p.reporter = reporter
}

// Run scans root into sink and blocks until every discovered file has been
// hashed and committed, the context is cancelled, or the storage fails.
// Records committed before a failure stay in the sink.
func (p *Pipeline) Run(ctx context.Context, scanID, root string, sink Sink) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	entries, err := p.walker.Walk(gctx, root)
	if err != nil {
		return err
	}

	start := time.Now()
	var discovered, hashed, hashedBytes, warnings atomic.Int64
	var currentPath atomic.Value
	currentPath.Store("")

	report := func(phase progress.Phase, runErr error) {
		if p.reporter == nil {
			return
		}
		p.reporter.UpdateScanProgress(&progress.ScanProgress{
			ScanID:          scanID,
			Phase:           phase,
			Directory:       root,
			CurrentPath:     currentPath.Load().(string),
			FilesDiscovered: discovered.Load(),
			FilesHashed:     hashed.Load(),
			BytesHashed:     hashedBytes.Load(),
			Warnings:        warnings.Load(),
			StartTime:       start,
			Error:           runErr,
		})
	}

	warn := func(path, op string, err error) {
		warnings.Add(1)
		p.logger.Debug("skipping file", "scan_id", scanID, "path", path, "op", op, "error", err)
		sink.Warn(Warning{Path: path, Op: op, Message: err.Error(), Time: time.Now()})
	}

	results := make(chan FileRecord, p.opts.Workers*2)
	collector := NewBatchCollector(p.opts.BatchSize, p.opts.FlushInterval, func(batch []FileRecord) {
		sink.Append(batch)
		report(progress.PhaseScanning, nil)
	})
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		collector.Run(results)
	}()

	report(progress.PhaseScanning, nil)

	var fatal error
	for entry := range entries {
		if entry.Err != nil {
			if IsFatalWalkError(entry.Err) {
				fatal = entry.Err
				break
			}
			warn(entry.Path, OpWalk, entry.Err)
			continue
		}

		discovered.Add(1)
		g.Go(func() error {
			currentPath.Store(entry.Path)

			hash, err := p.hash(gctx, entry.Path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if IsStorageFailure(err) {
					return storageError(entry.Path, err)
				}
				warn(entry.Path, OpHash, err)
				return nil
			}

			ext := ExtensionOf(entry.Path)
			record := FileRecord{
				Seq:       entry.Seq,
				Path:      entry.Path,
				Name:      filepath.Base(entry.Path),
				Hash:      hash,
				Size:      entry.Info.Size(),
				Extension: ext,
				Category:  Categorize(ext),
				ModTime:   entry.Info.ModTime(),
			}

			select {
			case results <- record:
			case <-gctx.Done():
				return gctx.Err()
			}

			hashed.Add(1)
			hashedBytes.Add(record.Size)
			return nil
		})
	}

	waitErr := g.Wait()
	close(results)
	<-collected

	switch {
	case fatal != nil:
		err = fatal
	case waitErr != nil:
		err = waitErr
	default:
		err = ctx.Err()
	}

	if err != nil {
		report(progress.PhaseError, err)
		p.logger.Warn("scan pipeline stopped", "scan_id", scanID, "directory", root, "error", err)
		if errors.Is(err, ErrStorageUnavailable) {
			return err
		}
		return fmt.Errorf("scan of %s interrupted: %w", root, err)
	}

	report(progress.PhaseComplete, nil)
	p.logger.Debug("scan pipeline finished",
		"scan_id", scanID,
		"files", hashed.Load(),
		"warnings", warnings.Load(),
		"duration", time.Since(start))
	return nil
}
