package job

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/dupliremover/internal/scanner"
)

var (
	// ErrNotFound is returned for an unknown scan id
	ErrNotFound = errors.New("scan not found")
	// ErrInvalidTransition is returned when a status change would regress or leave a terminal state
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrScanInProgress is returned when the directory already has a pending or running scan
	ErrScanInProgress = errors.New("scan already in progress for directory")
)

// Job owns the lifecycle and the accumulating result of one scan. All state is
// guarded by the job's own lock so readers always observe a whole batch.
type Job struct {
	mu sync.RWMutex

	id          string
	directory   string
	status      scanner.Status
	createdAt   time.Time
	startedAt   time.Time
	completedAt *time.Time
	err         error

	records  []scanner.FileRecord
	index    map[string]int
	removed  map[string]struct{}
	warnings []scanner.Warning

	now func() time.Time
}

func newJob(id, directory string, now func() time.Time) *Job {
	return &Job{
		id:        id,
		directory: directory,
		status:    scanner.StatusPending,
		createdAt: now(),
		index:     make(map[string]int),
		removed:   make(map[string]struct{}),
		now:       now,
	}
}

// ID returns the scan identifier
func (j *Job) ID() string {
	return j.id
}

// Directory returns the cleaned absolute directory being scanned
func (j *Job) Directory() string {
	return j.directory
}

// Status returns the current status
func (j *Job) Status() scanner.Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Err returns the failure cause of a FAILED job
func (j *Job) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

// Start moves the job from PENDING to RUNNING
func (j *Job) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.transition(scanner.StatusRunning); err != nil {
		return err
	}
	j.startedAt = j.now()
	return nil
}

// Complete moves the job from RUNNING to COMPLETED
func (j *Job) Complete() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.transition(scanner.StatusCompleted); err != nil {
		return err
	}
	j.finish()
	return nil
}

// Fail moves a PENDING or RUNNING job to FAILED, keeping whatever result has
// been committed so far
func (j *Job) Fail(cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.transition(scanner.StatusFailed); err != nil {
		return err
	}
	j.err = cause
	j.finish()
	return nil
}

func (j *Job) finish() {
	t := j.now()
	j.completedAt = &t
}

func (j *Job) transition(to scanner.Status) error {
	allowed := false
	switch j.status {
	case scanner.StatusPending:
		allowed = to == scanner.StatusRunning || to == scanner.StatusFailed
	case scanner.StatusRunning:
		allowed = to == scanner.StatusCompleted || to == scanner.StatusFailed
	}

	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.status, to)
	}
	j.status = to
	return nil
}

// Append commits a batch of hashed records and recomputes duplicate flags.
// Batches arriving after the job reached a terminal state are dropped.
func (j *Job) Append(batch []scanner.FileRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Terminal() {
		return
	}

	for _, r := range batch {
		if _, ok := j.index[r.Path]; ok {
			continue
		}
		j.records = append(j.records, r)
		j.index[r.Path] = len(j.records) - 1
	}
	j.regroup()
}

// Warn records a skipped file or directory
func (j *Job) Warn(w scanner.Warning) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, w)
}

// regroup must be called with the write lock held
func (j *Job) regroup() {
	scanner.MarkDuplicates(j.records)
	clear(j.index)
	for i, r := range j.records {
		j.index[r.Path] = i
	}
}

// Snapshot returns a deep copy of the current result. Groups, categories and
// counts are derived from the copied records, so they always agree with Files.
func (j *Job) Snapshot() scanner.ScanResult {
	j.mu.RLock()
	defer j.mu.RUnlock()

	files := make([]scanner.FileRecord, len(j.records))
	copy(files, j.records)
	grouping := scanner.Group(files)

	result := scanner.ScanResult{
		ID:              j.id,
		Directory:       j.directory,
		Status:          j.status,
		StartedAt:       j.createdAt,
		Files:           files,
		DuplicateGroups: grouping.Groups,
		Categories:      grouping.Categories,
		TotalFiles:      len(files),
		DuplicateCount:  grouping.DuplicateCount,
		TotalSize:       grouping.TotalSize,
		ReclaimableSize: grouping.ReclaimableSize,
		Warnings:        append([]scanner.Warning(nil), j.warnings...),
	}
	if !j.startedAt.IsZero() {
		result.StartedAt = j.startedAt
	}
	if j.completedAt != nil {
		t := *j.completedAt
		result.CompletedAt = &t
	}
	if j.err != nil {
		result.Error = j.err.Error()
	}
	return result
}

// DuplicatePaths returns the paths of every record currently flagged duplicate
// in discovery order
func (j *Job) DuplicatePaths() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var paths []string
	for _, r := range j.records {
		if r.Duplicate {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// Update runs fn with exclusive access to the job's records. Records removed
// through the Tx are dropped and duplicate flags recomputed once fn returns,
// whether or not fn failed.
func (j *Job) Update(fn func(tx *Tx) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	tx := &Tx{job: j}
	err := fn(tx)

	if len(tx.removed) > 0 {
		kept := j.records[:0]
		for _, r := range j.records {
			if _, gone := tx.removed[r.Path]; gone {
				j.removed[r.Path] = struct{}{}
				continue
			}
			kept = append(kept, r)
		}
		clear(j.records[len(kept):])
		j.records = kept
		j.regroup()
	}
	return err
}

// Tx is the view of a job handed to Update. It is only valid inside the
// callback.
type Tx struct {
	job     *Job
	removed map[string]struct{}
}

// ScanID returns the id of the job being updated
func (tx *Tx) ScanID() string {
	return tx.job.id
}

// Lookup returns the record for path as of the start of the update
func (tx *Tx) Lookup(path string) (scanner.FileRecord, bool) {
	i, ok := tx.job.index[path]
	if !ok {
		return scanner.FileRecord{}, false
	}
	return tx.job.records[i], true
}

// Canonical returns the record kept for the fingerprint, which is the
// earliest discovered one
func (tx *Tx) Canonical(hash string) (scanner.FileRecord, bool) {
	for _, r := range tx.job.records {
		if r.Hash == hash {
			return r, true
		}
	}
	return scanner.FileRecord{}, false
}

// Remove marks path for removal from the result when the update ends
func (tx *Tx) Remove(path string) {
	if tx.removed == nil {
		tx.removed = make(map[string]struct{})
	}
	tx.removed[path] = struct{}{}
}

// WasRemoved reports whether path was removed by this or an earlier update
func (tx *Tx) WasRemoved(path string) bool {
	if _, ok := tx.removed[path]; ok {
		return true
	}
	_, ok := tx.job.removed[path]
	return ok
}
