package job

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fenilsonani/dupliremover/internal/scanner"
)

// Store is a concurrency-safe registry of jobs keyed by scan id. Lock order
// is Store before Job.
type Store struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string

	newID func() string
	now   func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock replaces time.Now
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.now = fn
	}
}

// NewStore creates a new empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		jobs:  make(map[string]*Job),
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a PENDING job for directory. It fails with
// ErrScanInProgress while another job for the same cleaned directory is
// still pending or running.
func (s *Store) Create(directory string) (*Job, error) {
	directory = filepath.Clean(directory)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		j := s.jobs[id]
		if j.directory == directory && !j.Status().Terminal() {
			return nil, fmt.Errorf("%w: %s (scan %s)", ErrScanInProgress, directory, id)
		}
	}

	id := s.newID()
	if _, exists := s.jobs[id]; exists {
		return nil, fmt.Errorf("duplicate scan id %s", id)
	}

	j := newJob(id, directory, s.now)
	s.jobs[id] = j
	s.order = append(s.order, id)
	return j, nil
}

// Get returns the job with the given id
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return j, nil
}

// List returns every job in creation order
func (s *Store) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, s.jobs[id])
	}
	return jobs
}

// Snapshots returns a snapshot of every job in creation order
func (s *Store) Snapshots() []scanner.ScanResult {
	jobs := s.List()
	results := make([]scanner.ScanResult, 0, len(jobs))
	for _, j := range jobs {
		results = append(results, j.Snapshot())
	}
	return results
}

// Active returns the number of jobs that are pending or running
func (s *Store) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, j := range s.jobs {
		if !j.Status().Terminal() {
			n++
		}
	}
	return n
}

// Len returns the number of jobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
