package cleaner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const manifestLockRetry = 50 * time.Millisecond

// ManifestEntry records one removed duplicate
type ManifestEntry struct {
	ScanID        string    `json:"scanId"`
	Path          string    `json:"path"`
	Hash          string    `json:"hash"`
	Size          int64     `json:"size"`
	CanonicalPath string    `json:"canonicalPath"`
	DeletedAt     time.Time `json:"deletedAt"`
}

// Manifest is an append-only JSON lines log of deleted duplicates. Appends
// from separate processes are serialized with a lock file next to it.
type Manifest struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// NewManifest creates a manifest writing to path
func NewManifest(path string) *Manifest {
	return &Manifest{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the manifest file location
func (m *Manifest) Path() string {
	return m.path
}

// Append writes entries to the end of the manifest
func (m *Manifest) Append(ctx context.Context, entries []ManifestEntry) error {
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	// flock is per process, the mutex covers goroutines sharing m
	m.mu.Lock()
	defer m.mu.Unlock()

	locked, err := m.lock.TryLockContext(ctx, manifestLockRetry)
	if err != nil {
		return fmt.Errorf("failed to lock manifest: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock manifest: %s", m.lock.Path())
	}
	defer m.lock.Unlock()

	file, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			file.Close()
			return fmt.Errorf("failed to encode manifest entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return file.Close()
}

// ReadManifest loads every entry of the manifest at path. A missing file
// yields no entries.
func ReadManifest(path string) ([]ManifestEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []ManifestEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry ManifestEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return entries, fmt.Errorf("manifest %s line %d: %w", path, line, err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// TotalSize returns the number of bytes recorded across entries
func TotalSize(entries []ManifestEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
