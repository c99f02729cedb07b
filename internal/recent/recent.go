// Package recent keeps a bounded most-recently-used list of scanned directories.
package recent

import (
	"path/filepath"
	"slices"
	"sync"
)

// DefaultCapacity is the number of directories kept when none is configured
const DefaultCapacity = 10

// List is a de-duplicated MRU list. The zero value is not usable; call New.
type List struct {
	mu       sync.Mutex
	items    []string
	capacity int
}

// New creates a list holding at most capacity entries
func New(capacity int) *List {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &List{
		items:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Add moves dir to the front, evicting the oldest entry when full
func (l *List) Add(dir string) {
	if dir == "" {
		return
	}
	dir = filepath.Clean(dir)

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := slices.Index(l.items, dir); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
	l.items = slices.Insert(l.items, 0, dir)
	if len(l.items) > l.capacity {
		l.items = l.items[:l.capacity]
	}
}

// Items returns the directories, most recent first
func (l *List) Items() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Len returns the number of entries
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
