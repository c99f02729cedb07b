package progress

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fenilsonani/dupliremover/pkg/utils"
)

// Phase of a scan or deletion
type Phase string

const (
	PhaseScanning Phase = "scanning"
	PhaseDeleting Phase = "deleting"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// ScanProgress is a point-in-time view of one running scan
type ScanProgress struct {
	ScanID          string
	Phase           Phase
	Directory       string
	CurrentPath     string
	FilesDiscovered int64
	FilesHashed     int64
	BytesHashed     int64
	Warnings        int64
	StartTime       time.Time
	Error           error
}

// DeleteProgress is a point-in-time view of one deletion request
type DeleteProgress struct {
	ScanID       string
	Phase        Phase
	CurrentFile  string
	Processed    int
	TotalFiles   int
	DeletedFiles int
	DeletedSize  int64
	FailedFiles  int
	DryRun       bool
	StartTime    time.Time
}

// listenerBuffer is how many updates a subscriber may fall behind before
// updates to it are dropped
const listenerBuffer = 10

// ProgressReporter keeps the latest snapshot per scan and fans updates out
// to subscribers. Safe for concurrent use.
type ProgressReporter struct {
	mu        sync.RWMutex
	scans     map[string]*ScanProgress
	deletions map[string]*DeleteProgress
	subs      []chan interface{}
}

func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		scans:     make(map[string]*ScanProgress),
		deletions: make(map[string]*DeleteProgress),
	}
}

// Subscribe returns a channel of *ScanProgress and *DeleteProgress values.
// Release it with Unsubscribe.
func (pr *ProgressReporter) Subscribe() <-chan interface{} {
	ch := make(chan interface{}, listenerBuffer)
	pr.mu.Lock()
	pr.subs = append(pr.subs, ch)
	pr.mu.Unlock()
	return ch
}

// Unsubscribe closes ch. Unknown channels are ignored.
func (pr *ProgressReporter) Unsubscribe(ch <-chan interface{}) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	i := slices.IndexFunc(pr.subs, func(c chan interface{}) bool { return c == ch })
	if i < 0 {
		return
	}
	close(pr.subs[i])
	pr.subs = slices.Delete(pr.subs, i, i+1)
}

func (pr *ProgressReporter) UpdateScanProgress(update *ScanProgress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.scans[update.ScanID] = update
	pr.broadcast(update)
}

func (pr *ProgressReporter) UpdateDeleteProgress(update *DeleteProgress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.deletions[update.ScanID] = update
	pr.broadcast(update)
}

// broadcast never blocks; a subscriber with a full buffer misses the
// update. Called with mu held so Unsubscribe cannot close a channel
// mid-send.
func (pr *ProgressReporter) broadcast(update interface{}) {
	for _, ch := range pr.subs {
		select {
		case ch <- update:
		default:
		}
	}
}

// GetScanProgress returns the latest snapshot for scanID, or nil
func (pr *ProgressReporter) GetScanProgress(scanID string) *ScanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.scans[scanID]
}

// GetDeleteProgress returns the latest deletion snapshot for scanID, or nil
func (pr *ProgressReporter) GetDeleteProgress(scanID string) *DeleteProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.deletions[scanID]
}

// FormatScanProgress renders p as a single status line
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Scanning %s... %d/%d files hashed (%s) [%s]",
			p.Directory, p.FilesHashed, p.FilesDiscovered,
			utils.FormatBytes(p.BytesHashed), FormatDuration(time.Since(p.StartTime)))
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %d files (%s) in %s",
			p.FilesHashed, utils.FormatBytes(p.BytesHashed), FormatDuration(time.Since(p.StartTime)))
	case PhaseError:
		return fmt.Sprintf("Scan error: %v", p.Error)
	}
	return "Scanning..."
}

// FormatDeleteProgress renders p as a single status line
func FormatDeleteProgress(p *DeleteProgress) string {
	if p == nil {
		return "Preparing..."
	}

	var suffix string
	if p.DryRun {
		suffix = " [DRY RUN]"
	}

	switch p.Phase {
	case PhaseDeleting:
		pct := 0
		if p.TotalFiles > 0 {
			pct = p.Processed * 100 / p.TotalFiles
		}
		return fmt.Sprintf("Deleting... %d/%d files (%d%%) - %s freed%s",
			p.Processed, p.TotalFiles, pct, utils.FormatBytes(p.DeletedSize), suffix)
	case PhaseComplete:
		return fmt.Sprintf("Deletion complete: %d files deleted (%s), %d failed in %s%s",
			p.DeletedFiles, utils.FormatBytes(p.DeletedSize), p.FailedFiles,
			FormatDuration(time.Since(p.StartTime)), suffix)
	}
	return "Preparing deletion..."
}

// FormatDuration renders d rounded to the second, e.g. "1h2m3s" or "45s"
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
