package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/fenilsonani/dupliremover/internal/progress"
	"github.com/fenilsonani/dupliremover/internal/reporter"
	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/internal/ui/styles"
	"github.com/fenilsonani/dupliremover/pkg/utils"
)

// LiveProgress handles live terminal progress display
type LiveProgress struct {
	mu          sync.Mutex
	out         io.Writer
	current     progress.ScanProgress
	lastUpdate  time.Time
	termWidth   int
	enabled     bool
	statusLines int
}

// NewLiveProgress creates a new live progress display writing to out
func NewLiveProgress(out io.Writer) *LiveProgress {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &LiveProgress{
		out:         out,
		termWidth:   width,
		enabled:     true,
		statusLines: 2,
	}
}

// Start initializes the progress display area
func (lp *LiveProgress) Start() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.enabled {
		return
	}
	// Reserve space for status lines
	fmt.Fprint(lp.out, strings.Repeat("\n", lp.statusLines))
	// Move cursor up to the reserved area
	fmt.Fprintf(lp.out, "\033[%dA", lp.statusLines)
}

// Update updates the progress display
func (lp *LiveProgress) Update(p *progress.ScanProgress) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled || p == nil {
		return
	}

	// Throttle updates to avoid flickering (max 10 updates per second)
	now := time.Now()
	if now.Sub(lp.lastUpdate) < 100*time.Millisecond {
		return
	}
	lp.lastUpdate = now
	lp.current = *p

	lp.render()
}

// render draws the progress display
func (lp *LiveProgress) render() {
	// Save cursor position
	fmt.Fprint(lp.out, "\033[s")

	width := lp.termWidth - 2
	p := lp.current

	// Line 1: counters
	elapsed := time.Duration(0)
	if !p.StartTime.IsZero() {
		elapsed = time.Since(p.StartTime)
	}
	line1 := fmt.Sprintf("📂 Hashed: %d/%d files | Read: %s | Skipped: %d | Time: %s",
		p.FilesHashed, p.FilesDiscovered, utils.FormatBytes(p.BytesHashed), p.Warnings, progress.FormatDuration(elapsed))
	fmt.Fprintf(lp.out, "\033[K%s\n", truncate(line1, width))

	// Line 2: Current path with animation
	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinIdx := int(time.Now().UnixMilli()/100) % len(spinner)
	path := p.CurrentPath
	if width > 13 && len(path) > width-10 {
		// Show last part of path
		path = "..." + path[len(path)-(width-13):]
	}
	fmt.Fprintf(lp.out, "\033[K%s %s", spinner[spinIdx], truncate(path, width-2))

	// Restore cursor position
	fmt.Fprint(lp.out, "\033[u")
}

// Finish completes the progress display
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if !lp.enabled {
		return
	}

	// Move to the end and clear the status lines
	fmt.Fprintf(lp.out, "\033[%dB", lp.statusLines)
	fmt.Fprint(lp.out, "\033[K\n")
}

// SetEnabled enables or disables live progress
func (lp *LiveProgress) SetEnabled(enabled bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.enabled = enabled
}

// truncate truncates a string to fit width
func truncate(s string, width int) string {
	if width < 4 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

// maxFilesPerGroup bounds how many duplicates of one group are printed
const maxFilesPerGroup = 5

// PrintDuplicateTree prints every duplicate group as a tree rooted at the
// kept copy
func PrintDuplicateTree(w io.Writer, result *scanner.ScanResult) {
	groups := reporter.SortedGroups(result)
	if len(groups) == 0 {
		fmt.Fprintf(w, "\nNo duplicates found in %d files.\n", result.TotalFiles)
		return
	}

	for _, group := range groups {
		keep := group[0]
		fmt.Fprintf(w, "\n╭─ %s (%s each, %s)\n", keep.Name,
			utils.FormatBytes(keep.Size), styles.CategoryStyle.Render(string(keep.Category)))
		fmt.Fprintf(w, "├── ✔ keep %s\n", styles.KeepStyle.Render(relativeTo(result.Directory, keep.Path)))

		dups := group[1:]
		showCount := min(len(dups), maxFilesPerGroup)
		for i := 0; i < showCount; i++ {
			connector := "├"
			if i == showCount-1 && len(dups) <= maxFilesPerGroup {
				connector = "╰"
			}
			fmt.Fprintf(w, "%s── ✗ %s\n", connector, styles.DuplicateStyle.Render(relativeTo(result.Directory, dups[i].Path)))
		}

		if len(dups) > maxFilesPerGroup {
			fmt.Fprintf(w, "╰── ... and %d more copies\n", len(dups)-maxFilesPerGroup)
		}
	}

	fmt.Fprintf(w, "\n════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Total: %d groups | %d duplicates | %s reclaimable\n",
		len(groups), result.DuplicateCount, utils.FormatBytes(result.ReclaimableSize))
}

// relativeTo shortens path to be relative to root when possible
func relativeTo(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
