package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	prog "github.com/fenilsonani/dupliremover/internal/progress"
	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/internal/ui/styles"
	"github.com/fenilsonani/dupliremover/pkg/utils"
)

// PollInterval is how often the view refreshes its snapshot
const PollInterval = 200 * time.Millisecond

// Source is where the view reads scan state from
type Source interface {
	GetScanResult(id string) (scanner.ScanResult, error)
	Progress() *prog.ProgressReporter
}

// ScanViewModel follows one running scan until it finishes
type ScanViewModel struct {
	source    Source
	scanID    string
	spinner   spinner.Model
	progress  progress.Model
	result    scanner.ScanResult
	live      *prog.ScanProgress
	err       error
	startTime time.Time
	width     int
	done      bool
	cancelled bool
}

// NewScanViewModel creates a new scan view model
func NewScanViewModel(source Source, scanID string) *ScanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return &ScanViewModel{
		source:    source,
		scanID:    scanID,
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient()),
		startTime: time.Now(),
		width:     80,
	}
}

// SnapshotMsg carries a fresh view of the scan
type SnapshotMsg struct {
	Result   scanner.ScanResult
	Progress *prog.ScanProgress
	Err      error
}

type pollMsg struct{}

// Init initializes the scan view
func (m *ScanViewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m *ScanViewModel) fetch() tea.Msg {
	result, err := m.source.GetScanResult(m.scanID)
	return SnapshotMsg{
		Result:   result,
		Progress: m.source.Progress().GetScanProgress(m.scanID),
		Err:      err,
	}
}

func poll() tea.Cmd {
	return tea.Tick(PollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// Update handles messages
func (m *ScanViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(60, msg.Width-20))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pollMsg:
		return m, m.fetch

	case SnapshotMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.done = true
			return m, tea.Quit
		}
		m.result = msg.Result
		m.live = msg.Progress
		if m.result.Status.Terminal() {
			m.done = true
			return m, tea.Quit
		}
		return m, poll()
	}

	return m, nil
}

// View renders the scan view
func (m *ScanViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("🔍 Scanning for Duplicates"))
	b.WriteString("\n")
	b.WriteString(styles.FilePathStyle.Render(m.result.Directory))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	if !m.done {
		b.WriteString(m.spinner.View())
		b.WriteString(" Scanning... ")
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
		b.WriteString("\n\n")

		if m.live != nil {
			if m.live.FilesDiscovered > 0 {
				ratio := float64(m.live.FilesHashed) / float64(m.live.FilesDiscovered)
				b.WriteString(m.progress.ViewAs(min(ratio, 1)))
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("Hashed %s of %s files, %s read\n",
				styles.BoldStyle.Render(fmt.Sprintf("%d", m.live.FilesHashed)),
				styles.BoldStyle.Render(fmt.Sprintf("%d", m.live.FilesDiscovered)),
				styles.FileSizeStyle.Render(utils.FormatBytes(m.live.BytesHashed))))
			if m.live.CurrentPath != "" {
				b.WriteString(styles.DimStyle.Render("Current: "))
				b.WriteString(styles.FilePathStyle.Render(truncatePath(m.live.CurrentPath, max(20, m.width-12))))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	} else {
		switch m.result.Status {
		case scanner.StatusFailed:
			b.WriteString(styles.ErrorStyle.Render("✗ Scan Failed: " + m.result.Error))
		default:
			b.WriteString(styles.SuccessStyle.Render("✓ Scan Complete!"))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Found %s duplicates in %s files, %s reclaimable\n",
		styles.WarningStyle.Render(fmt.Sprintf("%d", m.result.DuplicateCount)),
		styles.BoldStyle.Render(fmt.Sprintf("%d", m.result.TotalFiles)),
		styles.FileSizeStyle.Render(utils.FormatBytes(m.result.ReclaimableSize))))
	if n := len(m.result.Warnings); n > 0 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d files skipped\n", n)))
	}

	if !m.done {
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("Press q to stop watching"))
	}

	return b.String()
}

// Result returns the last snapshot received
func (m *ScanViewModel) Result() scanner.ScanResult {
	return m.result
}

// Err returns the error that ended the view, if any
func (m *ScanViewModel) Err() error {
	return m.err
}

// Cancelled reports whether the user left before the scan finished
func (m *ScanViewModel) Cancelled() bool {
	return m.cancelled
}

// Helper function to truncate paths
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}
