package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/dupliremover/internal/scanner"
	"github.com/fenilsonani/dupliremover/internal/ui/models"
)

// ErrWatchCancelled is returned when the user leaves the watch view before
// the scan finished
var ErrWatchCancelled = errors.New("stopped watching scan")

// RunWatch shows the interactive view for a running scan and returns its
// final snapshot
func RunWatch(ctx context.Context, source models.Source, scanID string) (scanner.ScanResult, error) {
	m := models.NewScanViewModel(source, scanID)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return m.Result(), fmt.Errorf("error running interactive mode: %w", err)
	}

	if err := m.Err(); err != nil {
		return m.Result(), err
	}
	if m.Cancelled() {
		return m.Result(), ErrWatchCancelled
	}
	return m.Result(), nil
}
