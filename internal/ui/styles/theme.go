package styles

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Violet = lipgloss.Color("#7C3AED")
	Lilac  = lipgloss.Color("#A78BFA")
	Green  = lipgloss.Color("#10B981")
	Amber  = lipgloss.Color("#F59E0B")
	Red    = lipgloss.Color("#EF4444")
	Blue   = lipgloss.Color("#3B82F6")
	Slate  = lipgloss.Color("#6B7280")
	Grey   = lipgloss.Color("#9CA3AF")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	TitleStyle    = fg(Violet).Bold(true)
	SelectedStyle = fg(Violet).Bold(true)
	FilePathStyle = fg(Blue)
	FileSizeStyle = fg(Amber)
	CategoryStyle = fg(Lilac).Italic(true)
	ErrorStyle    = fg(Red).Bold(true)
	SuccessStyle  = fg(Green).Bold(true)
	WarningStyle  = fg(Amber).Bold(true)
	HelpStyle     = fg(Grey).Italic(true)
	DimStyle      = fg(Grey)
	BoldStyle     = lipgloss.NewStyle().Bold(true)

	// Duplicate tree rows: the kept copy and the copies slated for removal.
	KeepStyle      = fg(Green)
	DuplicateStyle = fg(Slate).Strikethrough(true)
)
