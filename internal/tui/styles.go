package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorHeader    = lipgloss.Color("99")
	ColorFocus     = lipgloss.Color("212")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("214")
	ColorError     = lipgloss.Color("196")
	ColorFrozen    = lipgloss.Color("109")
)

// Glyphs used in the table chrome.
const (
	IconSortAsc   = "▲"
	IconSortDesc  = "▼"
	IconExpanded  = "▾"
	IconCollapsed = "▸"
	IconEllipsis  = "…"

	scrollTrackV = "│"
	scrollThumbV = "┃"
	scrollTrackH = "─"
	scrollThumbH = "━"
)

//nolint:gochecknoglobals // Shared, immutable render styles.
var (
	HeaderStyle    = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	FocusStyle     = lipgloss.NewStyle().Foreground(ColorFocus).Bold(true).Underline(true)
	FrozenRowStyle = lipgloss.NewStyle().Foreground(ColorFrozen)
	ScrollbarStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	ResizeStyle    = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	SpinnerStyle   = lipgloss.NewStyle().Foreground(ColorFocus)
)
