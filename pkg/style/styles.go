package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette, adapting to light and dark backgrounds
var (
	headingColor  = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	mutedColor    = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
	pathColor     = lipgloss.AdaptiveColor{Light: "#495057", Dark: "#A0A8B0"}
	revisionColor = lipgloss.AdaptiveColor{Light: "#8B5CF6", Dark: "#A78BFA"}
	activeColor   = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	successColor  = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	errorColor    = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	warningColor  = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD54F"}
	infoColor     = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}
)

var (
	// TitleStyle heads the status view with the deploy root
	TitleStyle = lipgloss.NewStyle().Foreground(headingColor).Bold(true)
	// MutedStyle is for secondary facts: previous revision, counts
	MutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	// PathStyle renders release and deploy root paths
	PathStyle = lipgloss.NewStyle().Foreground(pathColor).Italic(true)
	// RevisionStyle renders revision ids
	RevisionStyle = lipgloss.NewStyle().Foreground(revisionColor).Bold(true)
	// ActiveStyle marks the release current points at
	ActiveStyle = lipgloss.NewStyle().Foreground(activeColor).Bold(true)
)

// Mark is the glyph leading an outcome line. Marks render when formatted, so
// the color profile picked by Resolve applies to them.
type Mark int

const (
	MarkSuccess Mark = iota
	MarkError
	MarkWarning
	MarkInfo
	MarkPending
)

var marks = map[Mark]struct {
	glyph string
	style lipgloss.Style
}{
	MarkSuccess: {"✓", lipgloss.NewStyle().Foreground(successColor).Bold(true)},
	MarkError:   {"✗", lipgloss.NewStyle().Foreground(errorColor).Bold(true)},
	MarkWarning: {"!", lipgloss.NewStyle().Foreground(warningColor).Bold(true)},
	MarkInfo:    {"•", lipgloss.NewStyle().Foreground(infoColor)},
	MarkPending: {"○", MutedStyle},
}

func (m Mark) String() string {
	mark, ok := marks[m]
	if !ok {
		return "?"
	}
	return mark.style.Render(mark.glyph)
}

// Indent pads s by level steps of two spaces
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}
