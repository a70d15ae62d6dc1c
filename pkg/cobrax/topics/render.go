package topics

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// maxWrap caps the wrap width on wide terminals
const maxWrap = 100

// Renderer formats topic content for display. format is the topic file's
// extension, e.g. ".md".
type Renderer interface {
	Render(content string, format string) string
}

type plainRenderer struct{}

func (plainRenderer) Render(content string, _ string) string {
	return content
}

// MarkdownRenderer renders markdown topics through glamour when output is
// styled and returns them verbatim otherwise, so piped help stays greppable.
// Non-markdown topics always pass through.
type MarkdownRenderer struct {
	// Styled is asked on every render; flags are parsed after the renderer
	// is built
	Styled func() bool
	// Width wraps rendered text, the terminal width when zero
	Width int
	// Dark selects the glamour theme, the terminal background when nil
	Dark *bool
}

// NewMarkdownRenderer creates a renderer that styles output when styled
// reports true
func NewMarkdownRenderer(styled func() bool) *MarkdownRenderer {
	return &MarkdownRenderer{Styled: styled}
}

func (r *MarkdownRenderer) Render(content string, format string) string {
	if format != ".md" || r.Styled == nil || !r.Styled() {
		return content
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.theme()),
		glamour.WithWordWrap(r.wrap()),
	)
	if err != nil {
		return content
	}
	rendered, err := tr.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func (r *MarkdownRenderer) theme() string {
	dark := termenv.HasDarkBackground()
	if r.Dark != nil {
		dark = *r.Dark
	}
	if dark {
		return "dark"
	}
	return "light"
}

func (r *MarkdownRenderer) wrap() int {
	width := r.Width
	if width <= 0 {
		width = pterm.GetTerminalWidth()
	}
	if width <= 0 || width > maxWrap {
		width = maxWrap
	}
	return width
}
