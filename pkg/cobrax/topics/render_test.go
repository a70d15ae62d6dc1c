// pkg/cobrax/topics/render_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: glamour
// PURPOSE: Test that topic rendering follows the styled switch and topic format

package topics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const markdownTopic = "# Layout\n\nReleases live under **releases/** and `current` points at one.\n"

func TestMarkdownRenderer_Unstyled(t *testing.T) {
	tests := []struct {
		name   string
		styled func() bool
		format string
	}{
		{name: "styling off", styled: func() bool { return false }, format: ".md"},
		{name: "no switch", styled: nil, format: ".md"},
		{name: "text topic", styled: func() bool { return true }, format: ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewMarkdownRenderer(tt.styled)
			assert.Equal(t, markdownTopic, r.Render(markdownTopic, tt.format))
		})
	}
}

func TestMarkdownRenderer_Styled(t *testing.T) {
	dark := true
	calls := 0
	r := &MarkdownRenderer{
		Styled: func() bool { calls++; return true },
		Width:  40,
		Dark:   &dark,
	}

	out := r.Render(markdownTopic, ".md")
	assert.Equal(t, 1, calls, "the switch is consulted at render time")
	assert.NotEqual(t, markdownTopic, out)
	assert.Contains(t, stripANSI(out), "Layout")
	assert.NotContains(t, out, "**", "markdown emphasis is rendered")
	assert.Contains(t, stripANSI(out), "releases/")
}

func TestMarkdownRenderer_Wrap(t *testing.T) {
	assert.Equal(t, 60, (&MarkdownRenderer{Width: 60}).wrap())
	assert.Equal(t, maxWrap, (&MarkdownRenderer{Width: 500}).wrap())
	assert.LessOrEqual(t, (&MarkdownRenderer{}).wrap(), maxWrap)
	assert.Positive(t, (&MarkdownRenderer{}).wrap())
}

func TestPlainRenderer(t *testing.T) {
	assert.Equal(t, markdownTopic, plainRenderer{}.Render(markdownTopic, ".md"))
}

// stripANSI drops CSI escape sequences
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && (s[i] < 0x40 || s[i] > 0x7e) {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
