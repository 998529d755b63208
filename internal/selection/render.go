package selection

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const promptText = "Choose a result: "

type styles struct {
	header      lipgloss.Style
	index       lipgloss.Style
	url         lipgloss.Style
	description lipgloss.Style
	prompt      lipgloss.Style
}

// newStyles binds the styles to out, so a non-terminal writer gets plain text.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		header:      r.NewStyle().Bold(true),
		index:       r.NewStyle().Bold(true),
		url:         r.NewStyle().Foreground(lipgloss.Color("12")),
		description: r.NewStyle().Faint(true),
		prompt:      r.NewStyle().Bold(true),
	}
}

// renderSession lists the results worst first, so the best match ends up
// next to the prompt and keeps its index 1.
func (st styles) renderSession(s *Session) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(st.header.Render(fmt.Sprintf("%s - %s", s.player.Artist, s.player.Track)))
	b.WriteString("\n")

	if len(s.results) == 0 {
		b.WriteString("No results found\n")
		return b.String()
	}

	for i := len(s.results) - 1; i >= 0; i-- {
		r := s.results[i]
		b.WriteString(st.index.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(" ")
		b.WriteString(st.url.Render(r.URL))
		b.WriteString("\n\t ")
		b.WriteString(st.description.Render(r.Description))
		b.WriteString("\n")
	}
	return b.String()
}

func (st styles) renderPrompt() string {
	return st.prompt.Render(promptText)
}
