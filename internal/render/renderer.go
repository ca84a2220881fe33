package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	minWrap = 40
	maxWrap = 120
)

// Renderer styles post bodies for a terminal of a given width. The glamour
// renderer is rebuilt only when the wrap width moves noticeably.
// Not safe for concurrent use; the TUI owns one.
type Renderer struct {
	style string

	tr    *glamour.TermRenderer
	width int
}

// NewRenderer uses a glamour standard style such as "dark", "light",
// "notty" or "ascii". Empty means "dark".
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = "dark"
	}
	return &Renderer{style: style}
}

// WrapWidth maps a terminal width to the body wrap width: 90% of the
// terminal, kept between 40 and 120 columns for readability.
func WrapWidth(termWidth int) int {
	w := termWidth * 9 / 10
	return max(minWrap, min(w, maxWrap))
}

func (r *Renderer) renderer(termWidth int) (*glamour.TermRenderer, error) {
	wrap := WrapWidth(termWidth)
	if r.tr != nil && abs(r.width-wrap) <= 10 {
		return r.tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, fmt.Errorf("glamour renderer: %w", err)
	}
	r.tr = tr
	r.width = wrap
	return tr, nil
}

// Render converts an HTML body to styled terminal text.
func (r *Renderer) Render(body string, termWidth int) (string, error) {
	md, err := ToMarkdown(body)
	if err != nil {
		return "", err
	}
	if md == "" {
		return "", nil
	}
	tr, err := r.renderer(termWidth)
	if err != nil {
		return "", err
	}
	out, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
