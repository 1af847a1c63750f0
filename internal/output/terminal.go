package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWrapWidth is used when the terminal width cannot be read.
const DefaultWrapWidth = 100

// MarkdownRenderer styles markdown for a terminal.
type MarkdownRenderer struct {
	glam *glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer that wraps at width columns.
func NewMarkdownRenderer(width int) (*MarkdownRenderer, error) {
	g, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating glamour renderer: %w", err)
	}
	return &MarkdownRenderer{glam: g}, nil
}

// Render styles md. A zero MarkdownRenderer returns md unchanged.
func (m *MarkdownRenderer) Render(md string) (string, error) {
	switch {
	case md == "":
		return "", nil
	case m.glam == nil:
		return md, nil
	}
	return m.glam.Render(md)
}

// terminalWidth reports the column count of w, or false when w is not a
// terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
		return cols, true
	}
	return DefaultWrapWidth, true
}

// WriteMarkdown writes md to w, styled to the terminal's width when w is
// one and verbatim otherwise.
func WriteMarkdown(w io.Writer, md []byte) error {
	if width, ok := terminalWidth(w); ok {
		r, err := NewMarkdownRenderer(width)
		if err != nil {
			return err
		}
		styled, err := r.Render(string(md))
		if err != nil {
			return err
		}
		md = []byte(styled)
	}
	_, err := w.Write(md)
	return err
}
