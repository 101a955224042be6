// Package render formats skill documents for terminal display.
package render

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// DefaultWidth is the word-wrap width for rendered output.
const DefaultWidth = 100

// Renderer renders Markdown for the terminal.
type Renderer struct {
	tr    *glamour.TermRenderer
	plain bool
}

// New creates a Renderer. When stdout is not a terminal, or NO_COLOR is
// set, rendering degrades to the plain document text.
func New() (*Renderer, error) {
	if os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd()) {
		return &Renderer{plain: true}, nil
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultWidth),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create markdown renderer")
	}

	return &Renderer{tr: tr}, nil
}

// NewPlain creates a Renderer that always returns the document text as-is.
func NewPlain() *Renderer {
	return &Renderer{plain: true}
}

// Render renders a Markdown document.
func (r *Renderer) Render(markdown string) (string, error) {
	if r.plain {
		return markdown, nil
	}

	out, err := r.tr.Render(markdown)
	if err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return out, nil
}
