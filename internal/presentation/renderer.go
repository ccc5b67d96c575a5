package presentation

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
// On terminals without color support it falls back to notty styling.
func NewRenderer() func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if termenv.ColorProfile() == termenv.Ascii {
		opts = []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
