package tui

import (
	"github.com/charmbracelet/glamour"
)

// RendererOption configures NewRenderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	style    string
	wordWrap int
}

// WithStyle forces a glamour standard style ("dark", "light", "notty", ...)
// instead of detecting the terminal background.
func WithStyle(style string) RendererOption {
	return func(c *rendererConfig) {
		c.style = style
	}
}

// WithWordWrap sets the wrap column. Zero disables wrapping.
func WithWordWrap(width int) RendererOption {
	return func(c *rendererConfig) {
		c.wordWrap = width
	}
}

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background unless WithStyle is given.
func NewRenderer(opts ...RendererOption) (func(string) (string, error), error) {
	cfg := rendererConfig{wordWrap: 100}
	for _, opt := range opts {
		opt(&cfg)
	}

	glamourOpts := []glamour.TermRendererOption{glamour.WithWordWrap(cfg.wordWrap)}
	if cfg.style != "" {
		glamourOpts = append(glamourOpts, glamour.WithStandardStyle(cfg.style))
	} else {
		glamourOpts = append(glamourOpts, glamour.WithAutoStyle()) // Automatically detect light/dark background
	}

	r, err := glamour.NewTermRenderer(glamourOpts...)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
