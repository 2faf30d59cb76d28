package main

import (
	"io"
	"os"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/cards"
	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/logger"
	"github.com/alnah/go-md2card/internal/sink"
)

// Renderer is a card renderer that holds a browser until closed.
type Renderer interface {
	cards.Renderer
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, the working directory, the renderer and the clipboard.
type Environment struct {
	Stdout       io.Writer
	Stderr       io.Writer
	Getwd        func() (string, error)
	NewRenderer  func(cfg *config.Config, log logger.Logger) (Renderer, error)
	NewClipboard func() cards.ImageSink
}

// DefaultEnv returns the production environment backed by headless Chrome
// and the system clipboard.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Getwd:        os.Getwd,
		NewRenderer:  newConverter,
		NewClipboard: func() cards.ImageSink { return sink.NewClipboard() },
	}
}

// newConverter builds the Chrome-backed renderer from the render settings.
func newConverter(cfg *config.Config, log logger.Logger) (Renderer, error) {
	opts := []md2card.Option{
		md2card.WithTimeout(cfg.Timeout()),
		md2card.WithLogger(log),
	}
	if cfg.Render.Style != "" {
		opts = append(opts, md2card.WithStyle(cfg.Render.Style))
	}
	if cfg.Render.AssetPath != "" {
		opts = append(opts, md2card.WithAssetPath(cfg.Render.AssetPath))
	}
	if cfg.Render.Template != "" {
		opts = append(opts, md2card.WithTemplate(cfg.Render.Template))
	}
	return md2card.NewConverter(opts...)
}
