package md2card

import (
	"fmt"
	"time"

	"github.com/alnah/go-md2card/internal/logger"
)

// Card geometry in CSS pixels.
const (
	CardWidth  = 238
	CardHeight = 332
)

// Pixel density bounds. Exports use DefaultDensity; clipboard copies may use
// the lighter ClipboardDensity.
const (
	DefaultDensity   = 4
	ClipboardDensity = 3
	MinDensity       = 1
	MaxDensity       = 8
)

// Input contains the content of one card.
type Input struct {
	Markdown string   // note body without frontmatter; may be empty
	Title    string   // header text
	Type     string   // footer type label
	Number   *int     // footer number; nil means unnumbered
	Classes  []string // extra classes on the card root

	SourceDir string // note directory, for relative images
	RootDir   string // vault root, fallback for attachment links

	CSS      string // appended after the card style
	Density  int    // device pixel ratio; 0 means DefaultDensity
	HTMLOnly bool   // skip rasterization
}

// RenderResult holds the card HTML and, unless HTMLOnly was set, the PNG.
type RenderResult struct {
	HTML []byte
	PNG  []byte
}

// Dimensions returns the exact PNG size for density d.
func Dimensions(d int) (width, height int) {
	return CardWidth * d, CardHeight * d
}

func (in Input) density() int {
	if in.Density == 0 {
		return DefaultDensity
	}
	return in.Density
}

// Validate checks per-render settings.
func (in Input) Validate() error {
	if d := in.density(); d < MinDensity || d > MaxDensity {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidDensity, d, MinDensity, MaxDensity)
	}
	if in.Number != nil && *in.Number < 0 {
		return fmt.Errorf("card number must not be negative: %d", *in.Number)
	}
	return nil
}

// Option configures a Converter.
type Option func(*Converter)

type converterConfig struct {
	timeout       time.Duration
	styleInput    string // name, file path, or CSS content
	resolvedStyle string
	assetPath     string
	templateName  string
}

const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-render browser timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2card: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithStyle sets the card stylesheet: a style name from the asset loader,
// a path to a .css file, or CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath loads styles and templates from dir before the embedded ones.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithTemplate selects the card template by name.
func WithTemplate(name string) Option {
	return func(c *Converter) {
		c.cfg.templateName = name
	}
}

// WithAssetLoader replaces the asset loader entirely.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = loader
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}
