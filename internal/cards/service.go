package cards

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/frontmatter"
	"github.com/alnah/go-md2card/internal/logger"
	"github.com/alnah/go-md2card/internal/vault"
)

// DefaultCardTag selects notes for batch actions.
const DefaultCardTag = "card"

// Renderer turns card input into HTML and PNG. *md2card.Converter
// satisfies it.
type Renderer interface {
	Render(ctx context.Context, input md2card.Input) (*md2card.RenderResult, error)
}

// ImageSink receives a rendered card for transient use, such as the
// clipboard.
type ImageSink interface {
	WriteImage(ctx context.Context, png []byte) error
}

var _ Renderer = (*md2card.Converter)(nil)

// Service runs card actions against one vault.
type Service struct {
	vault    *vault.Vault
	meta     *vault.MetadataCache
	renderer Renderer
	sink     ImageSink
	notifier Notifier
	log      logger.Logger

	cardTag  string
	include  []string
	css      string
	density  int
	lockPath string
}

// Option configures a Service.
type Option func(*Service)

// WithCardTag sets the tag batch actions select on.
func WithCardTag(tag string) Option {
	return func(s *Service) {
		if tag != "" {
			s.cardTag = tag
		}
	}
}

// WithInclude restricts batch discovery to vault paths matching any of the
// doublestar patterns.
func WithInclude(patterns ...string) Option {
	return func(s *Service) {
		s.include = append(s.include, patterns...)
	}
}

// WithSink sets where Copy sends images.
func WithSink(sink ImageSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithNotifier sets where user-facing notices go.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCSS appends CSS to every card this service renders.
func WithCSS(css string) Option {
	return func(s *Service) {
		s.css = css
	}
}

// WithDensity sets the export density. Zero keeps md2card.DefaultDensity.
func WithDensity(d int) Option {
	return func(s *Service) {
		s.density = d
	}
}

// WithLockPath overrides the batch lock file location.
func WithLockPath(p string) Option {
	return func(s *Service) {
		s.lockPath = p
	}
}

// NewService creates a Service. Include patterns are validated here.
func NewService(v *vault.Vault, meta *vault.MetadataCache, r Renderer, opts ...Option) (*Service, error) {
	s := &Service{
		vault:    v,
		meta:     meta,
		renderer: r,
		notifier: NopNotifier{},
		log:      logger.Nop(),
		cardTag:  DefaultCardTag,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, p := range s.include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}
	if s.lockPath == "" {
		s.lockPath = defaultLockPath(v.Root())
	}
	return s, nil
}

// CardTag returns the tag batch actions select on.
func (s *Service) CardTag() string { return s.cardTag }

// LockPath returns the batch lock file.
func (s *Service) LockPath() string { return s.lockPath }

// Vault returns the vault the service acts on.
func (s *Service) Vault() *vault.Vault { return s.vault }

// Note returns the parsed note at docPath.
func (s *Service) Note(docPath string) (frontmatter.Note, error) {
	return s.meta.Get(docPath)
}

// defaultLockPath is a per-vault file in the temp dir, so the lock never
// shows up inside the vault.
func defaultLockPath(root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(os.TempDir(), "md2card-"+hex.EncodeToString(sum[:8])+".lock")
}
