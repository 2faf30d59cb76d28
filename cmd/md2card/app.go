package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/assets"
	"github.com/alnah/go-md2card/internal/cards"
	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/hints"
	"github.com/alnah/go-md2card/internal/logger"
	"github.com/alnah/go-md2card/internal/vault"
)

// app is the wiring shared by the vault commands.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	vault    *vault.Vault
	meta     *vault.MetadataCache
	renderer Renderer
	quiet    bool
}

// loadConfig loads the named config and applies flag overrides.
func loadConfig(f *commandFlags) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(f.common.config)
	if err != nil {
		return nil, err
	}
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the CLI logger; logs go to stderr so stdout stays
// free for command output.
func newLogger(cfg *config.Config, w io.Writer) logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     w,
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})
}

// newApp opens the vault and builds the renderer.
func newApp(f *commandFlags, env *Environment) (*app, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg, env.Stderr)

	root := cfg.Vault
	if root == "" {
		if root, err = env.Getwd(); err != nil {
			return nil, fmt.Errorf("resolving vault: %w", err)
		}
	}
	v, err := vault.Open(root, vault.WithConfigDir(cfg.ConfigDir), vault.WithLogger(log))
	if err != nil {
		return nil, err
	}
	meta, err := vault.NewMetadataCache(v, cfg.Keys, vault.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	renderer, err := env.NewRenderer(cfg, log)
	if err != nil {
		return nil, err
	}

	log.Debug("vault opened", "root", v.Root(), "config", cfg.Path(), "tag", cfg.CardTag)
	return &app{cfg: cfg, log: log, vault: v, meta: meta, renderer: renderer, quiet: f.common.quiet}, nil
}

// service builds the card service; opts come after the config-derived ones.
func (a *app) service(opts ...cards.Option) (*cards.Service, error) {
	base := []cards.Option{
		cards.WithCardTag(a.cfg.CardTag),
		cards.WithInclude(a.cfg.Batch.Include...),
		cards.WithCSS(a.cfg.Render.CSS),
		cards.WithDensity(a.cfg.Render.Density),
		cards.WithLogger(a.log),
	}
	return cards.NewService(a.vault, a.meta, a.renderer, append(base, opts...)...)
}

func (a *app) Close() error {
	return a.renderer.Close()
}

// stderrNotifier prints info notices to w; errors are reported by runMain.
type stderrNotifier struct {
	w     io.Writer
	quiet bool
}

func (n stderrNotifier) Notify(notice cards.Notice) {
	if n.quiet || notice.Level == cards.LevelError {
		return
	}
	fmt.Fprintln(n.w, notice.Message)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, md2card.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, md2card.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, cards.ErrNoActiveDocument):
		return hints.ForNoActiveNote()
	case errors.Is(err, vault.ErrNotADir):
		return hints.ForVault()
	case errors.Is(err, cards.ErrPersistenceFailure):
		return hints.ForAttachmentFolder()
	}
	return ""
}

// runTag shows the card tag or saves a new one.
func runTag(args []string, f *commandFlags, env *Environment) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: tag takes at most one value", errUsage)
	}
	cfg, err := config.LoadOrDefault(f.common.config)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(env.Stdout, cfg.CardTag)
		return nil
	}

	cfg.CardTag = strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "card tag set to %q in %s\n", cfg.CardTag, cfg.Path())
	return nil
}
