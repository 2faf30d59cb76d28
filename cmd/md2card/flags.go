package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2card/internal/config"
)

// errUsage marks command-line mistakes.
var errUsage = errors.New("usage error")

// commonFlags holds flags shared by every vault command.
type commonFlags struct {
	config   string
	vault    string
	logLevel string
	logJSON  bool
	quiet    bool
	verbose  bool
}

// renderFlags holds card rendering overrides.
type renderFlags struct {
	style     string
	css       string
	template  string
	assetPath string
	timeout   string
	density   int
	tag       string
	include   []string
}

// copyFlags holds copy-only flags.
type copyFlags struct {
	stdout   bool
	htmlOnly bool
}

// previewFlags holds preview server flags.
type previewFlags struct {
	host string
	port int
}

// commandFlags is everything a command may read after parsing.
type commandFlags struct {
	common  commonFlags
	render  renderFlags
	copy    copyFlags
	preview previewFlags
	json    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", config.DefaultName, "config file name or path")
	fs.StringVar(&f.vault, "vault", "", "vault folder (default: config vault or current directory)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	fs.BoolVar(&f.logJSON, "log-json", false, "log as JSON")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name, file path, or inline CSS")
	fs.StringVar(&f.css, "css", "", "extra CSS appended to every card")
	fs.StringVar(&f.template, "template", "", "card template name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 30s, 2m)")
	fs.IntVarP(&f.density, "density", "d", 0, "pixels per CSS pixel (1-8, default 4)")
	fs.StringVar(&f.tag, "tag", "", "card tag for batch commands")
	fs.StringSliceVar(&f.include, "include", nil, "only batch notes matching these globs")
}

// parseCommandFlags parses the flags of command name and returns its
// positional arguments.
func parseCommandFlags(name string, args []string, stderr io.Writer) (*commandFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &commandFlags{}

	switch name {
	case cmdDoctor:
		fs.StringVar(&f.common.vault, "vault", "", "vault folder to check")
		fs.StringVarP(&f.common.config, "config", "c", config.DefaultName, "config file name or path")
		fs.BoolVar(&f.json, "json", false, "output JSON")
	case cmdTag:
		fs.StringVarP(&f.common.config, "config", "c", config.DefaultName, "config file name or path")
	default:
		addCommonFlags(fs, &f.common)
		addRenderFlags(fs, &f.render)
	}

	switch name {
	case cmdCopy:
		fs.BoolVar(&f.copy.stdout, "stdout", false, "write the PNG to stdout instead of the clipboard")
		fs.BoolVar(&f.copy.htmlOnly, "html-only", false, "write the card HTML to stdout, skip rasterization")
	case cmdPreview:
		fs.StringVar(&f.preview.host, "host", "", "listen address (default 127.0.0.1)")
		fs.IntVarP(&f.preview.port, "port", "p", 0, "listen port (default 7348)")
	case cmdNumber:
		fs.BoolVar(&f.json, "json", false, "output JSON")
	case cmdRenderAll:
		fs.BoolVar(&f.json, "json", false, "output JSON")
	}

	fs.Usage = func() { printCommandUsage(stderr, name) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return f, fs.Args(), nil
}

// mergeFlags applies explicitly set flags over the loaded config.
func mergeFlags(f *commandFlags, cfg *config.Config) {
	c := f.common
	if c.vault != "" {
		cfg.Vault = c.vault
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	if c.quiet {
		cfg.Log.Level = "error"
	}
	if c.logJSON {
		cfg.Log.JSON = true
	}

	r := f.render
	if r.style != "" {
		cfg.Render.Style = r.style
	}
	if r.css != "" {
		cfg.Render.CSS = r.css
	}
	if r.template != "" {
		cfg.Render.Template = r.template
	}
	if r.assetPath != "" {
		cfg.Render.AssetPath = r.assetPath
	}
	if r.timeout != "" {
		cfg.Render.Timeout = r.timeout
	}
	if r.density != 0 {
		cfg.Render.Density = r.density
	}
	if r.tag != "" {
		cfg.CardTag = r.tag
	}
	if len(r.include) > 0 {
		cfg.Batch.Include = r.include
	}

	if f.preview.host != "" {
		cfg.Preview.Host = f.preview.host
	}
	if f.preview.port != 0 {
		cfg.Preview.Port = f.preview.port
	}
}
