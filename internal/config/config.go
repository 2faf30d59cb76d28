// Package config loads and saves the md2card configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/frontmatter"
	"github.com/alnah/go-md2card/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// DefaultName is the config looked up when none is given.
const DefaultName = "md2card"

// appDirName is the folder under the user config dir.
const appDirName = "go-md2card"

// Defaults.
const (
	DefaultCardTag   = "card"
	DefaultConfigDir = ".obsidian"
	DefaultTimeout   = 30 * time.Second
	DefaultPort      = 7348
)

var tagPattern = regexp.MustCompile(`^[^\s#,]+$`)

// Config holds all md2card settings.
type Config struct {
	Vault     string           `yaml:"vault"`
	CardTag   string           `yaml:"cardTag"`
	ConfigDir string           `yaml:"configDir"`
	Keys      frontmatter.Keys `yaml:"keys"`
	Render    RenderConfig     `yaml:"render"`
	Batch     BatchConfig      `yaml:"batch"`
	Preview   PreviewConfig    `yaml:"preview"`
	Log       LogConfig        `yaml:"log"`

	path string // file the config was loaded from, target of Save
}

// RenderConfig defines card rendering options.
type RenderConfig struct {
	Timeout   string `yaml:"timeout"`   // Go duration, e.g. "30s"
	Density   int    `yaml:"density"`   // 0 = library default (4)
	Style     string `yaml:"style"`     // style name, .css path, or CSS
	CSS       string `yaml:"css"`       // extra CSS appended to every card
	AssetPath string `yaml:"assetPath"` // folder with styles/ and templates/
	Template  string `yaml:"template"`  // card template name
}

// BatchConfig defines batch selection options.
type BatchConfig struct {
	Include []string `yaml:"include"` // doublestar patterns over vault paths
}

// PreviewConfig defines the preview server.
type PreviewConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.CardTag == "" {
		c.CardTag = DefaultCardTag
	}
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir
	}
	c.Keys = c.Keys.WithDefaults()
	if c.Render.Timeout == "" {
		c.Render.Timeout = DefaultTimeout.String()
	}
	if c.Preview.Host == "" {
		c.Preview.Host = "127.0.0.1"
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Path returns the file the config was loaded from or will be saved to.
func (c *Config) Path() string { return c.path }

// SetPath sets the Save target.
func (c *Config) SetPath(p string) { c.path = p }

// Timeout returns the parsed render timeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Render.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.CardTag, validation.Required, validation.Match(tagPattern).Error("must be a single tag without '#', spaces or commas")),
		validation.Field(&c.ConfigDir, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.Render),
		validation.Field(&c.Batch),
		validation.Field(&c.Preview),
		validation.Field(&c.Log),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks render options.
func (r RenderConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Timeout, validation.By(positiveDuration)),
		validation.Field(&r.Density, validation.Min(0), validation.Max(8)),
	)
}

// Validate checks batch options.
func (b BatchConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Include, validation.Each(validation.By(globPattern))),
	)
}

// Validate checks preview options.
func (p PreviewConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Port, validation.Min(0), validation.Max(65535)),
	)
}

// Validate checks log options.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("", "debug", "info", "warn", "error", "disabled")),
	)
}

func positiveDuration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return errors.New("must be a duration like 30s")
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func globPattern(value any) error {
	s, _ := value.(string)
	if !doublestar.ValidatePattern(s) {
		return fmt.Errorf("invalid pattern %q", s)
	}
	return nil
}

func relativeDir(value any) error {
	s, _ := value.(string)
	if filepath.IsAbs(s) || strings.HasPrefix(filepath.Clean(s), "..") {
		return errors.New("must be a folder inside the vault")
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// ${VAR} references are expanded before parsing. Unset fields get defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if expanded := os.ExpandEnv(string(data)); strings.TrimSpace(expanded) != "" {
		if err := yamlutil.UnmarshalStrict([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}
	cfg.ApplyDefaults()
	cfg.path = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is LoadConfig, except that a missing default config yields
// DefaultConfig with ./md2card.yaml as its Save target.
func LoadOrDefault(nameOrPath string) (*Config, error) {
	cfg, err := LoadConfig(nameOrPath)
	if errors.Is(err, ErrConfigNotFound) && nameOrPath == DefaultName {
		cfg = DefaultConfig()
		cfg.path = DefaultName + ".yaml"
		return cfg, nil
	}
	return cfg, err
}

// Save writes the configuration to Path atomically.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("%w: no config path to save to", ErrInvalidConfig)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yamlutil.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2card/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
