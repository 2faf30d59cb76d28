package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/frontmatter"
	"github.com/alnah/go-md2card/internal/logger"
)

// DefaultConfigDir is the host settings folder at the vault root.
const DefaultConfigDir = ".obsidian"

const (
	noteExt  = ".md"
	filePerm = 0o644
)

// Vault is a vault rooted at a local directory.
type Vault struct {
	root      string // absolute
	configDir string // vault-relative
	log       logger.Logger

	// fmMu serializes frontmatter read-modify-write across goroutines.
	fmMu sync.Mutex
}

// Option configures a Vault.
type Option func(*Vault)

// WithConfigDir overrides DefaultConfigDir.
func WithConfigDir(dir string) Option {
	return func(v *Vault) {
		if dir != "" {
			v.configDir = filepath.ToSlash(filepath.Clean(dir))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Vault) {
		if l != nil {
			v.log = l
		}
	}
}

// Open returns a Vault rooted at root, which must be an existing directory.
func Open(root string, opts ...Option) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADir, abs)
	}

	v := &Vault{root: abs, configDir: DefaultConfigDir, log: logger.Nop()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string { return v.root }

// ConfigDir returns the vault-relative host settings folder.
func (v *Vault) ConfigDir() string { return v.configDir }

// Host returns the host settings reader for this vault.
func (v *Vault) Host() HostConfig {
	return HostConfig{dir: filepath.Join(v.root, filepath.FromSlash(v.configDir))}
}

// Abs resolves a vault path to an absolute file path, rejecting paths that
// escape the root.
func (v *Vault) Abs(rel string) (string, error) {
	if rel == "" {
		return v.root, nil
	}
	native := filepath.FromSlash(rel)
	if filepath.IsAbs(native) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %s", ErrAbsolutePath, rel)
	}
	abs := filepath.Join(v.root, filepath.Clean(native))
	if abs != v.root && !strings.HasPrefix(abs, v.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, rel)
	}
	return abs, nil
}

// Rel converts an absolute path under the root to a vault path.
func (v *Vault) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, abs)
	}
	return filepath.ToSlash(rel), nil
}

// List returns every note in the vault in alphabetical path order. Hidden
// folders, the host settings folder among them, are skipped.
func (v *Vault) List(ctx context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), noteExt) {
			return nil
		}
		rel, err := v.Rel(p)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: list: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// ReadText returns a note's content.
func (v *Vault) ReadText(rel string) (string, error) {
	data, err := v.ReadBinary(rel)
	return string(data), err
}

// ReadBinary returns a file's bytes.
func (v *Vault) ReadBinary(rel string) ([]byte, error) {
	abs, err := v.Abs(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- contained by Abs
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", rel, err)
	}
	return data, nil
}

// WriteBinary creates or overwrites rel atomically.
func (v *Vault) WriteBinary(rel string, data []byte) error {
	abs, err := v.Abs(rel)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(abs, data, filePerm); err != nil {
		return fmt.Errorf("vault: write %s: %w", rel, err)
	}
	v.log.Debug("wrote file", "path", rel, "bytes", len(data))
	return nil
}

// Exists reports whether rel names an existing file or folder.
func (v *Vault) Exists(rel string) bool {
	abs, err := v.Abs(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// Stat returns file info for rel.
func (v *Vault) Stat(rel string) (fs.FileInfo, error) {
	abs, err := v.Abs(rel)
	if err != nil {
		return nil, err
	}
	return os.Stat(abs)
}

// ProcessFrontmatter reads rel, lets fn edit its frontmatter, and writes the
// note back. Calls are serialized. The body is preserved byte for byte. A
// note whose frontmatter cannot be parsed is left untouched and the
// ErrInvalidFrontmatter is returned.
func (v *Vault) ProcessFrontmatter(rel string, fn func(*frontmatter.Block) error) error {
	v.fmMu.Lock()
	defer v.fmMu.Unlock()

	data, err := v.ReadBinary(rel)
	if err != nil {
		return err
	}
	block, body, err := frontmatter.Split(data)
	if err != nil {
		return fmt.Errorf("vault: %s: %w", rel, err)
	}
	if err := fn(&block); err != nil {
		return err
	}
	out, err := frontmatter.Join(block, body)
	if err != nil {
		return fmt.Errorf("vault: encode frontmatter %s: %w", rel, err)
	}
	return v.WriteBinary(rel, out)
}

// Dir returns the folder part of a vault path, "" for the root.
func Dir(rel string) string {
	d := path.Dir(rel)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

// Join joins vault path elements, dropping empty ones.
func Join(elem ...string) string {
	p := path.Join(elem...)
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "/")
}
