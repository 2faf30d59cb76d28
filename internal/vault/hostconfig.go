package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// Host setting keys read from app.json.
const (
	SettingAttachmentFolder = "attachmentFolderPath"
	SettingMarkdownLinks    = "useMarkdownLinks"
)

// TemplatesPlugin is the core plugin whose folder is excluded from batches.
const TemplatesPlugin = "templates"

const (
	appSettingsFile = "app.json"
	corePluginsFile = "core-plugins.json"
)

// HostConfig reads the host application's settings folder. Every call
// reads the files afresh; missing files behave as empty settings.
type HostConfig struct {
	dir string
}

// NewHostConfig reads settings from dir.
func NewHostConfig(dir string) HostConfig {
	return HostConfig{dir: dir}
}

// Setting returns the value of key in app.json.
func (h HostConfig) Setting(key string) (gjson.Result, error) {
	data, err := h.read(appSettingsFile)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.GetBytes(data, key), nil
}

// UseMarkdownLinks reports whether new links use [name](path) syntax.
func (h HostConfig) UseMarkdownLinks() bool {
	res, err := h.Setting(SettingMarkdownLinks)
	return err == nil && res.Bool()
}

// AttachmentFolder returns the vault folder new attachments for the note at
// notePath belong in: the note's own folder when unset, a subfolder of it
// for "./sub", and the configured vault folder otherwise ("/" is the root).
func (h HostConfig) AttachmentFolder(notePath string) string {
	res, err := h.Setting(SettingAttachmentFolder)
	var setting string
	if err == nil {
		setting = strings.TrimSpace(res.String())
	}

	noteDir := Dir(notePath)
	switch {
	case setting == "" || setting == ".":
		return noteDir
	case strings.HasPrefix(setting, "./"):
		return Join(noteDir, strings.TrimPrefix(setting, "./"))
	default:
		return Join(strings.Trim(setting, "/"))
	}
}

// Plugin describes a core plugin's state.
type Plugin struct {
	ID      string
	Enabled bool
	Options gjson.Result
}

// Plugin returns the enabled state of core plugin id, from either the array
// or the object form of core-plugins.json, and its options file.
func (h HostConfig) Plugin(id string) (Plugin, error) {
	p := Plugin{ID: id}

	data, err := h.read(corePluginsFile)
	if err != nil {
		return p, err
	}
	list := gjson.ParseBytes(data)
	switch {
	case list.IsArray():
		list.ForEach(func(_, v gjson.Result) bool {
			if v.String() == id {
				p.Enabled = true
				return false
			}
			return true
		})
	case list.IsObject():
		list.ForEach(func(k, v gjson.Result) bool {
			if k.String() == id {
				p.Enabled = v.Bool()
				return false
			}
			return true
		})
	}

	opts, err := h.read(id + ".json")
	if err != nil {
		return p, err
	}
	p.Options = gjson.ParseBytes(opts)
	return p, nil
}

// TemplateFolder returns the templates plugin folder when the plugin is
// enabled and has one configured.
func (h HostConfig) TemplateFolder() (string, bool) {
	p, err := h.Plugin(TemplatesPlugin)
	if err != nil || !p.Enabled {
		return "", false
	}
	folder := strings.Trim(strings.TrimSpace(p.Options.Get("folder").String()), "/")
	if folder == "" {
		return "", false
	}
	return folder, true
}

// read returns the content of a settings file, or nil when it is missing.
func (h HostConfig) read(name string) ([]byte, error) {
	if h.dir == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(h.dir, name)) // #nosec G304 -- fixed names under the settings folder
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vault: read host settings %s: %w", name, err)
	}
	return data, nil
}
