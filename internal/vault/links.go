package vault

import (
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// EmbedMarker prefixes a link to embed its target instead of linking it.
const EmbedMarker = "!"

// LinkText returns an embed link from the note at from to target, in the
// host's configured link syntax: ![[rel]] or ![name](rel). rel is the file
// name when target sits beside the note and the full vault path otherwise.
func (v *Vault) LinkText(target, from string) string {
	return FormatLink(target, from, v.Host().UseMarkdownLinks())
}

// FormatLink is LinkText with an explicit syntax choice.
func FormatLink(target, from string, markdown bool) string {
	name := path.Base(target)
	rel := target
	if Dir(target) == Dir(from) {
		rel = name
	}
	if markdown {
		return EmbedMarker + "[" + strings.TrimSuffix(name, path.Ext(name)) + "](" + escapeLinkPath(rel) + ")"
	}
	return EmbedMarker + "[[" + rel + "]]"
}

// StripEmbed removes a leading embed marker.
func StripEmbed(link string) string {
	return strings.TrimPrefix(strings.TrimSpace(link), EmbedMarker)
}

// LinkTarget extracts the raw target of a wiki or Markdown link, without
// alias, heading or embed marker. ok is false when link is neither.
func LinkTarget(link string) (target string, ok bool) {
	s := StripEmbed(link)
	switch {
	case strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]"):
		s = strings.TrimSuffix(strings.TrimPrefix(s, "[["), "]]")
		s, _, _ = strings.Cut(s, "|")
		s, _, _ = strings.Cut(s, "#")
		return strings.TrimSpace(s), s != ""
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, ")"):
		i := strings.Index(s, "](")
		if i < 0 {
			return "", false
		}
		s = strings.TrimSpace(s[i+2 : len(s)-1])
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
		if u, err := url.PathUnescape(s); err == nil {
			s = u
		}
		return s, s != ""
	default:
		return "", false
	}
}

// ResolveLink maps a stored link back to the vault path of an existing
// file. A bare file name is looked up beside the note first, then at the
// root, then anywhere in the vault.
func (v *Vault) ResolveLink(link, from string) (string, bool) {
	target, ok := LinkTarget(link)
	if !ok {
		return "", false
	}

	if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
		p := Join(Dir(from), target)
		return p, p != "" && v.Exists(p)
	}
	if strings.Contains(target, "/") {
		if v.Exists(target) {
			return Join(target), true
		}
		return "", false
	}

	if p := Join(Dir(from), target); v.Exists(p) {
		return p, true
	}
	if v.Exists(target) {
		return target, true
	}
	return v.findByName(target)
}

// findByName returns the first file named name in path order.
func (v *Vault) findByName(name string) (string, bool) {
	var found string
	_ = filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name {
			if rel, err := v.Rel(p); err == nil {
				found = rel
				return fs.SkipAll
			}
		}
		return nil
	})
	return found, found != ""
}

func escapeLinkPath(p string) string {
	return strings.ReplaceAll(p, " ", "%20")
}
