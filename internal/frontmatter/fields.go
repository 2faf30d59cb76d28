package frontmatter

import (
	"math"
	"path"
	"strconv"
	"strings"
)

// AliasPrefix marks the card-specific variant of a key ("card-title").
// When both variants are present the prefixed one wins.
const AliasPrefix = "card-"

// Keys names the frontmatter keys holding each card field.
type Keys struct {
	Type       string `yaml:"type"`
	Title      string `yaml:"title"`
	Number     string `yaml:"number"`
	Image      string `yaml:"image"`
	CSSClasses string `yaml:"cssClasses"`
	Tags       string `yaml:"tags"`
}

// DefaultKeys returns the key names used by the vault by default.
func DefaultKeys() Keys {
	return Keys{
		Type:       "type",
		Title:      "title",
		Number:     "number",
		Image:      "image",
		CSSClasses: "cssclasses",
		Tags:       "tags",
	}
}

// WithDefaults fills empty key names from DefaultKeys.
func (k Keys) WithDefaults() Keys {
	d := DefaultKeys()
	if k.Type == "" {
		k.Type = d.Type
	}
	if k.Title == "" {
		k.Title = d.Title
	}
	if k.Number == "" {
		k.Number = d.Number
	}
	if k.Image == "" {
		k.Image = d.Image
	}
	if k.CSSClasses == "" {
		k.CSSClasses = d.CSSClasses
	}
	if k.Tags == "" {
		k.Tags = d.Tags
	}
	return k
}

// NumberKey returns the key numbering writes to: the alias when the note
// already uses it, the plain key otherwise.
func (k Keys) NumberKey(b Block) string {
	return pick(b, k.Number)
}

// ImageKey returns the key the back-reference is written to.
func (k Keys) ImageKey(b Block) string {
	return pick(b, k.Image)
}

func pick(b Block, key string) string {
	if b.Has(AliasPrefix + key) {
		return AliasPrefix + key
	}
	return key
}

// Fields is the resolved card view of a note.
type Fields struct {
	Title      string
	Type       string
	Number     int
	HasNumber  bool
	Image      string
	CSSClasses []string
	Tags       []string
}

// PaddedNumber returns the display number, or "" when unnumbered.
func (f Fields) PaddedNumber() string {
	if !f.HasNumber {
		return ""
	}
	return PadNumber(f.Number)
}

// HasTag reports exact, case-sensitive membership of tag in the
// frontmatter tag list.
func (f Fields) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PadNumber formats n with at least three digits: 7 is "007", 1000 is "1000".
func PadNumber(n int) string {
	if n > 999 {
		return strconv.Itoa(n)
	}
	s := strconv.Itoa(n)
	return strings.Repeat("0", 3-len(s)) + s
}

// BaseName returns the note's file name without directory or .md extension.
func BaseName(docPath string) string {
	return strings.TrimSuffix(path.Base(docPath), ".md")
}

// Resolve reads the card fields from b. Absent or mistyped values fall back
// to defaults: the title defaults to the note's base name, and a number is
// only taken from a numeric YAML value (strings are never coerced).
func Resolve(b Block, docPath string, keys Keys) Fields {
	keys = keys.WithDefaults()

	f := Fields{
		Title: BaseName(docPath),
	}

	if v, ok := lookup(b, keys.Title); ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			f.Title = strings.TrimSpace(s)
		}
	}
	if v, ok := lookup(b, keys.Type); ok {
		if s, ok := v.(string); ok {
			f.Type = strings.TrimSpace(s)
		}
	}
	if v, ok := lookup(b, keys.Number); ok {
		f.Number, f.HasNumber = numberValue(v)
	}
	if v, ok := lookup(b, keys.Image); ok {
		if s, ok := v.(string); ok {
			f.Image = s
		}
	}
	if v, ok := lookup(b, keys.CSSClasses); ok {
		f.CSSClasses = stringList(v, ",")
	}
	if v, ok := lookup(b, keys.Tags); ok {
		for _, t := range stringList(v, ",") {
			f.Tags = appendTag(f.Tags, t)
		}
	}
	return f
}

func lookup(b Block, key string) (any, bool) {
	if v, ok := b.Get(AliasPrefix + key); ok {
		return v, true
	}
	return b.Get(key)
}

// numberValue accepts integer kinds and integral floats in [0, MaxInt].
func numberValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int8:
		return int(n), n >= 0
	case int16:
		return int(n), n >= 0
	case int32:
		return int(n), n >= 0
	case int64:
		if n < 0 || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint:
		return nonNegative(uint64(n))
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return nonNegative(uint64(n))
	case uint64:
		return nonNegative(n)
	case float32:
		return integralFloat(float64(n))
	case float64:
		return integralFloat(n)
	}
	return 0, false
}

func nonNegative(n uint64) (int, bool) {
	if n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func integralFloat(f float64) (int, bool) {
	if f < 0 || f != math.Trunc(f) || f >= float64(math.MaxInt) {
		return 0, false
	}
	return int(f), true
}

// stringList accepts a YAML sequence of strings or a single string split
// on sep. Non-string items are skipped.
func stringList(v any, sep string) []string {
	var out []string
	switch list := v.(type) {
	case string:
		for _, s := range strings.Split(list, sep) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case []string:
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// appendTag adds tag without its leading '#', skipping duplicates.
func appendTag(tags []string, tag string) []string {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	if tag == "" {
		return tags
	}
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
