// Package frontmatter reads and writes the YAML block at the top of a note
// and resolves the card fields it carries.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-md2card/internal/yamlutil"
)

const fence = "---"

// ErrInvalidFrontmatter means the note opens a frontmatter block that is
// unterminated or not a YAML mapping. Readers fall back to an empty block;
// writers must refuse to touch the note.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

// Block is an ordered frontmatter mapping. A block read by Split keeps the
// source text of each key so Join re-encodes only the keys that were Set.
type Block struct {
	items yaml.MapSlice
	head  string    // lines before the first key
	segs  []segment // parallel to items; nil when no source text is kept
}

// segment is the source text of one top-level key.
type segment struct {
	text    string // key line through the last value line
	trailer string // blank and column-0 comment lines before the next key
	dirty   bool
}

// Split separates the leading frontmatter from the body. The body is
// returned byte for byte so Join can reassemble the note. On
// ErrInvalidFrontmatter the block is empty and body is the whole note.
func Split(data []byte) (Block, string, error) {
	text := string(data)
	first, rest, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimRight(first, "\r") != fence {
		return Block{}, text, nil
	}

	offset := len(first) + 1
	for {
		line, tail, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r ") == fence {
			yamlText := text[len(first)+1 : offset]
			block, err := parseBlock(yamlText)
			if err != nil {
				return Block{}, text, err
			}
			if !more {
				tail = ""
			}
			return block, tail, nil
		}
		if !more {
			break
		}
		offset += len(line) + 1
		rest = tail
	}
	return Block{}, text, fmt.Errorf("%w: missing closing %q", ErrInvalidFrontmatter, fence)
}

func parseBlock(yamlText string) (Block, error) {
	if strings.TrimSpace(yamlText) == "" {
		return Block{}, nil
	}
	items, err := yamlutil.UnmarshalOrdered([]byte(yamlText))
	if err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	head, segs := segmentSource(yamlText, items)
	return Block{items: items, head: head, segs: segs}, nil
}

// segmentSource cuts src into one segment per top-level key. It returns nil
// segments when the source layout cannot be matched to items (flow style,
// merge keys), in which case Join re-encodes the whole block.
func segmentSource(src string, items yaml.MapSlice) (string, []segment) {
	keys, err := yamlutil.TopLevelKeys([]byte(src))
	if err != nil || len(keys) == 0 || len(keys) != len(items) {
		return "", nil
	}
	lines := strings.SplitAfter(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	starts := make([]int, len(keys))
	for i, k := range keys {
		start := k.Line - 1
		if fmt.Sprint(items[i].Key) != k.Key || start < 0 || start >= len(lines) ||
			(i > 0 && start <= starts[i-1]) {
			return "", nil
		}
		starts[i] = start
	}

	segs := make([]segment, len(keys))
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		cut := end
		for cut > start+1 && isFiller(lines[cut-1]) {
			cut--
		}
		segs[i] = segment{
			text:    strings.Join(lines[start:cut], ""),
			trailer: strings.Join(lines[cut:end], ""),
		}
	}
	return strings.Join(lines[:starts[0]], ""), segs
}

func isFiller(line string) bool {
	line = strings.TrimRight(line, "\r\n")
	return strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#")
}

// Join writes the block back in front of body. Keys that were not Set are
// written exactly as they were read. An empty block yields the body alone.
func Join(b Block, body string) ([]byte, error) {
	if b.Len() == 0 {
		return []byte(body), nil
	}

	var sb strings.Builder
	sb.WriteString(fence + "\n")
	if b.segs == nil {
		if err := writeYAML(&sb, b.items); err != nil {
			return nil, err
		}
	} else {
		sb.WriteString(b.head)
		for i, item := range b.items {
			seg := b.segs[i]
			if seg.dirty {
				if err := writeYAML(&sb, yaml.MapSlice{item}); err != nil {
					return nil, err
				}
			} else {
				sb.WriteString(seg.text)
				if !strings.HasSuffix(seg.text, "\n") {
					sb.WriteByte('\n')
				}
			}
			sb.WriteString(seg.trailer)
		}
	}
	sb.WriteString(fence + "\n")
	sb.WriteString(body)
	return []byte(sb.String()), nil
}

func writeYAML(sb *strings.Builder, items yaml.MapSlice) error {
	out, err := yamlutil.Marshal(items)
	if err != nil {
		return err
	}
	sb.Write(out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		sb.WriteByte('\n')
	}
	return nil
}

// Len returns the number of keys.
func (b Block) Len() int { return len(b.items) }

// Keys returns the keys in document order.
func (b Block) Keys() []string {
	keys := make([]string, 0, len(b.items))
	for _, item := range b.items {
		keys = append(keys, fmt.Sprint(item.Key))
	}
	return keys
}

// Get returns the value stored under key.
func (b Block) Get(key string) (any, bool) {
	if i := b.index(key); i >= 0 {
		return b.items[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (b Block) Has(key string) bool {
	return b.index(key) >= 0
}

// Set replaces the value in place or appends a new key at the end.
func (b *Block) Set(key string, value any) {
	if i := b.index(key); i >= 0 {
		b.items[i].Value = value
		if b.segs != nil {
			b.segs[i].dirty = true
		}
		return
	}
	b.items = append(b.items, yaml.MapItem{Key: key, Value: value})
	if b.segs != nil {
		b.segs = append(b.segs, segment{dirty: true})
	}
}

// Delete removes key and reports whether it was present.
func (b *Block) Delete(key string) bool {
	i := b.index(key)
	if i < 0 {
		return false
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	if b.segs != nil {
		b.segs = append(b.segs[:i], b.segs[i+1:]...)
	}
	return true
}

// Clone returns a copy whose top-level keys can be changed independently.
func (b Block) Clone() Block {
	items := make(yaml.MapSlice, len(b.items))
	copy(items, b.items)
	c := Block{items: items, head: b.head}
	if b.segs != nil {
		c.segs = make([]segment, len(b.segs))
		copy(c.segs, b.segs)
	}
	return c
}

func (b Block) index(key string) int {
	for i, item := range b.items {
		if k, ok := item.Key.(string); ok && k == key {
			return i
		}
	}
	return -1
}
