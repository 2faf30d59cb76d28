package vault

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alnah/go-md2card/internal/frontmatter"
)

// DefaultCacheSize bounds the number of parsed notes kept in memory.
const DefaultCacheSize = 1024

// MetadataCache returns parsed notes, re-reading a note only when its size
// or modification time changed since it was cached.
type MetadataCache struct {
	vault *Vault
	keys  frontmatter.Keys
	cache *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	note    frontmatter.Note
}

// NewMetadataCache creates a cache over v. size <= 0 uses DefaultCacheSize.
func NewMetadataCache(v *Vault, keys frontmatter.Keys, size int) (*MetadataCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("vault: create metadata cache: %w", err)
	}
	return &MetadataCache{vault: v, keys: keys.WithDefaults(), cache: cache}, nil
}

// Keys returns the field keys notes are resolved with.
func (c *MetadataCache) Keys() frontmatter.Keys { return c.keys }

// Get returns the parsed note at rel. The returned Note is a snapshot;
// callers must not modify its Block.
func (c *MetadataCache) Get(rel string) (frontmatter.Note, error) {
	info, err := c.vault.Stat(rel)
	if err != nil {
		c.cache.Remove(rel)
		return frontmatter.Note{}, fmt.Errorf("vault: stat %s: %w", rel, err)
	}

	if entry, ok := c.cache.Get(rel); ok &&
		entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		return entry.note, nil
	}

	data, err := c.vault.ReadBinary(rel)
	if err != nil {
		return frontmatter.Note{}, err
	}
	note := frontmatter.Parse(rel, data, c.keys)
	c.cache.Add(rel, cacheEntry{size: info.Size(), modTime: info.ModTime(), note: note})
	return note, nil
}

// Invalidate drops rel from the cache.
func (c *MetadataCache) Invalidate(rel string) {
	c.cache.Remove(rel)
}

// Len returns the number of cached notes.
func (c *MetadataCache) Len() int {
	return c.cache.Len()
}
