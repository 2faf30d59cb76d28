package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-md2card/internal/frontmatter"
)

func TestMetadataCache_Get(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, map[string]string{
		"cards/a.md": "---\ntitle: First\nnumber: 3\ntags: [card]\n---\nbody #extra",
	})
	cache, err := NewMetadataCache(v, frontmatter.Keys{}, 4)
	if err != nil {
		t.Fatalf("NewMetadataCache() error = %v", err)
	}

	note, err := cache.Get("cards/a.md")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if note.Fields.Title != "First" || note.Fields.Number != 3 || !note.Fields.HasNumber {
		t.Errorf("Get() fields = %+v", note.Fields)
	}
	if !note.Fields.HasTag("card") || note.Fields.HasTag("extra") {
		t.Errorf("Get() tags = %v, want card only", note.Fields.Tags)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestMetadataCache_InvalidatesOnChange(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, map[string]string{"a.md": "---\ntitle: Old\n---\n"})
	cache, err := NewMetadataCache(v, frontmatter.DefaultKeys(), 0)
	if err != nil {
		t.Fatalf("NewMetadataCache() error = %v", err)
	}

	if note, _ := cache.Get("a.md"); note.Fields.Title != "Old" {
		t.Fatalf("Title = %q, want Old", note.Fields.Title)
	}

	p := filepath.Join(v.Root(), "a.md")
	if err := os.WriteFile(p, []byte("---\ntitle: Newer\n---\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	// Same-second writes on coarse filesystems still differ in size here;
	// bump mtime as well to cover both checks.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(p, future, future); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	note, err := cache.Get("a.md")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if note.Fields.Title != "Newer" {
		t.Errorf("Title = %q, want Newer after change", note.Fields.Title)
	}
}

func TestMetadataCache_Missing(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, nil)
	cache, err := NewMetadataCache(v, frontmatter.DefaultKeys(), 0)
	if err != nil {
		t.Fatalf("NewMetadataCache() error = %v", err)
	}
	if _, err := cache.Get("gone.md"); err == nil {
		t.Error("Get(missing) error = nil, want error")
	}
}

func TestMetadataCache_InvalidFrontmatter(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, map[string]string{"Broken Note.md": "---\nnumber: [\n---\nbody"})
	cache, err := NewMetadataCache(v, frontmatter.DefaultKeys(), 0)
	if err != nil {
		t.Fatalf("NewMetadataCache() error = %v", err)
	}

	note, err := cache.Get("Broken Note.md")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if note.Err == nil {
		t.Error("Note.Err = nil, want ErrInvalidFrontmatter")
	}
	if note.Fields.Title != "Broken Note" || note.Fields.HasNumber {
		t.Errorf("fields = %+v, want defaults", note.Fields)
	}
}
