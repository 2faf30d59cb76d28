package vault

// Notes:
// - Vaults are built in t.TempDir() with writeFiles
// - ProcessFrontmatter tests compare the whole note text so body bytes and
//   key order are checked together

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-md2card/internal/frontmatter"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func newTestVault(t *testing.T, files map[string]string) *Vault {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, files)
	v, err := Open(root)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return v
}

// ---------------------------------------------------------------------------
// TestOpen
// ---------------------------------------------------------------------------

func TestOpen(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "note.md")
	writeFiles(t, root, map[string]string{"note.md": "x"})

	if _, err := Open(filepath.Join(root, "missing")); err == nil {
		t.Error("Open(missing) error = nil, want error")
	}
	if _, err := Open(file); !errors.Is(err, ErrNotADir) {
		t.Errorf("Open(file) error = %v, want ErrNotADir", err)
	}

	v, err := Open(root, WithConfigDir(".config"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if v.ConfigDir() != ".config" {
		t.Errorf("ConfigDir() = %q, want .config", v.ConfigDir())
	}
}

// ---------------------------------------------------------------------------
// TestVault_Abs
// ---------------------------------------------------------------------------

func TestVault_Abs(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, nil)

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr error
	}{
		{name: "root", rel: "", want: v.Root()},
		{name: "nested", rel: "cards/a.md", want: filepath.Join(v.Root(), "cards", "a.md")},
		{name: "cleaned", rel: "cards/../a.md", want: filepath.Join(v.Root(), "a.md")},
		{name: "escape", rel: "../outside.md", wantErr: ErrOutsideVault},
		{name: "absolute", rel: "/etc/passwd", wantErr: ErrAbsolutePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := v.Abs(tt.rel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Abs(%q) error = %v, want %v", tt.rel, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Abs(%q) error = %v", tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("Abs(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestVault_List
// ---------------------------------------------------------------------------

func TestVault_List(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, map[string]string{
		"b.md":                   "",
		"a.md":                   "",
		"cards/z.md":             "",
		"cards/image.png":        "",
		".obsidian/workspace.md": "",
		".trash/old.md":          "",
		"Templates/card.md":      "",
	})

	got, err := v.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"Templates/card.md", "a.md", "b.md", "cards/z.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestVault_List_Cancelled(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, map[string]string{"a.md": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := v.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestVault_ReadWrite
// ---------------------------------------------------------------------------

func TestVault_WriteBinary(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, nil)

	if err := v.WriteBinary("cards/cf-a.png", []byte("one")); err != nil {
		t.Fatalf("WriteBinary() error = %v", err)
	}
	if !v.Exists("cards/cf-a.png") {
		t.Fatal("Exists() = false after write")
	}

	// Overwrite in place.
	if err := v.WriteBinary("cards/cf-a.png", []byte("two")); err != nil {
		t.Fatalf("WriteBinary() error = %v", err)
	}
	got, err := v.ReadBinary("cards/cf-a.png")
	if err != nil {
		t.Fatalf("ReadBinary() error = %v", err)
	}
	if string(got) != "two" {
		t.Errorf("ReadBinary() = %q, want two", got)
	}

	entries, err := os.ReadDir(filepath.Join(v.Root(), "cards"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("cards/ holds %d entries, want 1 (no temp files left)", len(entries))
	}

	if err := v.WriteBinary("../escape.png", nil); !errors.Is(err, ErrOutsideVault) {
		t.Errorf("WriteBinary(escape) error = %v, want ErrOutsideVault", err)
	}
}

func TestVault_ReadText_Missing(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, nil)
	if _, err := v.ReadText("nope.md"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadText() error = %v, want os.ErrNotExist", err)
	}
	if v.Exists("nope.md") {
		t.Error("Exists(nope.md) = true")
	}
}

func TestVault_WriteBinary_KeepsMode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on Windows")
	}

	v := newTestVault(t, map[string]string{"private.md": "---\ntitle: P\n---\n"})
	abs := filepath.Join(v.Root(), "private.md")
	if err := os.Chmod(abs, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := v.ProcessFrontmatter("private.md", func(b *frontmatter.Block) error {
		b.Set("number", 1)
		return nil
	}); err != nil {
		t.Fatalf("ProcessFrontmatter() error = %v", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Errorf("mode = %o, want 600", got)
	}
}

// ---------------------------------------------------------------------------
// TestVault_ProcessFrontmatter
// ---------------------------------------------------------------------------

func TestVault_ProcessFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		note    string
		edit    func(*frontmatter.Block) error
		want    string
		wantErr error
	}{
		{
			name: "updates existing key in place",
			note: "---\ntitle: A\nimage: old\ntype: hero\n---\nBody  \n\ntext",
			edit: func(b *frontmatter.Block) error { b.Set("image", "new"); return nil },
			want: "---\ntitle: A\nimage: new\ntype: hero\n---\nBody  \n\ntext",
		},
		{
			name: "appends new key",
			note: "---\ntitle: A\n---\nBody",
			edit: func(b *frontmatter.Block) error { b.Set("number", 4); return nil },
			want: "---\ntitle: A\nnumber: 4\n---\nBody",
		},
		{
			name: "other properties keep their YAML types",
			note: "---\ncreated: 2024-01-05T10:00:00Z\nday: 2024-01-05\nversion: 1.10\nhex: 0x1F\nempty:\ntilde: ~\n---\nBody",
			edit: func(b *frontmatter.Block) error { b.Set("image", "cf-unit--hero.png"); return nil },
			want: "---\ncreated: 2024-01-05T10:00:00Z\nday: 2024-01-05\nversion: 1.10\nhex: 0x1F\nempty:\ntilde: ~\nimage: cf-unit--hero.png\n---\nBody",
		},
		{
			name: "creates block",
			note: "Body only\n",
			edit: func(b *frontmatter.Block) error { b.Set("number", 1); return nil },
			want: "---\nnumber: 1\n---\nBody only\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := newTestVault(t, map[string]string{"note.md": tt.note})
			if err := v.ProcessFrontmatter("note.md", tt.edit); err != nil {
				t.Fatalf("ProcessFrontmatter() error = %v", err)
			}
			got, err := v.ReadText("note.md")
			if err != nil {
				t.Fatalf("ReadText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("note =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestVault_ProcessFrontmatter_Refuses(t *testing.T) {
	t.Parallel()

	const broken = "---\ntitle: [unclosed\n---\nBody"
	v := newTestVault(t, map[string]string{"bad.md": broken})

	called := false
	err := v.ProcessFrontmatter("bad.md", func(*frontmatter.Block) error {
		called = true
		return nil
	})
	if !errors.Is(err, frontmatter.ErrInvalidFrontmatter) {
		t.Errorf("ProcessFrontmatter() error = %v, want ErrInvalidFrontmatter", err)
	}
	if called {
		t.Error("edit func called for invalid frontmatter")
	}
	if got, _ := v.ReadText("bad.md"); got != broken {
		t.Errorf("note modified: %q", got)
	}
}

func TestVault_ProcessFrontmatter_EditError(t *testing.T) {
	t.Parallel()

	const note = "---\ntitle: A\n---\nBody"
	v := newTestVault(t, map[string]string{"note.md": note})
	sentinel := errors.New("stop")

	err := v.ProcessFrontmatter("note.md", func(b *frontmatter.Block) error {
		b.Set("title", "B")
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("ProcessFrontmatter() error = %v, want sentinel", err)
	}
	if got, _ := v.ReadText("note.md"); got != note {
		t.Errorf("note written despite edit error: %q", got)
	}
}

func TestVault_ProcessFrontmatter_Serialized(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, map[string]string{"note.md": "---\ncount: 0\n---\n"})

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = v.ProcessFrontmatter("note.md", func(b *frontmatter.Block) error {
				n, _ := b.Get("count")
				b.Set("count", toInt(n)+1)
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := v.ReadText("note.md")
	if !strings.Contains(got, "count: 20") {
		t.Errorf("note = %q, want count: 20", got)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case uint64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

// ---------------------------------------------------------------------------
// TestDirJoin
// ---------------------------------------------------------------------------

func TestDirJoin(t *testing.T) {
	t.Parallel()

	dirs := map[string]string{
		"a.md":       "",
		"cards/a.md": "cards",
		"x/y/z.md":   "x/y",
	}
	for in, want := range dirs {
		if got := Dir(in); got != want {
			t.Errorf("Dir(%q) = %q, want %q", in, got, want)
		}
	}

	joins := []struct {
		elem []string
		want string
	}{
		{elem: []string{"", "a.png"}, want: "a.png"},
		{elem: []string{"cards", "a.png"}, want: "cards/a.png"},
		{elem: []string{"cards", "./sub"}, want: "cards/sub"},
		{elem: []string{"", ""}, want: ""},
	}
	for _, tt := range joins {
		if got := Join(tt.elem...); got != tt.want {
			t.Errorf("Join(%q) = %q, want %q", tt.elem, got, tt.want)
		}
	}
}
