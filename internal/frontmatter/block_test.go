package frontmatter

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestSplit
// ---------------------------------------------------------------------------

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKeys []string
		wantBody string
		wantErr  error
	}{
		{
			name:     "frontmatter and body",
			input:    "---\ntitle: Hello\ntype: hero\n---\n# Body\n",
			wantKeys: []string{"title", "type"},
			wantBody: "# Body\n",
		},
		{
			name:     "no frontmatter",
			input:    "# Just a heading\n",
			wantBody: "# Just a heading\n",
		},
		{
			name:     "empty block",
			input:    "---\n---\nbody",
			wantBody: "body",
		},
		{
			name:     "closing fence at end of file",
			input:    "---\nnumber: 3\n---",
			wantKeys: []string{"number"},
			wantBody: "",
		},
		{
			name:     "CRLF fences",
			input:    "---\r\ntitle: x\r\n---\r\nbody",
			wantKeys: []string{"title"},
			wantBody: "body",
		},
		{
			name:     "horizontal rule later in body is not frontmatter",
			input:    "text\n---\nmore",
			wantBody: "text\n---\nmore",
		},
		{
			name:     "unterminated block",
			input:    "---\ntitle: x\nbody",
			wantBody: "---\ntitle: x\nbody",
			wantErr:  ErrInvalidFrontmatter,
		},
		{
			name:     "invalid YAML",
			input:    "---\ntitle: [unclosed\n---\nbody",
			wantBody: "---\ntitle: [unclosed\n---\nbody",
			wantErr:  ErrInvalidFrontmatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block, body, err := Split([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Split() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Split() unexpected error: %v", err)
			}
			if body != tt.wantBody {
				t.Errorf("Split() body = %q, want %q", body, tt.wantBody)
			}
			if got := strings.Join(block.Keys(), ","); got != strings.Join(tt.wantKeys, ",") {
				t.Errorf("Split() keys = %q, want %q", got, strings.Join(tt.wantKeys, ","))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestJoin - Write-back Preserves Order and Body
// ---------------------------------------------------------------------------

func TestJoin_PreservesOrderAndBody(t *testing.T) {
	t.Parallel()

	input := "---\nzeta: 1\ntitle: My Card\ntags:\n  - card\n---\n\nBody *text*\n"
	block, body, err := Split([]byte(input))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	block.Set("image", "[[cards/cf-hero-003-my-card.png]]")
	block.Set("zeta", 2)

	out, err := Join(block, body)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	again, againBody, err := Split(out)
	if err != nil {
		t.Fatalf("Split(Join()) error = %v\n%s", err, out)
	}
	if againBody != body {
		t.Errorf("body changed: %q, want %q", againBody, body)
	}
	if got := strings.Join(again.Keys(), ","); got != "zeta,title,tags,image" {
		t.Errorf("keys = %s, want zeta,title,tags,image", got)
	}
	if v, _ := again.Get("image"); v != "[[cards/cf-hero-003-my-card.png]]" {
		t.Errorf("image = %#v", v)
	}
}

func TestJoin_KeepsUntouchedKeysVerbatim(t *testing.T) {
	t.Parallel()

	const untouched = "version: 1.10\n" +
		"hex: 0x1F\n" +
		"day: 2024-01-05\n" +
		"created: 2024-01-05T10:00:00Z\n" +
		"empty:\n" +
		"tilde: ~\n" +
		"quoted: 'single'\n" +
		"tags:\n- card\n- todo # inline\n"

	tests := []struct {
		name  string
		input string
		edit  func(*Block)
		want  string
	}{
		{
			name:  "appended key leaves the rest as written",
			input: "---\ntitle: Hero\n" + untouched + "---\nBody\n",
			edit:  func(b *Block) { b.Set("image", "cf-unit-003-hero.png") },
			want:  "---\ntitle: Hero\n" + untouched + "image: cf-unit-003-hero.png\n---\nBody\n",
		},
		{
			name:  "replaced key keeps its position and neighbours",
			input: "---\ntitle: Hero\nnumber: 3\n" + untouched + "---\nBody\n",
			edit:  func(b *Block) { b.Set("number", 4) },
			want:  "---\ntitle: Hero\nnumber: 4\n" + untouched + "---\nBody\n",
		},
		{
			name:  "comments and blank lines between keys survive",
			input: "---\n# card settings\nnumber: 3\n\n# rest\ntitle: Hero\n---\n",
			edit:  func(b *Block) { b.Set("number", 7) },
			want:  "---\n# card settings\nnumber: 7\n\n# rest\ntitle: Hero\n---\n",
		},
		{
			name:  "deleted key drops only its lines",
			input: "---\na: 1.10\nb: 2\nc: 2024-01-05\n---\n",
			edit:  func(b *Block) { b.Delete("b") },
			want:  "---\na: 1.10\nc: 2024-01-05\n---\n",
		},
		{
			name:  "no edit round-trips the note",
			input: "---\n" + untouched + "---\nBody\n",
			edit:  func(*Block) {},
			want:  "---\n" + untouched + "---\nBody\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block, body, err := Split([]byte(tt.input))
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			tt.edit(&block)

			out, err := Join(block, body)
			if err != nil {
				t.Fatalf("Join() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Join() =\n%s\nwant\n%s", out, tt.want)
			}
		})
	}
}

func TestJoin_ImageLinkReadsBack(t *testing.T) {
	t.Parallel()

	block, body, err := Split([]byte("---\nday: 2024-01-05\n---\n"))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	block.Set("image", "[[cf-unit-003-hero.png]]")

	out, err := Join(block, body)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "---\nday: 2024-01-05\nimage: ") {
		t.Errorf("Join() = %q", out)
	}
	again, _, err := Split(out)
	if err != nil {
		t.Fatalf("Split(Join()) error = %v", err)
	}
	if v, _ := again.Get("image"); v != "[[cf-unit-003-hero.png]]" {
		t.Errorf("image = %#v", v)
	}
}

func TestJoin_EmptyBlock(t *testing.T) {
	t.Parallel()

	out, err := Join(Block{}, "body only")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if string(out) != "body only" {
		t.Errorf("Join() = %q", out)
	}
}

func TestBlock_SetDeleteClone(t *testing.T) {
	t.Parallel()

	var b Block
	b.Set("a", 1)
	b.Set("b", 2)
	b.Set("a", 3)

	if got := strings.Join(b.Keys(), ","); got != "a,b" {
		t.Errorf("keys = %s, want a,b", got)
	}
	if v, _ := b.Get("a"); v != 3 {
		t.Errorf("a = %v, want 3", v)
	}

	c := b.Clone()
	c.Delete("a")
	if !b.Has("a") {
		t.Error("Clone() shares storage with original")
	}
	if c.Delete("missing") {
		t.Error("Delete(missing) = true")
	}
}
