package frontmatter

// Notes:
// - Numbers are built through Split so the tests see the types the YAML
//   decoder really produces, not hand-picked Go types.

import (
	"reflect"
	"testing"
)

func mustSplit(t *testing.T, input string) Block {
	t.Helper()
	block, _, err := Split([]byte(input))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	return block
}

// ---------------------------------------------------------------------------
// TestPadNumber
// ---------------------------------------------------------------------------

func TestPadNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{0, "000"},
		{7, "007"},
		{42, "042"},
		{999, "999"},
		{1000, "1000"},
		{12345, "12345"},
	}

	for _, tt := range tests {
		if got := PadNumber(tt.in); got != tt.want {
			t.Errorf("PadNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestResolve
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		path  string
		want  Fields
	}{
		{
			name:  "no metadata uses base name and no number",
			input: "---\n---\n",
			path:  "notes/My Card.md",
			want:  Fields{Title: "My Card"},
		},
		{
			name:  "all fields",
			input: "---\ntitle: Fire Drake\ntype: hero\nnumber: 3\nimage: '[[x.png]]'\ncssclasses:\n  - dark\ntags: [card, beast]\n---\n",
			path:  "Drake.md",
			want: Fields{
				Title: "Fire Drake", Type: "hero", Number: 3, HasNumber: true,
				Image: "[[x.png]]", CSSClasses: []string{"dark"}, Tags: []string{"card", "beast"},
			},
		},
		{
			name:  "string number not coerced",
			input: "---\nnumber: \"7\"\n---\n",
			path:  "a.md",
			want:  Fields{Title: "a"},
		},
		{
			name:  "negative number ignored",
			input: "---\nnumber: -2\n---\n",
			path:  "a.md",
			want:  Fields{Title: "a"},
		},
		{
			name:  "integral float accepted",
			input: "---\nnumber: 12.0\n---\n",
			path:  "a.md",
			want:  Fields{Title: "a", Number: 12, HasNumber: true},
		},
		{
			name:  "large integral float accepted",
			input: "---\nnumber: 3000000000.0\n---\n",
			path:  "a.md",
			want:  Fields{Title: "a", Number: 3000000000, HasNumber: true},
		},
		{
			name:  "large integer accepted",
			input: "---\nnumber: 3000000000\n---\n",
			path:  "a.md",
			want:  Fields{Title: "a", Number: 3000000000, HasNumber: true},
		},
		{
			name:  "float beyond int range ignored",
			input: "---\nnumber: 20000000000000000000.0\n---\n",
			path:  "a.md",
			want:  Fields{Title: "a"},
		},
		{
			name:  "fractional float ignored",
			input: "---\nnumber: 1.5\n---\n",
			path:  "a.md",
			want:  Fields{Title: "a"},
		},
		{
			name:  "card- alias wins",
			input: "---\ntitle: Plain\ncard-title: Aliased\ncard-number: 9\n---\n",
			path:  "a.md",
			want:  Fields{Title: "Aliased", Number: 9, HasNumber: true},
		},
		{
			name:  "blank title falls back",
			input: "---\ntitle: '  '\n---\n",
			path:  "dir/Base Name.md",
			want:  Fields{Title: "Base Name"},
		},
		{
			name:  "non-string title ignored",
			input: "---\ntitle: 42\ntype: [a]\n---\n",
			path:  "b.md",
			want:  Fields{Title: "b"},
		},
		{
			name:  "comma separated classes and hash tags",
			input: "---\ncssclasses: wide, dark\ntags: '#card'\n---\n",
			path:  "c.md",
			want:  Fields{Title: "c", CSSClasses: []string{"wide", "dark"}, Tags: []string{"card"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Resolve(mustSplit(t, tt.input), tt.path, DefaultKeys())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_CustomKeys(t *testing.T) {
	t.Parallel()

	block := mustSplit(t, "---\nkind: villain\nseq: 5\n---\n")
	got := Resolve(block, "x.md", Keys{Type: "kind", Number: "seq"})
	if got.Type != "villain" || got.Number != 5 || !got.HasNumber {
		t.Errorf("Resolve() = %+v", got)
	}
}

func TestKeys_ImageKey(t *testing.T) {
	t.Parallel()

	keys := DefaultKeys()
	if got := keys.ImageKey(mustSplit(t, "---\ntitle: x\n---\n")); got != "image" {
		t.Errorf("ImageKey() = %q, want image", got)
	}
	if got := keys.ImageKey(mustSplit(t, "---\ncard-image: old\n---\n")); got != "card-image" {
		t.Errorf("ImageKey() = %q, want card-image", got)
	}
}

// ---------------------------------------------------------------------------
// TestTags
// ---------------------------------------------------------------------------

func TestFields_HasTag(t *testing.T) {
	t.Parallel()

	f := Fields{Tags: []string{"card", "Beast"}}

	tests := []struct {
		tag  string
		want bool
	}{
		{"card", true},
		{"#card", false},
		{"Card", false},
		{"beast", false},
		{"todo", false},
	}
	for _, tt := range tests {
		if got := f.HasTag(tt.tag); got != tt.want {
			t.Errorf("HasTag(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestParse_TagsFromFrontmatterOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		note     string
		wantCard bool
	}{
		{name: "frontmatter tag", note: "---\ntags: [monster, card]\n---\nbody\n", wantCard: true},
		{name: "body tag ignored", note: "---\ntags: [todo]\n---\nA #card body\n", wantCard: false},
		{name: "no frontmatter", note: "#card\n", wantCard: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			note := Parse("Deck/Goblin.md", []byte(tt.note), DefaultKeys())
			if note.Err != nil {
				t.Fatalf("Parse() Err = %v", note.Err)
			}
			if got := note.Fields.HasTag("card"); got != tt.wantCard {
				t.Errorf("HasTag(card) = %v, want %v (tags %v)", got, tt.wantCard, note.Fields.Tags)
			}
			if note.Fields.Title != "Goblin" {
				t.Errorf("Title = %q, want Goblin", note.Fields.Title)
			}
		})
	}
}

func TestParse_InvalidFrontmatterKeepsDefaults(t *testing.T) {
	t.Parallel()

	note := Parse("x.md", []byte("---\ntitle: [\n---\n"), DefaultKeys())
	if note.Err == nil {
		t.Fatal("Parse() Err = nil, want ErrInvalidFrontmatter")
	}
	if note.Fields.Title != "x" {
		t.Errorf("Title = %q, want x", note.Fields.Title)
	}
}
