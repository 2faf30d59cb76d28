package cards

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/frontmatter"
	"github.com/alnah/go-md2card/internal/vault"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeRenderer returns "png:<title>" and fails for titles in failFor.
type fakeRenderer struct {
	mu      sync.Mutex
	inputs  []md2card.Input
	failFor map[string]error
	onCall  func()
}

func (f *fakeRenderer) Render(ctx context.Context, in md2card.Input) (*md2card.RenderResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	hook := f.onCall
	err := f.failFor[in.Title]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &md2card.RenderResult{HTML: []byte("<html></html>"), PNG: []byte("png:" + in.Title)}, nil
}

func (f *fakeRenderer) calls() []md2card.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]md2card.Input(nil), f.inputs...)
}

type fakeSink struct {
	got []byte
	err error
}

func (s *fakeSink) WriteImage(_ context.Context, png []byte) error {
	if s.err != nil {
		return s.err
	}
	s.got = png
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type testEnv struct {
	svc      *Service
	vault    *vault.Vault
	renderer *fakeRenderer
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T, files map[string]string, opts ...Option) *testEnv {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	v, err := vault.Open(root)
	if err != nil {
		t.Fatalf("vault.Open() error = %v", err)
	}
	meta, err := vault.NewMetadataCache(v, frontmatter.DefaultKeys(), 0)
	if err != nil {
		t.Fatalf("NewMetadataCache() error = %v", err)
	}

	env := &testEnv{vault: v, renderer: &fakeRenderer{}, notifier: &recordingNotifier{}}
	base := []Option{
		WithNotifier(env.notifier),
		WithLockPath(filepath.Join(t.TempDir(), "batch.lock")),
	}
	env.svc, err = NewService(v, meta, env.renderer, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return env
}

func (e *testEnv) read(t *testing.T, rel string) string {
	t.Helper()
	s, err := e.vault.ReadText(rel)
	if err != nil {
		t.Fatalf("ReadText(%q) error = %v", rel, err)
	}
	return s
}

func (e *testEnv) fields(t *testing.T, rel string) frontmatter.Fields {
	t.Helper()
	note, err := e.svc.Note(rel)
	if err != nil {
		t.Fatalf("Note(%q) error = %v", rel, err)
	}
	return note.Fields
}
