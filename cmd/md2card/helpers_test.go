package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/cards"
	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/logger"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeRenderer struct {
	mu      sync.Mutex
	inputs  []md2card.Input
	failFor map[string]error
	closed  int
}

func (f *fakeRenderer) Render(_ context.Context, in md2card.Input) (*md2card.RenderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if err := f.failFor[in.Title]; err != nil {
		return nil, err
	}
	res := &md2card.RenderResult{HTML: []byte("<html>" + in.Title + "</html>")}
	if !in.HTMLOnly {
		res.PNG = []byte("png:" + in.Title)
	}
	return res, nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

type fakeClipboard struct {
	got []byte
}

func (c *fakeClipboard) WriteImage(_ context.Context, png []byte) error {
	c.got = png
	return nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type cliHarness struct {
	root      string
	config    string
	renderer  *fakeRenderer
	clipboard *fakeClipboard
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	env       *Environment
}

// newHarness writes files into a temp vault and a config file pointing at
// it, so runs never read the user's own config.
func newHarness(t *testing.T, files map[string]string) *cliHarness {
	t.Helper()

	h := &cliHarness{
		root:      t.TempDir(),
		renderer:  &fakeRenderer{},
		clipboard: &fakeClipboard{},
	}
	for rel, content := range files {
		p := filepath.Join(h.root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	h.config = filepath.Join(t.TempDir(), "md2card.yaml")
	if err := os.WriteFile(h.config, []byte("vault: "+h.root+"\nlog:\n  level: disabled\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.env = &Environment{
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		Getwd:  func() (string, error) { return h.root, nil },
		NewRenderer: func(*config.Config, logger.Logger) (Renderer, error) {
			return h.renderer, nil
		},
		NewClipboard: func() cards.ImageSink { return h.clipboard },
	}
	return h
}

// run executes md2card with args plus --config.
func (h *cliHarness) run(args ...string) int {
	full := append([]string{"md2card"}, args...)
	if len(args) > 0 && args[0] != cmdVersion && args[0] != cmdHelp {
		full = append(full, "--config", h.config)
	}
	return runMain(context.Background(), full, h.env)
}

func (h *cliHarness) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", rel, err)
	}
	return string(data)
}

const heroNote = "---\ntitle: Hero\ntype: unit\ntags: [card]\n---\nBody\n"
