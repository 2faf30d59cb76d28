package cards

import (
	"path"
	"strings"
	"sync"

	"github.com/alnah/go-md2card/internal/vault"
)

// ActionContext identifies the note an interactive action targets. Active
// is the note in focus; Fallback is the last note that was active, used
// when focus moved to something that is not a note.
type ActionContext struct {
	Active   string `json:"active"`
	Fallback string `json:"fallback,omitempty"`
}

// target returns the note to act on.
func (s *Service) target(ac ActionContext) (string, error) {
	for _, p := range []string{ac.Active, ac.Fallback} {
		p = strings.TrimSpace(p)
		if p == "" || !strings.EqualFold(path.Ext(p), ".md") {
			continue
		}
		if s.vault.Exists(p) {
			return p, nil
		}
	}
	return "", ErrNoActiveDocument
}

// Level grades a notice.
type Level string

// Notice levels.
const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a transient user-facing message about an action.
type Notice struct {
	Level   Level  `json:"level"`
	Action  string `json:"action"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// NopNotifier drops notices.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(Notice) {}

// Tracker remembers the active note across events. The last write wins;
// setting a non-note keeps the previous note as fallback.
type Tracker struct {
	mu   sync.Mutex
	ctx  ActionContext
	last string
}

// SetActive records p as the focused path.
func (t *Tracker) SetActive(p string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p = vault.Join(p)
	if strings.EqualFold(path.Ext(p), ".md") {
		t.last = p
	}
	t.ctx = ActionContext{Active: p, Fallback: t.last}
}

// Context returns a snapshot for one action.
func (t *Tracker) Context() ActionContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx
}
