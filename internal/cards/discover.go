package cards

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover returns the notes batch actions run on, in path order: notes
// tagged with the card tag, outside the template folder when the templates
// plugin is enabled, and matching an include pattern when any are set.
func (s *Service) Discover(ctx context.Context) ([]string, error) {
	paths, err := s.vault.List(ctx)
	if err != nil {
		return nil, err
	}

	templates, skipTemplates := s.vault.Host().TemplateFolder()

	var out []string
	for _, p := range paths {
		if skipTemplates && under(p, templates) {
			continue
		}
		if !s.included(p) {
			continue
		}
		note, err := s.meta.Get(p)
		if err != nil {
			s.log.Warn("skipping unreadable note", "note", p, "error", err)
			continue
		}
		if note.Fields.HasTag(s.cardTag) {
			out = append(out, p)
		}
	}
	s.log.Debug("discovered cards", "tag", s.cardTag, "count", len(out), "scanned", len(paths))
	return out, nil
}

func (s *Service) included(p string) bool {
	if len(s.include) == 0 {
		return true
	}
	for _, pattern := range s.include {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// under reports whether p lies inside folder.
func under(p, folder string) bool {
	return folder == "" || strings.HasPrefix(p, strings.TrimSuffix(folder, "/")+"/")
}
