package cards

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/frontmatter"
	"github.com/alnah/go-md2card/internal/vault"
)

// Exported describes one persisted card.
type Exported struct {
	Note  string `json:"note"`
	Asset string `json:"asset"`
	Link  string `json:"link"`
}

// Input builds the renderer input for a parsed note.
func (s *Service) Input(note frontmatter.Note, density int) md2card.Input {
	in := md2card.Input{
		Markdown:  note.Body,
		Title:     note.Fields.Title,
		Type:      note.Fields.Type,
		Classes:   note.Fields.CSSClasses,
		SourceDir: filepath.Dir(filepath.Join(s.vault.Root(), filepath.FromSlash(note.Path))),
		RootDir:   s.vault.Root(),
		CSS:       s.css,
		Density:   density,
	}
	if note.Fields.HasNumber {
		n := note.Fields.Number
		in.Number = &n
	}
	return in
}

// Preview renders docPath from its current content. htmlOnly skips
// rasterization.
func (s *Service) Preview(ctx context.Context, docPath string, htmlOnly bool) (*md2card.RenderResult, error) {
	note, err := s.meta.Get(docPath)
	if err != nil {
		return nil, err
	}
	in := s.Input(note, s.density)
	in.HTMLOnly = htmlOnly
	return s.renderer.Render(ctx, in)
}

// Copy renders the active note at clipboard density and hands the PNG to
// the sink.
func (s *Service) Copy(ctx context.Context, ac ActionContext) error {
	const action = "copy"

	docPath, err := s.target(ac)
	if err != nil {
		return s.fail(action, "", err)
	}
	if s.sink == nil {
		return s.fail(action, docPath, ErrNoSink)
	}

	note, err := s.meta.Get(docPath)
	if err != nil {
		return s.fail(action, docPath, err)
	}
	res, err := s.renderer.Render(ctx, s.Input(note, md2card.ClipboardDensity))
	if err != nil {
		return s.fail(action, docPath, err)
	}
	if err := s.sink.WriteImage(ctx, res.PNG); err != nil {
		return s.fail(action, docPath, err)
	}

	s.notifier.Notify(Notice{Level: LevelInfo, Action: action, Path: docPath, Message: "Card copied to clipboard"})
	return nil
}

// Export renders the active note and persists it.
func (s *Service) Export(ctx context.Context, ac ActionContext) (Exported, error) {
	const action = "export"

	docPath, err := s.target(ac)
	if err != nil {
		return Exported{}, s.fail(action, "", err)
	}
	out, err := s.ExportNote(ctx, docPath)
	if err != nil {
		return Exported{}, s.fail(action, docPath, err)
	}
	s.notifier.Notify(Notice{Level: LevelInfo, Action: action, Path: docPath, Message: "Card saved to " + out.Asset})
	return out, nil
}

// ExportNote renders docPath, writes the PNG under the attachment folder
// (overwriting a previous export), and then points the note's image key at
// it. The back-reference is only written after the image is.
func (s *Service) ExportNote(ctx context.Context, docPath string) (Exported, error) {
	note, err := s.meta.Get(docPath)
	if err != nil {
		return Exported{}, err
	}
	if note.Err != nil {
		// The back-reference could not be written; leave no orphan image.
		return Exported{}, fmt.Errorf("%w: %s: %v", ErrPersistenceFailure, docPath, note.Err)
	}

	res, err := s.renderer.Render(ctx, s.Input(note, s.density))
	if err != nil {
		return Exported{}, err
	}

	folder := s.vault.Host().AttachmentFolder(docPath)
	dest := AssetPath(docPath, note.Fields, folder)
	if err := s.vault.WriteBinary(dest, res.PNG); err != nil {
		return Exported{}, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	link := vault.StripEmbed(s.vault.LinkText(dest, docPath))
	keys := s.meta.Keys()
	err = s.vault.ProcessFrontmatter(docPath, func(b *frontmatter.Block) error {
		b.Set(keys.ImageKey(*b), link)
		return nil
	})
	s.meta.Invalidate(docPath)
	if err != nil {
		return Exported{}, fmt.Errorf("%w: updating %s: %v", ErrPersistenceFailure, docPath, err)
	}

	s.log.Info("card exported", "note", docPath, "asset", dest)
	return Exported{Note: docPath, Asset: dest, Link: link}, nil
}

// fail reports err as an error notice and returns it.
func (s *Service) fail(action, docPath string, err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, ErrNoActiveDocument):
		msg = "No active note to render"
	case errors.Is(err, md2card.ErrRenderFailure):
		msg = "Card rendering failed: " + err.Error()
	case errors.Is(err, ErrPersistenceFailure):
		msg = "Could not save card: " + err.Error()
	}
	s.log.Error("card action failed", "action", action, "note", docPath, "error", err)
	s.notifier.Notify(Notice{Level: LevelError, Action: action, Path: docPath, Message: msg})
	return err
}
