// Package sink delivers rendered cards to transient destinations.
package sink

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable means no clipboard utility is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// DataURIPrefix starts the clipboard text for a PNG.
const DataURIPrefix = "data:image/png;base64,"

// Clipboard copies cards to the system clipboard as a PNG data URI, which
// pastes as an image in Markdown editors and browsers.
type Clipboard struct {
	write       func(string) error
	unsupported bool
}

// NewClipboard returns a sink backed by the system clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// WriteImage implements cards.ImageSink.
func (c *Clipboard) WriteImage(ctx context.Context, png []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.unsupported {
		return ErrClipboardUnavailable
	}
	if err := c.write(DataURI(png)); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// DataURI encodes png as a data: URI.
func DataURI(png []byte) string {
	return DataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// Writer writes raw PNG bytes to w, for piping a card to another program.
type Writer struct {
	W io.Writer
}

// WriteImage implements cards.ImageSink.
func (s Writer) WriteImage(ctx context.Context, png []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.W.Write(png); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}
