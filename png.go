package md2card

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"path/filepath"

	"golang.org/x/image/draw"
)

// normalizePNG decodes a capture and re-encodes it as an RGBA PNG of
// exactly width×height. Captures of another size (fractional scale factors,
// zoomed displays) are resampled.
func normalizePNG(data []byte, width, height int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty capture", ErrRenderFailure)
	}

	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding capture: %v", ErrRenderFailure, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		draw.Copy(dst, image.Point{}, src, src.Bounds(), draw.Src, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: encoding PNG: %v", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

// fileURL converts a local path to a file:// URL.
func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	slashed := filepath.ToSlash(abs)
	if len(slashed) > 0 && slashed[0] != '/' {
		slashed = "/" + slashed // Windows drive letters
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}
