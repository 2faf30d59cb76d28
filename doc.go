// Package md2card renders Markdown notes into fixed-size card images using
// headless Chrome.
//
// # Quick Start
//
//	conv, err := md2card.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	number := 3
//	result, err := conv.Render(ctx, md2card.Input{
//	    Markdown: "Deals **3** damage.",
//	    Title:    "Fire Drake",
//	    Type:     "hero",
//	    Number:   &number,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("card.png", result.PNG, 0644)
//
// The result holds the PNG bytes and the intermediate card HTML. Set
// Input.HTMLOnly to skip rasterization.
//
// # Card Geometry
//
// Cards have poker-card proportions: 238×332 CSS pixels. Input.Density is
// the device pixel ratio, so the default density of 4 yields a 952×1328 PNG.
// The output always has exactly these dimensions.
//
// # Rendering Pipeline
//
//  1. Markdown preprocessing (line endings, ==highlight==, wiki links)
//  2. Markdown to HTML via Goldmark (GFM, syntax highlighting)
//  3. Card template: header (title), body, footer (type, padded number)
//  4. CSS injection (card style, then per-render CSS)
//  5. Off-screen rendering in a fresh headless Chrome page (go-rod),
//     one animation frame, then a PNG capture of the card element
//
// # Configuration
//
//	conv, err := md2card.NewConverter(
//	    md2card.WithTimeout(time.Minute),
//	    md2card.WithStyle("./dark.css"),
//	    md2card.WithAssetPath("/path/to/assets"),
//	)
//
// Vault integration (attachment folders, back-references, numbering and
// batch export) lives in the md2card command and its internal packages.
package md2card
