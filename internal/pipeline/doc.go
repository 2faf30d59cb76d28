// Package pipeline turns a note body into card HTML.
//
// Stages, in order:
//   - Markdown preprocessing (line endings, ==highlight==, wiki links)
//   - Markdown to HTML fragment via Goldmark
//   - Relative image and link paths rewritten to file:// URLs
//   - Card template execution (header, body, footer)
//   - CSS injection
//
// Every stage is pure: identical inputs give byte-identical HTML.
// Rasterization is handled by the root md2card package.
package pipeline
