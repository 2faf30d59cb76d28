package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged and become <mark> tags afterwards.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)

	// %% vault comment %%, possibly spanning lines.
	commentPattern = regexp.MustCompile(`(?s)%%.*?%%`)

	// ![[target|alt]] and [[target|alias]]; the target may carry #heading.
	wikiEmbedPattern = regexp.MustCompile(`!\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|([^\]]*))?\]\]`)
	wikiLinkPattern  = regexp.MustCompile(`\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|([^\]]*))?\]\]`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor rewrites vault-flavored Markdown into CommonMark.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = stripComments(content)
	content = convertWikiEmbeds(content)
	content = convertWikiLinks(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

func stripComments(content string) string {
	return commentPattern.ReplaceAllString(content, "")
}

// convertWikiEmbeds turns ![[image.png|alt]] into ![alt](<image.png>).
// Angle brackets keep targets with spaces valid CommonMark destinations.
func convertWikiEmbeds(content string) string {
	return wikiEmbedPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := wikiEmbedPattern.FindStringSubmatch(m)
		target := strings.TrimSpace(sub[1])
		alt := strings.TrimSpace(sub[2])
		if alt == "" {
			alt = target
		}
		return "![" + alt + "](<" + target + ">)"
	})
}

// convertWikiLinks renders [[note|alias]] as its display text.
// Cards are static images, so links to other notes carry no target.
func convertWikiLinks(content string) string {
	return wikiLinkPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := wikiLinkPattern.FindStringSubmatch(m)
		if alias := strings.TrimSpace(sub[2]); alias != "" {
			return alias
		}
		return strings.TrimSpace(sub[1])
	})
}

func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
// Called after Goldmark so the converter never needs WithUnsafe.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
