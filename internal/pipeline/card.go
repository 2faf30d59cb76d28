package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

// ErrCardRender indicates the card template failed to execute.
var ErrCardRender = errors.New("card template rendering failed")

// RootClass is always present on the card's root element.
const RootClass = "md2card"

var invalidClassChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// CardData is the resolved content of one card.
type CardData struct {
	Title   string
	Type    string
	Number  string   // padded display number, empty when unnumbered
	Classes []string // extra classes for the root element
	Body    string   // trusted HTML fragment from the Markdown stage
}

// CardBuilder defines the contract for building card HTML.
type CardBuilder interface {
	BuildCard(ctx context.Context, data CardData) (string, error)
}

// CardTemplate builds the card document from an html/template.
type CardTemplate struct {
	tmpl *template.Template
}

// NewCardTemplate parses the card template content.
func NewCardTemplate(tmplContent string) (*CardTemplate, error) {
	tmpl, err := template.New("card").Option("missingkey=error").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing card template: %w", err)
	}
	return &CardTemplate{tmpl: tmpl}, nil
}

// cardView is what the template sees.
type cardView struct {
	Title     string
	Type      string
	Number    string
	RootClass string
	Body      template.HTML
}

// BuildCard renders header, body and footer regions. The number region is
// omitted when data.Number is empty.
func (c *CardTemplate) BuildCard(ctx context.Context, data CardData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	view := cardView{
		Title:     data.Title,
		Type:      data.Type,
		Number:    data.Number,
		RootClass: rootClass(data.Classes),
		Body:      template.HTML(data.Body), // #nosec G203 -- goldmark output without WithUnsafe
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCardRender, err)
	}
	return buf.String(), nil
}

// rootClass joins RootClass with sanitized, de-duplicated extra classes,
// keeping their original order.
func rootClass(classes []string) string {
	parts := []string{RootClass}
	seen := map[string]bool{RootClass: true}
	for _, c := range classes {
		c = invalidClassChars.ReplaceAllString(strings.TrimSpace(c), "")
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		parts = append(parts, c)
	}
	return strings.Join(parts, " ")
}
