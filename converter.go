package md2card

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-md2card/internal/assets"
	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/frontmatter"
	"github.com/alnah/go-md2card/internal/logger"
	"github.com/alnah/go-md2card/internal/pipeline"
)

var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ pipeline.CardBuilder          = (*pipeline.CardTemplate)(nil)
)

// cardSelector is the root element captured by the rasterizer.
const cardSelector = "." + pipeline.RootClass

// Converter renders cards. Create with NewConverter, call Render for each
// card, and Close when done. Render may be called concurrently.
type Converter struct {
	cfg               converterConfig
	log               logger.Logger
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	preprocessor      pipeline.MarkdownPreprocessor
	htmlConverter     pipeline.HTMLConverter
	cardBuilder       pipeline.CardBuilder
	cssInjector       pipeline.CSSInjector
	pngConverter      pngConverter
}

// NewConverter creates a Converter. Returns an error if the style or card
// template cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:           converterConfig{timeout: defaultTimeout},
		log:           logger.Nop(),
		assetLoader:   assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}
	if c.publicAssetLoader != nil {
		c.assetLoader = c.publicAssetLoader
	}

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}

	if c.cardBuilder == nil {
		name := c.cfg.templateName
		if name == "" {
			name = assets.DefaultTemplateName
		}
		content, err := c.assetLoader.LoadTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("loading card template %q: %w", name, convertAssetError(err))
		}
		if c.cardBuilder, err = pipeline.NewCardTemplate(content); err != nil {
			return nil, fmt.Errorf("initializing card template: %w", err)
		}
	}

	if c.pngConverter == nil {
		c.pngConverter = newRodConverter(c.cfg.timeout)
	}

	return c, nil
}

// Render builds the card HTML and rasterizes it unless input.HTMLOnly is set.
// Internal panics are recovered and returned as errors.
func (c *Converter) Render(ctx context.Context, input Input) (result *RenderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrRenderFailure, r)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	htmlContent, err := c.buildHTML(ctx, input)
	if err != nil {
		return nil, err
	}

	res := &RenderResult{HTML: []byte(htmlContent)}
	if input.HTMLOnly {
		return res, nil
	}

	density := input.density()
	width, height := Dimensions(density)

	c.log.Debug("rasterizing card", "title", input.Title, "density", density)
	raw, err := c.pngConverter.ToPNG(ctx, htmlContent, &pngOptions{
		Width:    CardWidth,
		Height:   CardHeight,
		Density:  density,
		Selector: cardSelector,
	})
	if err != nil {
		return nil, err
	}

	if res.PNG, err = normalizePNG(raw, width, height); err != nil {
		return nil, err
	}
	return res, nil
}

// buildHTML runs the pure part of the pipeline.
func (c *Converter) buildHTML(ctx context.Context, input Input) (string, error) {
	md := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := c.htmlConverter.ToFragment(ctx, md)
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}

	body, err = pipeline.RewriteRelativePaths(body, pipeline.PathRewrite{
		SourceDir: input.SourceDir,
		RootDir:   input.RootDir,
	})
	if err != nil {
		return "", fmt.Errorf("rewriting relative paths: %w", err)
	}
	body = pipeline.ConvertMarkPlaceholders(body)

	var number string
	if input.Number != nil {
		number = frontmatter.PadNumber(*input.Number)
	}

	htmlContent, err := c.cardBuilder.BuildCard(ctx, pipeline.CardData{
		Title:   input.Title,
		Type:    input.Type,
		Number:  number,
		Classes: input.Classes,
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("building card: %w", err)
	}

	css := c.cfg.resolvedStyle
	if input.CSS != "" {
		css += "\n" + input.CSS
	}
	htmlContent = c.cssInjector.InjectCSS(ctx, htmlContent, css)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return htmlContent, nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pngConverter != nil {
		return c.pngConverter.Close()
	}
	return nil
}

// resolveStyle turns the style option (name, path, or CSS) into CSS content.
// Without an option the default card style is used.
func (c *Converter) resolveStyle() error {
	input := strings.TrimSpace(c.cfg.styleInput)
	if input == "" {
		input = assets.DefaultStyleName
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.cfg.resolvedStyle = string(content)
		return nil
	}

	if fileutil.IsCSS(input) {
		c.cfg.resolvedStyle = input
		return nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, convertAssetError(err))
	}
	c.cfg.resolvedStyle = css
	return nil
}
