package md2card

import (
	"errors"

	"github.com/alnah/go-md2card/internal/assets"
)

// Names of the built-in assets.
const (
	DefaultStyle    = assets.DefaultStyleName
	DefaultTemplate = assets.DefaultTemplateName
)

// AssetLoader loads card styles and templates by name.
//
// NewAssetLoader provides filesystem loading with fallback to the embedded
// defaults. Implement this interface for other backends.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a card template by name (without .html extension).
	// The template receives Title, Type, Number, RootClass and Body.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader rooted at basePath, which may hold
// styles/{name}.css and templates/{name}.html. Missing assets fall back to
// the embedded ones. An empty basePath uses embedded assets only.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	return content, convertAssetError(err)
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	return content, convertAssetError(err)
}

// convertAssetError maps internal asset errors to the public sentinels.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrStyleNotFound), errors.Is(err, assets.ErrInvalidAssetName):
		return &assetError{sentinel: ErrStyleNotFound, original: err}
	case errors.Is(err, assets.ErrTemplateNotFound):
		return &assetError{sentinel: ErrTemplateNotFound, original: err}
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return &assetError{sentinel: ErrInvalidAssetPath, original: err}
	default:
		return err
	}
}

// assetError keeps the original message while matching the public sentinel.
type assetError struct {
	sentinel error
	original error
}

func (e *assetError) Error() string { return e.original.Error() }

func (e *assetError) Unwrap() error { return e.sentinel }
