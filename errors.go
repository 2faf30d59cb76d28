package md2card

import "errors"

// Sentinel errors for library operations.
var (
	// ErrRenderFailure means rasterization produced no usable image.
	ErrRenderFailure  = errors.New("card render failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	ErrInvalidDensity = errors.New("invalid pixel density")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
