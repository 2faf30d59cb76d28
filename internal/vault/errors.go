package vault

import "errors"

// Sentinel errors for vault operations.
var (
	ErrOutsideVault = errors.New("path escapes vault root")
	ErrAbsolutePath = errors.New("absolute paths not allowed")
	ErrNotADir      = errors.New("vault root is not a directory")
)
