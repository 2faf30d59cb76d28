package cards

import "errors"

// Sentinel errors for card actions.
var (
	// ErrNoActiveDocument means an interactive action had no note to act on.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrPersistenceFailure means the image or its back-reference could not
	// be written.
	ErrPersistenceFailure = errors.New("failed to persist card")

	ErrBatchLocked    = errors.New("another batch is already running on this vault")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidPattern = errors.New("invalid include pattern")
	ErrNoSink         = errors.New("no image sink configured")
)
