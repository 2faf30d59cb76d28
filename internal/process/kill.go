package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for pids that would target the caller's own
// process group.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree kills pid and every child it spawned. Chrome forks renderer and
// GPU helpers that outlive the parent when only the parent is killed.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
