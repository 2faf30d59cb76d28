//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// killTree runs taskkill with /T so children go with the parent.
func killTree(pid int) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
