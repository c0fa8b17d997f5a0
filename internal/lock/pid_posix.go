//go:build !windows

package lock

import (
	"os"
	"syscall"
)

// pidAlive reports whether pid refers to a live process, using signal 0
// which performs existence/permission checks without delivering anything.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == syscall.ESRCH {
		return false
	}
	// EPERM means the process exists but we can't signal it.
	return err == syscall.EPERM
}
