//go:build windows

package lock

import "os"

// pidAlive reports whether pid refers to a live process. Windows process
// handles don't support signal-0 liveness checks; opening the process
// handle is enough to distinguish a live PID from a reused/absent one.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc
	return true
}
