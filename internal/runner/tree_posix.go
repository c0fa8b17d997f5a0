//go:build !windows

package runner

import (
	"io"
	"os/exec"
	"syscall"
	"time"
)

// configureProcessGroup starts the child in its own process group so a
// timeout can signal the whole tree at once (spec.md §4.6 "child is
// started with setpgid(0,0)").
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// attachTree is a no-op on POSIX: the process group set up in
// configureProcessGroup is all the tree-tracking this platform needs.
func attachTree(cmd *exec.Cmd) (io.Closer, error) {
	return nil, nil
}

// killProcessTree sends SIGTERM to the child's process group, then waits
// up to grace (signalled via exited) for it to exit before sending
// SIGKILL (spec.md §4.6). The caller owns the single cmd.Wait() call and
// closes exited once it returns.
func killProcessTree(cmd *exec.Cmd, tree io.Closer, grace time.Duration, exited <-chan struct{}) {
	if cmd.Process == nil {
		return
	}
	pgid := -cmd.Process.Pid
	_ = syscall.Kill(pgid, syscall.SIGTERM)

	select {
	case <-exited:
		return
	case <-time.After(grace):
		_ = syscall.Kill(pgid, syscall.SIGKILL)
	}
}
