//go:build windows

package runner

import (
	"io"
	"os/exec"
	"time"
)

// configureProcessGroup is a no-op on Windows: there is no setpgid
// equivalent to prepare before Start. Tree tracking is set up after
// Start instead, via attachTree.
func configureProcessGroup(cmd *exec.Cmd) {}

// attachTree wraps cmd's process in a Job Object configured with
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE and assigns the child to it
// immediately after Start (spec.md §4.6). The returned Closer's Close
// terminates every process in the job; it is nil if job creation or
// assignment failed, in which case killProcessTree falls back to killing
// only the immediate child.
func attachTree(cmd *exec.Cmd) (io.Closer, error) {
	if cmd.Process == nil {
		return nil, nil
	}
	job, err := newJobObject()
	if err != nil {
		return nil, err
	}
	if err := job.assignProcess(cmd.Process.Pid); err != nil {
		job.Close()
		return nil, err
	}
	return job, nil
}

// killProcessTree closes the Job Object handle recorded in tree, which
// terminates every process in the job in one call. If no job was
// successfully attached, it falls back to killing the immediate child.
func killProcessTree(cmd *exec.Cmd, tree io.Closer, grace time.Duration, exited <-chan struct{}) {
	select {
	case <-exited:
		return
	case <-time.After(grace):
	}
	if tree != nil {
		_ = tree.Close()
		return
	}
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
