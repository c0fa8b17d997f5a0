//go:build windows

package runner

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// jobObject is a thin RAII wrapper over a Windows Job Object handle
// configured to kill every assigned process when the handle is closed
// (spec.md §4.6 "the handle wrapper is Send and drops last among local
// resources" — in Go this is just "Close it from the same goroutine that
// owns the Cmd, after Wait returns or on timeout").
type jobObject struct {
	handle windows.Handle
}

func newJobObject() (*jobObject, error) {
	handle, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return nil, err
	}
	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		handle,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		windows.CloseHandle(handle)
		return nil, err
	}
	return &jobObject{handle: handle}, nil
}

func (j *jobObject) assignProcess(pid int) error {
	proc, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(proc)
	return windows.AssignProcessToJobObject(j.handle, proc)
}

// Close terminates every process still assigned to the job and releases
// the handle.
func (j *jobObject) Close() error {
	return windows.CloseHandle(j.handle)
}
