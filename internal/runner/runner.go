// Package runner executes the LLM backend process for one phase
// invocation: native or WSL mode resolution, bounded capture, cooperative
// timeout/cancellation, and whole-process-tree termination (spec.md §4.6).
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/specforge/specforge/internal/specerr"
)

// Mode selects how the backend binary is launched.
type Mode int

const (
	Auto Mode = iota
	Native
	WSL
)

func (m Mode) String() string {
	switch m {
	case Native:
		return "native"
	case WSL:
		return "wsl"
	default:
		return "auto"
	}
}

const (
	stdoutCap = 2 << 20   // 2 MiB
	stderrCap = 256 << 10 // 256 KiB
	killGrace = 5 * time.Second
	drainGrace = 100 * time.Millisecond
)

// Invocation is everything the Runner needs to launch the backend once.
type Invocation struct {
	Mode    Mode
	Binary  string
	Args    []string
	Distro  string // WSL distro override; empty means auto-detect
	Stdin   []byte
	Timeout time.Duration
}

// Result is the full per-invocation return shape (spec.md §4.6
// "Return shape").
type Result struct {
	Stdout          []byte
	Stderr          []byte
	ExitCode        int
	RunnerUsed      string
	RunnerDistro    string
	TimedOut        bool
	NDJSONResult    json.RawMessage
	StdoutTruncated bool
	StderrTruncated bool
	TotalBytesIn    int
	TotalBytesErr   int
}

// Run launches and supervises one backend invocation.
func Run(ctx context.Context, inv Invocation) (Result, error) {
	mode, argv0, args, distro, err := resolveMode(inv)
	if err != nil {
		return Result{}, err
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Process lifetime is managed explicitly below (drain grace, SIGTERM,
	// then SIGKILL on the whole tree) rather than by CommandContext, which
	// would hard-kill the immediate child the instant the deadline fires.
	cmd := exec.Command(argv0, args...)
	configureProcessGroup(cmd)

	stdoutBuf := NewRingBuffer(stdoutCap)
	stderrBuf := NewRingBuffer(stderrCap)
	cmd.Stdout = stdoutBuf
	cmd.Stderr = stderrBuf

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Result{}, specerr.Wrap(specerr.KindLLMTransport, "failed to open backend stdin", err)
	}

	if err := cmd.Start(); err != nil {
		return Result{}, specerr.Wrap(specerr.KindLLMTransport, "failed to start backend process", err)
	}
	tree, _ := attachTree(cmd)

	var g errgroup.Group
	g.Go(func() error {
		// Packet content is piped to stdin, then stdin is closed. A child
		// that exits before reading everything surfaces as a broken pipe
		// here, which is not an error worth reporting.
		defer stdin.Close()
		_, err := io.Copy(stdin, bytes.NewReader(inv.Stdin))
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			return err
		}
		return nil
	})

	exited := make(chan struct{})
	g.Go(func() error {
		err := cmd.Wait()
		close(exited)
		return err
	})

	var timedOut, cancelled bool
	select {
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			// Drain the pipes briefly so truncated output is still useful,
			// then terminate the whole tree (spec.md §4.6).
			timedOut = true
			time.Sleep(drainGrace)
		} else {
			cancelled = true
		}
		killProcessTree(cmd, tree, killGrace, exited)
		<-exited
	case <-exited:
	}
	_ = g.Wait()

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	ndjson, ndjsonOK := extractNDJSON(stdoutBuf.Bytes())
	res := Result{
		Stdout:          stdoutBuf.Bytes(),
		Stderr:          stderrBuf.Bytes(),
		ExitCode:        exitCode,
		RunnerUsed:      mode.String(),
		RunnerDistro:    distro,
		TimedOut:        timedOut,
		StdoutTruncated: stdoutBuf.Truncated(),
		StderrTruncated: stderrBuf.Truncated(),
		TotalBytesIn:    stdoutBuf.TotalBytes(),
		TotalBytesErr:   stderrBuf.TotalBytes(),
	}
	if ndjsonOK {
		res.NDJSONResult = ndjson
	}

	if timedOut {
		return res, specerr.New(specerr.KindPhaseTimeout, fmt.Sprintf("backend process timed out after %s", timeout)).
			WithContext("runner", mode.String())
	}
	if cancelled {
		return res, ctx.Err()
	}
	return res, nil
}

// resolveMode picks the concrete launch mode and argv (spec.md §4.6 "Mode
// resolution"): Native execs the binary directly; WSL wraps it in
// wsl.exe with an explicit distro and argv (never a shell string); Auto
// tries Native then falls back to WSL, but only on Windows.
func resolveMode(inv Invocation) (mode Mode, argv0 string, args []string, distro string, err error) {
	switch inv.Mode {
	case Native:
		return Native, inv.Binary, inv.Args, "", nil
	case WSL:
		d := inv.Distro
		if d == "" {
			d = detectWSLDistro()
		}
		wslArgs := append([]string{}, inv.Args...)
		if d != "" {
			return WSL, "wsl.exe", append([]string{"-d", d, "--exec", inv.Binary}, wslArgs...), d, nil
		}
		return WSL, "wsl.exe", append([]string{"--exec", inv.Binary}, wslArgs...), "", nil
	default: // Auto
		if runtime.GOOS != "windows" {
			return Native, inv.Binary, inv.Args, "", nil
		}
		if _, lookErr := exec.LookPath(inv.Binary); lookErr == nil {
			return Native, inv.Binary, inv.Args, "", nil
		}
		return resolveMode(Invocation{Mode: WSL, Binary: inv.Binary, Args: inv.Args, Distro: inv.Distro})
	}
}

// detectWSLDistro resolves the target distro when none is configured:
// $WSL_DISTRO_NAME first, then the first entry of `wsl -l -q` (spec.md
// §4.6). Overridable in tests.
var detectWSLDistro = func() string {
	if d := os.Getenv("WSL_DISTRO_NAME"); d != "" {
		return d
	}
	out, err := exec.Command("wsl", "-l", "-q").Output()
	if err != nil {
		return ""
	}
	// wsl.exe emits UTF-16LE; dropping NUL bytes recovers the ASCII
	// distro names without pulling in a transcoding dependency.
	cleaned := bytes.ReplaceAll(out, []byte{0}, nil)
	cleaned = bytes.TrimPrefix(cleaned, []byte{0xEF, 0xBB, 0xBF})
	for _, line := range bytes.Split(cleaned, []byte{'\n'}) {
		if name := bytes.TrimSpace(line); len(name) > 0 {
			return string(name)
		}
	}
	return ""
}
