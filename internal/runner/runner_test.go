package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// The runner spawns a stdin-copy goroutine and a wait goroutine per
// invocation; every test path, including timeout and tree-kill, must
// leave none of them behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunCapturesStdoutAndExitCode(t *testing.T) {
	res, err := Run(context.Background(), Invocation{
		Mode:    Native,
		Binary:  "sh",
		Args:    []string{"-c", "cat; echo done-marker >&2"},
		Stdin:   []byte("hello from stdin"),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(string(res.Stdout), "hello from stdin") {
		t.Errorf("expected stdin echoed back on stdout, got %q", res.Stdout)
	}
	if !strings.Contains(string(res.Stderr), "done-marker") {
		t.Errorf("expected stderr marker, got %q", res.Stderr)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
	if res.RunnerUsed != "native" {
		t.Errorf("expected native runner, got %s", res.RunnerUsed)
	}
}

func TestRunNonZeroExitCode(t *testing.T) {
	res, err := Run(context.Background(), Invocation{
		Mode:    Native,
		Binary:  "sh",
		Args:    []string{"-c", "exit 3"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
}

func TestRunTimeoutKillsProcessTree(t *testing.T) {
	res, err := Run(context.Background(), Invocation{
		Mode:    Native,
		Binary:  "sh",
		Args:    []string{"-c", "sleep 30"},
		Timeout: 200 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected a PhaseTimeout error")
	}
	if !res.TimedOut {
		t.Error("expected TimedOut to be true")
	}
}

func TestExtractNDJSONReturnsLastValidLine(t *testing.T) {
	stdout := []byte("{\"event\":\"start\"}\nnot json\n{\"event\":\"final\",\"ok\":true}\n")
	result, ok := extractNDJSON(stdout)
	if !ok {
		t.Fatal("expected a parseable NDJSON line")
	}
	if !strings.Contains(string(result), "final") {
		t.Errorf("expected the last valid line, got %s", result)
	}
}

func TestExtractNDJSONNoneParseReturnsFalse(t *testing.T) {
	_, ok := extractNDJSON([]byte("plain text\nmore plain text\n"))
	if ok {
		t.Fatal("expected no NDJSON line to parse")
	}
}

func TestRingBufferPreservesTail(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]byte("0123456789"))
	if got := string(rb.Bytes()); got != "23456789" {
		t.Errorf("expected tail-preserving truncation, got %q", got)
	}
	if !rb.Truncated() {
		t.Error("expected Truncated to be true")
	}
	if rb.TotalBytes() != 10 {
		t.Errorf("expected TotalBytes 10, got %d", rb.TotalBytes())
	}
}
