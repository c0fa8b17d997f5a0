package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/specforge/specforge/internal/runner"
)

func TestSubprocessBackendEchoesStdin(t *testing.T) {
	b := NewSubprocessBackend(runner.Invocation{
		Mode:    runner.Native,
		Binary:  "sh",
		Args:    []string{"-c", "cat"},
		Timeout: 5 * time.Second,
	})
	res, err := b.Invoke(context.Background(), Invocation{RawStdin: []byte("hello")})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(res.Content, "hello") {
		t.Errorf("expected stdin echoed into Content, got %q", res.Content)
	}
	if res.RunnerUsed != "native" {
		t.Errorf("expected native runner, got %s", res.RunnerUsed)
	}
	if res.TimedOut == nil || *res.TimedOut {
		t.Errorf("expected TimedOut=false, got %v", res.TimedOut)
	}
}

func TestSubprocessBackendPreservesPartialOutputOnTimeout(t *testing.T) {
	b := NewSubprocessBackend(runner.Invocation{
		Mode:    runner.Native,
		Binary:  "sh",
		Args:    []string{"-c", "printf partial; sleep 30"},
		Timeout: 200 * time.Millisecond,
	})
	res, err := b.Invoke(context.Background(), Invocation{RawStdin: []byte("x")})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if res.Content != "partial" {
		t.Errorf("expected partial output preserved alongside the error, got %q", res.Content)
	}
	if res.TimedOut == nil || !*res.TimedOut {
		t.Errorf("expected TimedOut=true, got %v", res.TimedOut)
	}
}

func TestSubprocessBackendFlattensMessagesWhenNoRawStdin(t *testing.T) {
	b := NewSubprocessBackend(runner.Invocation{
		Mode:    runner.Native,
		Binary:  "sh",
		Args:    []string{"-c", "cat"},
		Timeout: 5 * time.Second,
	})
	res, err := b.Invoke(context.Background(), Invocation{
		Messages: []Message{{Role: RoleUser, Content: "what is the plan"}},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(res.Content, "what is the plan") {
		t.Errorf("expected flattened transcript echoed back, got %q", res.Content)
	}
}
