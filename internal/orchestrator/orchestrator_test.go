package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/specforge/specforge/internal/llm"
	"github.com/specforge/specforge/internal/redact"
	"github.com/specforge/specforge/internal/runner"
	"github.com/specforge/specforge/internal/specerr"
	"github.com/specforge/specforge/internal/spec"
	"github.com/specforge/specforge/internal/workspace"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, workspace.Paths) {
	t.Helper()
	home := t.TempDir()
	id, err := workspace.SanitizeID("demo")
	if err != nil {
		t.Fatal(err)
	}
	paths := workspace.Resolve(home, id)
	if err := paths.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	r, err := redact.New(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(paths, r), paths
}

func TestRunPhaseRequirementsDryRunSkipsBackend(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	opt := Options{
		DryRun:  true,
		LockTTL: time.Minute,
		RunnerInv: runner.Invocation{
			// A backend that would fail if it were ever invoked.
			Mode: runner.Native, Binary: "sh", Args: []string{"-c", "exit 1"}, Timeout: time.Second,
		},
	}
	outcome, err := o.RunPhase(context.Background(), "demo", spec.Requirements, []byte("Build a REST API for user management"), opt)
	if err != nil {
		t.Fatalf("dry run should not error: %v", err)
	}
	if len(outcome.Artifacts) != 2 {
		t.Fatalf("dry run should still produce both artifacts, got %d", len(outcome.Artifacts))
	}
	if outcome.Receipt.ExitCode != 0 {
		t.Errorf("dry run should emit a success receipt, got exit code %d", outcome.Receipt.ExitCode)
	}
	if outcome.Receipt.FallbackUsed == nil || !*outcome.Receipt.FallbackUsed {
		t.Error("dry run receipt should record fallback_used=true")
	}
	if outcome.Receipt.Runner != "dry-run" {
		t.Errorf("dry run receipt should name the dry-run runner, got %q", outcome.Receipt.Runner)
	}
}

func TestRunPhaseDesignWithoutRequirementsFails(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	opt := Options{LockTTL: time.Minute}
	_, err := o.RunPhase(context.Background(), "demo", spec.Design, nil, opt)
	if err == nil {
		t.Fatal("expected DependencyNotSatisfied")
	}
	if specerr.AsExitCode(err) != specerr.ExitCode(specerr.KindDependencyNotSatisfied) {
		t.Errorf("expected DependencyNotSatisfied exit code, got %d", specerr.AsExitCode(err))
	}
}

// captureBackend stands in for an HTTP backend: it records the
// Invocation it was handed and returns a fixed, validation-clean
// response.
type captureBackend struct {
	got llm.Invocation
}

func (b *captureBackend) Invoke(ctx context.Context, inv llm.Invocation) (llm.Result, error) {
	b.got = inv
	return llm.Result{
		Content:    "# Requirements\n\n- REQ-1: the system must authenticate users\n",
		Provider:   "anthropic",
		ModelUsed:  "claude-sonnet-4-5",
		RunnerUsed: "anthropic-http",
	}, nil
}

func TestRunPhasePopulatesMessagesForHTTPBackends(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	backend := &captureBackend{}
	opt := Options{
		LockTTL: time.Minute,
		Backend: backend,
	}
	outcome, err := o.RunPhase(context.Background(), "demo", spec.Requirements, []byte("Build a REST API for user management"), opt)
	if err != nil {
		t.Fatalf("RunPhase: %v", err)
	}

	if len(backend.got.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(backend.got.Messages))
	}
	if backend.got.Messages[0].Role != llm.RoleSystem || backend.got.Messages[0].Content == "" {
		t.Error("expected a non-empty system message carrying the phase prompt")
	}
	if backend.got.Messages[1].Role != llm.RoleUser || backend.got.Messages[1].Content == "" {
		t.Error("expected a non-empty user message carrying the packet content")
	}
	if outcome.Receipt.LLM == nil || outcome.Receipt.LLM.Provider != "anthropic" {
		t.Error("expected the receipt's llm evidence to carry the backend's provider")
	}
}

func TestRunPhaseEndToEndWithEchoBackend(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	script := "cat > /dev/null\n" +
		"echo '# Requirements'\n" +
		"echo\n" +
		"echo '- REQ-1: the system must authenticate users'\n" +
		"echo '- US-1: As a user I want to log in so that I can access my account'\n"
	opt := Options{
		LockTTL: time.Minute,
		RunnerInv: runner.Invocation{
			Mode:    runner.Native,
			Binary:  "sh",
			Args:    []string{"-c", script},
			Timeout: 5 * time.Second,
		},
	}
	outcome, err := o.RunPhase(context.Background(), "demo", spec.Requirements, []byte("Build a REST API for user management"), opt)
	if err != nil {
		t.Fatalf("RunPhase: %v", err)
	}
	if outcome.Receipt.ExitCode != 0 {
		t.Errorf("expected success receipt, got exit code %d", outcome.Receipt.ExitCode)
	}
	if len(outcome.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(outcome.Artifacts))
	}
}
