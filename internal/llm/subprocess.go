package llm

import (
	"bytes"
	"context"

	"github.com/specforge/specforge/internal/runner"
)

// SubprocessBackend adapts internal/runner's CLI-process invocation to
// the Backend capability set, so the subprocess (e.g. claude CLI) and
// the HTTP providers are interchangeable behind one invoke(inv) method.
type SubprocessBackend struct {
	// Base supplies Binary/Args/Mode/Distro; Stdin and Timeout are
	// filled in per-invocation from the Invocation passed to Invoke.
	Base runner.Invocation
}

// NewSubprocessBackend wraps base as a Backend.
func NewSubprocessBackend(base runner.Invocation) *SubprocessBackend {
	return &SubprocessBackend{Base: base}
}

// Invoke runs the configured subprocess once. It mirrors runner.Run's
// partial-result-on-failure behavior: even when the process times out or
// exits non-zero, whatever stdout was captured is still returned inside
// Result, matching the original runner.Result{Stdout, ...}/err contract
// so callers that persist partial output on failure keep doing so
// unchanged.
func (b *SubprocessBackend) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	stdin := inv.RawStdin
	if len(stdin) == 0 {
		stdin = flattenTranscript(inv.Messages)
	}

	rinv := b.Base
	rinv.Stdin = stdin
	if inv.Timeout > 0 {
		rinv.Timeout = inv.Timeout
	}

	res, err := runner.Run(ctx, rinv)
	out := Result{
		Content: string(res.Stdout),
		// The receipt schema allows at most 2048 bytes of stderr tail.
		StderrTail:   string(runner.TailExcerpt(res.Stderr, 2048)),
		TimedOut:     boolPtr(res.TimedOut),
		RunnerUsed:   res.RunnerUsed,
		RunnerDistro: res.RunnerDistro,
	}
	return out, err
}

// flattenTranscript renders Messages as a plain transcript when the
// caller has not already built a raw stdin payload (spec.md §4.8 hands
// the backend "the phase-specific prompt and packet" concatenated, which
// RawStdin is for; this path exists for callers that construct
// Invocation.Messages directly instead).
func flattenTranscript(messages []Message) []byte {
	var buf bytes.Buffer
	for _, m := range messages {
		buf.WriteString(m.Content)
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}
