// Package llm implements the backend capability set spec.md §9 calls for:
// "Express as a capability set with one method invoke(inv) -> result;
// backends are selected by configuration. HTTP and subprocess backends
// share a retry policy and a unified LlmError taxonomy." Three Backend
// implementations are provided: a subprocess backend wrapping
// internal/runner (the CLI model invocation), and two HTTP backends
// (Anthropic, OpenRouter) talking directly to provider APIs.
package llm

import (
	"context"
	"time"
)

// Role identifies the speaker of one Message.
type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAssistant
)

// Message is one turn of the conversation handed to a backend.
type Message struct {
	Role    Role
	Content string
}

// Invocation is everything a Backend needs to run one LLM call,
// independent of which backend kind handles it.
type Invocation struct {
	SpecID   string
	PhaseID  string
	Model    string // empty means "use the backend's configured default"
	Timeout  time.Duration
	Messages []Message

	// Metadata carries backend-specific overrides (e.g. "max_tokens",
	// "temperature") resolved with invocation-over-default precedence,
	// same as the HTTP backends' resolve_params.
	Metadata map[string]any

	// RawStdin, when non-empty, is sent verbatim to a subprocess backend
	// instead of a message transcript built from Messages. HTTP backends
	// ignore it.
	RawStdin []byte
}

// Result is what a Backend reports after one invocation completes.
type Result struct {
	Content      string
	Provider     string
	ModelUsed    string
	TokensInput  *int
	TokensOutput *int
	TimedOut     *bool

	// StderrTail holds the last bytes of captured stderr (subprocess
	// backend only), pre-redaction; the orchestrator redacts it before
	// the tail reaches a receipt.
	StderrTail string

	// RunnerUsed/RunnerDistro mirror runner.Result's provenance fields so
	// the orchestrator can stamp Receipt.Runner/RunnerDistro the same way
	// regardless of which backend kind ran ("native", "wsl",
	// "anthropic-http", "openrouter-http").
	RunnerUsed   string
	RunnerDistro string
}

// Backend is the capability set every LLM backend implements, whether it
// shells out to a CLI or speaks HTTP to a provider directly.
type Backend interface {
	Invoke(ctx context.Context, inv Invocation) (Result, error)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
