package spec

import "time"

// PacketBudget tracks bytes/lines consumed against the configured limits.
// Defaults match spec.md §3: 65536 bytes, 1200 lines.
type PacketBudget struct {
	UsedBytes  int
	UsedLines  int
	LimitBytes int
	LimitLines int
}

// DefaultPacketBudget returns the spec-mandated default limits.
func DefaultPacketBudget() PacketBudget {
	return PacketBudget{LimitBytes: 65536, LimitLines: 1200}
}

// Fits reports whether adding addBytes/addLines would stay within budget.
func (b PacketBudget) Fits(addBytes, addLines int) bool {
	return b.UsedBytes+addBytes <= b.LimitBytes && b.UsedLines+addLines <= b.LimitLines
}

// PacketEvidence is the auditable record of what a packet contained.
type PacketEvidence struct {
	Files      []FileEvidence
	MaxBytes   int
	MaxLines   int
}

// LLMEvidence captures what the backend reported about one invocation.
type LLMEvidence struct {
	Provider     string `json:"provider"`
	ModelUsed    string `json:"model_used"`
	TokensInput  *int   `json:"tokens_input,omitempty"`
	TokensOutput *int   `json:"tokens_output,omitempty"`
	TimedOut     *bool  `json:"timed_out,omitempty"`
}

// OutputEvidence binds a persisted artifact path to its canonical hash.
type OutputEvidence struct {
	Path       string `json:"path"`
	BLAKE3Hash string `json:"blake3_canonicalized"`
}

// Receipt is the canonical, append-only audit record of one phase
// invocation. See spec.md §3 "Receipt" and §6 "Receipt schema (v1)".
type Receipt struct {
	SchemaVersion             string    `json:"schema_version"`
	EmittedAt                 time.Time `json:"emitted_at"`
	SpecID                    string    `json:"spec_id"`
	Phase                     string    `json:"phase"`
	ModelFullName             string    `json:"model_full_name"`
	ModelAlias                string    `json:"model_alias,omitempty"`
	ClaudeCLIVersion          string    `json:"claude_cli_version"`
	Runner                    string    `json:"runner"`
	RunnerDistro              string    `json:"runner_distro,omitempty"`
	CanonicalizationVersion   string    `json:"canonicalization_version"`
	CanonicalizationBackend   string    `json:"canonicalization_backend"`
	Packet                    PacketEvidenceJSON `json:"packet"`
	Outputs                   []OutputEvidence   `json:"outputs"`
	ExitCode                  int       `json:"exit_code"`
	ErrorKind                 string    `json:"error_kind,omitempty"`
	ErrorReason               string    `json:"error_reason,omitempty"`
	StderrTail                string    `json:"stderr_tail,omitempty"`
	Warnings                  []string  `json:"warnings,omitempty"`
	FallbackUsed              *bool     `json:"fallback_used,omitempty"`
	LLM                       *LLMEvidence `json:"llm,omitempty"`
	Pipeline                  string    `json:"pipeline,omitempty"`
}

// PacketEvidenceJSON is the JSON-shaped mirror of PacketEvidence; it is a
// separate type because the receipt embeds the budget limits flattened
// alongside the file list (spec.md §3 Receipt.packet).
type PacketEvidenceJSON struct {
	Files    []FileEvidence `json:"files"`
	MaxBytes int            `json:"max_bytes"`
	MaxLines int            `json:"max_lines"`
}

const (
	SchemaVersionV1          = "receipt-v1"
	CanonicalizationVersion  = "yaml-v1,md-v1"
	CanonicalizationBackend  = "jcs-rfc8785"
)

// ReceiptFilename returns the timestamp-ordered filename for a receipt,
// e.g. "requirements-20260731_120501.json". emittedAt must be UTC.
func ReceiptFilename(phase PhaseID, emittedAt time.Time) string {
	return phase.String() + "-" + emittedAt.UTC().Format("20060102_150405") + ".json"
}
