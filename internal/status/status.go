// Package status builds the read-only status-json.v2 and resume-json.v1
// documents (spec.md §6) from receipts and artifacts alone. Per spec.md
// §5 "Read-only introspection (status, gate, history) deliberately skips
// the lock so that dashboards and CI gates never block a running phase,"
// this package never acquires internal/lock.
package status

import (
	"strconv"

	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/fixup"
	"github.com/specforge/specforge/internal/lockfile"
	"github.com/specforge/specforge/internal/receipt"
	"github.com/specforge/specforge/internal/spec"
)

const SchemaVersion = "status-json.v2"

// EffectiveValue is one resolved configuration key, with its winning
// source tagged so `specforge status` can show provenance.
type EffectiveValue struct {
	Value  string `json:"value"`
	Source string `json:"source"` // default|config|env|cli
}

// PhaseStatus summarizes one pipeline phase's current state.
type PhaseStatus struct {
	Phase       string `json:"phase"`
	HasArtifact bool   `json:"has_artifact"`
	Success     bool   `json:"success"`
	EmittedAt   string `json:"emitted_at,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
}

// ArtifactSummary is one persisted artifact's path and truncated hash.
type ArtifactSummary struct {
	Path         string `json:"path"`
	BLAKE3First8 string `json:"blake3_first8"`
}

// Document is the status-json.v2 payload.
type Document struct {
	SchemaVersion    string                     `json:"schema_version"`
	SpecID           string                     `json:"spec_id"`
	PhaseStatuses    []PhaseStatus              `json:"phase_statuses"`
	PendingFixups    string                     `json:"pending_fixups"`
	HasErrors        bool                       `json:"has_errors"`
	StrictValidation bool                       `json:"strict_validation"`
	Artifacts        []ArtifactSummary          `json:"artifacts"`
	EffectiveConfig  map[string]EffectiveValue  `json:"effective_config"`
	LockDrift        *lockfile.Drift            `json:"lock_drift,omitempty"`
}

// Build assembles the status document from a spec's receipts and
// artifacts. effectiveConfig and lockDrift are supplied by the caller
// (the CLI boundary, which owns config resolution and lockfile loading);
// this package only shapes the data into the canonical schema.
func Build(specID string, receipts *receipt.Manager, artifacts *artifact.Manager, strict bool, effectiveConfig map[string]EffectiveValue, lockDrift *lockfile.Drift) (Document, error) {
	var phaseStatuses []PhaseStatus
	hasErrors := false
	for _, phase := range spec.All() {
		hasArtifact, err := artifacts.Exists(phase)
		if err != nil {
			return Document{}, err
		}
		last, err := receipts.Latest(phase)
		if err != nil {
			return Document{}, err
		}
		ps := PhaseStatus{Phase: phase.String(), HasArtifact: hasArtifact}
		if last != nil {
			ps.Success = last.ExitCode == 0
			ps.EmittedAt = last.EmittedAt.UTC().Format("2006-01-02T15:04:05Z")
			ps.ErrorKind = last.ErrorKind
			if !ps.Success {
				hasErrors = true
			}
		}
		phaseStatuses = append(phaseStatuses, ps)
	}

	pending, err := pendingFixupsState(artifacts)
	if err != nil {
		return Document{}, err
	}

	all, err := artifacts.ListAll()
	if err != nil {
		return Document{}, err
	}
	summaries := make([]ArtifactSummary, 0, len(all))
	for _, a := range all {
		hash := a.BLAKE3Hash
		if len(hash) > 8 {
			hash = hash[:8]
		}
		summaries = append(summaries, ArtifactSummary{Path: a.Filename(), BLAKE3First8: hash})
	}

	if effectiveConfig == nil {
		effectiveConfig = map[string]EffectiveValue{}
	}

	return Document{
		SchemaVersion:    SchemaVersion,
		SpecID:           specID,
		PhaseStatuses:    phaseStatuses,
		PendingFixups:    pending,
		HasErrors:        hasErrors,
		StrictValidation: strict,
		Artifacts:        summaries,
		EffectiveConfig:  effectiveConfig,
		LockDrift:        lockDrift,
	}, nil
}

// pendingFixupsState mirrors the gate evaluator's tri-state reading of
// Review output, so `specforge status` and `specforge gate` never
// disagree about what "pending" means.
func pendingFixupsState(artifacts *artifact.Manager) (string, error) {
	names, err := artifacts.ListForPhase(spec.Review)
	if err != nil {
		return "unknown", err
	}
	var markdownName string
	for _, n := range names {
		if n == spec.Review.FilePrefix()+"-review"+spec.Markdown.Extension() {
			markdownName = n
			break
		}
	}
	if markdownName == "" {
		return "none", nil
	}
	a, err := artifacts.Read(markdownName)
	if err != nil {
		return "unknown", nil
	}
	blocks, err := fixup.Parse(string(a.Content))
	if err != nil {
		return "unknown", nil
	}
	if len(blocks) == 0 {
		return "none", nil
	}
	return strconv.Itoa(len(blocks)) + " pending", nil
}
