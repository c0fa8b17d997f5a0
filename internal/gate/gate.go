// Package gate implements the Gate Evaluator (spec.md §4.10): a pure
// function over a receipt list, an artifact tree, and a Policy that
// produces a deterministic pass/fail verdict for CI. It performs no I/O
// of its own; callers (the CLI, the status reporter) load receipts and
// artifacts and hand them in, which keeps the evaluator trivially
// testable without a filesystem.
package gate

import (
	"fmt"
	"time"

	"github.com/specforge/specforge/internal/fixup"
	"github.com/specforge/specforge/internal/spec"
)

// ArtifactTree is the minimal read-only view of persisted artifacts the
// evaluator needs. A real caller backs this with internal/artifact.Manager;
// tests back it with an in-memory fake.
type ArtifactTree interface {
	// HasArtifact reports whether phase has at least one persisted artifact.
	HasArtifact(phase spec.PhaseID) bool
	// ReviewMarkdown returns the canonicalized Review markdown artifact,
	// if one exists.
	ReviewMarkdown() (content []byte, ok bool)
}

// Policy is the merged (defaults ← policy-file ← CLI) gate configuration
// (spec.md §3 "GatePolicy").
type Policy struct {
	MinPhase            spec.PhaseID
	FailOnPendingFixups bool
	MaxPhaseAge         *time.Duration // nil means unbounded
}

// Condition is one evaluated gate rule, reported verbatim in GateResult
// so `specforge gate --json` can show callers exactly why a verdict fell
// out the way it did.
type Condition struct {
	Name        string `json:"name"`
	Passed      bool   `json:"passed"`
	Description string `json:"description"`
	Actual      string `json:"actual,omitempty"`
	Expected    string `json:"expected,omitempty"`
}

// Result is the gate-json.v1 document (spec.md §6).
type Result struct {
	SchemaVersion   string      `json:"schema_version"`
	SpecID          string      `json:"spec_id"`
	Passed          bool        `json:"passed"`
	Conditions      []Condition `json:"conditions"`
	FailureReasons  []string    `json:"failure_reasons"`
	Summary         string      `json:"summary"`
}

const SchemaVersion = "gate-json.v1"

// Evaluate applies policy to receipts and the artifact tree and returns a
// deterministic verdict. now is threaded in explicitly (rather than
// time.Now()) so the max_phase_age condition stays pure and testable.
func Evaluate(receipts []spec.Receipt, artifacts ArtifactTree, policy Policy, specID string, now time.Time) Result {
	var conditions []Condition
	var reasons []string

	minPhaseOK, minPhaseCond := evalMinPhase(receipts, artifacts, policy.MinPhase)
	conditions = append(conditions, minPhaseCond)
	if !minPhaseOK {
		reasons = append(reasons, fmt.Sprintf("required phase %q has no successful receipt or artifact", policy.MinPhase))
	}

	fixupsOK, fixupCond := evalPendingFixups(artifacts, policy.FailOnPendingFixups)
	conditions = append(conditions, fixupCond)
	if !fixupsOK {
		reasons = append(reasons, "pending fixups block the gate")
	}

	if policy.MaxPhaseAge != nil {
		ageOK, ageCond := evalMaxPhaseAge(receipts, policy.MinPhase, *policy.MaxPhaseAge, now)
		conditions = append(conditions, ageCond)
		if !ageOK {
			reasons = append(reasons, fmt.Sprintf("latest successful receipt for %q exceeds max_phase_age", policy.MinPhase))
		}
	}

	passed := len(reasons) == 0
	summary := "all gate conditions passed"
	if !passed {
		summary = fmt.Sprintf("%d gate condition(s) failed", len(reasons))
	}

	return Result{
		SchemaVersion:  SchemaVersion,
		SpecID:         specID,
		Passed:         passed,
		Conditions:     conditions,
		FailureReasons: reasons,
		Summary:        summary,
	}
}

func evalMinPhase(receipts []spec.Receipt, artifacts ArtifactTree, minPhase spec.PhaseID) (bool, Condition) {
	ok := latestSuccessful(receipts, minPhase) != nil || artifacts.HasArtifact(minPhase)
	return ok, Condition{
		Name:        "min_phase",
		Passed:      ok,
		Description: "required phase has a successful receipt or a persisted artifact",
		Expected:    minPhase.String(),
	}
}

// pendingFixupsState mirrors spec.md §4.10's tri-state result: {None,
// Some(stats), Unknown{reason}}. Unknown is always treated as a failure.
type pendingFixupsState int

const (
	fixupsNone pendingFixupsState = iota
	fixupsSome
	fixupsUnknown
)

func evalPendingFixups(artifacts ArtifactTree, failOnPending bool) (bool, Condition) {
	state, count := inspectFixups(artifacts)

	var actual string
	switch state {
	case fixupsNone:
		actual = "none"
	case fixupsSome:
		actual = fmt.Sprintf("%d pending", count)
	default:
		actual = "unknown"
	}

	passed := true
	switch {
	case state == fixupsUnknown:
		passed = false
	case state == fixupsSome && failOnPending:
		passed = false
	}

	return passed, Condition{
		Name:        "pending_fixups",
		Passed:      passed,
		Description: "Review artifact must not carry an unresolved fixup plan when fail_on_pending_fixups is set",
		Actual:      actual,
		Expected:    fmt.Sprintf("fail_on_pending_fixups=%t", failOnPending),
	}
}

func inspectFixups(artifacts ArtifactTree) (pendingFixupsState, int) {
	content, ok := artifacts.ReviewMarkdown()
	if !ok {
		return fixupsNone, 0
	}
	blocks, err := fixup.Parse(string(content))
	if err != nil {
		return fixupsUnknown, 0
	}
	if len(blocks) == 0 {
		return fixupsNone, 0
	}
	return fixupsSome, len(blocks)
}

func evalMaxPhaseAge(receipts []spec.Receipt, minPhase spec.PhaseID, maxAge time.Duration, now time.Time) (bool, Condition) {
	r := latestSuccessful(receipts, minPhase)
	if r == nil {
		return false, Condition{
			Name:        "max_phase_age",
			Passed:      false,
			Description: "no successful receipt exists to measure age against",
			Expected:    maxAge.String(),
		}
	}
	age := now.Sub(r.EmittedAt)
	passed := age <= maxAge
	return passed, Condition{
		Name:        "max_phase_age",
		Passed:      passed,
		Description: "latest successful receipt for the required phase must be no older than max_phase_age",
		Actual:      age.String(),
		Expected:    maxAge.String(),
	}
}

// latestSuccessful returns the most recent exit_code==0 receipt for
// phase, or nil. Failed receipts never count, per spec.md §4.10
// "Failed receipts do not count — this prevents a flapping phase from
// appearing fresh."
func latestSuccessful(receipts []spec.Receipt, phase spec.PhaseID) *spec.Receipt {
	var latest *spec.Receipt
	for i := range receipts {
		r := &receipts[i]
		if r.Phase != phase.String() || r.ExitCode != 0 {
			continue
		}
		if latest == nil || r.EmittedAt.After(latest.EmittedAt) {
			latest = r
		}
	}
	return latest
}
