package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specforge/specforge/internal/spec"
)

type fakeTree struct {
	artifacts map[spec.PhaseID]bool
	review    []byte
	hasReview bool
}

func (f fakeTree) HasArtifact(phase spec.PhaseID) bool { return f.artifacts[phase] }
func (f fakeTree) ReviewMarkdown() ([]byte, bool)      { return f.review, f.hasReview }

func receiptAt(phase spec.PhaseID, exitCode int, age time.Duration, now time.Time) spec.Receipt {
	return spec.Receipt{
		Phase:     phase.String(),
		ExitCode:  exitCode,
		EmittedAt: now.Add(-age),
	}
}

func TestMinPhaseFailsWithoutReceiptOrArtifact(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	result := Evaluate(nil, fakeTree{}, Policy{MinPhase: spec.Tasks}, "spec-1", now)
	require.False(t, result.Passed, "expected gate to fail with no receipts or artifacts")
}

func TestMinPhasePassesWithArtifactMarkerAlone(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	tree := fakeTree{artifacts: map[spec.PhaseID]bool{spec.Tasks: true}}
	result := Evaluate(nil, tree, Policy{MinPhase: spec.Tasks}, "spec-1", now)
	require.True(t, result.Passed, "expected pass, got %+v", result.FailureReasons)
}

func TestMaxPhaseAgeFailedReceiptsDoNotRefreshAge(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	receipts := []spec.Receipt{
		receiptAt(spec.Tasks, 0, 10*24*time.Hour, now),
		receiptAt(spec.Tasks, 1, 1*24*time.Hour, now),
	}
	maxAge := 7 * 24 * time.Hour
	policy := Policy{MinPhase: spec.Tasks, MaxPhaseAge: &maxAge}
	result := Evaluate(receipts, fakeTree{}, policy, "spec-1", now)
	assert.False(t, result.Passed, "expected failure: the only successful receipt is 10 days old")
}

func TestMaxPhaseAgePassesWithRecentSuccessfulReceipt(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	receipts := []spec.Receipt{
		receiptAt(spec.Tasks, 0, 2*24*time.Hour, now),
	}
	maxAge := 7 * 24 * time.Hour
	policy := Policy{MinPhase: spec.Tasks, MaxPhaseAge: &maxAge}
	result := Evaluate(receipts, fakeTree{}, policy, "spec-1", now)
	require.True(t, result.Passed, "expected pass, got %+v", result.FailureReasons)
}

func TestPendingFixupsFailsWhenPolicyRejectsThem(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	review := "# Review\n\nFIXUP PLAN:\n\n```diff\n--- a/x.md\n+++ b/x.md\n@@ -1,1 +1,1 @@\n-a\n+b\n```\n"
	tree := fakeTree{
		artifacts: map[spec.PhaseID]bool{spec.Tasks: true},
		review:    []byte(review),
		hasReview: true,
	}
	policy := Policy{MinPhase: spec.Tasks, FailOnPendingFixups: true}
	result := Evaluate(nil, tree, policy, "spec-1", now)
	require.False(t, result.Passed, "expected failure due to pending fixups")
	assert.Contains(t, result.FailureReasons, "pending fixups block the gate")
}

func TestPendingFixupsDoNotBlockWhenPolicyAllowsThem(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	review := "# Review\n\nFIXUP PLAN:\n\n```diff\n--- a/x.md\n+++ b/x.md\n@@ -1,1 +1,1 @@\n-a\n+b\n```\n"
	tree := fakeTree{
		artifacts: map[spec.PhaseID]bool{spec.Tasks: true},
		review:    []byte(review),
		hasReview: true,
	}
	policy := Policy{MinPhase: spec.Tasks, FailOnPendingFixups: false}
	result := Evaluate(nil, tree, policy, "spec-1", now)
	require.True(t, result.Passed, "expected pass, got %+v", result.FailureReasons)
}

func TestCleanReviewHasNoPendingFixups(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	tree := fakeTree{
		artifacts: map[spec.PhaseID]bool{spec.Tasks: true},
		review:    []byte("# Review\n\nEverything looks fine.\n"),
		hasReview: true,
	}
	policy := Policy{MinPhase: spec.Tasks, FailOnPendingFixups: true}
	result := Evaluate(nil, tree, policy, "spec-1", now)
	require.True(t, result.Passed, "expected pass, got %+v", result.FailureReasons)
}
