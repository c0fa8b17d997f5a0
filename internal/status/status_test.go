package status

import (
	"testing"

	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/receipt"
	"github.com/specforge/specforge/internal/spec"
)

func newManagers(t *testing.T) (*receipt.Manager, *artifact.Manager) {
	t.Helper()
	root := t.TempDir()
	return receipt.New(root + "/receipts"), artifact.New(root + "/artifacts")
}

func TestBuildReportsNoArtifactsInitially(t *testing.T) {
	receipts, artifacts := newManagers(t)
	doc, err := Build("spec-1", receipts, artifacts, false, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.PendingFixups != "none" {
		t.Errorf("expected no pending fixups, got %q", doc.PendingFixups)
	}
	for _, ps := range doc.PhaseStatuses {
		if ps.HasArtifact {
			t.Errorf("phase %s unexpectedly has an artifact", ps.Phase)
		}
	}
}

func TestBuildReflectsPersistedArtifact(t *testing.T) {
	receipts, artifacts := newManagers(t)
	if _, err := artifacts.Write(spec.Artifact{Name: "00-requirements", Content: []byte("# Requirements\n"), Type: spec.Markdown}, "requirements"); err != nil {
		t.Fatal(err)
	}

	doc, err := Build("spec-1", receipts, artifacts, true, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !doc.StrictValidation {
		t.Error("expected strict validation flag to be carried through")
	}
	if len(doc.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact summary, got %d", len(doc.Artifacts))
	}
	if len(doc.Artifacts[0].BLAKE3First8) != 8 {
		t.Errorf("expected 8-char truncated hash, got %q", doc.Artifacts[0].BLAKE3First8)
	}
	if !doc.PhaseStatuses[0].HasArtifact {
		t.Error("expected requirements phase status to report an artifact")
	}
}

func TestBuildResumeStartsAtRequirementsWhenEmpty(t *testing.T) {
	_, artifacts := newManagers(t)
	doc, err := BuildResume("spec-1", artifacts, true)
	if err != nil {
		t.Fatalf("BuildResume: %v", err)
	}
	if doc.Phase != "requirements" {
		t.Errorf("expected requirements, got %q", doc.Phase)
	}
	if doc.CurrentInputs.LatestCompletedPhase != nil {
		t.Errorf("expected no completed phase, got %v", *doc.CurrentInputs.LatestCompletedPhase)
	}
}

func TestBuildResumeAdvancesPastCompletedPhases(t *testing.T) {
	_, artifacts := newManagers(t)
	if _, err := artifacts.Write(spec.Artifact{Name: "00-requirements", Content: []byte("# R\n"), Type: spec.Markdown}, "requirements"); err != nil {
		t.Fatal(err)
	}
	if _, err := artifacts.Write(spec.Artifact{Name: "10-design", Content: []byte("# D\n"), Type: spec.Markdown}, "design"); err != nil {
		t.Fatal(err)
	}

	doc, err := BuildResume("spec-1", artifacts, true)
	if err != nil {
		t.Fatalf("BuildResume: %v", err)
	}
	if doc.Phase != "tasks" {
		t.Errorf("expected to resume at tasks, got %q", doc.Phase)
	}
	if doc.CurrentInputs.LatestCompletedPhase == nil || *doc.CurrentInputs.LatestCompletedPhase != "design" {
		t.Errorf("expected latest completed phase design, got %v", doc.CurrentInputs.LatestCompletedPhase)
	}
}
