package gate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specforge/specforge/internal/spec"
)

func writePolicyFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParsePolicyFileLongFieldNames(t *testing.T) {
	path := writePolicyFile(t, "[gate]\nmin_phase = tasks\nfail_on_pending_fixups = true\nmax_phase_age = 7d\n")
	p, err := ParsePolicyFile(path)
	if err != nil {
		t.Fatalf("ParsePolicyFile: %v", err)
	}
	if p.MinPhase != spec.Tasks {
		t.Errorf("expected min phase tasks, got %v", p.MinPhase)
	}
	if !p.FailOnPendingFixups {
		t.Error("expected fail_on_pending_fixups true")
	}
	if p.MaxPhaseAge == nil || *p.MaxPhaseAge != 7*24*time.Hour {
		t.Errorf("expected 7d max phase age, got %v", p.MaxPhaseAge)
	}
}

func TestParsePolicyFileShortFieldAliases(t *testing.T) {
	path := writePolicyFile(t, "[gate]\nrequire_phase = review\nallow_fixups = false\nmax_age_days = 3\n")
	p, err := ParsePolicyFile(path)
	if err != nil {
		t.Fatalf("ParsePolicyFile: %v", err)
	}
	if p.MinPhase != spec.Review {
		t.Errorf("expected min phase review, got %v", p.MinPhase)
	}
	if !p.FailOnPendingFixups {
		t.Error("allow_fixups=false should translate to FailOnPendingFixups=true")
	}
	if p.MaxPhaseAge == nil || *p.MaxPhaseAge != 3*24*time.Hour {
		t.Errorf("expected 3d max phase age, got %v", p.MaxPhaseAge)
	}
}

func TestParsePolicyFileIgnoresOtherSections(t *testing.T) {
	path := writePolicyFile(t, "[other]\nmin_phase = final\n\n[gate]\nmin_phase = design\n")
	p, err := ParsePolicyFile(path)
	if err != nil {
		t.Fatalf("ParsePolicyFile: %v", err)
	}
	if p.MinPhase != spec.Design {
		t.Errorf("expected design from [gate] section, got %v", p.MinPhase)
	}
}

func TestParsePolicyFileMissingFileReturnsDefaults(t *testing.T) {
	p, err := ParsePolicyFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if p.MinPhase != spec.Requirements || p.FailOnPendingFixups {
		t.Errorf("expected DefaultPolicy, got %+v", p)
	}
}

func TestResolvePolicyPathExplicitOverrideWins(t *testing.T) {
	path := writePolicyFile(t, "[gate]\nmin_phase = tasks\n")
	resolved, err := ResolvePolicyPath(path, "/never/used.toml")
	if err != nil {
		t.Fatalf("ResolvePolicyPath: %v", err)
	}
	if resolved != path {
		t.Errorf("expected explicit path %q, got %q", path, resolved)
	}
}

func TestResolvePolicyPathExplicitMissingIsError(t *testing.T) {
	_, err := ResolvePolicyPath(filepath.Join(t.TempDir(), "missing.toml"), "/never/used.toml")
	if err == nil {
		t.Fatal("expected an error for a missing explicit policy path")
	}
}

func TestResolvePolicyPathDiscoversRepoLocalFile(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".specforge"), 0o755); err != nil {
		t.Fatal(err)
	}
	policyPath := filepath.Join(root, ".specforge", "policy.toml")
	if err := os.WriteFile(policyPath, []byte("[gate]\nmin_phase = tasks\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	restore := chdir(t, nested)
	defer restore()

	resolved, err := ResolvePolicyPath("", filepath.Join(t.TempDir(), "spec-default.toml"))
	if err != nil {
		t.Fatalf("ResolvePolicyPath: %v", err)
	}
	if resolved != policyPath {
		t.Errorf("expected discovered repo-local policy %q, got %q", policyPath, resolved)
	}
}

func TestResolvePolicyPathStopsAtVCSRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	restore := chdir(t, nested)
	defer restore()

	specDefault := filepath.Join(t.TempDir(), "spec-default.toml")
	resolved, err := ResolvePolicyPath("", specDefault)
	if err != nil {
		t.Fatalf("ResolvePolicyPath: %v", err)
	}
	if resolved != specDefault {
		t.Errorf("expected fallback to spec default %q, got %q", specDefault, resolved)
	}
}

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	return func() { os.Chdir(prev) }
}
