package artifact

import (
	"testing"

	"github.com/specforge/specforge/internal/spec"
)

func TestWriteCanonicalizesAndStampsHash(t *testing.T) {
	m := New(t.TempDir())
	a := spec.Artifact{Name: "00-requirements", Content: []byte("# Title  \r\n\r\nBody\r\n"), Type: spec.Markdown}

	written, err := m.Write(a, "requirements")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written.BLAKE3Hash == "" {
		t.Fatal("expected a non-empty hash")
	}
	if string(written.Content) != "# Title\n\nBody\n" {
		t.Errorf("expected canonicalized content, got %q", written.Content)
	}
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	m := New(t.TempDir())
	a := spec.Artifact{Name: "10-design", Content: []byte("# Design\n\nDetails.\n"), Type: spec.Markdown}

	written, err := m.Write(a, "design")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := m.Read(written.Filename())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got.Content) != string(written.Content) {
		t.Errorf("round trip mismatch: %q vs %q", got.Content, written.Content)
	}
}

func TestListForPhaseFiltersByPrefix(t *testing.T) {
	m := New(t.TempDir())
	if _, err := m.Write(spec.Artifact{Name: "00-requirements", Content: []byte("# R\n"), Type: spec.Markdown}, "requirements"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Write(spec.Artifact{Name: "10-design", Content: []byte("# D\n"), Type: spec.Markdown}, "design"); err != nil {
		t.Fatal(err)
	}

	names, err := m.ListForPhase(spec.Requirements)
	if err != nil {
		t.Fatalf("ListForPhase: %v", err)
	}
	if len(names) != 1 || names[0] != "00-requirements.md" {
		t.Errorf("expected only the requirements artifact, got %v", names)
	}
}

func TestExistsReflectsPersistedArtifacts(t *testing.T) {
	m := New(t.TempDir())
	ok, err := m.Exists(spec.Requirements)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("expected no artifact before any write")
	}

	if _, err := m.Write(spec.Artifact{Name: "00-requirements", Content: []byte("# R\n"), Type: spec.Markdown}, "requirements"); err != nil {
		t.Fatal(err)
	}
	ok, err = m.Exists(spec.Requirements)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("expected artifact to exist after write")
	}
}
