package lockfile

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsNilNotError(t *testing.T) {
	lf, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lf != nil {
		t.Fatalf("expected nil lockfile, got %+v", lf)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), Filename)
	want := Lockfile{ModelFullName: "claude-x", ClaudeCLIVersion: "1.2.3", SchemaVersion: "receipt-v1"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}
}

func TestDetectNoDriftWhenAllFieldsMatch(t *testing.T) {
	locked := &Lockfile{ModelFullName: "m", ClaudeCLIVersion: "v", SchemaVersion: "s"}
	cur := Current{ModelFullName: "m", ClaudeCLIVersion: "v", SchemaVersion: "s"}
	if drift := Detect(locked, cur); drift != nil {
		t.Errorf("expected no drift, got %+v", drift)
	}
}

func TestDetectReportsEachDifferingField(t *testing.T) {
	locked := &Lockfile{ModelFullName: "m1", ClaudeCLIVersion: "v1", SchemaVersion: "s"}
	cur := Current{ModelFullName: "m2", ClaudeCLIVersion: "v2", SchemaVersion: "s"}
	drift := Detect(locked, cur)
	if drift == nil || len(drift.Fields) != 2 {
		t.Fatalf("expected drift on 2 fields, got %+v", drift)
	}
}

func TestDetectWithNilLockedIsNoDrift(t *testing.T) {
	if drift := Detect(nil, Current{ModelFullName: "anything"}); drift != nil {
		t.Errorf("expected nil drift when no lockfile exists, got %+v", drift)
	}
}
