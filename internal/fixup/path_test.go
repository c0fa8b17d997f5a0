package fixup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specforge/specforge/internal/specerr"
)

func TestValidatePathRejectsAbsolutePath(t *testing.T) {
	_, err := ValidatePath(t.TempDir(), "/etc/passwd", false)
	if err == nil || specerr.AsExitCode(err) != specerr.ExitCode(specerr.KindPathViolation) {
		t.Fatalf("expected AbsolutePath violation, got %v", err)
	}
}

func TestValidatePathRejectsDriveLetter(t *testing.T) {
	for _, target := range []string{`C:\Windows\system32`, `c:/tmp/x`, `\\server\share`} {
		if _, err := ValidatePath(t.TempDir(), target, false); err == nil {
			t.Errorf("expected AbsolutePath violation for %q", target)
		}
	}
}

func TestValidatePathRejectsParentDirEscape(t *testing.T) {
	_, err := ValidatePath(t.TempDir(), "../etc/passwd", false)
	if err == nil || specerr.AsExitCode(err) != specerr.ExitCode(specerr.KindPathViolation) {
		t.Fatalf("expected ParentDirEscape violation, got %v", err)
	}
}

func TestValidatePathAcceptsOrdinaryRelativePath(t *testing.T) {
	root := t.TempDir()
	resolved, err := ValidatePath(root, "docs/notes.md", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(root, "docs", "notes.md")
	if resolved != want {
		t.Errorf("got %s, want %s", resolved, want)
	}
}

func TestValidatePathRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "passwd")
	if err := os.WriteFile(target, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.md")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported in this environment: %v", err)
	}

	_, err := ValidatePath(root, "link.md", false)
	if err == nil {
		t.Fatal("expected symlink to be rejected")
	}
}

func TestValidatePathAllowsSymlinkWhenAllowLinksAndInsideRoot(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real.md")
	if err := os.WriteFile(real, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.md")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unsupported in this environment: %v", err)
	}

	if _, err := ValidatePath(root, "link.md", true); err != nil {
		t.Errorf("expected in-root symlink to be accepted with allowLinks, got %v", err)
	}
}
