package fixup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/specforge/specforge/internal/specerr"
)

// ValidatePath enforces spec.md §4.9's path-validation rules for one
// fixup target, relative to repoRoot. allowLinks permits symlinks and
// hardlinks that still resolve inside the repo root.
func ValidatePath(repoRoot, target string, allowLinks bool) (string, error) {
	if filepath.IsAbs(target) || strings.HasPrefix(target, "\\") {
		return "", newPathError(specerr.KindPathViolation, "AbsolutePath", target)
	}
	// Reject drive-letter prefixes explicitly: on POSIX hosts
	// filepath.IsAbs does not treat "C:\..." as absolute.
	if len(target) >= 2 && target[1] == ':' &&
		(('a' <= target[0] && target[0] <= 'z') || ('A' <= target[0] && target[0] <= 'Z')) {
		return "", newPathError(specerr.KindPathViolation, "AbsolutePath", target)
	}

	abs := filepath.Join(repoRoot, target)
	cleanRoot, err := filepath.Abs(filepath.Clean(repoRoot))
	if err != nil {
		return "", err
	}
	cleanTarget, err := filepath.Abs(filepath.Clean(abs))
	if err != nil {
		return "", err
	}
	if !isInside(cleanRoot, cleanTarget) {
		return "", newPathError(specerr.KindPathViolation, "ParentDirEscape", target)
	}

	resolved, statErr := resolveSymlinks(cleanTarget)
	if statErr == nil && !isInside(cleanRoot, resolved) {
		return "", newPathError(specerr.KindPathViolation, "OutsideRepo", target)
	}

	if !allowLinks {
		if isSymlink(cleanTarget) {
			return "", newPathError(specerr.KindPathViolation, "SymlinkNotAllowed", target)
		}
		if n, err := hardLinkCount(cleanTarget); err == nil && n > 1 {
			return "", newPathError(specerr.KindPathViolation, "HardlinkNotAllowed", target)
		}
	}

	return cleanTarget, nil
}

func isInside(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// resolveSymlinks follows path's symlinks if it (or its parent) exists,
// tolerating a path that doesn't exist yet (a new file the fixup creates).
func resolveSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			parent, perr := filepath.EvalSymlinks(filepath.Dir(path))
			if perr != nil {
				return path, nil
			}
			return filepath.Join(parent, filepath.Base(path)), nil
		}
		return path, err
	}
	return resolved, nil
}

func newPathError(kind specerr.Kind, violation, target string) error {
	return specerr.New(kind, "fixup target path failed validation").
		WithContext("violation", violation).
		WithContext("path", target)
}
