//go:build windows

package fixup

// hardLinkCount is not implemented on Windows via os.Lstat's portable
// FileInfo; NTFS hardlink counts require a separate
// GetFileInformationByHandle call this package does not make, so
// Windows conservatively reports every file as unlinked (count 1) and
// relies on the symlink check for the common attack case.
func hardLinkCount(path string) (int, error) {
	return 1, nil
}
