//go:build !windows

package fixup

import (
	"os"
	"syscall"
)

// hardLinkCount returns the filesystem link count for path. A file that
// doesn't exist yet has an implicit count of 1 (not a hardlink target).
func hardLinkCount(path string) (int, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 1, nil
	}
	return int(stat.Nlink), nil
}
