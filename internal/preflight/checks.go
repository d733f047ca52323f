package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritableAncestor verifies that path, or the closest ancestor that
// exists, is a writable directory.
func CheckWritableAncestor(name, path string) Result {
	existing, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	result := CheckDirectoryAccess(name, existing)
	if existing != path && result.Passed {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", path, existing)
	}
	return result
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	existing, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(existing, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", existing, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free (minimum %s)", humanize.IBytes(available), humanize.IBytes(minBytes))
	if available < minBytes {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSameFilesystem reports whether archiving from src to dst is a rename
// or a verified copy. Both are valid, so the check always passes.
func CheckSameFilesystem(name, src, dst string) Result {
	srcDir, err := nearestExisting(src)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: "unknown"}
	}
	dstDir, err := nearestExisting(dst)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: "unknown"}
	}
	var a, b unix.Stat_t
	if unix.Stat(srcDir, &a) != nil || unix.Stat(dstDir, &b) != nil {
		return Result{Name: name, Passed: true, Detail: "unknown"}
	}
	if a.Dev == b.Dev {
		return Result{Name: name, Passed: true, Detail: "rename (same filesystem)"}
	}
	return Result{Name: name, Passed: true, Detail: "verified copy (different filesystems)"}
}

func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		_, err := os.Stat(current)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		current = parent
	}
}
