// Package filex contains small filesystem helpers: cache directory setup and
// materialization of local image references into uploadable temporary files.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureDir creates dir (and parents) if missing and returns its path.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// LocalPath translates an image reference into a readable filesystem path.
// Plain paths are returned as-is, file:// URIs are stripped. Any other scheme
// (https, content) has no local file behind it and returns false.
func LocalPath(ref string) (string, bool) {
	switch {
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), true
	case strings.Contains(ref, "://"):
		return "", false
	case ref == "":
		return "", false
	default:
		return ref, true
	}
}

// MaterializeToDir copies the file behind ref into dir under a fresh unique
// name, preserving the extension, and returns the new path. The caller owns
// the copy and is responsible for removing it.
func MaterializeToDir(ref string, dir string) (string, error) {
	src, ok := LocalPath(ref)
	if !ok {
		return "", fmt.Errorf("not a local reference: %s", ref)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	dst := filepath.Join(dir, uuid.NewString()+filepath.Ext(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return dst, nil
}

// RemoveAll deletes every listed file, ignoring individual failures so one
// stuck file does not leave the rest behind.
func RemoveAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
