// Package adapter contains the parsing, storage, version-control and body
// alignment adapters used by refdiff.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"lukechampine.com/blake3"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning source trees. It hides direct `os` access so the
// workflow logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Walk traverses the provided root path. When recursive is false the
	// implementation limits itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// FileInfo returns metadata for a path so the domain can check existence or
	// distinguish between files and directories.
	FileInfo(path m.Path) (os.FileInfo, error)

	// WriteFile writes content to a file with the given permissions, creating
	// parent directories.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(filepath.ToSlash(rel)), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

// MatchesAny reports whether the slash-separated relative path matches one of
// the doublestar patterns. A pattern naming a directory also matches
// everything below it.
func MatchesAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}

		if !strings.HasSuffix(pattern, "/**") {
			if matched, _ := doublestar.Match(pattern+"/**", rel); matched {
				return true
			}
		}
	}

	return false
}

// HashBytes returns the hex BLAKE3-256 hash of content.
func HashBytes(content []byte) string {
	return fmt.Sprintf("%x", blake3.Sum256(content))
}

// TreeFingerprint hashes the paths and content hashes of files in path order.
func TreeFingerprint(files []m.File) string {
	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(a, b m.File) int {
		return strings.Compare(string(a.Path), string(b.Path))
	})

	h := blake3.New(32, nil)

	for _, f := range sorted {
		_, _ = h.Write([]byte(f.Path))
		_, _ = h.Write([]byte("\n"))
		_, _ = h.Write([]byte(f.Hash))
		_, _ = h.Write([]byte("\n"))
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
