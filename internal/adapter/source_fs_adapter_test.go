package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"lukechampine.com/blake3"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "main.go"), "package main\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "child.go"), "package nested\n")

		var visited []string
		err := adapter.Walk(m.Path(root), false, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		for _, forbidden := range []string{nestedDir, filepath.Join(nestedDir, "child.go")} {
			if containsPath(visited, forbidden) {
				t.Fatalf("Walk() unexpectedly visited %s when recursive is false", forbidden)
			}
		}

		if !containsPath(visited, filepath.Join(root, "main.go")) {
			t.Fatalf("Walk() did not visit top-level file")
		}
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "main.go"), "package main\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "child.go")
		writeTestFile(t, child, "package nested\n")

		var visited []string
		err := adapter.Walk(m.Path(root), true, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file when recursive")
		}
	})
}

func TestLocalSourceFSAdapter_ReadFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	content := "package main\n" + "func main() {}\n"
	writeTestFile(t, path, content)

	got, err := adapter.ReadFile(m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}
}

func TestHashBytes(t *testing.T) {
	content := []byte("package main\nfunc main() {}\n")

	if got, want := HashBytes(content), fmt.Sprintf("%x", blake3.Sum256(content)); got != want {
		t.Fatalf("HashBytes() = %s, want %s", got, want)
	}

	if HashBytes(content) == HashBytes([]byte("package main\n")) {
		t.Fatal("HashBytes() returned the same hash for different content")
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	writeTestFile(t, path, "package main\n")

	info, err := adapter.FileInfo(m.Path(path))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if info.IsDir() {
		t.Fatalf("FileInfo() reported file as directory")
	}

	dirInfo, err := adapter.FileInfo(m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !dirInfo.IsDir() {
		t.Fatalf("FileInfo() reported directory as file")
	}
}

func TestLocalSourceFSAdapter_WriteFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "reports", "nested", "report.yaml")

	if err := adapter.WriteFile(m.Path(path), []byte("classes: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("WriteFile() did not create file: %v", err)
	}

	if string(got) != "classes: []\n" {
		t.Fatalf("WriteFile() wrote %q", string(got))
	}
}

func TestMatchesAny(t *testing.T) {
	patterns := []string{"vendor", "**/*_gen.go", "testdata/**"}

	tests := []struct {
		path string
		want bool
	}{
		{path: "vendor/x/y.go", want: true},
		{path: "pkg/model/types_gen.go", want: true},
		{path: "testdata/a/b.java", want: true},
		{path: "pkg/model/types.go", want: false},
		{path: "src/vendored.go", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := MatchesAny(patterns, tt.path); got != tt.want {
				t.Fatalf("MatchesAny(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestTreeFingerprint(t *testing.T) {
	a := []m.File{{Path: "a.go", Hash: "1"}, {Path: "b.go", Hash: "2"}}
	b := []m.File{{Path: "b.go", Hash: "2"}, {Path: "a.go", Hash: "1"}}
	c := []m.File{{Path: "a.go", Hash: "1"}, {Path: "b.go", Hash: "3"}}

	if TreeFingerprint(a) != TreeFingerprint(b) {
		t.Fatalf("TreeFingerprint() depends on file order")
	}

	if TreeFingerprint(a) == TreeFingerprint(c) {
		t.Fatalf("TreeFingerprint() ignored a content change")
	}
}

func TestLocalSourceFSAdapter_PathHelpers(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	base := m.Path("/tmp/project")
	target := m.Path("/tmp/project/sub/dir/file.go")

	rel, err := adapter.RelPath(base, target)
	if err != nil {
		t.Fatalf("RelPath() error = %v", err)
	}

	if string(rel) != filepath.Join("sub", "dir", "file.go") {
		t.Fatalf("RelPath() = %s, want %s", rel, filepath.Join("sub", "dir", "file.go"))
	}

	joined := adapter.JoinPath("/tmp", "project", "sub", "file.go")
	if string(joined) != filepath.Join("/tmp", "project", "sub", "file.go") {
		t.Fatalf("JoinPath() = %s, want %s", joined, filepath.Join("/tmp", "project", "sub", "file.go"))
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()
	writeTestBytes(t, path, []byte(contents))
}

func writeTestBytes(t *testing.T, path string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
