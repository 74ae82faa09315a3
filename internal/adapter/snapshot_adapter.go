package adapter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// snapshotSuffixes name the files holding pre-parsed class snapshots.
var snapshotSuffixes = []string{".snapshot.yaml", ".snapshot.yml", ".snapshot.json"}

// SnapshotAdapter reads classes from serialized snapshots, letting languages
// without a native adapter be compared after an external extraction step.
// JSON snapshots are decoded by the YAML decoder.
type SnapshotAdapter struct{}

// NewSnapshotAdapter constructs a SnapshotAdapter.
func NewSnapshotAdapter() *SnapshotAdapter {
	return &SnapshotAdapter{}
}

// Language implements ClassSource.
func (a *SnapshotAdapter) Language() m.Language {
	return m.LanguageSnapshot
}

// Supports implements ClassSource.
func (a *SnapshotAdapter) Supports(path m.Path) bool {
	lower := strings.ToLower(string(path))
	for _, suffix := range snapshotSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}

// Classes implements ClassSource. Classes without a file are attributed to
// path.
func (a *SnapshotAdapter) Classes(path m.Path, src []byte) ([]*m.Class, error) {
	var snapshot m.Snapshot
	if err := yaml.Unmarshal(src, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	for _, c := range snapshot.Classes {
		if c.File == "" {
			c.File = path
		}

		c.Reindex()
	}

	return snapshot.Classes, nil
}

// EncodeSnapshot serializes a snapshot in the format SnapshotAdapter reads.
func EncodeSnapshot(snapshot *m.Snapshot) ([]byte, error) {
	out, err := yaml.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	return out, nil
}
