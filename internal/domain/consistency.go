package domain

import (
	m "refdiff.dev/pkg/refdiff/internal/model"
)

type renameKey struct {
	before, after string
}

func keyOf(r m.InvocationRename) renameKey {
	return renameKey{before: r.Before, after: r.After}
}

// RenameTracker accumulates call renames seen in accepted alignments and keeps
// the subset that never conflicts. Renames are processed in discovery order:
// a rename conflicting with an admitted one is rejected and the admitted one
// is revoked as well.
type RenameTracker struct {
	admitted     []m.InvocationRename
	inconsistent map[renameKey]struct{}
}

// NewRenameTracker returns an empty tracker.
func NewRenameTracker() *RenameTracker {
	return &RenameTracker{inconsistent: make(map[renameKey]struct{})}
}

// Observe records the call renames of an alignment.
func (t *RenameTracker) Observe(a *m.Alignment) {
	for _, r := range a.InvocationRenames() {
		t.Add(r)
	}
}

// ObserveAll records the call renames of every alignment in order.
func (t *RenameTracker) ObserveAll(alignments []*m.Alignment) {
	for _, a := range alignments {
		t.Observe(a)
	}
}

// Add records one rename.
func (t *RenameTracker) Add(r m.InvocationRename) {
	key := keyOf(r)

	var conflicts []renameKey

	for _, existing := range t.admitted {
		k := keyOf(existing)
		if k == key {
			return
		}

		if r.Conflicts(existing) {
			conflicts = append(conflicts, k)
		}
	}

	if len(conflicts) == 0 {
		t.admitted = append(t.admitted, r)
		return
	}

	t.inconsistent[key] = struct{}{}
	for _, k := range conflicts {
		t.inconsistent[k] = struct{}{}
	}
}

// Consistent returns admitted renames never marked inconsistent, in discovery
// order.
func (t *RenameTracker) Consistent() []m.InvocationRename {
	out := make([]m.InvocationRename, 0, len(t.admitted))

	for _, r := range t.admitted {
		if _, bad := t.inconsistent[keyOf(r)]; !bad {
			out = append(out, r)
		}
	}

	return out
}

// ConsistentRenames runs the tracker over renames and returns its result.
func ConsistentRenames(renames []m.InvocationRename) []m.InvocationRename {
	t := NewRenameTracker()
	for _, r := range renames {
		t.Add(r)
	}

	return t.Consistent()
}
