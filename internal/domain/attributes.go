package domain

import (
	"slices"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// DiffAttributes compares attribute lists. Attributes equal in name and type
// are unchanged; a removed and an added attribute sharing a name become an
// AttributeDiff; the rest are reported as removed or added.
func DiffAttributes(before, after []m.Attribute) ([]m.AttributeDiff, []m.Attribute, []m.Attribute) {
	same := func(a, b m.Attribute) bool {
		return a.Name == b.Name && a.Type == b.Type
	}

	var removed, added []m.Attribute

	for _, a := range before {
		if !slices.ContainsFunc(after, func(b m.Attribute) bool { return same(a, b) }) {
			removed = append(removed, a)
		}
	}

	for _, b := range after {
		if !slices.ContainsFunc(before, func(a m.Attribute) bool { return same(a, b) }) {
			added = append(added, b)
		}
	}

	var diffs []m.AttributeDiff

	paired := make([]bool, len(added))
	residual := removed[:0:0]

	for _, r := range removed {
		matched := false

		for i, a := range added {
			if !paired[i] && r.Name == a.Name {
				diffs = append(diffs, m.AttributeDiff{Before: r, After: a})
				paired[i] = true
				matched = true

				break
			}
		}

		if !matched {
			residual = append(residual, r)
		}
	}

	var residualAdded []m.Attribute

	for i, a := range added {
		if !paired[i] {
			residualAdded = append(residualAdded, a)
		}
	}

	return diffs, residual, residualAdded
}
