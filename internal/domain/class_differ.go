package domain

import (
	"log/slog"

	"refdiff.dev/pkg/refdiff/internal/adapter"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

// ClassDiffer compares two snapshots of one class.
type ClassDiffer interface {
	// Diff compares before and after. Either side may be nil for a class that
	// was added or removed.
	Diff(before, after *m.Class) *m.ClassDiff
}

type classDiffer struct {
	aligner  adapter.BodyAligner
	engine   *OperationMatchEngine
	detector *ExtractInlineDetector
}

// NewClassDiffer wires the matching pipeline around aligner.
func NewClassDiffer(aligner adapter.BodyAligner, config Config) ClassDiffer {
	return &classDiffer{
		aligner:  aligner,
		engine:   NewOperationMatchEngine(NewCandidateMatcher(aligner, config), NewBestCandidateSelector()),
		detector: NewExtractInlineDetector(aligner),
	}
}

func (d *classDiffer) Diff(before, after *m.Class) *m.ClassDiff {
	if before == nil {
		before = &m.Class{Name: after.Name, File: after.File}
	}

	if after == nil {
		after = &m.Class{Name: before.Name, File: before.File}
	}

	removed, added, kept := partitionOperations(before.Operations, after.Operations)

	existing := make([]*m.Alignment, 0, len(kept))
	for _, pair := range kept {
		existing = append(existing, d.aligner.Align(pair[0], pair[1]))
	}

	state := NewClassDiffState(before, after, removed, added, existing)

	if state.Removed.Len() > 0 && state.Added.Len() > 0 {
		d.engine.Run(state)
	}

	d.detector.DetectInlined(state)
	d.detector.DetectExtracted(state)

	diff := &m.ClassDiff{
		ClassName:         after.Name,
		File:              after.File,
		Refactorings:      state.Refactorings,
		Alignments:        state.Alignments,
		RemovedOperations: state.Removed.Items(),
		AddedOperations:   state.Added.Items(),
	}

	diff.AttributeDiffs, diff.RemovedAttributes, diff.AddedAttributes = DiffAttributes(before.Attributes, after.Attributes)

	slog.Debug("class compared", "class", diff.ClassName, "refactorings", len(diff.Refactorings),
		"removed", len(diff.RemovedOperations), "added", len(diff.AddedOperations))

	return diff
}

// partitionOperations splits operations by structural key into removed,
// added and kept pairs, preserving declaration order.
func partitionOperations(before, after []*m.Operation) ([]*m.Operation, []*m.Operation, [][2]*m.Operation) {
	byKey := make(map[string][]*m.Operation, len(after))
	for _, op := range after {
		byKey[op.Key()] = append(byKey[op.Key()], op)
	}

	var (
		removed []*m.Operation
		kept    [][2]*m.Operation
	)

	matched := make(map[*m.Operation]bool, len(after))

	for _, op := range before {
		candidates := byKey[op.Key()]
		if len(candidates) == 0 {
			removed = append(removed, op)
			continue
		}

		kept = append(kept, [2]*m.Operation{op, candidates[0]})
		matched[candidates[0]] = true
		byKey[op.Key()] = candidates[1:]
	}

	var added []*m.Operation

	for _, op := range after {
		if !matched[op] {
			added = append(added, op)
		}
	}

	return removed, added, kept
}
