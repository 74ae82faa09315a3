package domain

import (
	"slices"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// OperationBag is an ordered set of operations. Removal keeps the relative
// order of the remaining operations.
type OperationBag struct {
	ops []*m.Operation
}

// NewOperationBag copies ops into a new bag.
func NewOperationBag(ops []*m.Operation) *OperationBag {
	return &OperationBag{ops: slices.Clone(ops)}
}

// Len returns the number of operations left.
func (b *OperationBag) Len() int {
	return len(b.ops)
}

// Items returns a snapshot of the bag in insertion order.
func (b *OperationBag) Items() []*m.Operation {
	return slices.Clone(b.ops)
}

// Contains reports whether op is still in the bag.
func (b *OperationBag) Contains(op *m.Operation) bool {
	return slices.Contains(b.ops, op)
}

// Remove drops op and reports whether it was present.
func (b *OperationBag) Remove(op *m.Operation) bool {
	i := slices.Index(b.ops, op)
	if i < 0 {
		return false
	}

	b.ops = slices.Delete(b.ops, i, i+1)

	return true
}

// RemoveAll drops every operation in ops.
func (b *OperationBag) RemoveAll(ops []*m.Operation) {
	b.ops = slices.DeleteFunc(b.ops, func(op *m.Operation) bool {
		return slices.Contains(ops, op)
	})
}

// ClassDiffState is the working set of one class comparison. It is owned by a
// single goroutine for its whole lifetime.
type ClassDiffState struct {
	Before *m.Class
	After  *m.Class

	Removed *OperationBag
	Added   *OperationBag

	// Append-only.
	Alignments   []*m.Alignment
	Refactorings []m.Refactoring

	Renames *RenameTracker
}

// NewClassDiffState builds a state for removed and added operations of the
// given class pair. Existing alignments of operations kept unchanged seed the
// rename tracker.
func NewClassDiffState(before, after *m.Class, removed, added []*m.Operation, existing []*m.Alignment) *ClassDiffState {
	s := &ClassDiffState{
		Before:  before,
		After:   after,
		Removed: NewOperationBag(removed),
		Added:   NewOperationBag(added),
		Renames: NewRenameTracker(),
	}

	for _, a := range existing {
		s.Accept(a)
	}

	return s
}

// Accept appends an alignment and feeds its call renames to the tracker.
func (s *ClassDiffState) Accept(a *m.Alignment) {
	s.Alignments = append(s.Alignments, a)
	s.Renames.Observe(a)
}

// Record appends a refactoring.
func (s *ClassDiffState) Record(r ...m.Refactoring) {
	s.Refactorings = append(s.Refactorings, r...)
}

// Context takes the read-only view used to evaluate candidates.
func (s *ClassDiffState) Context() *MatchContext {
	ctx := &MatchContext{
		Removed: s.Removed.Items(),
		Added:   s.Added.Items(),
		Renames: s.Renames.Consistent(),
	}

	if s.Before != nil {
		ctx.BeforeOperations = s.Before.Operations
	}

	if s.After != nil {
		ctx.AfterOperations = s.After.Operations
	}

	return ctx
}

// MatchContext is a snapshot of a class comparison taken before each outer
// operation is matched.
type MatchContext struct {
	// Residual operations at the time of the snapshot.
	Removed []*m.Operation
	Added   []*m.Operation

	// Every operation of both class versions, by position.
	BeforeOperations []*m.Operation
	AfterOperations  []*m.Operation

	// Consistent call renames.
	Renames []m.InvocationRename
}

// RenameMatches reports whether before -> after is a consistent call rename.
// When the rename carries its call sites, each call must also be accepted by
// the operation's parameter list.
func (c *MatchContext) RenameMatches(before, after *m.Operation) bool {
	for _, r := range c.Renames {
		if renameSide(r.Before, r.BeforeCall, before) && renameSide(r.After, r.AfterCall, after) {
			return true
		}
	}

	return false
}

func renameSide(name string, call *m.Invocation, op *m.Operation) bool {
	if name != op.Name {
		return false
	}

	return call == nil || call.AcceptedBy(op)
}

// RenameMismatches reports whether the pair keeps one side of a consistent
// call rename but not the other.
func (c *MatchContext) RenameMismatches(before, after *m.Operation) bool {
	for _, r := range c.Renames {
		if (r.Before == before.Name) != (r.After == after.Name) {
			return true
		}
	}

	return false
}
