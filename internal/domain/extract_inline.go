package domain

import (
	"log/slog"
	"strings"

	"refdiff.dev/pkg/refdiff/internal/adapter"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

// ExtractInlineDetector looks inside accepted alignments for residual
// operations that were inlined into, or extracted from, a matched operation.
type ExtractInlineDetector struct {
	aligner adapter.BodyAligner
}

// NewExtractInlineDetector constructs an ExtractInlineDetector.
func NewExtractInlineDetector(aligner adapter.BodyAligner) *ExtractInlineDetector {
	return &ExtractInlineDetector{aligner: aligner}
}

// DetectInlined records an Inline refactoring for every residual removed
// operation whose body reappears at a former call site, then drops those
// operations from the removed bag.
func (d *ExtractInlineDetector) DetectInlined(state *ClassDiffState) {
	var inlined []*m.Operation

	for _, removed := range state.Removed.Items() {
		for _, parent := range state.Alignments {
			r := d.inline(state, parent, removed)
			if r == nil {
				continue
			}

			state.Record(r)
			parent.AddSupplementary(r.Evidence)
			inlined = append(inlined, removed)

			slog.Debug("operation inlined", "inlined", removed.String(), "into", parent.After.String())
		}
	}

	state.Removed.RemoveAll(inlined)
}

func (d *ExtractInlineDetector) inline(state *ClassDiffState, parent *m.Alignment, removed *m.Operation) *m.InlineOperation {
	if len(parent.UnmappedLeavesAfter) == 0 && len(parent.UnmappedInnerAfter) == 0 &&
		len(parent.ReplacementsInvolvingInvocation()) == 0 {
		return nil
	}

	call := firstMatchingInvocation(parent.Before, removed)
	if call == nil || invocationStillResolves(state, parent, call) {
		return nil
	}

	secondary := d.aligner.AlignSeeded(removed, parent, adapter.Seed{
		Direction: adapter.SeedInline,
		Binding:   bindArguments(removed, call),
	})

	mappings := secondary.MappingsWithoutBlocks()
	if mappings == 0 || (mappings <= secondary.NonMappedBefore() && secondary.ExactMatches() == 0) {
		return nil
	}

	return &m.InlineOperation{
		Inlined:      removed,
		TargetBefore: parent.Before,
		TargetAfter:  parent.After,
		Invocation:   call,
		Evidence:     secondary,
	}
}

// invocationStillResolves reports whether the after operation keeps the same
// call and it now resolves to an added operation.
func invocationStillResolves(state *ClassDiffState, parent *m.Alignment, call *m.Invocation) bool {
	if !parent.After.ContainsInvocation(call) {
		return false
	}

	for _, added := range state.Added.Items() {
		if call.Matches(added) {
			return true
		}
	}

	return false
}

// DetectExtracted records an Extract refactoring for every residual added
// operation whose body came out of a matched operation, then drops those
// operations from the added bag.
func (d *ExtractInlineDetector) DetectExtracted(state *ClassDiffState) {
	added := state.Added.Items()

	var extracted []*m.Operation

	for _, op := range added {
		for _, parent := range state.Alignments {
			r := d.extract(parent, op, added)
			if r == nil {
				continue
			}

			state.Record(r)
			parent.AddSupplementary(r.Evidence)
			extracted = append(extracted, op)

			slog.Debug("operation extracted", "extracted", op.String(), "from", parent.Before.String())
		}
	}

	state.Added.RemoveAll(extracted)
}

func (d *ExtractInlineDetector) extract(parent *m.Alignment, op *m.Operation, added []*m.Operation) *m.ExtractOperation {
	if len(parent.UnmappedLeavesBefore) == 0 && len(parent.UnmappedInnerBefore) == 0 &&
		len(parent.ReplacementsInvolvingInvocation()) == 0 {
		return nil
	}

	call := firstMatchingInvocation(parent.After, op)
	if call == nil {
		return nil
	}

	if !forwardedTypesMatch(parent.Before, op, call) {
		return nil
	}

	delegate := findDelegate(parent.Before, op, call, added)

	target := op
	if delegate != nil {
		target = delegate
	}

	secondary := d.aligner.AlignSeeded(target, parent, adapter.Seed{
		Direction: adapter.SeedExtract,
		Binding:   bindArguments(op, call),
	})

	if !extractAccepted(secondary) {
		return nil
	}

	return &m.ExtractOperation{
		Extracted:    op,
		Delegate:     delegate,
		SourceBefore: parent.Before,
		SourceAfter:  parent.After,
		Invocation:   call,
		Evidence:     secondary,
	}
}

func extractAccepted(a *m.Alignment) bool {
	mappings := a.MappingsWithoutBlocks()

	if mappings > 0 && (mappings > a.NonMappedAfter() ||
		a.ExactMatches() > 0 ||
		(mappings == 1 && mappings > len(a.UnmappedLeavesAfter))) {
		return true
	}

	return guardedReturnExtracted(a)
}

// guardedReturnExtracted matches a conditional argument turned into an
// extracted method of the form `if cond { return x }; return y`.
func guardedReturnExtracted(a *m.Alignment) bool {
	if len(a.Mappings) != 1 || !a.Mappings[0].ContainsReplacement(m.ReplacementArgumentWithReturn) {
		return false
	}

	return len(a.UnmappedInnerAfter) == 1 && strings.HasPrefix(a.UnmappedInnerAfter[0].Text, "if") &&
		len(a.UnmappedLeavesAfter) == 1 && strings.HasPrefix(a.UnmappedLeavesAfter[0].Text, "return ")
}

// findDelegate returns the added operation that op merely forwards to, when
// the original operation was not itself a delegator and did not already make
// the same call.
func findDelegate(original, op *m.Operation, call *m.Invocation, added []*m.Operation) *m.Operation {
	forward := op.Delegate()
	if forward == nil || original.Delegate() != nil || original.ContainsInvocation(call) {
		return nil
	}

	for _, candidate := range added {
		if forward.Matches(candidate) {
			return candidate
		}
	}

	return nil
}

// forwardedTypesMatch checks that original parameters passed straight through
// the call fit the parameters of the called operation.
func forwardedTypesMatch(original, op *m.Operation, call *m.Invocation) bool {
	n := min(len(op.Parameters), len(call.Arguments))

	for i := range n {
		for _, p := range original.Parameters {
			if p.Name != call.Arguments[i] {
				continue
			}

			target := op.Parameters[i].Type
			if p.Type != target && !m.TypesCompatible(target, p.Type) {
				return false
			}
		}
	}

	return true
}

// firstMatchingInvocation returns the first call in op's body that resolves
// to target.
func firstMatchingInvocation(op, target *m.Operation) *m.Invocation {
	for _, inv := range op.Invocations() {
		if inv.Matches(target) {
			return inv
		}
	}

	return nil
}

// bindArguments maps op's parameter names to the call's argument text. Only
// the shorter of both lists is bound.
func bindArguments(op *m.Operation, call *m.Invocation) map[string]string {
	n := min(len(op.Parameters), len(call.Arguments))
	binding := make(map[string]string, n)

	for i := range n {
		binding[op.Parameters[i].Name] = call.Arguments[i]
	}

	return binding
}
