package domain

import (
	"log/slog"
	"slices"
	"strings"

	"refdiff.dev/pkg/refdiff/internal/adapter"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

// CandidatePool keeps candidate alignments ordered best first.
type CandidatePool struct {
	items []*m.Alignment
}

// Add inserts a in order. An alignment comparing equal to one already pooled
// is dropped.
func (p *CandidatePool) Add(a *m.Alignment) {
	i, found := slices.BinarySearchFunc(p.items, a, m.CompareAlignments)
	if found {
		return
	}

	p.items = slices.Insert(p.items, i, a)
}

// Len returns the number of pooled candidates.
func (p *CandidatePool) Len() int {
	return len(p.items)
}

// Items returns the candidates best first.
func (p *CandidatePool) Items() []*m.Alignment {
	return p.items
}

// CandidateMatcher decides whether a removed and an added operation are a
// plausible refactoring pair.
type CandidateMatcher struct {
	aligner adapter.BodyAligner
	config  Config
}

// NewCandidateMatcher constructs a CandidateMatcher.
func NewCandidateMatcher(aligner adapter.BodyAligner, config Config) *CandidateMatcher {
	return &CandidateMatcher{aligner: aligner, config: config}
}

// Match aligns removed with added and adds the alignment to pool when the pair
// is accepted. budget bounds the position distance of the two operations.
func (c *CandidateMatcher) Match(ctx *MatchContext, pool *CandidatePool, removed, added *m.Operation, budget int) bool {
	a := c.aligner.Align(removed, added)
	mappings := a.MappingsWithoutBlocks()
	distance := a.PositionDistance()
	within := distance <= budget

	accepted := false

	if mappings > 0 {
		switch {
		case a.NonMappedBefore() == 0 && a.NonMappedAfter() == 0 && allMappingsAreExactMatches(a):
			accepted = true
		case mappedMoreThanUnmappedBoth(a) && within && c.compatibleSignatures(ctx, removed, added, distance):
			accepted = true
		case mappedMoreThanUnmappedAfter(a, ctx.Added) && within && isPartOfExtractedOperation(removed, added, ctx.Added):
			accepted = true
		case mappedMoreThanUnmappedBefore(a, ctx.Removed) && within && isPartOfInlinedOperation(removed, added, ctx.Removed):
			accepted = true
		}
	} else if ctx.RenameMatches(removed, added) {
		accepted = true
	}

	if !accepted && len(a.Mappings) > 0 && within &&
		singleUnmatchedStatementCallsAddedOperation(a, ctx.Added) &&
		c.compatibleSignatures(ctx, removed, added, distance) {
		accepted = true
	}

	if accepted {
		slog.Debug("candidate accepted", "removed", removed.String(), "added", added.String(),
			"mappings", mappings, "exact", a.ExactMatches())
		pool.Add(a)
	}

	return accepted
}

// allMappingsAreExactMatches treats type-only replacements as exact unless
// every mapping is one.
func allMappingsAreExactMatches(a *m.Alignment) bool {
	mappings := a.MappingsWithoutBlocks()
	exact := a.ExactMatches()

	if mappings == exact {
		return true
	}

	typeOnly := 0

	for _, mp := range a.Mappings {
		if mp.IsBlock() || mp.Exact {
			continue
		}

		if len(mp.Replacements) > 0 && onlyTypeReplacements(mp) {
			typeOnly++
		}
	}

	return mappings == exact+typeOnly && mappings > typeOnly
}

func onlyTypeReplacements(mp m.Mapping) bool {
	for _, r := range mp.Replacements {
		if r.Kind != m.ReplacementType {
			return false
		}
	}

	return true
}

func mappedMoreThanUnmappedBoth(a *m.Alignment) bool {
	mappings := a.MappingsWithoutBlocks()
	n1, n2 := a.NonMappedBefore(), a.NonMappedAfter()

	return (mappings > n1 && mappings > n2) ||
		(n1 == 0 && mappings > n2/2) ||
		(mappings == 1 && n1+n2 == 1 && a.Before.Name == a.After.Name)
}

// mappedMoreThanUnmappedAfter discounts unmapped after statements that call
// another added operation, as they are explained by extraction.
func mappedMoreThanUnmappedAfter(a *m.Alignment, added []*m.Operation) bool {
	mappings := a.MappingsWithoutBlocks()
	n2 := a.NonMappedAfter()

	calling := 0

	for _, s := range a.UnmappedAfter() {
		if s.CallsAny(added) {
			calling++
		}
	}

	rest := n2 - calling

	return mappings > n2 || (mappings >= rest && calling >= rest)
}

func mappedMoreThanUnmappedBefore(a *m.Alignment, removed []*m.Operation) bool {
	mappings := a.MappingsWithoutBlocks()
	n1 := a.NonMappedBefore()

	calling := 0

	for _, s := range a.UnmappedBefore() {
		if s.CallsAny(removed) {
			calling++
		}
	}

	rest := n1 - calling

	return mappings > n1 || (mappings >= rest && calling >= rest)
}

func (c *CandidateMatcher) compatibleSignatures(ctx *MatchContext, removed, added *m.Operation, distance int) bool {
	if added.CompatibleSignature(removed) {
		return true
	}

	placed := distance == 0 || neighboursMatch(ctx, removed, added)
	similar := removed.EqualParameterTypes(added) ||
		m.NameDistance(removed.Name, added.Name) <= c.config.MaxOperationNameDistance

	return placed && similar
}

// neighboursMatch reports whether the operations declared just before, or
// just after, both operations have the same name and parameter types.
func neighboursMatch(ctx *MatchContext, removed, added *m.Operation) bool {
	at := func(ops []*m.Operation, i int) *m.Operation {
		if i < 0 || i >= len(ops) {
			return nil
		}

		return ops[i]
	}

	same := func(a, b *m.Operation) bool {
		return a != nil && b != nil && a.Name == b.Name && a.EqualParameterTypes(b)
	}

	before := same(at(ctx.BeforeOperations, removed.Position-1), at(ctx.AfterOperations, added.Position-1))
	after := same(at(ctx.BeforeOperations, removed.Position+1), at(ctx.AfterOperations, added.Position+1))

	return before || after
}

func invocationSet(invs []*m.Invocation) map[string]*m.Invocation {
	out := make(map[string]*m.Invocation, len(invs))
	for _, inv := range invs {
		out[inv.Key()] = inv
	}

	return out
}

// isPartOfExtractedOperation reports whether the calls the removed operation
// lost reappear in other added operations reachable from the added one.
func isPartOfExtractedOperation(removed, added *m.Operation, addedOps []*m.Operation) bool {
	removedCalls := removed.Invocations()
	addedCalls := added.Invocations()
	addedSet := invocationSet(addedCalls)

	intersection := 0

	for _, inv := range removedCalls {
		if _, ok := addedSet[inv.Key()]; ok {
			intersection++
		}
	}

	missing := len(removedCalls) - intersection

	removedSet := invocationSet(removedCalls)
	elsewhere := make(map[string]struct{})

	for _, inv := range addedCalls {
		if _, common := removedSet[inv.Key()]; common {
			continue
		}

		for _, op := range addedOps {
			if op == added || !op.HasBody() || !inv.Matches(op) {
				continue
			}

			for _, callee := range op.Invocations() {
				elsewhere[callee.Key()] = struct{}{}
			}
		}
	}

	found := 0
	unexplained := 0

	for _, inv := range removedCalls {
		if _, ok := elsewhere[inv.Key()]; ok {
			found++
			continue
		}

		if _, kept := addedSet[inv.Key()]; kept {
			continue
		}

		if !strings.HasPrefix(inv.MethodName, "get") {
			unexplained++
		}
	}

	return found > missing-found || found > unexplained
}

// isPartOfInlinedOperation reports whether the calls the added operation
// gained come from removed operations the removed one used to call.
func isPartOfInlinedOperation(removed, added *m.Operation, removedOps []*m.Operation) bool {
	removedCalls := removed.Invocations()
	addedCalls := added.Invocations()
	removedSet := invocationSet(removedCalls)
	addedSet := invocationSet(addedCalls)

	intersection := 0

	for _, inv := range addedCalls {
		if _, ok := removedSet[inv.Key()]; ok {
			intersection++
		}
	}

	missing := len(addedCalls) - intersection

	elsewhere := make(map[string]struct{})

	for _, inv := range removedCalls {
		if _, common := addedSet[inv.Key()]; common {
			continue
		}

		for _, op := range removedOps {
			if op == removed || !op.HasBody() || !inv.Matches(op) {
				continue
			}

			for _, callee := range op.Invocations() {
				elsewhere[callee.Key()] = struct{}{}
			}
		}
	}

	found := 0

	for _, inv := range addedCalls {
		if _, ok := elsewhere[inv.Key()]; ok {
			found++
		}
	}

	return found > missing-found
}

// singleUnmatchedStatementCallsAddedOperation detects an operation turned into
// a one-line delegator: the only unmapped after leaf calls an added operation
// whose body holds the only unmapped before leaf's call.
func singleUnmatchedStatementCallsAddedOperation(a *m.Alignment, added []*m.Operation) bool {
	if len(a.UnmappedLeavesBefore) != 1 || len(a.UnmappedLeavesAfter) != 1 {
		return false
	}

	beforeCall := a.UnmappedLeavesBefore[0].Covering
	afterCall := a.UnmappedLeavesAfter[0].Covering

	if beforeCall == nil || afterCall == nil {
		return false
	}

	for _, op := range added {
		if afterCall.Matches(op) && op.ContainsInvocation(beforeCall) {
			return true
		}
	}

	return false
}
