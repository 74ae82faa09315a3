package domain

import (
	"log/slog"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// OperationMatchEngine pairs removed with added operations and records the
// resulting signature changes and renames.
type OperationMatchEngine struct {
	matcher  *CandidateMatcher
	selector *BestCandidateSelector
}

// NewOperationMatchEngine constructs an OperationMatchEngine.
func NewOperationMatchEngine(matcher *CandidateMatcher, selector *BestCandidateSelector) *OperationMatchEngine {
	return &OperationMatchEngine{matcher: matcher, selector: selector}
}

// Run matches the residual operations of state until every outer operation
// has been tried once. The smaller bag drives the outer loop.
func (e *OperationMatchEngine) Run(state *ClassDiffState) {
	removedOuter := state.Removed.Len() <= state.Added.Len()

	bag := state.Added
	if removedOuter {
		bag = state.Removed
	}

	for _, op := range bag.Items() {
		if !bag.Contains(op) {
			continue
		}

		ctx := state.Context()
		pool := &CandidatePool{}

		if removedOuter {
			for _, added := range ctx.Added {
				e.matcher.Match(ctx, pool, op, added, positionBudget(state, op, added))
			}
		} else {
			for _, removed := range ctx.Removed {
				e.matcher.Match(ctx, pool, removed, op, positionBudget(state, removed, op))
			}
		}

		best := e.selector.Select(ctx, pool.Items())
		if best == nil {
			continue
		}

		e.accept(state, best)
	}
}

// positionBudget is the largest position distance allowed for a pair. Tests
// are reordered less often than other operations, so their budget is tighter.
func positionBudget(state *ClassDiffState, removed, added *m.Operation) int {
	r, a := state.Removed.Len(), state.Added.Len()

	if removed.Test && added.Test {
		if r > a {
			return r - a
		}

		return a - r
	}

	return max(r, a)
}

func (e *OperationMatchEngine) accept(state *ClassDiffState, best *m.Alignment) {
	state.Removed.Remove(best.Before)
	state.Added.Remove(best.After)

	state.Record(&m.SignatureChange{
		Before:   best.Before,
		After:    best.After,
		Changes:  m.DiffSignatures(best.Before, best.After),
		Evidence: best,
	})

	if best.Before.Name != best.After.Name {
		state.Record(&m.RenameOperation{Before: best.Before, After: best.After, Evidence: best})
	}

	state.Accept(best)

	slog.Debug("operation matched", "before", best.Before.String(), "after", best.After.String(),
		"removed", state.Removed.Len(), "added", state.Added.Len())
}
