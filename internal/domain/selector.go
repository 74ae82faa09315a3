package domain

import (
	"log/slog"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// BestCandidateSelector picks one alignment from a candidate pool.
type BestCandidateSelector struct{}

// NewBestCandidateSelector constructs a BestCandidateSelector.
func NewBestCandidateSelector() *BestCandidateSelector {
	return &BestCandidateSelector{}
}

// Select returns the chosen alignment, or nil when the pool is empty or the
// choice contradicts the consistent call renames.
func (s *BestCandidateSelector) Select(ctx *MatchContext, pool []*m.Alignment) *m.Alignment {
	if len(pool) == 0 {
		return nil
	}

	best := pool[0]

	if best.Before.EqualReturnType(best.After) &&
		best.Before.Name == best.After.Name &&
		len(best.Before.CommonParameterTypes(best.After)) > 0 {
		return best
	}

	head := best

	for _, candidate := range pool[1:] {
		if ctx.RenameMismatches(head.Before, head.After) && ctx.RenameMatches(candidate.Before, candidate.After) {
			best = candidate
			break
		}

		if callsHeadAfter(ctx, candidate, head) || callsHeadBefore(ctx, candidate, head) {
			best = candidate
			break
		}
	}

	if ctx.RenameMismatches(best.Before, best.After) {
		slog.Debug("candidate rejected by consistent renames", "before", best.Before.String(), "after", best.After.String())
		return nil
	}

	return best
}

// callsHeadAfter reports whether the candidate's after operation calls the
// head's after operation, which suggests the head's after operation is a new
// helper rather than the counterpart of the head's before operation.
func callsHeadAfter(ctx *MatchContext, candidate, head *m.Alignment) bool {
	for _, inv := range candidate.After.Invocations() {
		if inv.Matches(head.After) && !inv.Matches(head.Before) &&
			!containsCallWithCommonArguments(inv, ctx.Removed) {
			return true
		}
	}

	return false
}

func callsHeadBefore(ctx *MatchContext, candidate, head *m.Alignment) bool {
	for _, inv := range candidate.Before.Invocations() {
		if inv.Matches(head.Before) && !inv.Matches(head.After) &&
			!containsCallWithCommonArguments(inv, ctx.Added) {
			return true
		}
	}

	return false
}

// containsCallWithCommonArguments reports whether one of ops calls a method of
// the same name sharing an argument with inv, or passes all of inv's
// arguments to some call.
func containsCallWithCommonArguments(inv *m.Invocation, ops []*m.Operation) bool {
	for _, op := range ops {
		for _, other := range op.Invocations() {
			common := len(other.CommonArguments(inv))

			if other.MethodName == inv.MethodName && common > 0 {
				return true
			}

			if common > 0 && common == len(inv.Arguments) {
				return true
			}
		}
	}

	return false
}
