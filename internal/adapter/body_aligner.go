package adapter

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// DefaultSimilarityThreshold is the minimum token similarity for two
// non-identical statements to be aligned.
const DefaultSimilarityThreshold = 0.5

// SeedDirection tells which side of a parent alignment hosts the caller.
type SeedDirection int

const (
	// SeedInline aligns a removed callee (before side) with the leftovers of
	// the parent's after side.
	SeedInline SeedDirection = iota
	// SeedExtract aligns the leftovers of the parent's before side with an
	// added callee (after side).
	SeedExtract
)

// Seed configures a secondary alignment.
type Seed struct {
	Direction SeedDirection
	// Binding maps callee parameter names to the argument text passed at the
	// call site; it is applied to the callee body before comparison.
	Binding map[string]string
}

// BodyAligner aligns operation bodies statement by statement. The matching
// engine consumes it as a black box.
type BodyAligner interface {
	// Align compares the full bodies of two operations.
	Align(before, after *m.Operation) *m.Alignment

	// AlignSeeded compares a callee body against the caller-side leftovers of
	// an already accepted alignment.
	AlignSeeded(callee *m.Operation, parent *m.Alignment, seed Seed) *m.Alignment
}

// StatementAligner implements BodyAligner with exact sequence matching
// followed by greedy token-similarity pairing.
type StatementAligner struct {
	threshold float64
}

// NewStatementAligner constructs a StatementAligner. Thresholds outside (0, 1]
// fall back to DefaultSimilarityThreshold.
func NewStatementAligner(threshold float64) *StatementAligner {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}

	return &StatementAligner{threshold: threshold}
}

type fragment struct {
	stmt   *m.Statement
	text   string
	tokens []string
}

type pairKind int

const (
	pairExact pairKind = iota
	pairArgumentReturn
	pairSimilar
)

type pairing struct {
	left, right int
	kind        pairKind
	argument    string
}

func fragments(stmts []*m.Statement, binding map[string]string) []fragment {
	out := make([]fragment, 0, len(stmts))

	for _, s := range stmts {
		text := normalizeText(substitute(s.Text, binding))
		out = append(out, fragment{stmt: s, text: text, tokens: significantTokens(text)})
	}

	return out
}

func bodyStatements(op *m.Operation) []*m.Statement {
	if op == nil || op.Body == nil {
		return nil
	}

	return op.Body.Flatten()
}

// Align implements BodyAligner.
func (a *StatementAligner) Align(before, after *m.Operation) *m.Alignment {
	return a.align(before, after, fragments(bodyStatements(before), nil), fragments(bodyStatements(after), nil))
}

// AlignSeeded implements BodyAligner.
func (a *StatementAligner) AlignSeeded(callee *m.Operation, parent *m.Alignment, seed Seed) *m.Alignment {
	calleeSide := fragments(bodyStatements(callee), seed.Binding)

	if seed.Direction == SeedInline {
		callerSide := fragments(leftovers(parent.After, parent.UnmappedAfter(), parent.Mappings, func(mp m.Mapping) *m.Statement {
			return mp.After
		}), nil)

		return a.align(callee, parent.After, calleeSide, callerSide)
	}

	callerSide := fragments(leftovers(parent.Before, parent.UnmappedBefore(), parent.Mappings, func(mp m.Mapping) *m.Statement {
		return mp.Before
	}), nil)

	return a.align(parent.Before, callee, callerSide, calleeSide)
}

// leftovers returns one side's unmapped statements together with mapped
// statements whose call changed, in body order.
func leftovers(op *m.Operation, unmapped []*m.Statement, mappings []m.Mapping, side func(m.Mapping) *m.Statement) []*m.Statement {
	keep := make(map[*m.Statement]struct{}, len(unmapped))
	for _, s := range unmapped {
		keep[s] = struct{}{}
	}

	for _, mp := range mappings {
		for _, r := range mp.Replacements {
			if r.InvolvesInvocation() {
				keep[side(mp)] = struct{}{}
				break
			}
		}
	}

	var out []*m.Statement

	for _, s := range bodyStatements(op) {
		if _, ok := keep[s]; ok {
			out = append(out, s)
		}
	}

	return out
}

func (a *StatementAligner) align(before, after *m.Operation, left, right []fragment) *m.Alignment {
	result := &m.Alignment{Before: before, After: after}
	usedL := make([]bool, len(left))
	usedR := make([]bool, len(right))

	var pairs []pairing

	for _, kind := range []m.StatementKind{m.StatementLeaf, m.StatementComposite, m.StatementBlock} {
		li := indicesOf(left, kind)
		ri := indicesOf(right, kind)

		pairs = append(pairs, matchExact(left, right, li, ri, usedL, usedR)...)

		if kind == m.StatementLeaf {
			pairs = append(pairs, matchReturnArguments(left, right, li, ri, usedL, usedR)...)
		}

		if kind != m.StatementBlock {
			pairs = append(pairs, a.matchSimilar(left, right, li, ri, usedL, usedR)...)
		}
	}

	slices.SortFunc(pairs, func(x, y pairing) int {
		return cmp.Or(cmp.Compare(x.left, y.left), cmp.Compare(x.right, y.right))
	})

	for _, p := range pairs {
		result.Mappings = append(result.Mappings, buildMapping(left[p.left], right[p.right], p))
	}

	for i, f := range left {
		if usedL[i] {
			continue
		}

		switch f.stmt.Kind {
		case m.StatementLeaf:
			result.UnmappedLeavesBefore = append(result.UnmappedLeavesBefore, f.stmt)
		case m.StatementComposite:
			result.UnmappedInnerBefore = append(result.UnmappedInnerBefore, f.stmt)
		}
	}

	for i, f := range right {
		if usedR[i] {
			continue
		}

		switch f.stmt.Kind {
		case m.StatementLeaf:
			result.UnmappedLeavesAfter = append(result.UnmappedLeavesAfter, f.stmt)
		case m.StatementComposite:
			result.UnmappedInnerAfter = append(result.UnmappedInnerAfter, f.stmt)
		}
	}

	slog.Debug("aligned bodies",
		"before", operationName(before),
		"after", operationName(after),
		"mappings", result.MappingsWithoutBlocks(),
		"exact", result.ExactMatches(),
		"unmappedBefore", result.NonMappedBefore(),
		"unmappedAfter", result.NonMappedAfter(),
	)

	return result
}

func operationName(op *m.Operation) string {
	if op == nil {
		return ""
	}

	return op.String()
}

func indicesOf(frags []fragment, kind m.StatementKind) []int {
	var out []int

	for i, f := range frags {
		if f.stmt.Kind == kind {
			out = append(out, i)
		}
	}

	return out
}

func texts(frags []fragment, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		out = append(out, frags[i].text)
	}

	return out
}

// matchExact pairs identical statements: first the longest in-order runs,
// then moved statements in left order.
func matchExact(left, right []fragment, li, ri []int, usedL, usedR []bool) []pairing {
	var pairs []pairing

	if len(li) > 0 && len(ri) > 0 {
		matcher := difflib.NewMatcher(texts(left, li), texts(right, ri))
		for _, block := range matcher.GetMatchingBlocks() {
			for k := range block.Size {
				l, r := li[block.A+k], ri[block.B+k]
				usedL[l], usedR[r] = true, true

				pairs = append(pairs, pairing{left: l, right: r, kind: pairExact})
			}
		}
	}

	for _, l := range li {
		if usedL[l] {
			continue
		}

		for _, r := range ri {
			if !usedR[r] && left[l].text == right[r].text {
				usedL[l], usedR[r] = true, true

				pairs = append(pairs, pairing{left: l, right: r, kind: pairExact})

				break
			}
		}
	}

	return pairs
}

// matchReturnArguments pairs a call with a return statement that returns one
// of the call's arguments.
func matchReturnArguments(left, right []fragment, li, ri []int, usedL, usedR []bool) []pairing {
	var pairs []pairing

	for _, l := range li {
		if usedL[l] {
			continue
		}

		for _, r := range ri {
			if usedR[r] {
				continue
			}

			arg, ok := returnedArgument(left[l], right[r])
			if !ok {
				arg, ok = returnedArgument(right[r], left[l])
			}

			if ok {
				usedL[l], usedR[r] = true, true

				pairs = append(pairs, pairing{left: l, right: r, kind: pairArgumentReturn, argument: arg})

				break
			}
		}
	}

	return pairs
}

func returnedArgument(call, ret fragment) (string, bool) {
	expr, ok := strings.CutPrefix(ret.text, "return ")
	if !ok {
		return "", false
	}

	expr = compact(expr)

	for _, inv := range call.stmt.Invocations {
		for _, arg := range inv.Arguments {
			if compact(arg) == expr {
				return arg, true
			}
		}
	}

	return "", false
}

func similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	return difflib.NewMatcher(a, b).Ratio()
}

// matchSimilar pairs the most similar remaining statements first.
func (a *StatementAligner) matchSimilar(left, right []fragment, li, ri []int, usedL, usedR []bool) []pairing {
	type scored struct {
		l, r  int
		ratio float64
	}

	var candidates []scored

	for _, l := range li {
		if usedL[l] {
			continue
		}

		for _, r := range ri {
			if usedR[r] {
				continue
			}

			if ratio := similarity(left[l].tokens, right[r].tokens); ratio >= a.threshold {
				candidates = append(candidates, scored{l: l, r: r, ratio: ratio})
			}
		}
	}

	slices.SortStableFunc(candidates, func(x, y scored) int {
		return cmp.Or(cmp.Compare(y.ratio, x.ratio), cmp.Compare(x.l, y.l), cmp.Compare(x.r, y.r))
	})

	var pairs []pairing

	for _, c := range candidates {
		if usedL[c.l] || usedR[c.r] {
			continue
		}

		usedL[c.l], usedR[c.r] = true, true

		pairs = append(pairs, pairing{left: c.l, right: c.r, kind: pairSimilar})
	}

	return pairs
}

func buildMapping(lf, rf fragment, p pairing) m.Mapping {
	mapping := m.Mapping{Before: lf.stmt, After: rf.stmt, Exact: p.kind == pairExact}

	switch p.kind {
	case pairExact:
	case pairArgumentReturn:
		expr := strings.TrimPrefix(rf.text, "return ")
		if !strings.HasPrefix(rf.text, "return ") {
			expr = strings.TrimPrefix(lf.text, "return ")
		}

		mapping.Replacements = []m.Replacement{{Before: p.argument, After: expr, Kind: m.ReplacementArgumentWithReturn}}
	default:
		mapping.Replacements = replacements(lf, rf)
	}

	return mapping
}

// replacements describes how two similar statements differ.
func replacements(lf, rf fragment) []m.Replacement {
	var out []m.Replacement

	beforeType, afterType := lf.stmt.VariableType, rf.stmt.VariableType
	if beforeType != "" && afterType != "" && beforeType != afterType {
		out = append(out, m.Replacement{Before: beforeType, After: afterType, Kind: m.ReplacementType})
	}

	out = append(out, invocationReplacements(lf.stmt.Invocations, rf.stmt.Invocations)...)

	reported := make(map[string]struct{}, len(out))
	for _, r := range out {
		reported[compact(r.Before)] = struct{}{}
		reported[compact(r.After)] = struct{}{}
	}

	for _, op := range difflib.NewMatcher(lf.tokens, rf.tokens).GetOpCodes() {
		if op.Tag != 'r' {
			continue
		}

		before := strings.Join(lf.tokens[op.I1:op.I2], "")
		after := strings.Join(rf.tokens[op.J1:op.J2], "")

		_, seenBefore := reported[before]
		_, seenAfter := reported[after]

		if seenBefore || seenAfter {
			continue
		}

		out = append(out, m.Replacement{Before: before, After: after, Kind: tokenReplacementKind(lf.stmt, before, after)})
	}

	return out
}

func tokenReplacementKind(stmt *m.Statement, before, after string) m.ReplacementKind {
	if isIdentifier(before) && isIdentifier(after) {
		return m.ReplacementVariable
	}

	for _, inv := range stmt.Invocations {
		for _, arg := range inv.Arguments {
			if strings.Contains(compact(arg), before) {
				return m.ReplacementArgument
			}
		}
	}

	return m.ReplacementGeneric
}

// invocationReplacements pairs calls that only exist on one side. A call
// whose name vanished paired with a call of a new name and equal arity is a
// rename; everything else is a replaced call.
func invocationReplacements(before, after []*m.Invocation) []m.Replacement {
	beforeKeys := make(map[string]struct{}, len(before))
	beforeNames := make(map[string]struct{}, len(before))

	for _, inv := range before {
		beforeKeys[inv.Key()] = struct{}{}
		beforeNames[inv.MethodName] = struct{}{}
	}

	afterKeys := make(map[string]struct{}, len(after))
	afterNames := make(map[string]struct{}, len(after))

	for _, inv := range after {
		afterKeys[inv.Key()] = struct{}{}
		afterNames[inv.MethodName] = struct{}{}
	}

	var gone, fresh []*m.Invocation

	for _, inv := range before {
		if _, ok := afterKeys[inv.Key()]; !ok {
			gone = append(gone, inv)
		}
	}

	for _, inv := range after {
		if _, ok := beforeKeys[inv.Key()]; !ok {
			fresh = append(fresh, inv)
		}
	}

	var out []m.Replacement

	used := make([]bool, len(fresh))

	for _, b := range gone {
		paired := false

		if _, stillCalled := afterNames[b.MethodName]; !stillCalled {
			for j, a := range fresh {
				if used[j] || len(a.Arguments) != len(b.Arguments) || a.Qualifier != b.Qualifier {
					continue
				}

				if _, existed := beforeNames[a.MethodName]; existed {
					continue
				}

				used[j] = true
				paired = true

				out = append(out, m.Replacement{
					Before:     b.MethodName,
					After:      a.MethodName,
					Kind:       m.ReplacementMethodInvocationRenamed,
					BeforeCall: b,
					AfterCall:  a,
				})

				break
			}
		}

		if !paired {
			out = append(out, m.Replacement{Before: b.Key(), Kind: m.ReplacementMethodInvocation, BeforeCall: b})
		}
	}

	for j, a := range fresh {
		if !used[j] {
			out = append(out, m.Replacement{After: a.Key(), Kind: m.ReplacementMethodInvocation, AfterCall: a})
		}
	}

	return out
}
