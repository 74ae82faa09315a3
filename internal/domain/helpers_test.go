package domain

import (
	"fmt"

	"refdiff.dev/pkg/refdiff/internal/adapter"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

func call(name string, args ...string) *m.Invocation {
	return &m.Invocation{MethodName: name, Arguments: args}
}

// leaf builds a leaf statement. A leaf made of exactly one call is covered by
// that call.
func leaf(text string, calls ...*m.Invocation) *m.Statement {
	s := &m.Statement{Kind: m.StatementLeaf, Text: text, Invocations: calls}
	if len(calls) == 1 {
		s.Covering = calls[0]
	}

	return s
}

func param(name, typ string) m.Parameter {
	return m.Parameter{Name: name, Type: typ}
}

func operation(name string, params []m.Parameter, stmts ...*m.Statement) *m.Operation {
	return &m.Operation{Name: name, Parameters: params, Body: &m.Body{Statements: stmts}}
}

func class(name string, ops ...*m.Operation) *m.Class {
	c := &m.Class{Name: name, File: m.Path("shop/" + name + ".go"), Operations: ops}
	c.Reindex()

	return c
}

// alignment builds an alignment of before and after with the given numbers of
// exact and similar mappings and unmapped leaves.
func alignment(before, after *m.Operation, exact, similar, unmappedBefore, unmappedAfter int) *m.Alignment {
	a := &m.Alignment{Before: before, After: after}

	for i := range exact {
		s := leaf(fmt.Sprintf("exact%d()", i))
		a.Mappings = append(a.Mappings, m.Mapping{Before: s, After: s, Exact: true})
	}

	for i := range similar {
		a.Mappings = append(a.Mappings, m.Mapping{
			Before:       leaf(fmt.Sprintf("x%d := 1", i)),
			After:        leaf(fmt.Sprintf("y%d := 1", i)),
			Replacements: []m.Replacement{{Before: fmt.Sprintf("x%d", i), After: fmt.Sprintf("y%d", i), Kind: m.ReplacementVariable}},
		})
	}

	for i := range unmappedBefore {
		a.UnmappedLeavesBefore = append(a.UnmappedLeavesBefore, leaf(fmt.Sprintf("gone%d := 0", i)))
	}

	for i := range unmappedAfter {
		a.UnmappedLeavesAfter = append(a.UnmappedLeavesAfter, leaf(fmt.Sprintf("new%d := 0", i)))
	}

	return a
}

type operationPair struct {
	before, after *m.Operation
}

// fakeAligner returns canned alignments. Unknown pairs align with no
// mappings.
type fakeAligner struct {
	alignments map[operationPair]*m.Alignment
	seeded     map[*m.Operation]*m.Alignment
	calls      int
}

func newFakeAligner() *fakeAligner {
	return &fakeAligner{
		alignments: make(map[operationPair]*m.Alignment),
		seeded:     make(map[*m.Operation]*m.Alignment),
	}
}

func (f *fakeAligner) set(a *m.Alignment) *fakeAligner {
	f.alignments[operationPair{a.Before, a.After}] = a
	return f
}

func (f *fakeAligner) Align(before, after *m.Operation) *m.Alignment {
	f.calls++

	if a, ok := f.alignments[operationPair{before, after}]; ok {
		return a
	}

	return &m.Alignment{Before: before, After: after}
}

func (f *fakeAligner) AlignSeeded(callee *m.Operation, parent *m.Alignment, seed adapter.Seed) *m.Alignment {
	if a, ok := f.seeded[callee]; ok {
		return a
	}

	if seed.Direction == adapter.SeedInline {
		return &m.Alignment{Before: callee, After: parent.After}
	}

	return &m.Alignment{Before: parent.Before, After: callee}
}

// renameAlignment is an accepted alignment of caller whose body renamed one
// call from before to after.
func renameAlignment(caller *m.Operation, before, after string) *m.Alignment {
	b, a := call(before), call(after)

	return &m.Alignment{
		Before: caller,
		After:  caller,
		Mappings: []m.Mapping{{
			Before: leaf(before+"()", b),
			After:  leaf(after+"()", a),
			Replacements: []m.Replacement{{
				Before: before, After: after, Kind: m.ReplacementMethodInvocationRenamed, BeforeCall: b, AfterCall: a,
			}},
		}},
	}
}

func kinds(refactorings []m.Refactoring) []m.RefactoringKind {
	out := make([]m.RefactoringKind, 0, len(refactorings))
	for _, r := range refactorings {
		out = append(out, r.Kind())
	}

	return out
}
