package model

import (
	"cmp"
)

// ReplacementKind tags a textual difference between two aligned statements.
type ReplacementKind string

const (
	// ReplacementType marks a changed declared type.
	ReplacementType ReplacementKind = "type-replaced"
	// ReplacementArgumentWithReturn marks a call argument that became a
	// return expression.
	ReplacementArgumentWithReturn ReplacementKind = "argument-replaced-with-return-expression"
	// ReplacementMethodInvocationRenamed marks a call whose method name changed.
	ReplacementMethodInvocationRenamed ReplacementKind = "method-invocation-renamed"
	// ReplacementMethodInvocation marks a call that was replaced or dropped.
	ReplacementMethodInvocation ReplacementKind = "method-invocation"
	// ReplacementVariable marks a renamed identifier.
	ReplacementVariable ReplacementKind = "variable-replaced"
	// ReplacementArgument marks a changed call argument.
	ReplacementArgument ReplacementKind = "argument-replaced"
	// ReplacementGeneric is any other textual difference.
	ReplacementGeneric ReplacementKind = "generic"
)

// Replacement is one textual difference inside a mapping.
type Replacement struct {
	Before string          `json:"before" yaml:"before"`
	After  string          `json:"after" yaml:"after"`
	Kind   ReplacementKind `json:"kind" yaml:"kind"`
	// Set for invocation renames and for replacements touching a call.
	BeforeCall *Invocation `json:"beforeCall,omitempty" yaml:"before_call,omitempty"`
	AfterCall  *Invocation `json:"afterCall,omitempty" yaml:"after_call,omitempty"`
}

// InvolvesInvocation reports whether either side of the replacement is a call.
func (r Replacement) InvolvesInvocation() bool {
	return r.BeforeCall != nil || r.AfterCall != nil
}

// InvocationRename is call-site evidence that a method was renamed.
type InvocationRename struct {
	Before     string      `json:"before" yaml:"before"`
	After      string      `json:"after" yaml:"after"`
	BeforeCall *Invocation `json:"-" yaml:"-"`
	AfterCall  *Invocation `json:"-" yaml:"-"`
}

// Conflicts reports a one-to-many or many-to-one pairing between renames.
func (r InvocationRename) Conflicts(other InvocationRename) bool {
	return (r.Before == other.Before) != (r.After == other.After)
}

// Mapping pairs a before statement with an after statement.
type Mapping struct {
	Before       *Statement    `json:"before" yaml:"before"`
	After        *Statement    `json:"after" yaml:"after"`
	Exact        bool          `json:"exact" yaml:"exact"`
	Replacements []Replacement `json:"replacements,omitempty" yaml:"replacements,omitempty"`
}

// IsBlock reports whether the mapping pairs two bare blocks.
func (m Mapping) IsBlock() bool {
	return m.Before.IsBlock() || m.After.IsBlock()
}

// ContainsReplacement reports whether a replacement of the given kind was
// recorded for the mapping.
func (m Mapping) ContainsReplacement(kind ReplacementKind) bool {
	for _, r := range m.Replacements {
		if r.Kind == kind {
			return true
		}
	}

	return false
}

// Alignment is the statement-level matching of two operation bodies.
type Alignment struct {
	Before   *Operation `json:"before" yaml:"before"`
	After    *Operation `json:"after" yaml:"after"`
	Mappings []Mapping  `json:"mappings,omitempty" yaml:"mappings,omitempty"`

	UnmappedLeavesBefore []*Statement `json:"unmappedLeavesBefore,omitempty" yaml:"unmapped_leaves_before,omitempty"`
	UnmappedInnerBefore  []*Statement `json:"unmappedInnerBefore,omitempty" yaml:"unmapped_inner_before,omitempty"`
	UnmappedLeavesAfter  []*Statement `json:"unmappedLeavesAfter,omitempty" yaml:"unmapped_leaves_after,omitempty"`
	UnmappedInnerAfter   []*Statement `json:"unmappedInnerAfter,omitempty" yaml:"unmapped_inner_after,omitempty"`

	// Secondary alignments attached by extract and inline detection.
	Supplementary []*Alignment `json:"supplementary,omitempty" yaml:"supplementary,omitempty"`
}

// MappingsWithoutBlocks counts mappings that do not pair bare blocks.
func (a *Alignment) MappingsWithoutBlocks() int {
	n := 0

	for _, m := range a.Mappings {
		if !m.IsBlock() {
			n++
		}
	}

	return n
}

// ExactMatches counts exact, non-block mappings.
func (a *Alignment) ExactMatches() int {
	n := 0

	for _, m := range a.Mappings {
		if m.Exact && !m.IsBlock() {
			n++
		}
	}

	return n
}

// NonMappedBefore counts unmapped before-side leaves and inner nodes.
func (a *Alignment) NonMappedBefore() int {
	return len(a.UnmappedLeavesBefore) + len(a.UnmappedInnerBefore)
}

// NonMappedAfter counts unmapped after-side leaves and inner nodes.
func (a *Alignment) NonMappedAfter() int {
	return len(a.UnmappedLeavesAfter) + len(a.UnmappedInnerAfter)
}

// UnmappedBefore returns unmapped before-side statements, leaves first.
func (a *Alignment) UnmappedBefore() []*Statement {
	out := make([]*Statement, 0, a.NonMappedBefore())
	out = append(out, a.UnmappedLeavesBefore...)

	return append(out, a.UnmappedInnerBefore...)
}

// UnmappedAfter returns unmapped after-side statements, leaves first.
func (a *Alignment) UnmappedAfter() []*Statement {
	out := make([]*Statement, 0, a.NonMappedAfter())
	out = append(out, a.UnmappedLeavesAfter...)

	return append(out, a.UnmappedInnerAfter...)
}

// Replacements returns every replacement in mapping order.
func (a *Alignment) Replacements() []Replacement {
	var out []Replacement
	for _, m := range a.Mappings {
		out = append(out, m.Replacements...)
	}

	return out
}

// ReplacementsInvolvingInvocation returns replacements where a call changed.
func (a *Alignment) ReplacementsInvolvingInvocation() []Replacement {
	var out []Replacement

	for _, r := range a.Replacements() {
		if r.InvolvesInvocation() {
			out = append(out, r)
		}
	}

	return out
}

// InvocationRenames derives distinct call renames from the replacements.
func (a *Alignment) InvocationRenames() []InvocationRename {
	var out []InvocationRename

	seen := make(map[InvocationRename]struct{})

	for _, r := range a.Replacements() {
		if r.Kind != ReplacementMethodInvocationRenamed {
			continue
		}

		key := InvocationRename{Before: r.Before, After: r.After}
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}

		out = append(out, InvocationRename{
			Before:     r.Before,
			After:      r.After,
			BeforeCall: r.BeforeCall,
			AfterCall:  r.AfterCall,
		})
	}

	return out
}

// AddSupplementary attaches a secondary alignment.
func (a *Alignment) AddSupplementary(secondary *Alignment) {
	a.Supplementary = append(a.Supplementary, secondary)
}

// PositionDistance is the absolute difference of both operations' positions
// within their classes.
func (a *Alignment) PositionDistance() int {
	d := a.Before.Position - a.After.Position
	if d < 0 {
		return -d
	}

	return d
}

// CompareAlignments orders alignments best first. It is a strict weak
// ordering: more exact matches, then fewer unmapped statements on both sides,
// then fewer unmapped before-side statements, then a closer operation name,
// then a smaller position distance, then positions and keys. It returns 0
// only for two alignments of the same operation pair with equal scores.
func CompareAlignments(a, b *Alignment) int {
	if c := cmp.Compare(b.ExactMatches(), a.ExactMatches()); c != 0 {
		return c
	}

	if c := cmp.Compare(a.NonMappedBefore()+a.NonMappedAfter(), b.NonMappedBefore()+b.NonMappedAfter()); c != 0 {
		return c
	}

	if c := cmp.Compare(a.NonMappedBefore(), b.NonMappedBefore()); c != 0 {
		return c
	}

	if c := cmp.Compare(NameDistance(a.Before.Name, a.After.Name), NameDistance(b.Before.Name, b.After.Name)); c != 0 {
		return c
	}

	if c := cmp.Compare(a.PositionDistance(), b.PositionDistance()); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Before.Position, b.Before.Position); c != 0 {
		return c
	}

	if c := cmp.Compare(a.After.Position, b.After.Position); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Before.Key(), b.Before.Key()); c != 0 {
		return c
	}

	return cmp.Compare(a.After.Key(), b.After.Key())
}
