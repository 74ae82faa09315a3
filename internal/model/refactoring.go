package model

import (
	"fmt"
	"strings"
)

// RefactoringKind names a detected refactoring.
type RefactoringKind string

const (
	// RefactoringRename is a method whose name changed.
	RefactoringRename RefactoringKind = "Rename Method"
	// RefactoringExtract is a new method holding code moved out of another.
	RefactoringExtract RefactoringKind = "Extract Method"
	// RefactoringInline is a removed method whose code moved into a caller.
	RefactoringInline RefactoringKind = "Inline Method"
	// RefactoringSignatureChange is a matched pair of methods and the
	// signature differences between them.
	RefactoringSignatureChange RefactoringKind = "Change Method Signature"
)

// CodeRange is a described source region of a refactoring.
type CodeRange struct {
	Range       `yaml:",inline"`
	Description string `json:"description" yaml:"description"`
	CodeElement string `json:"codeElement,omitempty" yaml:"code_element,omitempty"`
}

// Refactoring is one detected refactoring record.
type Refactoring interface {
	Kind() RefactoringKind
	Description() string
	// Justification is the alignment that justifies the record.
	Justification() *Alignment
	// LeftRanges are regions in the before snapshot.
	LeftRanges() []CodeRange
	// RightRanges are regions in the after snapshot.
	RightRanges() []CodeRange
}

func operationRange(op *Operation, description string) CodeRange {
	return CodeRange{Range: op.Location, Description: description, CodeElement: op.String()}
}

// RenameOperation records a method rename.
type RenameOperation struct {
	Before   *Operation
	After    *Operation
	Evidence *Alignment
}

// Kind implements Refactoring.
func (r *RenameOperation) Kind() RefactoringKind { return RefactoringRename }

// Justification implements Refactoring.
func (r *RenameOperation) Justification() *Alignment { return r.Evidence }

// Description implements Refactoring.
func (r *RenameOperation) Description() string {
	return fmt.Sprintf("%s renamed to %s in class %s", r.Before, r.After, r.After.ClassName)
}

// LeftRanges implements Refactoring.
func (r *RenameOperation) LeftRanges() []CodeRange {
	return []CodeRange{operationRange(r.Before, "original method declaration")}
}

// RightRanges implements Refactoring.
func (r *RenameOperation) RightRanges() []CodeRange {
	return []CodeRange{operationRange(r.After, "renamed method declaration")}
}

// SignatureDeltaKind classifies one signature difference.
type SignatureDeltaKind string

const (
	DeltaNameChanged          SignatureDeltaKind = "name-changed"
	DeltaParameterAdded       SignatureDeltaKind = "parameter-added"
	DeltaParameterRemoved     SignatureDeltaKind = "parameter-removed"
	DeltaParameterTypeChanged SignatureDeltaKind = "parameter-type-changed"
	DeltaParameterRenamed     SignatureDeltaKind = "parameter-renamed"
	DeltaReturnTypeChanged    SignatureDeltaKind = "return-type-changed"
)

// SignatureDelta is one difference between two signatures.
type SignatureDelta struct {
	Kind   SignatureDeltaKind `json:"kind" yaml:"kind"`
	Before string             `json:"before,omitempty" yaml:"before,omitempty"`
	After  string             `json:"after,omitempty" yaml:"after,omitempty"`
}

func (d SignatureDelta) String() string {
	switch {
	case d.Before == "":
		return fmt.Sprintf("%s %s", d.Kind, d.After)
	case d.After == "":
		return fmt.Sprintf("%s %s", d.Kind, d.Before)
	default:
		return fmt.Sprintf("%s %s -> %s", d.Kind, d.Before, d.After)
	}
}

// DiffSignatures lists the differences between two matched operations.
// Parameters are first paired by name and type, then by name, then by type;
// leftovers are reported as removed or added.
func DiffSignatures(before, after *Operation) []SignatureDelta {
	var deltas []SignatureDelta

	if before.Name != after.Name {
		deltas = append(deltas, SignatureDelta{Kind: DeltaNameChanged, Before: before.Name, After: after.Name})
	}

	if before.ReturnType != after.ReturnType {
		deltas = append(deltas, SignatureDelta{Kind: DeltaReturnTypeChanged, Before: before.ReturnType, After: after.ReturnType})
	}

	removed := append([]Parameter(nil), before.Parameters...)
	added := append([]Parameter(nil), after.Parameters...)

	pair := func(match func(a, b Parameter) bool, emit func(a, b Parameter)) {
		for i := 0; i < len(removed); i++ {
			for j := 0; j < len(added); j++ {
				if !match(removed[i], added[j]) {
					continue
				}

				if emit != nil {
					emit(removed[i], added[j])
				}

				removed = append(removed[:i], removed[i+1:]...)
				added = append(added[:j], added[j+1:]...)
				i--

				break
			}
		}
	}

	pair(func(a, b Parameter) bool { return a.Name == b.Name && a.Type == b.Type }, nil)
	pair(func(a, b Parameter) bool { return a.Name == b.Name }, func(a, b Parameter) {
		deltas = append(deltas, SignatureDelta{Kind: DeltaParameterTypeChanged, Before: a.Name + " " + a.Type, After: b.Name + " " + b.Type})
	})
	pair(func(a, b Parameter) bool { return a.Type == b.Type }, func(a, b Parameter) {
		deltas = append(deltas, SignatureDelta{Kind: DeltaParameterRenamed, Before: a.Name + " " + a.Type, After: b.Name + " " + b.Type})
	})

	for _, p := range removed {
		deltas = append(deltas, SignatureDelta{Kind: DeltaParameterRemoved, Before: p.Name + " " + p.Type})
	}

	for _, p := range added {
		deltas = append(deltas, SignatureDelta{Kind: DeltaParameterAdded, After: p.Name + " " + p.Type})
	}

	return deltas
}

// SignatureChange records a matched operation pair and how its signature
// changed. It is emitted for every direct match, even when only the body
// changed.
type SignatureChange struct {
	Before   *Operation
	After    *Operation
	Changes  []SignatureDelta
	Evidence *Alignment
}

// Kind implements Refactoring.
func (s *SignatureChange) Kind() RefactoringKind { return RefactoringSignatureChange }

// Justification implements Refactoring.
func (s *SignatureChange) Justification() *Alignment { return s.Evidence }

// Description implements Refactoring.
func (s *SignatureChange) Description() string {
	if len(s.Changes) == 0 {
		return fmt.Sprintf("%s matched to %s in class %s", s.Before, s.After, s.After.ClassName)
	}

	parts := make([]string, 0, len(s.Changes))
	for _, c := range s.Changes {
		parts = append(parts, c.String())
	}

	return fmt.Sprintf("%s changed to %s in class %s (%s)", s.Before, s.After, s.After.ClassName, strings.Join(parts, "; "))
}

// LeftRanges implements Refactoring.
func (s *SignatureChange) LeftRanges() []CodeRange {
	return []CodeRange{operationRange(s.Before, "original method declaration")}
}

// RightRanges implements Refactoring.
func (s *SignatureChange) RightRanges() []CodeRange {
	return []CodeRange{operationRange(s.After, "changed method declaration")}
}

// ExtractOperation records code extracted from SourceBefore into Extracted.
// When Extracted only forwards to another new method, Delegate holds that
// method and Evidence aligns its body.
type ExtractOperation struct {
	Extracted    *Operation
	Delegate     *Operation
	SourceBefore *Operation
	SourceAfter  *Operation
	Invocation   *Invocation
	Evidence     *Alignment
}

// Kind implements Refactoring.
func (e *ExtractOperation) Kind() RefactoringKind { return RefactoringExtract }

// Justification implements Refactoring.
func (e *ExtractOperation) Justification() *Alignment { return e.Evidence }

// Description implements Refactoring.
func (e *ExtractOperation) Description() string {
	return fmt.Sprintf("%s extracted from %s in class %s", e.Extracted, e.SourceBefore, e.SourceAfter.ClassName)
}

// ExtractedCodeRange bounds the before-side fragments moved into the new
// method.
func (e *ExtractOperation) ExtractedCodeRange() Range {
	ranges := make([]Range, 0, len(e.Evidence.Mappings))
	for _, m := range e.Evidence.Mappings {
		ranges = append(ranges, m.Before.Location)
	}

	return BoundingRange(ranges)
}

// LeftRanges implements Refactoring.
func (e *ExtractOperation) LeftRanges() []CodeRange {
	return []CodeRange{
		operationRange(e.SourceBefore, "source method declaration before extraction"),
		{Range: e.ExtractedCodeRange(), Description: "extracted code from source method declaration"},
	}
}

// RightRanges implements Refactoring.
func (e *ExtractOperation) RightRanges() []CodeRange {
	ranges := []CodeRange{
		operationRange(e.Extracted, "extracted method declaration"),
		{Range: e.Invocation.Location, Description: "extracted method invocation", CodeElement: e.Invocation.Key()},
		operationRange(e.SourceAfter, "source method declaration after extraction"),
	}

	if e.Delegate != nil {
		ranges = append(ranges, operationRange(e.Delegate, "delegate method declaration"))
	}

	return ranges
}

// InlineOperation records Inlined folded into its caller.
type InlineOperation struct {
	Inlined      *Operation
	TargetBefore *Operation
	TargetAfter  *Operation
	Invocation   *Invocation
	Evidence     *Alignment
}

// Kind implements Refactoring.
func (i *InlineOperation) Kind() RefactoringKind { return RefactoringInline }

// Justification implements Refactoring.
func (i *InlineOperation) Justification() *Alignment { return i.Evidence }

// Description implements Refactoring.
func (i *InlineOperation) Description() string {
	return fmt.Sprintf("%s inlined to %s in class %s", i.Inlined, i.TargetAfter, i.TargetAfter.ClassName)
}

// InlinedCodeRange bounds the after-side fragments that replaced the call.
func (i *InlineOperation) InlinedCodeRange() Range {
	ranges := make([]Range, 0, len(i.Evidence.Mappings))
	for _, m := range i.Evidence.Mappings {
		ranges = append(ranges, m.After.Location)
	}

	return BoundingRange(ranges)
}

// LeftRanges implements Refactoring.
func (i *InlineOperation) LeftRanges() []CodeRange {
	return []CodeRange{
		operationRange(i.Inlined, "inlined method declaration"),
		{Range: i.Invocation.Location, Description: "inlined method invocation", CodeElement: i.Invocation.Key()},
		operationRange(i.TargetBefore, "target method declaration before inline"),
	}
}

// RightRanges implements Refactoring.
func (i *InlineOperation) RightRanges() []CodeRange {
	return []CodeRange{
		{Range: i.InlinedCodeRange(), Description: "inlined code in target method declaration"},
		operationRange(i.TargetAfter, "target method declaration after inline"),
	}
}
