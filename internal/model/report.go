package model

import "time"

// RefactoringEntry is the serializable form of a Refactoring.
type RefactoringEntry struct {
	Kind        RefactoringKind `json:"kind" yaml:"kind"`
	Description string          `json:"description" yaml:"description"`
	Before      string          `json:"before,omitempty" yaml:"before,omitempty"`
	After       string          `json:"after,omitempty" yaml:"after,omitempty"`
	Mappings    int             `json:"mappings" yaml:"mappings"`
	Exact       int             `json:"exact" yaml:"exact"`
	Left        []CodeRange     `json:"leftSideLocations,omitempty" yaml:"left,omitempty"`
	Right       []CodeRange     `json:"rightSideLocations,omitempty" yaml:"right,omitempty"`
}

// ClassReport is the serializable outcome of one class comparison.
type ClassReport struct {
	Class             string             `json:"class" yaml:"class"`
	File              Path               `json:"file" yaml:"file"`
	Refactorings      []RefactoringEntry `json:"refactorings,omitempty" yaml:"refactorings,omitempty"`
	RemovedOperations []string           `json:"removedOperations,omitempty" yaml:"removed_operations,omitempty"`
	AddedOperations   []string           `json:"addedOperations,omitempty" yaml:"added_operations,omitempty"`
	AttributeChanges  []string           `json:"attributeChanges,omitempty" yaml:"attribute_changes,omitempty"`
}

// Report is the outcome of comparing two versions of a source tree.
type Report struct {
	Before      string        `json:"before" yaml:"before"`
	After       string        `json:"after" yaml:"after"`
	Fingerprint string        `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"created_at"`
	Classes     []ClassReport `json:"classes" yaml:"classes"`
}

// Count returns the number of refactorings of the given kind.
func (r *Report) Count(kind RefactoringKind) int {
	n := 0

	for _, c := range r.Classes {
		for _, ref := range c.Refactorings {
			if ref.Kind == kind {
				n++
			}
		}
	}

	return n
}

// NewRefactoringEntry converts a Refactoring into its serializable form.
func NewRefactoringEntry(r Refactoring) RefactoringEntry {
	entry := RefactoringEntry{
		Kind:        r.Kind(),
		Description: r.Description(),
		Left:        r.LeftRanges(),
		Right:       r.RightRanges(),
	}

	if a := r.Justification(); a != nil {
		entry.Before = a.Before.String()
		entry.After = a.After.String()
		entry.Mappings = a.MappingsWithoutBlocks()
		entry.Exact = a.ExactMatches()
	}

	return entry
}

// NewClassReport converts a ClassDiff into its serializable form.
func NewClassReport(d *ClassDiff) ClassReport {
	report := ClassReport{Class: d.ClassName, File: d.File}

	for _, r := range d.Refactorings {
		report.Refactorings = append(report.Refactorings, NewRefactoringEntry(r))
	}

	for _, op := range d.RemovedOperations {
		report.RemovedOperations = append(report.RemovedOperations, op.Key())
	}

	for _, op := range d.AddedOperations {
		report.AddedOperations = append(report.AddedOperations, op.Key())
	}

	for _, a := range d.AttributeDiffs {
		report.AttributeChanges = append(report.AttributeChanges, a.Before.Name+": "+a.Before.Type+" -> "+a.After.Type)
	}

	for _, a := range d.RemovedAttributes {
		report.AttributeChanges = append(report.AttributeChanges, "removed "+a.Name+" "+a.Type)
	}

	for _, a := range d.AddedAttributes {
		report.AttributeChanges = append(report.AttributeChanges, "added "+a.Name+" "+a.Type)
	}

	return report
}
