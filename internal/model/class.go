package model

// Attribute is a field declared by a class.
type Attribute struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Location Range  `json:"location" yaml:"location"`
}

// Class is the structural snapshot of one class (or Go receiver type).
// Operations are kept in declaration order; Operation.Position is the index
// into this slice.
type Class struct {
	Name       string       `json:"name" yaml:"name"`
	File       Path         `json:"file" yaml:"file"`
	Operations []*Operation `json:"operations,omitempty" yaml:"operations,omitempty"`
	Attributes []Attribute  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Operation returns the operation at position i, or nil.
func (c *Class) Operation(i int) *Operation {
	if i < 0 || i >= len(c.Operations) {
		return nil
	}

	return c.Operations[i]
}

// Reindex assigns each operation its position and class name.
func (c *Class) Reindex() {
	for i, op := range c.Operations {
		op.Position = i
		op.ClassName = c.Name
	}
}

// Snapshot is every class read from one version of the sources.
type Snapshot struct {
	Root    Path     `json:"root" yaml:"root"`
	Files   []File   `json:"files,omitempty" yaml:"files,omitempty"`
	Classes []*Class `json:"classes" yaml:"classes"`
}

// AttributeDiff pairs a removed and an added attribute with the same name.
type AttributeDiff struct {
	Before Attribute `json:"before" yaml:"before"`
	After  Attribute `json:"after" yaml:"after"`
}

// TypeChanged reports whether the declared type differs.
func (d AttributeDiff) TypeChanged() bool {
	return d.Before.Type != d.After.Type
}

// ClassDiff is the outcome of comparing two snapshots of one class.
type ClassDiff struct {
	ClassName         string
	File              Path
	Refactorings      []Refactoring
	Alignments        []*Alignment
	RemovedOperations []*Operation
	AddedOperations   []*Operation
	AttributeDiffs    []AttributeDiff
	RemovedAttributes []Attribute
	AddedAttributes   []Attribute
}

// IsEmpty reports whether nothing changed.
func (d *ClassDiff) IsEmpty() bool {
	return len(d.Refactorings) == 0 &&
		len(d.RemovedOperations) == 0 &&
		len(d.AddedOperations) == 0 &&
		len(d.AttributeDiffs) == 0 &&
		len(d.RemovedAttributes) == 0 &&
		len(d.AddedAttributes) == 0
}
