package model

import "fmt"

// Path represents a file system path.
type Path string

// Language identifies the source language a snapshot was built from.
type Language string

const (
	// LanguageGo covers .go files parsed with go/parser.
	LanguageGo Language = "go"
	// LanguageJava covers .java files parsed with tree-sitter.
	LanguageJava Language = "java"
	// LanguageSnapshot covers pre-built YAML/JSON structural snapshots.
	LanguageSnapshot Language = "snapshot"
)

// File represents a source code file and its content fingerprint.
type File struct {
	Path     Path     `json:"path" yaml:"path"`
	Hash     string   `json:"hash,omitempty" yaml:"hash,omitempty"`
	Language Language `json:"language,omitempty" yaml:"language,omitempty"`
}

// Range is a 1-based source region.
type Range struct {
	File        Path `json:"file,omitempty" yaml:"file,omitempty"`
	StartLine   int  `json:"startLine" yaml:"start_line"`
	StartColumn int  `json:"startColumn" yaml:"start_column"`
	EndLine     int  `json:"endLine" yaml:"end_line"`
	EndColumn   int  `json:"endColumn" yaml:"end_column"`
}

// IsZero reports whether the range carries no position.
func (r Range) IsZero() bool {
	return r.StartLine == 0 && r.EndLine == 0
}

func (r Range) String() string {
	if r.File == "" {
		return fmt.Sprintf("%d:%d-%d:%d", r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
	}

	return fmt.Sprintf("%s:%d:%d-%d:%d", r.File, r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
}

// BoundingRange returns the smallest range covering all given ranges.
// The start column belongs to the range with the smallest start line and the
// end column to the range with the largest end line.
func BoundingRange(ranges []Range) Range {
	var out Range

	first := true

	for _, r := range ranges {
		if r.IsZero() {
			continue
		}

		if first {
			out = r
			first = false

			continue
		}

		if r.StartLine < out.StartLine {
			out.StartLine = r.StartLine
			out.StartColumn = r.StartColumn
		}

		if r.EndLine > out.EndLine {
			out.EndLine = r.EndLine
			out.EndColumn = r.EndColumn
		}
	}

	return out
}
