package adapter

import (
	"errors"
	"fmt"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// ErrUnsupportedLanguage is returned when no ClassSource accepts a file.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ClassSource turns one source file into class snapshots.
type ClassSource interface {
	// Language names what the source parses.
	Language() m.Language
	// Supports reports whether the source understands the file at path.
	Supports(path m.Path) bool
	// Classes parses src, which was read from path.
	Classes(path m.Path, src []byte) ([]*m.Class, error)
}

// ClassSources dispatches to the first registered source supporting a path.
type ClassSources []ClassSource

// NewClassSources returns the Go, Java and snapshot sources in that order.
func NewClassSources() ClassSources {
	return ClassSources{
		NewLocalGoFileAdapter(),
		NewJavaFileAdapter(),
		NewSnapshotAdapter(),
	}
}

// Supports reports whether any registered source accepts path.
func (s ClassSources) Supports(path m.Path) bool {
	return s.find(path) != nil
}

// LanguageOf returns the language of the source accepting path, or "".
func (s ClassSources) LanguageOf(path m.Path) m.Language {
	if source := s.find(path); source != nil {
		return source.Language()
	}

	return ""
}

// Classes parses src with the first source that supports path.
func (s ClassSources) Classes(path m.Path, src []byte) ([]*m.Class, error) {
	source := s.find(path)
	if source == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedLanguage)
	}

	return source.Classes(path, src)
}

func (s ClassSources) find(path m.Path) ClassSource {
	for _, source := range s {
		if source.Supports(path) {
			return source
		}
	}

	return nil
}
