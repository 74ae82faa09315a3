// Package pkg provides utilities for refdiff.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// spillDirName is the directory under os.TempDir used when no directory is given.
const spillDirName = "refdiff-spill"

// FileSpill collects items of type T in a gob file so that results produced
// by concurrent workers do not have to be held in memory until they are read
// back. It is safe for concurrent use.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(fn func(index uint64, item T) error) error
	Close() error
	// Remove closes the spill and deletes its file.
	Remove() error
}

type fileSpill[T any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *gob.Encoder
	length  uint64
	closed  bool
}

// NewFileSpill creates a spill file in dir, or in a refdiff directory under
// the system temp dir when dir is empty.
func NewFileSpill[T any](dir string) (FileSpill[T], error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), spillDirName)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create spill directory", "path", dir, "error", err)
		return nil, fmt.Errorf("create spill directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "spill-*.gob")
	if err != nil {
		slog.Error("failed to create spill file", "path", dir, "error", err)
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	slog.Debug("created spill", "path", file.Name())

	return &fileSpill[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

func (f *fileSpill[T]) Path() string {
	return f.path
}

// Append encodes item at the end of the spill.
func (f *fileSpill[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("append to closed spill %s", f.path)
	}

	if err := f.encoder.Encode(item); err != nil {
		slog.Error("failed to encode spill item", "path", f.path, "index", f.length, "error", err)
		return fmt.Errorf("encode item %d: %w", f.length, err)
	}

	f.length++

	return nil
}

// Range decodes every item in append order. It stops at the first error
// returned by fn.
func (f *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		slog.Error("failed to open spill for range", "path", f.path, "error", err)
		return fmt.Errorf("open spill: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Warn("failed to close spill reader", "path", f.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := range f.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode spill item", "path", f.path, "index", i, "error", err)
			return fmt.Errorf("decode item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the spill for writing; Range still works afterwards.
func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true

	if err := f.file.Close(); err != nil {
		slog.Error("failed to close spill", "path", f.path, "error", err)
		return err
	}

	slog.Debug("closed spill", "path", f.path, "length", f.length)

	return nil
}

func (f *fileSpill[T]) Remove() error {
	closeErr := f.Close()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(closeErr, fmt.Errorf("remove spill: %w", err))
	}

	return closeErr
}
