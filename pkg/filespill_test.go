package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Class string
	Kinds []string
}

func TestFileSpill(t *testing.T) {
	t.Run("created in the given directory", func(t *testing.T) {
		dir := t.TempDir()

		spill, err := NewFileSpill[int](dir)
		require.NoError(t, err)
		defer spill.Remove()

		assert.Equal(t, dir, filepath.Dir(spill.Path()))
	})

	t.Run("defaults to the temp directory", func(t *testing.T) {
		spill, err := NewFileSpill[int]("")
		require.NoError(t, err)
		defer spill.Remove()

		assert.Contains(t, spill.Path(), spillDirName)
	})

	t.Run("range returns items in append order", func(t *testing.T) {
		spill, err := NewFileSpill[entry](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		want := []entry{
			{Class: "Order", Kinds: []string{"Rename Method"}},
			{Class: "Cart"},
			{Class: "User", Kinds: []string{"Extract Method", "Inline Method"}},
		}

		for _, e := range want {
			require.NoError(t, spill.Append(e))
		}

		require.Equal(t, uint64(3), spill.Len())

		var got []entry

		require.NoError(t, spill.Range(func(_ uint64, item entry) error {
			got = append(got, item)
			return nil
		}))
		assert.Equal(t, want, got)
	})

	t.Run("range stops at callback error", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		for i := range 3 {
			require.NoError(t, spill.Append(i))
		}

		stop := errors.New("stop")
		count := 0

		err = spill.Range(func(index uint64, _ int) error {
			count++
			if index == 1 {
				return stop
			}

			return nil
		})

		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 2, count)
	})

	t.Run("empty spill ranges over nothing", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		called := false
		require.NoError(t, spill.Range(func(uint64, int) error {
			called = true
			return nil
		}))
		assert.False(t, called)
	})

	t.Run("closed spill is readable but not writable", func(t *testing.T) {
		spill, err := NewFileSpill[string](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		require.NoError(t, spill.Append("kept"))
		require.NoError(t, spill.Close())
		require.NoError(t, spill.Close())

		assert.Error(t, spill.Append("late"))

		var got []string

		require.NoError(t, spill.Range(func(_ uint64, item string) error {
			got = append(got, item)
			return nil
		}))
		assert.Equal(t, []string{"kept"}, got)
	})

	t.Run("remove deletes the file", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)

		require.NoError(t, spill.Remove())

		_, err = os.Stat(spill.Path())
		assert.ErrorIs(t, err, os.ErrNotExist)

		assert.NoError(t, spill.Remove())
	})

	t.Run("concurrent appends", func(t *testing.T) {
		spill, err := NewFileSpill[int](t.TempDir())
		require.NoError(t, err)
		defer spill.Remove()

		var wg sync.WaitGroup

		for i := range 50 {
			wg.Add(1)

			go func() {
				defer wg.Done()
				assert.NoError(t, spill.Append(i))
			}()
		}

		wg.Wait()

		seen := make(map[int]bool)
		require.NoError(t, spill.Range(func(_ uint64, item int) error {
			seen[item] = true
			return nil
		}))
		assert.Len(t, seen, 50)
	})
}

// BenchmarkAppend measures the performance of appending items.
func BenchmarkAppend(b *testing.B) {
	spill, err := NewFileSpill[entry](b.TempDir())
	if err != nil {
		b.Fatalf("failed to create spill: %v", err)
	}
	defer spill.Remove()

	item := entry{Class: "Order", Kinds: []string{"Rename Method"}}

	b.ResetTimer()

	for range b.N {
		_ = spill.Append(item)
	}
}
