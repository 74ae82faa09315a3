package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

func TestPairClasses(t *testing.T) {
	in := func(name string, file m.Path) *m.Class {
		return &m.Class{Name: name, File: file}
	}

	t.Run("same file and name", func(t *testing.T) {
		before := []*m.Class{in("Order", "a.go"), in("Cart", "a.go")}
		after := []*m.Class{in("Cart", "a.go"), in("Order", "a.go")}

		pairs := pairClasses(before, after)

		require.Len(t, pairs, 2)
		assert.Same(t, before[1], pairs[0].before)
		assert.Same(t, before[0], pairs[1].before)
	})

	t.Run("unique name survives a file move", func(t *testing.T) {
		before := []*m.Class{in("Order", "old/order.go")}
		after := []*m.Class{in("Order", "new/order.go")}

		pairs := pairClasses(before, after)

		require.Len(t, pairs, 1)
		assert.Same(t, before[0], pairs[0].before)
		assert.Same(t, after[0], pairs[0].after)
	})

	t.Run("ambiguous names are not paired", func(t *testing.T) {
		before := []*m.Class{in("Order", "a.go"), in("Order", "b.go")}
		after := []*m.Class{in("Order", "c.go")}

		assert.Empty(t, pairClasses(before, after))
	})

	t.Run("classes without counterpart are skipped", func(t *testing.T) {
		before := []*m.Class{in("Old", "a.go")}
		after := []*m.Class{in("New", "a.go")}

		assert.Empty(t, pairClasses(before, after))
	})
}
