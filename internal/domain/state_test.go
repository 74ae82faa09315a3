package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

func TestOperationBag(t *testing.T) {
	a := operation("a", nil)
	b := operation("b", nil)
	c := operation("c", nil)
	stranger := operation("a", nil)

	bag := NewOperationBag([]*m.Operation{a, b, c})
	require.Equal(t, 3, bag.Len())

	assert.True(t, bag.Contains(b))
	assert.False(t, bag.Contains(stranger), "identity, not name, decides membership")

	assert.True(t, bag.Remove(b))
	assert.False(t, bag.Remove(b))
	assert.Equal(t, []*m.Operation{a, c}, bag.Items())

	items := bag.Items()
	items[0] = stranger
	assert.Equal(t, []*m.Operation{a, c}, bag.Items(), "items are a snapshot")

	bag.RemoveAll([]*m.Operation{c, stranger})
	assert.Equal(t, []*m.Operation{a}, bag.Items())
}

func TestNewClassDiffState_SeedsTracker(t *testing.T) {
	caller := operation("run", nil)
	before := class("Job", caller)
	after := class("Job", caller)

	state := NewClassDiffState(before, after, nil, nil, []*m.Alignment{renameAlignment(caller, "load", "fetch")})

	require.Len(t, state.Alignments, 1)

	ctx := state.Context()
	assert.Equal(t, []*m.Operation{caller}, ctx.BeforeOperations)
	assert.Equal(t, []*m.Operation{caller}, ctx.AfterOperations)
	require.Len(t, ctx.Renames, 1)
	assert.Equal(t, "fetch", ctx.Renames[0].After)
}

func TestClassDiffState_ContextIsSnapshot(t *testing.T) {
	r := operation("r", nil)
	a := operation("a", nil)

	state := NewClassDiffState(nil, nil, []*m.Operation{r}, []*m.Operation{a}, nil)
	ctx := state.Context()

	state.Removed.Remove(r)
	state.Added.Remove(a)

	assert.Equal(t, []*m.Operation{r}, ctx.Removed)
	assert.Equal(t, []*m.Operation{a}, ctx.Added)
	assert.Empty(t, ctx.BeforeOperations)
}
