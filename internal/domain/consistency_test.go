package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

func rename(before, after string) m.InvocationRename {
	return m.InvocationRename{Before: before, After: after}
}

func TestConsistentRenames(t *testing.T) {
	tests := []struct {
		name    string
		renames []m.InvocationRename
		want    []m.InvocationRename
	}{
		{
			name: "empty",
			want: []m.InvocationRename{},
		},
		{
			name:    "independent renames are kept in discovery order",
			renames: []m.InvocationRename{rename("load", "fetch"), rename("save", "store")},
			want:    []m.InvocationRename{rename("load", "fetch"), rename("save", "store")},
		},
		{
			name:    "duplicates collapse",
			renames: []m.InvocationRename{rename("load", "fetch"), rename("load", "fetch")},
			want:    []m.InvocationRename{rename("load", "fetch")},
		},
		{
			name:    "one before name renamed two ways",
			renames: []m.InvocationRename{rename("load", "fetch"), rename("load", "read")},
			want:    []m.InvocationRename{},
		},
		{
			name:    "two before names merged into one",
			renames: []m.InvocationRename{rename("load", "fetch"), rename("get", "fetch"), rename("save", "store")},
			want:    []m.InvocationRename{rename("save", "store")},
		},
		{
			name:    "revoked rename stays revoked when seen again",
			renames: []m.InvocationRename{rename("load", "fetch"), rename("load", "read"), rename("load", "fetch")},
			want:    []m.InvocationRename{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConsistentRenames(tt.renames))
		})
	}
}

func TestConsistentRenames_Closure(t *testing.T) {
	input := []m.InvocationRename{
		rename("a", "b"), rename("c", "d"), rename("a", "e"), rename("f", "g"), rename("h", "g"),
	}

	once := ConsistentRenames(input)
	require.Equal(t, []m.InvocationRename{rename("c", "d")}, once)

	assert.Equal(t, once, ConsistentRenames(once))

	for i, r := range once {
		for j, other := range once {
			if i != j {
				assert.False(t, r.Conflicts(other), "%v conflicts with %v", r, other)
			}
		}
	}
}

func TestRenameTracker_Observe(t *testing.T) {
	caller := operation("run", nil)

	tracker := NewRenameTracker()
	tracker.ObserveAll([]*m.Alignment{
		renameAlignment(caller, "load", "fetch"),
		renameAlignment(caller, "save", "store"),
	})

	got := tracker.Consistent()
	require.Len(t, got, 2)
	assert.Equal(t, "load", got[0].Before)
	assert.Equal(t, "fetch", got[0].After)
	assert.Equal(t, "save", got[1].Before)

	tracker.Observe(renameAlignment(caller, "save", "persist"))

	got = tracker.Consistent()
	require.Len(t, got, 1)
	assert.Equal(t, "fetch", got[0].After)
}

func TestMatchContext_Renames(t *testing.T) {
	ctx := &MatchContext{Renames: []m.InvocationRename{rename("load", "fetch")}}

	load := operation("load", nil)
	fetch := operation("fetch", nil)
	read := operation("read", nil)
	other := operation("other", nil)

	assert.True(t, ctx.RenameMatches(load, fetch))
	assert.False(t, ctx.RenameMatches(load, read))

	assert.False(t, ctx.RenameMismatches(load, fetch))
	assert.True(t, ctx.RenameMismatches(load, read))
	assert.True(t, ctx.RenameMismatches(other, fetch))
	assert.False(t, ctx.RenameMismatches(other, read))
}

func TestMatchContext_RenameMatchesChecksArity(t *testing.T) {
	ctx := &MatchContext{Renames: []m.InvocationRename{{
		Before:     "load",
		After:      "fetch",
		BeforeCall: call("load", "id"),
		AfterCall:  call("fetch", "id"),
	}}}

	tests := []struct {
		name          string
		before, after *m.Operation
		want          bool
	}{
		{
			name:   "same arity",
			before: operation("load", []m.Parameter{param("id", "int")}),
			after:  operation("fetch", []m.Parameter{param("key", "int")}),
			want:   true,
		},
		{
			name:   "overload without parameters",
			before: operation("load", []m.Parameter{param("id", "int")}),
			after:  operation("fetch", nil),
			want:   false,
		},
		{
			name:   "before takes two parameters",
			before: operation("load", []m.Parameter{param("id", "int"), param("force", "bool")}),
			after:  operation("fetch", []m.Parameter{param("id", "int")}),
			want:   false,
		},
		{
			name:   "variadic after",
			before: operation("load", []m.Parameter{param("id", "int")}),
			after:  operation("fetch", []m.Parameter{{Name: "ids", Type: "...int", Variadic: true}}),
			want:   true,
		},
		{
			name:   "different name",
			before: operation("read", []m.Parameter{param("id", "int")}),
			after:  operation("fetch", []m.Parameter{param("id", "int")}),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.RenameMatches(tt.before, tt.after))
		})
	}
}
