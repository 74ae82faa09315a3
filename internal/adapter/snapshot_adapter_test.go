package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

const snapshotYAML = `
root: legacy
classes:
  - name: Ledger
    operations:
      - name: post
        parameters:
          - {name: entry, type: Entry}
        body:
          statements:
            - kind: leaf
              text: validate(entry)
              invocations:
                - {name: validate, arguments: [entry]}
              covering: {name: validate, arguments: [entry]}
      - name: validate
        parameters:
          - {name: e, type: Entry}
`

func TestSnapshotAdapter_Classes(t *testing.T) {
	adapter := NewSnapshotAdapter()

	require.True(t, adapter.Supports("legacy/ledger.snapshot.yaml"))
	require.True(t, adapter.Supports("legacy/ledger.SNAPSHOT.json"))
	require.False(t, adapter.Supports("legacy/ledger.yaml"))

	classes, err := adapter.Classes("legacy/ledger.snapshot.yaml", []byte(snapshotYAML))
	require.NoError(t, err)
	require.Len(t, classes, 1)

	ledger := classes[0]
	assert.Equal(t, m.Path("legacy/ledger.snapshot.yaml"), ledger.File)
	require.Len(t, ledger.Operations, 2)
	assert.Equal(t, 1, ledger.Operations[1].Position)
	assert.Equal(t, "Ledger", ledger.Operations[1].ClassName)

	post := ledger.Operations[0]
	require.True(t, post.HasBody())
	assert.True(t, post.Body.Statements[0].Covering.Matches(ledger.Operations[1]))
}

func TestSnapshotAdapter_JSON(t *testing.T) {
	src := `{"root": "x", "classes": [{"name": "A", "operations": [{"name": "f", "position": 0}]}]}`

	classes, err := NewSnapshotAdapter().Classes("a.snapshot.json", []byte(src))
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "f", classes[0].Operations[0].Name)
}

func TestSnapshotAdapter_RoundTrip(t *testing.T) {
	classes, err := NewSnapshotAdapter().Classes("a.snapshot.yaml", []byte(snapshotYAML))
	require.NoError(t, err)

	out, err := EncodeSnapshot(&m.Snapshot{Root: "legacy", Classes: classes})
	require.NoError(t, err)

	again, err := NewSnapshotAdapter().Classes("a.snapshot.yaml", out)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, classes[0].Operations[0].Key(), again[0].Operations[0].Key())
}

func TestSnapshotAdapter_InvalidInput(t *testing.T) {
	_, err := NewSnapshotAdapter().Classes("a.snapshot.yaml", []byte("classes: [oops"))
	require.Error(t, err)
}
