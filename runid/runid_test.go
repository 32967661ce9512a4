package runid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenomiqueENS/aozan-sub001/rundata"
)

func TestDefault_KeepsIdentifier(t *testing.T) {
	id := rundata.RunID{ID: "A0001", OriginalID: "250101_A00001_0001_AHXXXX"}

	got, err := Default().NewRunID(id, nil)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTemplate_NewRunID(t *testing.T) {
	id := rundata.RunID{ID: "A0001", OriginalID: "250101_A00001_0001_AHXXXX"}
	constants := map[string]string{"sequencer.name": "nova", "run.id": "ignored"}

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"current id", "${run.id}", "A0001"},
		{"original id", "${original.run.id}", "250101_A00001_0001_AHXXXX"},
		{"constant and literal", "${sequencer.name}_${ run.id }", "nova_A0001"},
		{"unknown key", "x${missing}y", "xy"},
		{"literal only", "fixed", "fixed"},
		{"lone dollar", "a$b", "a$b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewTemplate(tt.expr)
			require.NoError(t, err)

			got, err := g.NewRunID(id, constants)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
			assert.Equal(t, "250101_A00001_0001_AHXXXX", got.OriginalID)
		})
	}
	assert.Equal(t, "ignored", constants["run.id"], "constants must not be modified")
}

// Identical inputs always yield identical ids.
func TestTemplate_Deterministic(t *testing.T) {
	g, err := NewTemplate("${flowcell}-${run.id}")
	require.NoError(t, err)

	id := rundata.NewRunID("run1")
	constants := map[string]string{"flowcell": "H3LKJ"}

	first, err := g.NewRunID(id, constants)
	require.NoError(t, err)
	for range 10 {
		next, err := g.NewRunID(id, constants)
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
	assert.Equal(t, "H3LKJ-run1", first.ID)
}

func TestTemplate_Errors(t *testing.T) {
	_, err := NewTemplate("  ")
	assert.ErrorIs(t, err, ErrEmptyExpression)

	_, err = NewTemplate("${run.id")
	assert.ErrorIs(t, err, ErrSyntax)

	g, err := NewTemplate("${missing}")
	require.NoError(t, err)
	_, err = g.NewRunID(rundata.NewRunID("run1"), nil)
	assert.ErrorIs(t, err, ErrEmptyRunID)
}
