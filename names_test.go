package cyq_test

import (
	"testing"

	"github.com/rlch/cyq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]cyq.Mode{"read": cyq.ModeRead, " WRITE ": cyq.ModeWrite, "Read": cyq.ModeRead} {
		got, err := cyq.ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := cyq.ParseMode("admin")
	require.ErrorIs(t, err, cyq.ErrInvalidMode)
}

func TestParseDateType(t *testing.T) {
	t.Parallel()

	got, err := cyq.ParseDateType("DateTime")
	require.NoError(t, err)
	assert.Equal(t, cyq.DateTime, got)

	_, err = cyq.ParseDateType("localdatetime")
	require.ErrorIs(t, err, cyq.ErrInvalidDateType)
}

func TestParseSortOrder(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]cyq.SortOrder{"": cyq.Asc, "asc": cyq.Asc, "DESC": cyq.Desc} {
		got, err := cyq.ParseSortOrder(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := cyq.ParseSortOrder("sideways")
	require.ErrorIs(t, err, cyq.ErrInvalidSortOrder)
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	tests := map[string]cyq.Direction{
		"in":             cyq.DirectionIn,
		"OUT":            cyq.DirectionOut,
		"both":           cyq.DirectionBoth,
		"":               cyq.DirectionBoth,
		"direction_out":  cyq.DirectionOut,
		"direction_both": cyq.DirectionBoth,
	}

	for in, want := range tests {
		got, err := cyq.ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := cyq.ParseDirection("up")
	require.ErrorIs(t, err, cyq.ErrInvalidDirection)
}

func TestParseSearchOperator(t *testing.T) {
	t.Parallel()

	got, err := cyq.ParseSearchOperator("or")
	require.NoError(t, err)
	assert.Equal(t, cyq.SearchOr, got)

	got, err = cyq.ParseSearchOperator("")
	require.NoError(t, err)
	assert.Equal(t, cyq.SearchAnd, got)

	_, err = cyq.ParseSearchOperator("xor")
	require.ErrorIs(t, err, cyq.ErrInvalidSearchOperator)
}

func TestParseDegrees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "3", want: "*3"},
		{in: "1..3", want: "*1..3"},
		{in: "..4", want: "*..4"},
		{in: "2..", want: "*2.."},
		{in: "*", want: "*"},
		{in: "..", want: "*"},
		{in: "*1..2", want: "*1..2"},
		{in: "3..1", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "x", wantErr: true},
		{in: "1..y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			d, err := cyq.ParseDegrees(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, cyq.ErrInvalidDegrees)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestProps(t *testing.T) {
	t.Parallel()

	p := cyq.P("name", "Al", "age", 30)
	assert.Equal(t, []string{"name", "age"}, p.Keys())

	v, ok := p.Get("age")
	assert.True(t, ok)
	assert.Equal(t, 30, v)

	_, ok = p.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, cyq.P("a", 1, "b", 2), cyq.PropsFromMap(map[string]any{"b": 2, "a": 1}))

	assert.Panics(t, func() { cyq.P("odd") })
	assert.Panics(t, func() { cyq.P(1, 2) })
}

func TestNodeModel(t *testing.T) {
	t.Parallel()

	m := &cyq.NodeModel{
		Name: "Movie",
		Properties: []cyq.Property{
			{Name: "title", Type: "string"},
			{Name: "plot", Type: cyq.PropertyTypeVector},
			{Name: "embedding", Type: cyq.PropertyTypeVector, VectorIndex: &cyq.VectorIndex{}},
		},
	}

	assert.Equal(t, []string{"Movie"}, m.Labels())
	assert.Equal(t, []string{"title", "plot", "embedding"}, m.PropertyNames())

	name, ok := m.VectorIndex("embedding")
	assert.True(t, ok)
	assert.Equal(t, "idx_embedding_vector", name)

	_, ok = m.VectorIndex("plot")
	assert.False(t, ok, "vector type without an index")

	_, ok = m.VectorIndex("title")
	assert.False(t, ok)

	m.LabelSet = []string{"Film", "Work"}
	assert.Equal(t, []string{"Film", "Work"}, m.Labels())
}
