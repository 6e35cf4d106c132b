//nolint:testpackage
package neo4j

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rlch/cyq"
	"github.com/stretchr/testify/require"
)

func TestModelsFromRows(t *testing.T) {
	t.Parallel()

	props := []map[string]any{
		{"nodeType": ":`Movie`", "propertyName": "title", "propertyTypes": []any{"String"}},
		{"nodeType": ":`Movie`", "propertyName": "released", "propertyTypes": []any{"Long"}},
		{"nodeType": ":`Movie`", "propertyName": "embedding", "propertyTypes": []any{"DoubleArray"}},
		{"nodeType": ":`Person`", "propertyName": "born", "propertyTypes": []any{"Date"}},
		{"nodeType": nil, "propertyName": "ignored"},
	}

	indexes := []map[string]any{
		{"name": "idx_embedding_vector", "labelsOrTypes": []any{"Movie"}, "properties": []any{"embedding"}},
		{"name": "person_face", "labelsOrTypes": []any{"Person"}, "properties": []any{"face"}},
	}

	want := []cyq.NodeModel{
		{
			Name: "Movie",
			Properties: []cyq.Property{
				{Name: "embedding", Type: cyq.PropertyTypeVector, VectorIndex: &cyq.VectorIndex{}},
				{Name: "released", Type: "int"},
				{Name: "title", Type: "string"},
			},
		},
		{
			Name: "Person",
			Properties: []cyq.Property{
				{Name: "born", Type: "date"},
				{Name: "face", Type: cyq.PropertyTypeVector, VectorIndex: &cyq.VectorIndex{Name: "person_face"}},
			},
		},
	}

	got := modelsFromRows(props, indexes)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("modelsFromRows() mismatch (-want +got):\n%s", diff)
	}

	index, ok := got[1].VectorIndex("face")
	require.True(t, ok)
	require.Equal(t, "person_face", index)
}

func TestExtractLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{":`Movie`", "Movie"},
		{":Movie", "Movie"},
		{":`Person`:`Actor`", "Person"},
		{42, ""},
	}

	for _, tt := range tests {
		if got := extractLabel(tt.in); got != tt.want {
			t.Errorf("extractLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIntrospect(t *testing.T) {
	t.Parallel()

	driver, _, tx := newFake(&neo4j.Record{
		Keys:   []string{"nodeType", "propertyName", "propertyTypes"},
		Values: []any{":`Movie`", "title", []any{"String"}},
	})

	models, err := Introspect(t.Context(), NewWithDriver(driver, ""))
	require.NoError(t, err)
	require.Equal(t, []string{nodePropertiesQuery, vectorIndexesQuery}, tx.queries)
	require.Len(t, models, 1)
	require.Equal(t, "Movie", models[0].Name)
}
