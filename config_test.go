package cyq_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rlch/cyq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configYAML = `neo4j:
  uri: bolt://localhost:7687
  username: neo4j
  password: secret
runner:
  format: verbose
  fail_fast: true
models:
  - name: Movie
    labels: [Movie, Work]
    properties:
      - name: title
        type: string
      - name: embedding
        type: vector
        vector_index:
          name: movie_embeddings
`

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".cyq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := cyq.LoadConfigFile(path)
	require.NoError(t, err)

	want := &cyq.Config{
		Neo4j: &cyq.Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Password: "secret",
		},
		Runner: cyq.RunnerConfig{Format: "verbose", FailFast: true},
		Models: []cyq.NodeModel{
			{
				Name:     "Movie",
				LabelSet: []string{"Movie", "Work"},
				Properties: []cyq.Property{
					{Name: "title", Type: "string"},
					{Name: "embedding", Type: "vector", VectorIndex: &cyq.VectorIndex{Name: "movie_embeddings"}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, cyq.DatabaseNeo4j, cfg.DatabaseName())

	m, ok := cfg.Model("Movie")
	require.True(t, ok)

	index, ok := m.VectorIndex("embedding")
	require.True(t, ok)
	assert.Equal(t, "movie_embeddings", index)

	_, ok = cfg.Model("Person")
	assert.False(t, ok)
}

func TestFindConfig_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path := filepath.Join(root, "cyq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runner:\n  format: json\n"), 0o600))

	found, err := cyq.FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	cfg, err := cyq.LoadConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Runner.Format)
	assert.Empty(t, cfg.DatabaseName())
}

func TestFindConfig_PrefersHidden(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "cyq.yaml"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".cyq.yaml"), nil, 0o600))

	found, err := cyq.FindConfig(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".cyq.yaml"), found)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".cyq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neo4j: [not, a, map]\n"), 0o600))

	_, err := cyq.LoadConfigFile(path)
	require.Error(t, err)
}
