package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rlch/cyq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planYAML = `plans:
  - name: people
    steps:
      - match: n:Person
      - return: n
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestIsPlanFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"movies.cyq.yaml", true},
		{"dir/people.cyq.yaml", true},
		{".cyq.yaml", false},
		{"dir/cyq.yaml", false},
		{"movies.yaml", false},
		{"movies.cyq.yml", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isPlanFile(tt.path))
		})
	}
}

func TestCollectPlanFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.cyq.yaml"), planYAML)
	writeFile(t, filepath.Join(dir, "nested", "a.cyq.yaml"), planYAML)
	writeFile(t, filepath.Join(dir, "notes.yaml"), "x: 1\n")
	writeFile(t, filepath.Join(dir, "cyq.yaml"), "runner:\n  format: verbose\n")

	files, err := collectPlanFiles([]string{dir})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "b.cyq.yaml"),
		filepath.Join(dir, "nested", "a.cyq.yaml"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectPlanFiles_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "one.cyq.yaml")
	writeFile(t, path, planYAML)

	files, err := collectPlanFiles([]string{path, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestCollectPlanFiles_Missing(t *testing.T) {
	t.Parallel()

	_, err := collectPlanFiles([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPlans(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cyq.yaml"), planYAML)
	writeFile(t, filepath.Join(dir, "b.cyq.yaml"), planYAML)
	writeFile(t, filepath.Join(dir, "cyq.yaml"), "runner:\n  fail_fast: true\n")

	files, cfg, err := loadPlans(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, filepath.Join(dir, "a.cyq.yaml"), files[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.cyq.yaml"), files[1].Path)
	assert.Equal(t, "people", files[0].Plans[0].Name)
	assert.True(t, cfg.Runner.FailFast)
}

func TestLoadPlans_NoFiles(t *testing.T) {
	t.Parallel()

	_, _, err := loadPlans(context.Background(), []string{t.TempDir()})
	require.ErrorIs(t, err, ErrNoPlanFiles)
}

func TestLoadPlans_ParseError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.cyq.yaml"), "plans:\n  - name: x\n    steps:\n      - nope: 1\n")

	_, _, err := loadPlans(context.Background(), []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.cyq.yaml")
}

func TestPrintBuilt(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := printBuilt(&buf, []builtPlan{
		{
			Path:   "movies.cyq.yaml",
			Plan:   "people",
			Mode:   cyq.ModeRead,
			Query:  "MATCH\n(n:Person)\nWHERE n.name = $where_n_name\nRETURN\nn",
			Params: cyq.Params{"where_n_name": "Al"},
		},
		{
			Path:  "movies.cyq.yaml",
			Plan:  "all",
			Mode:  cyq.ModeWrite,
			Query: "MATCH\n(n)\nDETACH DELETE\nn",
		},
	}, false)
	require.NoError(t, err)

	want := `-- movies.cyq.yaml: people (READ)
MATCH
(n:Person)
WHERE n.name = $where_n_name
RETURN
n
-- params: {"where_n_name":"Al"}

-- movies.cyq.yaml: all (WRITE)
MATCH
(n)
DETACH DELETE
n
-- params: null
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	mark := func(s string) string { return "<" + s + ">" }

	tests := []struct {
		line string
		want string
	}{
		{"MATCH", "<MATCH>"},
		{"OPTIONAL MATCH", "<OPTIONAL MATCH>"},
		{"WHERE n.x = $p", "<WHERE> n.x = $p"},
		{"DETACH DELETE", "<DETACH DELETE>"},
		{"SKIP 5", "<SKIP> 5"},
		{"(n:Person)", "(n:Person)"},
		{"MATCHES", "MATCHES"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, highlight(tt.line, mark))
		})
	}
}

func TestCompileFilter(t *testing.T) {
	t.Parallel()

	re, err := compileFilter("")
	require.NoError(t, err)
	assert.Nil(t, re)

	re, err = compileFilter("^peo")
	require.NoError(t, err)
	assert.True(t, re.MatchString("people"))

	_, err = compileFilter("(")
	require.Error(t, err)
}
