//nolint:testpackage
package neo4j

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/rlch/cyq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes embed the driver interfaces; only the methods exercised here are
// implemented.

type fakeDriver struct {
	neo4j.DriverWithContext

	session  *fakeSession
	configs  []neo4j.SessionConfig
	closeErr error
	closed   bool
}

func (d *fakeDriver) NewSession(_ context.Context, cfg neo4j.SessionConfig) neo4j.SessionWithContext { //nolint:ireturn
	d.configs = append(d.configs, cfg)

	return d.session
}

func (d *fakeDriver) Close(context.Context) error {
	d.closed = true

	return d.closeErr
}

type fakeSession struct {
	neo4j.SessionWithContext

	tx       *fakeTx
	kinds    []string
	closed   int
	closeErr error
}

func (s *fakeSession) ExecuteRead(_ context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
	s.kinds = append(s.kinds, "read")

	return work(s.tx)
}

func (s *fakeSession) ExecuteWrite(_ context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
	s.kinds = append(s.kinds, "write")

	return work(s.tx)
}

func (s *fakeSession) Close(context.Context) error {
	s.closed++

	return s.closeErr
}

type fakeTx struct {
	neo4j.ManagedTransaction

	queries []string
	params  []map[string]any
	records []*neo4j.Record
	err     error
}

func (tx *fakeTx) Run(_ context.Context, query string, params map[string]any) (neo4j.ResultWithContext, error) { //nolint:ireturn
	tx.queries = append(tx.queries, query)
	tx.params = append(tx.params, params)

	if tx.err != nil {
		return nil, tx.err
	}

	return &fakeResult{records: tx.records}, nil
}

type fakeResult struct {
	neo4j.ResultWithContext

	records []*neo4j.Record
}

func (r *fakeResult) Collect(context.Context) ([]*neo4j.Record, error) {
	return r.records, nil
}

func newFake(records ...*neo4j.Record) (*fakeDriver, *fakeSession, *fakeTx) {
	tx := &fakeTx{records: records}
	session := &fakeSession{tx: tx}

	return &fakeDriver{session: session}, session, tx
}

func TestDatabase_Name(t *testing.T) {
	t.Parallel()

	driver, _, _ := newFake()
	db := NewWithDriver(driver, "")

	if got := db.Name(); got != cyq.DatabaseNeo4j {
		t.Errorf("Name() = %q, want %q", got, cyq.DatabaseNeo4j)
	}
}

func TestDatabase_Registration(t *testing.T) {
	t.Parallel()

	if !slices.Contains(cyq.RegisteredDatabases(), cyq.DatabaseNeo4j) {
		t.Error("neo4j database not registered")
	}

	_, err := cyq.NewDatabase(cyq.DatabaseNeo4j, "bolt://localhost")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDatabase_SessionModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode       cyq.Mode
		wantAccess neo4j.AccessMode
		wantKind   string
	}{
		{cyq.ModeRead, neo4j.AccessModeRead, "read"},
		{cyq.ModeWrite, neo4j.AccessModeWrite, "write"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()

			driver, session, tx := newFake(&neo4j.Record{
				Keys:   []string{"name"},
				Values: []any{"Alice"},
			})
			db := NewWithDriver(driver, "movies")

			q := cyq.Query{Text: "MATCH (n) RETURN n.name AS name", Params: cyq.Params{"where_name": "Alice"}}

			got, err := cyq.Run(t.Context(), db, tt.mode, q)
			require.NoError(t, err)

			want := []map[string]any{{"name": "Alice"}}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Run() mismatch (-want +got):\n%s", diff)
			}

			require.Len(t, driver.configs, 1)
			assert.Equal(t, tt.wantAccess, driver.configs[0].AccessMode)
			assert.Equal(t, "movies", driver.configs[0].DatabaseName)
			assert.Equal(t, []string{tt.wantKind}, session.kinds)
			assert.Equal(t, 1, session.closed)
			assert.Equal(t, []string{q.Text}, tx.queries)
			assert.Equal(t, map[string]any{"where_name": "Alice"}, tx.params[0])
		})
	}
}

func TestDatabase_RunErrorClosesSession(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	driver, session, tx := newFake()
	tx.err = boom
	session.closeErr = errors.New("close failed")

	_, err := cyq.Run(t.Context(), NewWithDriver(driver, ""), cyq.ModeWrite, cyq.Query{Text: "CREATE (n)"})
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "close failed")
	assert.Equal(t, 1, session.closed)
}

func TestDatabase_InvalidMode(t *testing.T) {
	t.Parallel()

	driver, _, _ := newFake()

	_, err := NewWithDriver(driver, "").NewSession(t.Context(), cyq.Mode("ADMIN"))
	require.ErrorIs(t, err, cyq.ErrInvalidMode)
	assert.Empty(t, driver.configs)
}

func TestDatabase_Close(t *testing.T) {
	t.Parallel()

	driver, _, _ := newFake()
	require.NoError(t, NewWithDriver(driver, "").Close())
	assert.True(t, driver.closed)

	driver.closeErr = errors.New("gone")
	require.ErrorContains(t, NewWithDriver(driver, "").Close(), "failed to close driver")
}

func TestFlattenRecord_Primitives(t *testing.T) {
	t.Parallel()

	keys := []string{"name", "age", "active"}
	values := []any{"Alice", int64(30), true}

	result := flattenRecord(keys, values)

	want := map[string]any{
		"name":   "Alice",
		"age":    int64(30),
		"active": true,
	}

	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("flattenRecord() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenRecord_Node(t *testing.T) {
	t.Parallel()

	keys := []string{"m"}
	values := []any{
		dbtype.Node{
			ElementId: "4:abc:123",
			Labels:    []string{"Movie"},
			Props: map[string]any{
				"title":    "Heat",
				"released": int64(1995),
			},
		},
	}

	result := flattenRecord(keys, values)

	want := map[string]any{
		"m.title":     "Heat",
		"m.released":  int64(1995),
		"m.labels":    []string{"Movie"},
		"m.elementId": "4:abc:123",
	}

	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("flattenRecord() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenRecord_Relationship(t *testing.T) {
	t.Parallel()

	keys := []string{"r"}
	values := []any{
		dbtype.Relationship{
			ElementId: "5:abc:456",
			Type:      "ACTED_IN",
			Props: map[string]any{
				"role": "Neil",
			},
		},
	}

	result := flattenRecord(keys, values)

	want := map[string]any{
		"r.role":      "Neil",
		"r.type":      "ACTED_IN",
		"r.elementId": "5:abc:456",
	}

	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("flattenRecord() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenRecord_NestedMap(t *testing.T) {
	t.Parallel()

	keys := []string{"props"}
	values := []any{
		map[string]any{
			"name": "Alice",
			"age":  int64(30),
		},
	}

	result := flattenRecord(keys, values)

	want := map[string]any{
		"props.name": "Alice",
		"props.age":  int64(30),
	}

	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("flattenRecord() mismatch (-want +got):\n%s", diff)
	}
}

// Integration tests - only run with a real Neo4j instance.
// Set CYQ_URI, CYQ_USER, CYQ_PASS to run.

func TestDatabase_Execute_Integration(t *testing.T) {
	db := setupIntegrationTest(t)
	defer func() { _ = db.Close() }()

	ctx := t.Context()

	cleanup := cyq.New(cyq.WithDatabase(db)).
		Match("n", cyq.Labels("CyqTest")).
		DetachDelete("n")

	_, err := cleanup.Execute(ctx, cyq.ModeWrite)
	require.NoError(t, err)

	_, err = cyq.New(cyq.WithDatabase(db)).
		Create("n", cyq.Labels("CyqTest"), cyq.Prop{Key: "name", Value: "test-node"}).
		Return("n").
		Execute(ctx, cyq.ModeWrite)
	require.NoError(t, err)

	results, err := cyq.New(cyq.WithDatabase(db)).
		Match("n", cyq.Labels("CyqTest")).
		Where("n.name", "test-node").
		Return("n.name AS name").
		Execute(ctx, cyq.ModeRead)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "test-node", results[0]["name"])

	_, _ = cleanup.Execute(ctx, cyq.ModeWrite)
}

func setupIntegrationTest(t *testing.T) *Database {
	t.Helper()

	uri := os.Getenv("CYQ_URI")
	if uri == "" {
		t.Skip("CYQ_URI not set, skipping integration test")
	}

	cfg := &cyq.Neo4jConfig{
		URI:      uri,
		Username: os.Getenv("CYQ_USER"),
		Password: os.Getenv("CYQ_PASS"),
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	return db
}
