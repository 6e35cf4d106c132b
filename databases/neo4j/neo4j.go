// Package neo4j provides a cyq Database implementation for Neo4j.
package neo4j

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/rlch/cyq"
	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig is returned when an invalid configuration is provided.
	ErrInvalidConfig = errors.New("neo4j: expected *cyq.Neo4jConfig")

	// ErrUnexpectedResult is returned when a transaction function yields
	// something other than rows.
	ErrUnexpectedResult = errors.New("neo4j: unexpected transaction result")
)

//nolint:gochecknoinits // Database self-registration pattern
func init() {
	cyq.RegisterDatabase(cyq.DatabaseNeo4j, func(cfg any) (cyq.Database, error) {
		neo4jCfg, ok := cfg.(*cyq.Neo4jConfig)
		if !ok {
			return nil, fmt.Errorf("%w, got %T", ErrInvalidConfig, cfg)
		}

		return New(neo4jCfg)
	})
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger used for session lifecycle messages.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Database) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Database implements cyq.Database for Neo4j. Each NewSession opens a driver
// session in the requested access mode.
type Database struct {
	driver neo4j.DriverWithContext
	db     string
	logger *zap.Logger
}

// New creates a driver from the given configuration and verifies
// connectivity.
func New(cfg *cyq.Neo4jConfig, opts ...Option) (*Database, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}

	d := NewWithDriver(driver, cfg.Database, opts...)

	ctx := context.Background()

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("neo4j: failed to connect: %w", err)
	}

	d.logger.Debug("connected", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))

	return d, nil
}

// NewWithDriver wraps an existing driver. database may be empty for the
// server default.
func NewWithDriver(driver neo4j.DriverWithContext, database string, opts ...Option) *Database {
	d := &Database{
		driver: driver,
		db:     database,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Name returns the database identifier.
func (d *Database) Name() string {
	return cyq.DatabaseNeo4j
}

// NewSession opens a read or write session.
func (d *Database) NewSession(ctx context.Context, mode cyq.Mode) (cyq.Session, error) { //nolint:ireturn
	sessionCfg := neo4j.SessionConfig{
		AccessMode: neo4j.AccessModeRead,
	}

	switch mode {
	case cyq.ModeRead:
	case cyq.ModeWrite:
		sessionCfg.AccessMode = neo4j.AccessModeWrite
	default:
		return nil, fmt.Errorf("%w: %q", cyq.ErrInvalidMode, mode)
	}

	if d.db != "" {
		sessionCfg.DatabaseName = d.db
	}

	d.logger.Debug("opening session", zap.String("mode", string(mode)))

	return &Session{session: d.driver.NewSession(ctx, sessionCfg), logger: d.logger}, nil
}

// Close releases the driver.
func (d *Database) Close() error {
	if d.driver == nil {
		return nil
	}

	err := d.driver.Close(context.Background())
	if err != nil {
		return fmt.Errorf("neo4j: failed to close driver: %w", err)
	}

	return nil
}

// Session wraps a driver session to implement cyq.Session.
type Session struct {
	session neo4j.SessionWithContext
	logger  *zap.Logger
}

// ExecuteRead runs work in a managed read transaction.
func (s *Session) ExecuteRead(ctx context.Context, work cyq.TransactionWork) ([]map[string]any, error) {
	return rows(s.session.ExecuteRead(ctx, managed(work)))
}

// ExecuteWrite runs work in a managed write transaction.
func (s *Session) ExecuteWrite(ctx context.Context, work cyq.TransactionWork) ([]map[string]any, error) {
	return rows(s.session.ExecuteWrite(ctx, managed(work)))
}

// Close closes the driver session.
func (s *Session) Close(ctx context.Context) error {
	err := s.session.Close(ctx)
	if err != nil {
		return fmt.Errorf("neo4j: failed to close session: %w", err)
	}

	s.logger.Debug("session closed")

	return nil
}

func managed(work cyq.TransactionWork) neo4j.ManagedTransactionWork {
	return func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&Transaction{tx: tx})
	}
}

func rows(result any, err error) ([]map[string]any, error) {
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	out, ok := result.([]map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedResult, result)
	}

	return out, nil
}

// Transaction wraps a managed transaction to implement cyq.Transaction.
type Transaction struct {
	tx neo4j.ManagedTransaction
}

// Run executes a Cypher query and collects its records.
// Results are flattened so that node/relationship properties are accessible
// as "alias.property" keys (e.g., "u.name" for RETURN u).
func (t *Transaction) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	result, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("neo4j: query execution failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to collect results: %w", err)
	}

	out := make([]map[string]any, len(records))
	for i, record := range records {
		out[i] = flattenRecord(record.Keys, record.Values)
	}

	return out, nil
}

// flattenRecord converts a Neo4j record into a flat map.
// Nodes and relationships are expanded so their properties are accessible
// as "alias.property" (e.g., u.name, r.since).
func flattenRecord(keys []string, values []any) map[string]any {
	result := make(map[string]any)

	for i, key := range keys {
		flattenValue(result, key, values[i])
	}

	return result
}

func flattenValue(result map[string]any, key string, value any) {
	switch v := value.(type) {
	case dbtype.Node:
		for prop, propVal := range v.Props {
			result[key+"."+prop] = propVal
		}

		result[key+".labels"] = v.Labels
		result[key+".elementId"] = v.ElementId

	case dbtype.Relationship:
		for prop, propVal := range v.Props {
			result[key+"."+prop] = propVal
		}

		result[key+".type"] = v.Type
		result[key+".elementId"] = v.ElementId

	case dbtype.Path:
		result[key+".nodes"] = v.Nodes
		result[key+".relationships"] = v.Relationships

	case map[string]any:
		for k, val := range v {
			result[key+"."+k] = val
		}

	default:
		result[key] = v
	}
}

// Compile-time interface checks.
var (
	_ cyq.Database           = (*Database)(nil)
	_ cyq.SchemaIntrospector = (*Database)(nil)
	_ cyq.Session            = (*Session)(nil)
	_ cyq.Transaction        = (*Transaction)(nil)
)
