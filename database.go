package cyq

import (
	"context"
	"fmt"
	"slices"
)

// Database is an execution target. It opens sessions in a given mode; the
// builder never talks to the network itself.
type Database interface {
	// Name returns the database identifier (e.g., "neo4j").
	Name() string

	// NewSession opens a session for mode.
	NewSession(ctx context.Context, mode Mode) (Session, error)

	// Close releases database resources.
	Close() error
}

// Session runs units of work inside read or write transactions. A session
// must be closed once its transaction settles.
type Session interface {
	ExecuteRead(ctx context.Context, work TransactionWork) ([]map[string]any, error)
	ExecuteWrite(ctx context.Context, work TransactionWork) ([]map[string]any, error)
	Close(ctx context.Context) error
}

// Transaction runs a query within a managed transaction.
type Transaction interface {
	Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// TransactionWork is the unit of work handed to a session. It may be retried
// by the session, so it must not have side effects beyond tx.
type TransactionWork func(tx Transaction) ([]map[string]any, error)

// DatabaseFactory creates a Database from configuration.
type DatabaseFactory func(cfg any) (Database, error)

var databases = make(map[string]DatabaseFactory)

// RegisterDatabase registers a database factory by name.
func RegisterDatabase(name string, factory DatabaseFactory) {
	databases[name] = factory
}

// NewDatabase creates a database instance by name.
func NewDatabase(name string, cfg any) (Database, error) { //nolint:ireturn
	factory, ok := databases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDatabase, name)
	}

	return factory(cfg)
}

// RegisteredDatabases returns the names of all registered databases, sorted.
func RegisteredDatabases() []string {
	names := make([]string, 0, len(databases))
	for name := range databases {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
