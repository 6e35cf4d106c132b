package cyq

import (
	"context"
	"fmt"
)

// SchemaIntrospector is implemented by databases that support schema extraction.
type SchemaIntrospector interface {
	// IntrospectSchema reads the node models of the live database, sorted by
	// name.
	IntrospectSchema(ctx context.Context) ([]NodeModel, error)
}

// Introspect extracts node models from db.
func Introspect(ctx context.Context, db Database) ([]NodeModel, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	si, ok := db.(SchemaIntrospector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnsupported, db.Name())
	}

	return si.IntrospectSchema(ctx)
}
