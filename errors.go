package cyq

import "errors"

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .cyq.yaml is found.
	ErrConfigNotFound = errors.New("cyq: no .cyq.yaml found")

	// ErrUnknownDatabase is returned when an unregistered database is requested.
	ErrUnknownDatabase = errors.New("cyq: unknown database")

	// ErrNoDatabase is returned by Execute when the builder has no database.
	ErrNoDatabase = errors.New("cyq: no database configured")

	// ErrSchemaUnsupported is returned by Introspect for databases that
	// cannot report their schema.
	ErrSchemaUnsupported = errors.New("cyq: database does not support schema introspection")

	// ErrNoStatement is returned when a clause is added before any
	// match, create, merge or with opened a statement.
	ErrNoStatement = errors.New("cyq: no open statement")

	// ErrInvalidArgument is returned for malformed builder arguments.
	ErrInvalidArgument = errors.New("cyq: invalid argument")

	// ErrInvalidDateType is returned for date types other than datetime, date and time.
	ErrInvalidDateType = errors.New("cyq: invalid date type")

	// ErrInvalidDegrees is returned for malformed traversal degree specs.
	ErrInvalidDegrees = errors.New("cyq: invalid degrees")

	// ErrInvalidDirection is returned for unknown relationship directions.
	ErrInvalidDirection = errors.New("cyq: invalid direction")

	// ErrInvalidMode is returned for execution modes other than READ and WRITE.
	ErrInvalidMode = errors.New("cyq: invalid mode")

	// ErrInvalidSortOrder is returned for sort orders other than ASC and DESC.
	ErrInvalidSortOrder = errors.New("cyq: invalid sort order")

	// ErrInvalidSearchOperator is returned for unknown full-text operators.
	ErrInvalidSearchOperator = errors.New("cyq: invalid search operator")

	// ErrInvalidFullTextType is returned for unknown full-text index types.
	ErrInvalidFullTextType = errors.New("cyq: invalid full-text index type")

	// ErrNotVectorIndexed is returned when a vector query names a property
	// the model does not vector-index.
	ErrNotVectorIndexed = errors.New("cyq: property is not vector indexed")
)
