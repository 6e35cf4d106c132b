package cyq

import (
	"fmt"
	"strings"
)

// Clause keywords. These are emitted verbatim.
const (
	KeywordMatch          = "MATCH"
	KeywordOptionalMatch  = "OPTIONAL MATCH"
	KeywordCreate         = "CREATE"
	KeywordMerge          = "MERGE"
	KeywordWhere          = "WHERE"
	KeywordAnd            = "AND"
	KeywordOr             = "OR"
	KeywordRemove         = "REMOVE"
	KeywordOnCreateSet    = "ON CREATE SET"
	KeywordOnMatchSet     = "ON MATCH SET"
	KeywordSet            = "SET"
	KeywordDelete         = "DELETE"
	KeywordDetachDelete   = "DETACH DELETE"
	KeywordReturn         = "RETURN"
	KeywordReturnDistinct = "RETURN DISTINCT"
	KeywordOrderBy        = "ORDER BY"
	KeywordSkip           = "SKIP"
	KeywordLimit          = "LIMIT"
	KeywordWith           = "WITH"
	KeywordWithDistinct   = "WITH DISTINCT"
)

// Comparison operators accepted by WhereOp. Any other operator string is
// passed through verbatim.
const (
	OpEquals     = "="
	OpNotEquals  = "<>"
	OpLess       = "<"
	OpLessEq     = "<="
	OpGreater    = ">"
	OpGreaterEq  = ">="
	OpIn         = "IN"
	OpContains   = "CONTAINS"
	OpStartsWith = "STARTS WITH"
	OpEndsWith   = "ENDS WITH"
	OpMatches    = "=~"
	OpIsNull     = "IS NULL"
	OpIsNotNull  = "IS NOT NULL"
)

// Parameter name prefixes.
const (
	prefixWhere       = "where"
	prefixSet         = "set"
	prefixOnCreateSet = "on_create"
	prefixOnMatchSet  = "on_match"
	prefixFullText    = "fulltext"
	prefixVector      = "vector"
)

// Database names.
const (
	DatabaseNeo4j = "neo4j"
)

// Mode selects the session and transaction kind used by Execute.
type Mode string

// Execution modes.
const (
	ModeRead  Mode = "READ"
	ModeWrite Mode = "WRITE"
)

// ParseMode parses "read" or "write" case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeRead:
		return ModeRead, nil
	case ModeWrite:
		return ModeWrite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

func (m Mode) valid() bool {
	return m == ModeRead || m == ModeWrite
}

// DateType selects the temporal constructor used by WhereDate.
type DateType string

// Date types.
const (
	DateTime DateType = "datetime"
	Date     DateType = "date"
	Time     DateType = "time"
)

// ParseDateType parses one of "datetime", "date" or "time".
func ParseDateType(s string) (DateType, error) {
	t := DateType(strings.ToLower(strings.TrimSpace(s)))
	if !t.valid() {
		return "", fmt.Errorf("%w: %q (want datetime, date or time)", ErrInvalidDateType, s)
	}

	return t, nil
}

func (t DateType) valid() bool {
	return t == DateTime || t == Date || t == Time
}

// SortOrder is the direction token of an ORDER BY item.
type SortOrder string

// Sort orders.
const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// ParseSortOrder parses "asc" or "desc" case-insensitively. An empty string
// is ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToUpper(strings.TrimSpace(s))) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
	}
}
