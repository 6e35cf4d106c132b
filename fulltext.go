package cyq

import (
	"fmt"
	"strings"
)

// FullTextType selects the full-text procedure.
type FullTextType string

// Full-text index types.
const (
	NodeFullText         FullTextType = "nodeFulltext"
	RelationshipFullText FullTextType = "relationshipFulltext"
)

// SearchOperator joins full-text terms.
type SearchOperator string

// Search operators. AND, OR and NOT are infix words; + and - prefix a term.
const (
	SearchAnd        SearchOperator = "AND"
	SearchOr         SearchOperator = "OR"
	SearchNot        SearchOperator = "NOT"
	SearchRequired   SearchOperator = "+"
	SearchProhibited SearchOperator = "-"
)

// ParseSearchOperator parses and, or, not, + or -.
func ParseSearchOperator(s string) (SearchOperator, error) {
	op := SearchOperator(strings.ToUpper(strings.TrimSpace(s)))
	if op == "" {
		return SearchAnd, nil
	}

	if !op.valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSearchOperator, s)
	}

	return op, nil
}

func (o SearchOperator) valid() bool {
	switch o {
	case SearchAnd, SearchOr, SearchNot, SearchRequired, SearchProhibited:
		return true
	default:
		return false
	}
}

// SearchTerm is one term of a full-text search. Key restricts the term to a
// property; Operator overrides the query's default operator.
type SearchTerm struct {
	Key      string         `yaml:"key,omitempty"`
	Value    string         `yaml:"value"`
	Operator SearchOperator `yaml:"operator,omitempty"`
}

// Terms converts plain strings into search terms.
func Terms(values ...string) []SearchTerm {
	terms := make([]SearchTerm, len(values))
	for i, v := range values {
		terms[i] = SearchTerm{Value: v}
	}

	return terms
}

// FullTextQuery describes a full-text index lookup.
type FullTextQuery struct {
	Index string
	Type  FullTextType
	Terms []SearchTerm

	// Operator joins terms that carry none. Defaults to AND.
	Operator SearchOperator

	// Alias names the yielded node or relationship. Defaults to Index.
	Alias string

	// ScoreAlias names the yielded score. Defaults to <Index>_score.
	ScoreAlias string
}

type fullTextClause struct {
	typ        FullTextType
	indexParam string
	queryParam string
	alias      string
	scoreAlias string
}

func (f *fullTextClause) String() string {
	procedure, yield := "db.index.fulltext.queryNodes", "node"
	if f.typ == RelationshipFullText {
		procedure, yield = "db.index.fulltext.queryRelationships", "relationship"
	}

	return fmt.Sprintf("CALL %s($%s, $%s) YIELD %s AS %s, score AS %s",
		procedure, f.indexParam, f.queryParam, yield, f.alias, f.scoreAlias)
}

func (q FullTextQuery) validate() error {
	if q.Index == "" {
		return fmt.Errorf("%w: full-text query needs an index name", ErrInvalidArgument)
	}

	switch q.Type {
	case "", NodeFullText, RelationshipFullText:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFullTextType, q.Type)
	}

	if len(q.Terms) == 0 {
		return fmt.Errorf("%w: full-text query on %q has no search terms", ErrInvalidArgument, q.Index)
	}

	if q.Operator != "" && !q.Operator.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSearchOperator, q.Operator)
	}

	for _, t := range q.Terms {
		if t.Operator != "" && !t.Operator.valid() {
			return fmt.Errorf("%w: %q on term %q", ErrInvalidSearchOperator, t.Operator, t.Value)
		}
	}

	return nil
}

// searchExpression joins terms into Lucene query syntax.
func searchExpression(terms []SearchTerm, fallback SearchOperator) string {
	if fallback == "" {
		fallback = SearchAnd
	}

	var sb strings.Builder

	for i, t := range terms {
		op := t.Operator
		if op == "" {
			op = fallback
		}

		text := luceneValue(t.Value)
		if t.Key != "" {
			text = t.Key + ":" + text
		}

		switch op {
		case SearchRequired, SearchProhibited:
			if i > 0 {
				sb.WriteString(" ")
			}

			sb.WriteString(string(op))
		default:
			if i > 0 {
				sb.WriteString(" " + string(op) + " ")
			}
		}

		sb.WriteString(text)
	}

	return sb.String()
}

const luceneSpecial = `+-&|!(){}[]^"~*?:\/`

// luceneValue escapes special characters; values with whitespace become
// quoted phrases.
func luceneValue(v string) string {
	if strings.ContainsAny(v, " \t\n") {
		r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)

		return `"` + r.Replace(v) + `"`
	}

	var sb strings.Builder

	for _, c := range v {
		if strings.ContainsRune(luceneSpecial, c) {
			sb.WriteByte('\\')
		}

		sb.WriteRune(c)
	}

	return sb.String()
}
