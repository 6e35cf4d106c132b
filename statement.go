package cyq

import (
	"fmt"
	"slices"
	"strings"
)

// segment is one rendered block of a query: a statement or a WITH.
type segment interface {
	render(includePrefix bool) string
}

// statement holds the clause buckets of one query segment. Buckets render
// in a fixed order regardless of the order clauses were added.
type statement struct {
	prefix         string
	pattern        []fmt.Stringer
	where          []*conditionGroup
	order          []Order
	detachDelete   []string
	delete         []string
	ret            []string
	distinctReturn []string
	set            []fmt.Stringer
	onCreateSet    []fmt.Stringer
	onMatchSet     []fmt.Stringer
	remove         []string
	fullText       []*fullTextClause
	vector         []*vectorClause
	skip           int
	limit          int
}

func newStatement(prefix string) *statement {
	return &statement{prefix: prefix}
}

// withGroup returns a shallow copy carrying g as an extra condition group.
// The receiver's buckets are left untouched.
func (s *statement) withGroup(g *conditionGroup) *statement {
	cp := *s
	if !g.empty() {
		cp.where = append(slices.Clip(s.where), g)
	}

	return &cp
}

func (s *statement) empty() bool {
	return len(s.pattern) == 0 &&
		len(s.fullText) == 0 &&
		len(s.vector) == 0 &&
		len(s.remove) == 0 &&
		len(s.onCreateSet) == 0 &&
		len(s.onMatchSet) == 0 &&
		len(s.set) == 0 &&
		len(s.delete) == 0 &&
		len(s.detachDelete) == 0 &&
		len(s.ret) == 0 &&
		len(s.distinctReturn) == 0 &&
		len(s.order) == 0 &&
		s.skip <= 0 &&
		s.limit <= 0 &&
		renderConditions(s.where) == ""
}

func (s *statement) render(includePrefix bool) string {
	var out []string

	if len(s.fullText) > 0 {
		out = append(out, join(s.fullText, "\n"))
	}

	if len(s.pattern) > 0 {
		if includePrefix && s.prefix != "" {
			out = append(out, s.prefix)
		}

		out = append(out, join(s.pattern, ""))
	}

	if where := renderConditions(s.where); where != "" {
		out = append(out, where)
	}

	if len(s.vector) > 0 {
		out = append(out, join(s.vector, "\n"))
	}

	out = section(out, KeywordRemove, s.remove)
	out = section(out, KeywordOnCreateSet, s.onCreateSet)
	out = section(out, KeywordOnMatchSet, s.onMatchSet)
	out = section(out, KeywordSet, s.set)
	out = section(out, KeywordDelete, s.delete)
	out = section(out, KeywordDetachDelete, s.detachDelete)
	out = section(out, KeywordReturn, s.ret)
	out = section(out, KeywordReturnDistinct, s.distinctReturn)
	out = section(out, KeywordOrderBy, s.order)

	if s.skip > 0 {
		out = append(out, fmt.Sprintf("%s %d", KeywordSkip, s.skip))
	}

	if s.limit > 0 {
		out = append(out, fmt.Sprintf("%s %d", KeywordLimit, s.limit))
	}

	return strings.Join(out, "\n")
}

// section appends KEYWORD and its comma-joined items when items is non-empty.
func section[T any](out []string, keyword string, items []T) []string {
	if len(items) == 0 {
		return out
	}

	return append(out, keyword, join(items, ", "))
}

func join[T any](items []T, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprint(item)
	}

	return strings.Join(parts, sep)
}
