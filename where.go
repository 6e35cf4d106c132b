package cyq

import (
	"strings"
)

// predicate is a single boolean test rendered without negation.
type predicate interface {
	String() string
}

// comparison renders left op right. Unary operators leave right empty.
type comparison struct {
	left  string
	op    string
	right string
}

func (c comparison) String() string {
	if c.right == "" {
		return c.left + " " + c.op
	}

	return c.left + " " + c.op + " " + c.right
}

// between renders $floor <= key <= $ceiling.
type between struct {
	key     string
	floor   string
	ceiling string
}

func (b between) String() string {
	return "$" + b.floor + " <= " + b.key + " <= $" + b.ceiling
}

// identity renders id(alias) = $param or elementId(alias) = $param.
type identity struct {
	fn    string
	alias string
	param string
}

func (i identity) String() string {
	return i.fn + "(" + i.alias + ") = $" + i.param
}

// condition is a predicate with its negation flag.
type condition struct {
	pred    predicate
	negated bool
}

func (c *condition) String() string {
	if c.negated {
		return "NOT (" + c.pred.String() + ")"
	}

	return c.pred.String()
}

// conditionGroup is one boolean group of a statement's condition tree,
// opened by WHERE, AND or OR and joining its members with connector.
type conditionGroup struct {
	prefix    string
	connector string
	conds     []*condition
}

func newConditionGroup(prefix, connector string) *conditionGroup {
	if connector == "" {
		connector = KeywordAnd
	}

	return &conditionGroup{prefix: prefix, connector: connector}
}

func (g *conditionGroup) append(c *condition) {
	g.conds = append(g.conds, c)
}

func (g *conditionGroup) empty() bool {
	return g == nil || len(g.conds) == 0
}

// render joins the group's conditions. prefix overrides the group's own
// keyword; wrap parenthesises groups of more than one condition.
func (g *conditionGroup) render(prefix string, wrap bool) string {
	parts := make([]string, len(g.conds))
	for i, c := range g.conds {
		parts[i] = c.String()
	}

	body := strings.Join(parts, " "+g.connector+" ")
	if wrap && len(g.conds) > 1 {
		body = "(" + body + ")"
	}

	return prefix + " " + body
}

// renderConditions renders a statement's groups one per line. The first
// non-empty group always opens with WHERE.
func renderConditions(groups []*conditionGroup) string {
	nonEmpty := make([]*conditionGroup, 0, len(groups))

	for _, g := range groups {
		if !g.empty() {
			nonEmpty = append(nonEmpty, g)
		}
	}

	wrap := len(nonEmpty) > 1
	lines := make([]string, len(nonEmpty))

	for i, g := range nonEmpty {
		prefix := g.prefix
		if i == 0 || prefix == "" {
			prefix = KeywordWhere
		}

		lines[i] = g.render(prefix, wrap)
	}

	return strings.Join(lines, "\n")
}

type condKind int

const (
	condCompare condKind = iota
	condRaw
	condList
	condMap
)

// Cond is the input form of a condition. It is resolved by the builder into
// one or more conditions, allocating parameters for every bound value.
type Cond struct {
	kind    condKind
	key     string
	op      string
	value   any
	raw     string
	list    []Cond
	props   Props
	negated bool
}

// Eq is key = $value.
func Eq(key string, value any) Cond {
	return Cond{kind: condCompare, key: key, op: OpEquals, value: value}
}

// Op is key op $value. OpIsNull and OpIsNotNull bind no parameter.
func Op(key, op string, value any) Cond {
	return Cond{kind: condCompare, key: key, op: op, value: value}
}

// Raw is a boolean fragment inserted verbatim. It is not parameterised.
func Raw(fragment string) Cond {
	return Cond{kind: condRaw, raw: fragment}
}

// All expands to each of conds in order.
func All(conds ...Cond) Cond {
	return Cond{kind: condList, list: conds}
}

// Map expands to one equality per entry, in order.
func Map(props Props) Cond {
	return Cond{kind: condMap, props: props}
}

// Not negates c. For All and Map every expanded condition is negated.
func Not(c Cond) Cond {
	c.negated = !c.negated

	return c
}

func unaryOperator(op string) bool {
	switch strings.ToUpper(strings.TrimSpace(op)) {
	case OpIsNull, OpIsNotNull:
		return true
	default:
		return false
	}
}
