package cyq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent backtick-quotes labels and types that are not plain identifiers.
func quoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}

	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// propertyBinding is an inline pattern property: key: $param.
type propertyBinding struct {
	key   string
	param string
}

func (p propertyBinding) String() string {
	return quoteIdent(p.key) + ": $" + p.param
}

// nodePattern renders (alias:Label1:Label2 {key: $param}).
type nodePattern struct {
	alias  string
	labels []string
	props  []propertyBinding
}

func (n nodePattern) String() string {
	var sb strings.Builder

	sb.WriteString("(")
	sb.WriteString(n.alias)

	for _, label := range n.labels {
		sb.WriteString(":")
		sb.WriteString(quoteIdent(label))
	}

	if len(n.props) > 0 {
		if n.alias != "" || len(n.labels) > 0 {
			sb.WriteString(" ")
		}

		sb.WriteString("{")

		for i, p := range n.props {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(p.String())
		}

		sb.WriteString("}")
	}

	sb.WriteString(")")

	return sb.String()
}

type degreeKind int

const (
	degreesSingle degreeKind = iota
	degreesFixed
	degreesRange
	degreesMin
	degreesMax
	degreesAny
)

// Degrees is the hop-count spec of a relationship pattern. The zero value is
// a single hop and renders nothing.
type Degrees struct {
	kind     degreeKind
	min, max int
}

// Hops is an exact hop count: *n.
func Hops(n int) Degrees { return Degrees{kind: degreesFixed, min: n, max: n} }

// HopRange is a bounded range: *min..max.
func HopRange(minHops, maxHops int) Degrees {
	return Degrees{kind: degreesRange, min: minHops, max: maxHops}
}

// MinHops is an open-ended range: *min..
func MinHops(minHops int) Degrees { return Degrees{kind: degreesMin, min: minHops} }

// MaxHops is a range bounded above: *..max
func MaxHops(maxHops int) Degrees { return Degrees{kind: degreesMax, max: maxHops} }

// AnyHops is an unbounded traversal: *
func AnyHops() Degrees { return Degrees{kind: degreesAny} }

// ParseDegrees parses "n", "min..max", "..max", "min.." and "*". An empty
// string is a single hop.
func ParseDegrees(s string) (Degrees, error) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return AnyHops(), nil
	}

	s = strings.TrimPrefix(s, "*")

	lo, hi, isRange := strings.Cut(s, "..")
	if !isRange {
		if s == "" {
			return Degrees{}, nil
		}

		n, err := strconv.Atoi(s)
		if err != nil {
			return Degrees{}, fmt.Errorf("%w: %q", ErrInvalidDegrees, s)
		}

		d := Hops(n)

		return d, d.validate()
	}

	var (
		minHops, maxHops int
		err              error
	)

	if lo != "" {
		if minHops, err = strconv.Atoi(lo); err != nil {
			return Degrees{}, fmt.Errorf("%w: %q", ErrInvalidDegrees, s)
		}
	}

	if hi != "" {
		if maxHops, err = strconv.Atoi(hi); err != nil {
			return Degrees{}, fmt.Errorf("%w: %q", ErrInvalidDegrees, s)
		}
	}

	var d Degrees

	switch {
	case lo == "" && hi == "":
		d = AnyHops()
	case lo == "":
		d = MaxHops(maxHops)
	case hi == "":
		d = MinHops(minHops)
	default:
		d = HopRange(minHops, maxHops)
	}

	return d, d.validate()
}

func (d Degrees) validate() error {
	if d.min < 0 || d.max < 0 {
		return fmt.Errorf("%w: negative hop count in %q", ErrInvalidDegrees, d.String())
	}

	if d.kind == degreesRange && d.min > d.max {
		return fmt.Errorf("%w: lower bound exceeds upper bound in %q", ErrInvalidDegrees, d.String())
	}

	return nil
}

// String renders the degree suffix, e.g. "*1..3". A single hop is "".
func (d Degrees) String() string {
	switch d.kind {
	case degreesFixed:
		return "*" + strconv.Itoa(d.min)
	case degreesRange:
		return "*" + strconv.Itoa(d.min) + ".." + strconv.Itoa(d.max)
	case degreesMin:
		return "*" + strconv.Itoa(d.min) + ".."
	case degreesMax:
		return "*.." + strconv.Itoa(d.max)
	case degreesAny:
		return "*"
	default:
		return ""
	}
}

// relationshipPattern renders -[alias:TYPE*degrees]-> and its mirrored and
// undirected forms.
type relationshipPattern struct {
	typ     string
	dir     Direction
	alias   string
	degrees Degrees
}

func (r relationshipPattern) String() string {
	inner := r.alias
	if r.typ != "" {
		inner += ":" + quoteIdent(r.typ)
	}

	inner += r.degrees.String()

	switch r.dir {
	case DirectionIn:
		return "<-[" + inner + "]-"
	case DirectionOut:
		return "-[" + inner + "]->"
	default:
		return "-[" + inner + "]-"
	}
}

// assignment renders key op $param for the SET family.
type assignment struct {
	key   string
	op    string
	param string
}

func (a assignment) String() string {
	return a.key + " " + a.op + " $" + a.param
}

// rawFragment is caller-trusted text inserted verbatim.
type rawFragment string

func (r rawFragment) String() string { return string(r) }

// Order is a single ORDER BY item.
type Order struct {
	Field string
	Dir   SortOrder
}

// String renders "field ASC" or "field DESC".
func (o Order) String() string {
	dir := o.Dir
	if dir == "" {
		dir = Asc
	}

	return o.Field + " " + string(dir)
}

// withSegment renders WITH a, b or WITH DISTINCT a, b.
type withSegment struct {
	distinct bool
	items    []string
}

func (w withSegment) render(bool) string {
	keyword := KeywordWith
	if w.distinct {
		keyword = KeywordWithDistinct
	}

	return keyword + " " + strings.Join(w.items, ", ")
}
