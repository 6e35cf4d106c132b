package plan

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rlch/cyq"
	"gopkg.in/yaml.v3"
)

type applier struct {
	b      *cyq.Builder
	models []cyq.NodeModel
}

type verbFunc func(a *applier, arg *yaml.Node) error

var verbs = map[string]verbFunc{
	"statement":      (*applier).statement,
	"match":          nodeVerb((*cyq.Builder).Match),
	"optional_match": nodeVerb((*cyq.Builder).OptionalMatch),
	"create":         nodeVerb((*cyq.Builder).Create),
	"merge":          nodeVerb((*cyq.Builder).Merge),
	"to":             nodeVerb((*cyq.Builder).To),
	"to_anything": func(a *applier, _ *yaml.Node) error {
		a.b.ToAnything()

		return nil
	},
	"relationship":      (*applier).relationship,
	"with":              listVerb((*cyq.Builder).With),
	"with_distinct":     listVerb((*cyq.Builder).WithDistinct),
	"where":             condVerb((*cyq.Builder).WhereCond),
	"where_not":         (*applier).whereNot,
	"where_any":         condVerb((*cyq.Builder).WhereAny),
	"or":                condVerb((*cyq.Builder).Or),
	"and":               condVerb((*cyq.Builder).And),
	"where_raw":         (*applier).whereRaw,
	"where_between":     (*applier).whereBetween,
	"where_not_between": (*applier).whereNotBetween,
	"where_id":          (*applier).whereID,
	"where_element_id":  (*applier).whereElementID,
	"where_date":        (*applier).whereDate,
	"where_distance":    (*applier).whereDistance,
	"set":               propsVerb((*cyq.Builder).SetProps),
	"on_create_set":     propsVerb((*cyq.Builder).OnCreateSetProps),
	"on_match_set":      propsVerb((*cyq.Builder).OnMatchSetProps),
	"set_raw":           listVerb((*cyq.Builder).SetRaw),
	"remove":            listVerb((*cyq.Builder).Remove),
	"delete":            listVerb((*cyq.Builder).Delete),
	"detach_delete":     listVerb((*cyq.Builder).DetachDelete),
	"return":            listVerb((*cyq.Builder).Return),
	"return_distinct":   listVerb((*cyq.Builder).ReturnDistinct),
	"order_by":          (*applier).orderBy,
	"skip":              intVerb((*cyq.Builder).Skip),
	"limit":             intVerb((*cyq.Builder).Limit),
	"fulltext":          (*applier).fullText,
	"vector":            (*applier).vector,
}

// Verbs returns the step keys a plan may use.
func Verbs() []string {
	names := make([]string, 0, len(verbs))
	for name := range verbs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// scalar decodes any scalar node as its literal text.
type scalar string

func (s *scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a scalar", ErrInvalidStep, value.Line)
	}

	*s = scalar(value.Value)

	return nil
}

func invalid(arg *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidStep, arg.Line, fmt.Sprintf(format, args...))
}

// strs accepts a string or a list of strings.
func strs(arg *yaml.Node) ([]string, error) {
	switch arg.Kind {
	case yaml.ScalarNode:
		return []string{arg.Value}, nil
	case yaml.SequenceNode:
		var out []string

		err := arg.Decode(&out)

		return out, err
	default:
		return nil, invalid(arg, "expected a string or a list of strings")
	}
}

// props decodes a mapping in document order.
func props(arg *yaml.Node) (cyq.Props, error) {
	if arg.Kind == 0 || (arg.Kind == yaml.ScalarNode && arg.Tag == "!!null") {
		return nil, nil
	}

	if arg.Kind != yaml.MappingNode {
		return nil, invalid(arg, "expected a mapping")
	}

	out := make(cyq.Props, 0, len(arg.Content)/2)

	for i := 0; i+1 < len(arg.Content); i += 2 {
		var value any

		err := arg.Content[i+1].Decode(&value)
		if err != nil {
			return nil, err
		}

		out = append(out, cyq.Prop{Key: arg.Content[i].Value, Value: value})
	}

	return out, nil
}

func listVerb(call func(*cyq.Builder, ...string) *cyq.Builder) verbFunc {
	return func(a *applier, arg *yaml.Node) error {
		items, err := strs(arg)
		if err != nil {
			return err
		}

		call(a.b, items...)

		return nil
	}
}

func propsVerb(call func(*cyq.Builder, cyq.Props) *cyq.Builder) verbFunc {
	return func(a *applier, arg *yaml.Node) error {
		p, err := props(arg)
		if err != nil {
			return err
		}

		call(a.b, p)

		return nil
	}
}

func intVerb(call func(*cyq.Builder, int) *cyq.Builder) verbFunc {
	return func(a *applier, arg *yaml.Node) error {
		var n int

		err := arg.Decode(&n)
		if err != nil {
			return invalid(arg, "expected an integer")
		}

		call(a.b, n)

		return nil
	}
}

type nodeSpec struct {
	Alias  string    `yaml:"alias"`
	Model  string    `yaml:"model"`
	Labels []string  `yaml:"labels"`
	Props  yaml.Node `yaml:"props"`
}

func nodeVerb(call func(*cyq.Builder, string, cyq.Model, ...cyq.Prop) *cyq.Builder) verbFunc {
	return func(a *applier, arg *yaml.Node) error {
		alias, model, p, err := a.node(arg)
		if err != nil {
			return err
		}

		call(a.b, alias, model, p...)

		return nil
	}
}

// node decodes "alias:Label:Label" or {alias, model, labels, props}.
func (a *applier) node(arg *yaml.Node) (string, cyq.Model, cyq.Props, error) {
	if arg.Kind == yaml.ScalarNode {
		parts := strings.Split(arg.Value, ":")
		if len(parts) == 1 {
			return parts[0], nil, nil, nil
		}

		return parts[0], cyq.Labels(parts[1:]...), nil, nil
	}

	var spec nodeSpec

	err := arg.Decode(&spec)
	if err != nil {
		return "", nil, nil, err
	}

	p, err := props(&spec.Props)
	if err != nil {
		return "", nil, nil, err
	}

	var model cyq.Model

	switch {
	case spec.Model != "":
		m, err := a.model(spec.Model)
		if err != nil {
			return "", nil, nil, err
		}

		model = m
	case len(spec.Labels) > 0:
		model = cyq.Labels(spec.Labels...)
	}

	return spec.Alias, model, p, nil
}

func (a *applier) model(name string) (*cyq.NodeModel, error) {
	for i := range a.models {
		if a.models[i].Name == name {
			return &a.models[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
}

func (a *applier) statement(arg *yaml.Node) error {
	var prefix string

	err := arg.Decode(&prefix)
	if err != nil {
		return invalid(arg, "expected a keyword")
	}

	a.b.Statement(prefix)

	return nil
}

type relationshipSpec struct {
	Type      string `yaml:"type"`
	Direction string `yaml:"direction"`
	Alias     string `yaml:"alias"`
	Degrees   scalar `yaml:"degrees"`
}

func (a *applier) relationship(arg *yaml.Node) error {
	var spec relationshipSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	dir, err := cyq.ParseDirection(spec.Direction)
	if err != nil {
		return err
	}

	if spec.Degrees == "" {
		a.b.Relationship(spec.Type, dir, spec.Alias)

		return nil
	}

	degrees, err := cyq.ParseDegrees(string(spec.Degrees))
	if err != nil {
		return err
	}

	a.b.Relationship(spec.Type, dir, spec.Alias, degrees)

	return nil
}

type condSpec struct {
	Key   string `yaml:"key"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
	Raw   string `yaml:"raw"`
	Not   bool   `yaml:"not"`
}

// conds decodes a mapping of equalities, a raw string, or a list of
// {key, op, value, raw, not} entries.
func conds(arg *yaml.Node) ([]cyq.Cond, error) {
	switch arg.Kind {
	case yaml.ScalarNode:
		return []cyq.Cond{cyq.Raw(arg.Value)}, nil
	case yaml.MappingNode:
		p, err := props(arg)
		if err != nil {
			return nil, err
		}

		return []cyq.Cond{cyq.Map(p)}, nil
	case yaml.SequenceNode:
		out := make([]cyq.Cond, 0, len(arg.Content))

		for _, item := range arg.Content {
			var spec condSpec

			err := item.Decode(&spec)
			if err != nil {
				return nil, err
			}

			var c cyq.Cond

			switch {
			case spec.Raw != "":
				c = cyq.Raw(spec.Raw)
			case spec.Key == "":
				return nil, invalid(item, "condition needs a key or raw")
			case spec.Op == "":
				c = cyq.Eq(spec.Key, spec.Value)
			default:
				c = cyq.Op(spec.Key, strings.ToUpper(spec.Op), spec.Value)
			}

			if spec.Not {
				c = cyq.Not(c)
			}

			out = append(out, c)
		}

		return out, nil
	default:
		return nil, invalid(arg, "expected conditions")
	}
}

func condVerb(call func(*cyq.Builder, ...cyq.Cond) *cyq.Builder) verbFunc {
	return func(a *applier, arg *yaml.Node) error {
		c, err := conds(arg)
		if err != nil {
			return err
		}

		call(a.b, c...)

		return nil
	}
}

func (a *applier) whereNot(arg *yaml.Node) error {
	c, err := conds(arg)
	if err != nil {
		return err
	}

	a.b.WhereCond(cyq.Not(cyq.All(c...)))

	return nil
}

func (a *applier) whereRaw(arg *yaml.Node) error {
	items, err := strs(arg)
	if err != nil {
		return err
	}

	for _, item := range items {
		a.b.WhereRaw(item)
	}

	return nil
}

type betweenSpec struct {
	Key     string `yaml:"key"`
	Floor   any    `yaml:"floor"`
	Ceiling any    `yaml:"ceiling"`
}

func (a *applier) whereBetween(arg *yaml.Node) error {
	var spec betweenSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	a.b.WhereBetween(spec.Key, spec.Floor, spec.Ceiling)

	return nil
}

func (a *applier) whereNotBetween(arg *yaml.Node) error {
	var spec betweenSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	a.b.WhereNotBetween(spec.Key, spec.Floor, spec.Ceiling)

	return nil
}

type idSpec struct {
	Alias string `yaml:"alias"`
	ID    scalar `yaml:"id"`
}

func (a *applier) whereID(arg *yaml.Node) error {
	var spec idSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(string(spec.ID), 10, 64)
	if err != nil {
		return invalid(arg, "id %q is not an integer", spec.ID)
	}

	a.b.WhereID(spec.Alias, id)

	return nil
}

func (a *applier) whereElementID(arg *yaml.Node) error {
	var spec idSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	a.b.WhereElementID(spec.Alias, string(spec.ID))

	return nil
}

type dateSpec struct {
	Key   string `yaml:"key"`
	Op    string `yaml:"op"`
	Value scalar `yaml:"value"`
	Type  string `yaml:"type"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
	"15:04:05.999999999Z07:00",
	time.TimeOnly,
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", ErrInvalidStep, s)
}

func (a *applier) whereDate(arg *yaml.Node) error {
	var spec dateSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	if spec.Op == "" {
		spec.Op = cyq.OpEquals
	}

	typ := cyq.DateTime
	if spec.Type != "" {
		typ, err = cyq.ParseDateType(spec.Type)
		if err != nil {
			return err
		}
	}

	t, err := parseTime(string(spec.Value))
	if err != nil {
		return err
	}

	a.b.WhereDate(spec.Key, spec.Op, t, typ)

	return nil
}

type distanceSpec struct {
	Key      string  `yaml:"key"`
	Point    any     `yaml:"point"`
	Op       string  `yaml:"op"`
	Distance float64 `yaml:"distance"`
}

func (a *applier) whereDistance(arg *yaml.Node) error {
	var spec distanceSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	if spec.Op == "" {
		spec.Op = cyq.OpLessEq
	}

	a.b.WhereDistance(spec.Key, spec.Point, spec.Op, spec.Distance)

	return nil
}

// orderBy accepts "field", "field DESC", a list of those, or a mapping of
// field to direction.
func (a *applier) orderBy(arg *yaml.Node) error {
	var orders []cyq.Order

	if arg.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(arg.Content); i += 2 {
			dir, err := cyq.ParseSortOrder(arg.Content[i+1].Value)
			if err != nil {
				return err
			}

			orders = append(orders, cyq.Order{Field: arg.Content[i].Value, Dir: dir})
		}
	} else {
		items, err := strs(arg)
		if err != nil {
			return err
		}

		for _, item := range items {
			o, err := parseOrder(item)
			if err != nil {
				return err
			}

			orders = append(orders, o)
		}
	}

	a.b.OrderByAll(orders...)

	return nil
}

func parseOrder(s string) (cyq.Order, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return cyq.Order{}, fmt.Errorf("%w: empty order", ErrInvalidStep)
	}

	last := fields[len(fields)-1]
	if len(fields) > 1 {
		if dir, err := cyq.ParseSortOrder(last); err == nil {
			return cyq.Order{Field: strings.Join(fields[:len(fields)-1], " "), Dir: dir}, nil
		}
	}

	return cyq.Order{Field: strings.Join(fields, " "), Dir: cyq.Asc}, nil
}

type termSpec struct {
	Key      string `yaml:"key"`
	Value    string `yaml:"value"`
	Operator string `yaml:"operator"`
}

func (t *termSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Value = value.Value

		return nil
	}

	type plain termSpec

	return value.Decode((*plain)(t))
}

type fullTextSpec struct {
	Index      string     `yaml:"index"`
	Type       string     `yaml:"type"`
	Terms      []termSpec `yaml:"terms"`
	Operator   string     `yaml:"operator"`
	Alias      string     `yaml:"alias"`
	ScoreAlias string     `yaml:"score_alias"`
}

func fullTextType(s string) cyq.FullTextType {
	switch strings.ToLower(s) {
	case "", "node", "nodefulltext":
		return cyq.NodeFullText
	case "relationship", "relationshipfulltext":
		return cyq.RelationshipFullText
	default:
		return cyq.FullTextType(s)
	}
}

func (a *applier) fullText(arg *yaml.Node) error {
	var spec fullTextSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	q := cyq.FullTextQuery{
		Index:      spec.Index,
		Type:       fullTextType(spec.Type),
		Alias:      spec.Alias,
		ScoreAlias: spec.ScoreAlias,
	}

	if spec.Operator != "" {
		q.Operator, err = cyq.ParseSearchOperator(spec.Operator)
		if err != nil {
			return err
		}
	}

	for _, t := range spec.Terms {
		term := cyq.SearchTerm{Key: t.Key, Value: t.Value}

		if t.Operator != "" {
			term.Operator, err = cyq.ParseSearchOperator(t.Operator)
			if err != nil {
				return err
			}
		}

		q.Terms = append(q.Terms, term)
	}

	a.b.FullText(q)

	return nil
}

type vectorSpec struct {
	Model      string    `yaml:"model"`
	Property   string    `yaml:"property"`
	Neighbors  int       `yaml:"neighbors"`
	Embedding  []float64 `yaml:"embedding"`
	Node       string    `yaml:"node"`
	NodeAlias  string    `yaml:"node_alias"`
	ScoreAlias string    `yaml:"score_alias"`
}

func (a *applier) vector(arg *yaml.Node) error {
	var spec vectorSpec

	err := arg.Decode(&spec)
	if err != nil {
		return err
	}

	model, err := a.model(spec.Model)
	if err != nil {
		return err
	}

	query := cyq.Embedding(spec.Embedding)
	if spec.Node != "" {
		query = cyq.NodeVector(spec.Node)
	}

	a.b.Vector(cyq.VectorSearch{
		Model:      model,
		Property:   spec.Property,
		Neighbors:  spec.Neighbors,
		Query:      query,
		NodeAlias:  spec.NodeAlias,
		ScoreAlias: spec.ScoreAlias,
	})

	return nil
}
