package cyq

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Query is the output of Build: query text plus the parameters it references.
type Query struct {
	Text   string
	Params Params
}

// String returns the query text.
func (q Query) String() string {
	return q.Text
}

// Builder accumulates clauses into statements and renders them as a single
// parameterised Cypher query.
//
// Calls that open a segment (Match, OptionalMatch, Create, Merge, With,
// WithDistinct, Statement) close the open statement and its condition group
// and start a new one; every other call adds to the open statement. Clauses
// render by kind in a fixed order, not in call order.
//
// The first failing call records an error and turns every later call into a
// no-op. Err reports it immediately; Build and Execute return it.
//
// A Builder is single-owner and not safe for concurrent use. Each query gets
// its own Builder.
type Builder struct {
	db     Database
	logger *zap.Logger

	params   Params
	segments []segment
	current  *statement
	where    *conditionGroup
	direct   map[directKey]string
	err      error
}

// directKey identifies a node property or SET item within the open
// statement. Repeating one rebinds its parameter.
type directKey struct {
	bucket, alias, key string
}

// Option configures a Builder.
type Option func(*Builder)

// WithDatabase sets the database used by Execute.
func WithDatabase(db Database) Option {
	return func(b *Builder) {
		b.db = db
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates an empty Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		logger: zap.NewNop(),
		params: Params{},
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Err returns the error recorded by the first failing call, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
		b.logger.Debug("query builder failed", zap.Error(err))
	}

	return b
}

// ready reports whether op may add to the open statement, recording
// ErrNoStatement when there is none.
func (b *Builder) ready(op string) bool {
	if b.err != nil {
		return false
	}

	if b.current == nil {
		b.fail(fmt.Errorf("%w: %s called before match, create, merge or with", ErrNoStatement, op))

		return false
	}

	return true
}

// flush moves the open statement, with its open condition group, to the
// finalized segments.
func (b *Builder) flush() {
	if b.current != nil {
		b.segments = append(b.segments, b.current.withGroup(b.where))
	}

	b.current, b.where, b.direct = nil, nil, nil
}

func (b *Builder) open(prefix string) {
	b.flush()
	b.current = newStatement(prefix)
	b.where = newConditionGroup(KeywordWhere, KeywordAnd)
}

// pushGroup closes the open condition group and makes g the open one.
func (b *Builder) pushGroup(g *conditionGroup) {
	if !b.where.empty() {
		b.current.where = append(b.current.where, b.where)
	}

	b.where = g
}

// Statement opens a new segment with a custom keyword. An empty prefix
// renders the pattern without one.
func (b *Builder) Statement(prefix string) *Builder {
	if b.err != nil {
		return b
	}

	b.open(prefix)

	return b
}

// Match opens a MATCH segment on a node pattern.
func (b *Builder) Match(alias string, model Model, props ...Prop) *Builder {
	return b.startPattern(KeywordMatch, alias, model, props)
}

// OptionalMatch opens an OPTIONAL MATCH segment on a node pattern.
func (b *Builder) OptionalMatch(alias string, model Model, props ...Prop) *Builder {
	return b.startPattern(KeywordOptionalMatch, alias, model, props)
}

// Create opens a CREATE segment on a node pattern.
func (b *Builder) Create(alias string, model Model, props ...Prop) *Builder {
	return b.startPattern(KeywordCreate, alias, model, props)
}

// Merge opens a MERGE segment on a node pattern.
func (b *Builder) Merge(alias string, model Model, props ...Prop) *Builder {
	return b.startPattern(KeywordMerge, alias, model, props)
}

func (b *Builder) startPattern(prefix, alias string, model Model, props []Prop) *Builder {
	if b.err != nil {
		return b
	}

	b.open(prefix)
	b.current.pattern = append(b.current.pattern, b.node(alias, model, props))

	return b
}

// node binds inline properties as <alias>_<key> and returns the pattern.
func (b *Builder) node(alias string, model Model, props []Prop) nodePattern {
	n := nodePattern{alias: alias}
	if model != nil {
		n.labels = model.Labels()
	}

	for _, p := range props {
		name := b.bindDirect(directKey{alias: alias, key: p.Key}, alias, p.Key, p.Value)
		n.props = append(n.props, propertyBinding{key: p.Key, param: name})
	}

	return n
}

// With closes the open segment and carries items through a WITH.
func (b *Builder) With(items ...string) *Builder {
	return b.with(false, items)
}

// WithDistinct is With using WITH DISTINCT.
func (b *Builder) WithDistinct(items ...string) *Builder {
	return b.with(true, items)
}

func (b *Builder) with(distinct bool, items []string) *Builder {
	if b.err != nil {
		return b
	}

	if len(items) == 0 {
		return b.fail(fmt.Errorf("%w: with needs at least one item", ErrInvalidArgument))
	}

	b.flush()
	b.segments = append(b.segments, withSegment{distinct: distinct, items: slices.Clone(items)})
	b.open(KeywordMatch)

	return b
}

// Relationship appends a relationship pattern to the open statement. At most
// one Degrees may be given; none means a single hop.
func (b *Builder) Relationship(typ string, dir Direction, alias string, degrees ...Degrees) *Builder {
	if !b.ready("relationship") {
		return b
	}

	if !dir.valid() {
		return b.fail(fmt.Errorf("%w: %q on relationship %q", ErrInvalidDirection, dir, typ))
	}

	if len(degrees) > 1 {
		return b.fail(fmt.Errorf("%w: relationship %q given %d degree specs", ErrInvalidDegrees, typ, len(degrees)))
	}

	rel := relationshipPattern{typ: typ, dir: dir, alias: alias}
	if len(degrees) == 1 {
		if err := degrees[0].validate(); err != nil {
			return b.fail(err)
		}

		rel.degrees = degrees[0]
	}

	b.current.pattern = append(b.current.pattern, rel)

	return b
}

// RelationshipOf is Relationship using the type and direction of rt.
func (b *Builder) RelationshipOf(rt RelationshipType, alias string, degrees ...Degrees) *Builder {
	if rt == nil {
		if !b.ready("relationship") {
			return b
		}

		return b.fail(fmt.Errorf("%w: nil relationship type", ErrInvalidArgument))
	}

	return b.Relationship(rt.Relationship(), rt.Direction(), alias, degrees...)
}

// To completes a relationship with a node pattern.
func (b *Builder) To(alias string, model Model, props ...Prop) *Builder {
	if !b.ready("to") {
		return b
	}

	b.current.pattern = append(b.current.pattern, b.node(alias, model, props))

	return b
}

// ToAnything completes a relationship with an anonymous node: ().
func (b *Builder) ToAnything() *Builder {
	if !b.ready("toAnything") {
		return b
	}

	b.current.pattern = append(b.current.pattern, nodePattern{})

	return b
}

// Where adds key = $value to the open condition group.
func (b *Builder) Where(key string, value any) *Builder {
	return b.where1("where", Eq(key, value))
}

// WhereOp adds key op $value.
func (b *Builder) WhereOp(key, op string, value any) *Builder {
	return b.where1("where", Op(key, op, value))
}

// WhereRaw adds a caller-trusted boolean fragment verbatim.
func (b *Builder) WhereRaw(clause string) *Builder {
	return b.where1("whereRaw", Raw(clause))
}

// WhereProps adds one equality per entry.
func (b *Builder) WhereProps(props Props) *Builder {
	return b.where1("where", Map(props))
}

// WhereCond adds each of conds.
func (b *Builder) WhereCond(conds ...Cond) *Builder {
	return b.where1("where", All(conds...))
}

// WhereNot adds NOT (key = $value).
func (b *Builder) WhereNot(key string, value any) *Builder {
	return b.where1("whereNot", Not(Eq(key, value)))
}

func (b *Builder) where1(op string, c Cond) *Builder {
	if !b.ready(op) {
		return b
	}

	if err := b.appendCond(c); err != nil {
		return b.fail(err)
	}

	return b
}

// Or closes the open condition group and opens one joined by OR.
func (b *Builder) Or(conds ...Cond) *Builder {
	return b.group("or", KeywordOr, conds)
}

// And closes the open condition group and opens one joined by AND.
func (b *Builder) And(conds ...Cond) *Builder {
	return b.group("and", KeywordAnd, conds)
}

func (b *Builder) group(op, prefix string, conds []Cond) *Builder {
	if !b.ready(op) {
		return b
	}

	b.pushGroup(newConditionGroup(prefix, KeywordAnd))

	return b.where1(op, All(conds...))
}

// WhereAny adds conds as a single group joined by OR and ANDed with the
// surrounding conditions.
func (b *Builder) WhereAny(conds ...Cond) *Builder {
	if !b.ready("whereAny") {
		return b
	}

	b.pushGroup(newConditionGroup(KeywordAnd, KeywordOr))

	if err := b.appendCond(All(conds...)); err != nil {
		return b.fail(err)
	}

	b.pushGroup(newConditionGroup(KeywordAnd, KeywordAnd))

	return b
}

// appendCond resolves c into conditions on the open group.
func (b *Builder) appendCond(c Cond) error {
	switch c.kind {
	case condList:
		for _, inner := range c.list {
			if c.negated {
				inner = Not(inner)
			}

			if err := b.appendCond(inner); err != nil {
				return err
			}
		}
	case condMap:
		for _, p := range c.props {
			eq := Eq(p.Key, p.Value)
			eq.negated = c.negated

			if err := b.appendCond(eq); err != nil {
				return err
			}
		}
	case condRaw:
		if strings.TrimSpace(c.raw) == "" {
			return nil
		}

		b.where.append(&condition{pred: rawFragment(c.raw), negated: c.negated})
	case condCompare:
		if c.key == "" {
			return fmt.Errorf("%w: condition with operator %q has no key", ErrInvalidArgument, c.op)
		}

		pred := comparison{left: c.key, op: c.op}
		if !unaryOperator(c.op) {
			pred.right = "$" + b.params.allocate(prefixWhere, c.key, c.value)
		}

		b.where.append(&condition{pred: pred, negated: c.negated})
	}

	return nil
}

// WhereBetween adds $floor <= key <= $ceiling.
func (b *Builder) WhereBetween(key string, floor, ceiling any) *Builder {
	return b.whereBetween("whereBetween", key, floor, ceiling, false)
}

// WhereNotBetween adds NOT ($floor <= key <= $ceiling).
func (b *Builder) WhereNotBetween(key string, floor, ceiling any) *Builder {
	return b.whereBetween("whereNotBetween", key, floor, ceiling, true)
}

func (b *Builder) whereBetween(op, key string, floor, ceiling any, negated bool) *Builder {
	if !b.ready(op) {
		return b
	}

	pred := between{
		key:     key,
		floor:   b.params.allocate(prefixWhere, key+"_floor", floor),
		ceiling: b.params.allocate(prefixWhere, key+"_ceiling", ceiling),
	}
	b.where.append(&condition{pred: pred, negated: negated})

	return b
}

// WhereID matches a node or relationship by internal id: id(alias) = $param.
func (b *Builder) WhereID(alias string, id int64) *Builder {
	if !b.ready("whereId") {
		return b
	}

	param := b.params.allocate(prefixWhere, alias+"_id", id)
	b.where.append(&condition{pred: identity{fn: "id", alias: alias, param: param}})

	return b
}

// WhereElementID matches by element id: elementId(alias) = $param.
func (b *Builder) WhereElementID(alias, id string) *Builder {
	if !b.ready("whereElementId") {
		return b
	}

	param := b.params.allocate(prefixWhere, alias+"_element_id", id)
	b.where.append(&condition{pred: identity{fn: "elementId", alias: alias, param: param}})

	return b
}

// WhereDate compares key against a temporal value: key op type($param). The
// bound literal is t in UTC, truncated to the date or time portion for Date
// and Time.
func (b *Builder) WhereDate(key, op string, t time.Time, typ DateType) *Builder {
	if !b.ready("whereDate") {
		return b
	}

	if !typ.valid() {
		return b.fail(fmt.Errorf("%w: %q for %s (want datetime, date or time)", ErrInvalidDateType, typ, key))
	}

	param := b.params.allocate(prefixWhere, key, formatDate(t, typ))
	b.where.append(&condition{pred: comparison{
		left:  key,
		op:    op,
		right: string(typ) + "($" + param + ")",
	}})

	return b
}

func formatDate(t time.Time, typ DateType) string {
	t = t.UTC()

	switch typ {
	case Date:
		return t.Format(time.DateOnly)
	case Time:
		return t.Format("15:04:05.000Z07:00")
	default:
		return t.Format("2006-01-02T15:04:05.000Z07:00")
	}
}

// WhereDistance compares the distance between key and point:
// point.distance(key, $point) op $distance.
func (b *Builder) WhereDistance(key string, point any, op string, distance float64) *Builder {
	if !b.ready("whereDistance") {
		return b
	}

	pointParam := b.params.allocate(prefixWhere, key+"_point", point)
	distanceParam := b.params.allocate(prefixWhere, key+"_distance", distance)
	b.where.append(&condition{pred: comparison{
		left:  "point.distance(" + key + ", $" + pointParam + ")",
		op:    op,
		right: "$" + distanceParam,
	}})

	return b
}

// bindDirect binds value for k under prefix_key. Repeating k within the open
// statement keeps the last value; anything else, including every property of
// an anonymous node, gets a fresh name.
func (b *Builder) bindDirect(k directKey, prefix, key string, value any) string {
	if k.bucket != "" || k.alias != "" {
		if name, ok := b.direct[k]; ok {
			b.params.put(name, value)

			return name
		}
	}

	name := b.params.allocate(prefix, key, value)

	if b.direct == nil {
		b.direct = map[directKey]string{}
	}

	b.direct[k] = name

	return name
}

// assign binds value as <prefix>_<property>. Repeating a property within the
// same bucket of the open statement keeps the last value.
func (b *Builder) assign(prefix, property, op string, value any) assignment {
	name := b.bindDirect(directKey{bucket: prefix, key: property}, prefix, property, value)

	return assignment{key: property, op: op, param: name}
}

// Set adds property = $value to SET.
func (b *Builder) Set(property string, value any) *Builder {
	return b.SetOp(property, OpEquals, value)
}

// SetOp adds property op $value to SET, e.g. n += $props.
func (b *Builder) SetOp(property, op string, value any) *Builder {
	if !b.ready("set") {
		return b
	}

	b.current.set = append(b.current.set, b.assign(prefixSet, property, op, value))

	return b
}

// SetProps adds one SET item per entry.
func (b *Builder) SetProps(props Props) *Builder {
	if !b.ready("setProps") {
		return b
	}

	for _, p := range props {
		b.Set(p.Key, p.Value)
	}

	return b
}

// SetRaw adds caller-trusted SET items verbatim, e.g. "n:Active".
func (b *Builder) SetRaw(fragments ...string) *Builder {
	if !b.ready("setRaw") {
		return b
	}

	for _, f := range fragments {
		b.current.set = append(b.current.set, rawFragment(f))
	}

	return b
}

// OnCreateSet adds property = $value to ON CREATE SET.
func (b *Builder) OnCreateSet(property string, value any) *Builder {
	if !b.ready("onCreateSet") {
		return b
	}

	b.current.onCreateSet = append(b.current.onCreateSet, b.assign(prefixOnCreateSet, property, OpEquals, value))

	return b
}

// OnCreateSetProps adds one ON CREATE SET item per entry.
func (b *Builder) OnCreateSetProps(props Props) *Builder {
	if !b.ready("onCreateSetProps") {
		return b
	}

	for _, p := range props {
		b.OnCreateSet(p.Key, p.Value)
	}

	return b
}

// OnMatchSet adds property = $value to ON MATCH SET.
func (b *Builder) OnMatchSet(property string, value any) *Builder {
	if !b.ready("onMatchSet") {
		return b
	}

	b.current.onMatchSet = append(b.current.onMatchSet, b.assign(prefixOnMatchSet, property, OpEquals, value))

	return b
}

// OnMatchSetProps adds one ON MATCH SET item per entry.
func (b *Builder) OnMatchSetProps(props Props) *Builder {
	if !b.ready("onMatchSetProps") {
		return b
	}

	for _, p := range props {
		b.OnMatchSet(p.Key, p.Value)
	}

	return b
}

// Remove removes properties (alias.prop) or labels (alias:Label).
func (b *Builder) Remove(items ...string) *Builder {
	if !b.ready("remove") {
		return b
	}

	b.current.remove = append(b.current.remove, items...)

	return b
}

// Delete adds items to DELETE.
func (b *Builder) Delete(items ...string) *Builder {
	if !b.ready("delete") {
		return b
	}

	b.current.delete = append(b.current.delete, items...)

	return b
}

// DetachDelete adds items to DETACH DELETE. DELETE and DETACH DELETE are
// independent; a statement may render both.
func (b *Builder) DetachDelete(items ...string) *Builder {
	if !b.ready("detachDelete") {
		return b
	}

	b.current.detachDelete = append(b.current.detachDelete, items...)

	return b
}

// Return adds items to RETURN.
func (b *Builder) Return(items ...string) *Builder {
	if !b.ready("return") {
		return b
	}

	b.current.ret = append(b.current.ret, items...)

	return b
}

// ReturnDistinct adds items to RETURN DISTINCT.
func (b *Builder) ReturnDistinct(items ...string) *Builder {
	if !b.ready("returnDistinct") {
		return b
	}

	b.current.distinctReturn = append(b.current.distinctReturn, items...)

	return b
}

// OrderBy adds field to ORDER BY, ascending unless an order is given.
func (b *Builder) OrderBy(field string, order ...SortOrder) *Builder {
	if len(order) > 1 {
		if !b.ready("orderBy") {
			return b
		}

		return b.fail(fmt.Errorf("%w: orderBy %q given %d sort orders", ErrInvalidArgument, field, len(order)))
	}

	o := Order{Field: field, Dir: Asc}
	if len(order) == 1 {
		o.Dir = order[0]
	}

	return b.OrderByAll(o)
}

// OrderByAll adds each order to ORDER BY.
func (b *Builder) OrderByAll(orders ...Order) *Builder {
	if !b.ready("orderBy") {
		return b
	}

	for _, o := range orders {
		if o.Field == "" {
			return b.fail(fmt.Errorf("%w: orderBy needs a field", ErrInvalidArgument))
		}

		if o.Dir == "" {
			o.Dir = Asc
		}

		if o.Dir != Asc && o.Dir != Desc {
			return b.fail(fmt.Errorf("%w: %q for %s", ErrInvalidSortOrder, o.Dir, o.Field))
		}

		b.current.order = append(b.current.order, o)
	}

	return b
}

// Skip sets SKIP. Zero leaves it out.
func (b *Builder) Skip(n int) *Builder {
	if !b.ready("skip") {
		return b
	}

	if n < 0 {
		return b.fail(fmt.Errorf("%w: negative skip %d", ErrInvalidArgument, n))
	}

	b.current.skip = n

	return b
}

// Limit sets LIMIT. Zero leaves it out.
func (b *Builder) Limit(n int) *Builder {
	if !b.ready("limit") {
		return b
	}

	if n < 0 {
		return b.fail(fmt.Errorf("%w: negative limit %d", ErrInvalidArgument, n))
	}

	b.current.limit = n

	return b
}

// FullText adds a full-text index call ahead of the statement's pattern.
func (b *Builder) FullText(q FullTextQuery) *Builder {
	if !b.ready("fullText") {
		return b
	}

	if err := q.validate(); err != nil {
		return b.fail(err)
	}

	clause := &fullTextClause{
		typ:        q.Type,
		alias:      q.Alias,
		scoreAlias: q.ScoreAlias,
	}

	if clause.typ == "" {
		clause.typ = NodeFullText
	}

	if clause.alias == "" {
		clause.alias = normalizeName(q.Index)
	}

	if clause.scoreAlias == "" {
		clause.scoreAlias = normalizeName(q.Index) + "_score"
	}

	clause.indexParam = b.params.allocate(prefixFullText, q.Index+"_index", q.Index)
	clause.queryParam = b.params.allocate(prefixFullText, q.Index, searchExpression(q.Terms, q.Operator))

	b.current.fullText = append(b.current.fullText, clause)

	return b
}

// Vector adds a vector index call after the statement's conditions. The
// searched property must be vector indexed on s.Model.
func (b *Builder) Vector(s VectorSearch) *Builder {
	if !b.ready("vector") {
		return b
	}

	index, err := s.index()
	if err != nil {
		return b.fail(err)
	}

	if err := s.validate(); err != nil {
		return b.fail(err)
	}

	clause := &vectorClause{
		nodeAlias:  s.NodeAlias,
		scoreAlias: s.ScoreAlias,
	}

	if clause.nodeAlias == "" {
		clause.nodeAlias = s.Property + "_node"
	}

	if clause.scoreAlias == "" {
		clause.scoreAlias = s.Property + "_score"
	}

	clause.indexParam = b.params.allocate(prefixVector, s.Property+"_index", index)
	clause.kParam = b.params.allocate(prefixVector, s.Property+"_k", s.Neighbors)

	if s.Query.alias != "" {
		clause.query = s.Query.alias + "." + s.Property
	} else {
		clause.query = "$" + b.params.allocate(prefixVector, s.Property+"_query", slices.Clone(s.Query.embedding))
	}

	b.current.vector = append(b.current.vector, clause)

	return b
}

// Build renders every segment, including the open one, and returns the
// query with a copy of its parameters. It does not change the builder, so
// repeated calls return identical output.
func (b *Builder) Build() (Query, error) {
	if b.err != nil {
		return Query{}, b.err
	}

	return Query{Text: b.render(true), Params: b.params.Clone()}, nil
}

// Pattern renders the query without the statements' opening keywords.
func (b *Builder) Pattern() (string, error) {
	if b.err != nil {
		return "", b.err
	}

	return b.render(false), nil
}

func (b *Builder) render(includePrefix bool) string {
	segments := b.segments
	if b.current != nil {
		segments = append(slices.Clip(segments), b.current.withGroup(b.where))
	}

	parts := make([]string, 0, len(segments))

	for _, s := range segments {
		if st, ok := s.(*statement); ok && st.empty() {
			continue
		}

		parts = append(parts, s.render(includePrefix))
	}

	return strings.Join(parts, "\n")
}
