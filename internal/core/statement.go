package core

import (
	"sort"
	"strings"

	"github.com/coregx/chainsql/internal/dialects"
)

// Operation is the kind of SQL command a Statement builds.
type Operation int

// Supported operations. OpNone compiles as a full-row SELECT when a table is set.
const (
	OpNone Operation = iota
	OpSelect
	OpInsert
	OpUpdate
	OpDelete
)

// String returns the SQL verb of the operation.
func (o Operation) String() string {
	switch o {
	case OpSelect:
		return "SELECT"
	case OpInsert:
		return "INSERT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	default:
		return "NONE"
	}
}

// Direction is an ORDER BY direction.
type Direction string

// Order directions. The empty Direction means Asc.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Field is one column/value pair of a Row.
type Field struct {
	Name  string
	Value interface{}
}

// Row is an ordered list of column/value pairs used by Insert and Update.
// Order matters: it decides the column order of the generated SQL.
type Row []Field

// Set returns a row with name bound to v, replacing an existing field of the
// same name or appending a new one. The receiver is never modified.
func (r Row) Set(name string, v interface{}) Row {
	for i := range r {
		if r[i].Name == name {
			out := make(Row, len(r))
			copy(out, r)
			out[i].Value = v
			return out
		}
	}
	return append(r[:len(r):len(r)], Field{Name: name, Value: v})
}

// Get returns the value bound to name. When a name occurs twice the later one wins.
func (r Row) Get(name string) (interface{}, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Name == name {
			return r[i].Value, true
		}
	}
	return nil, false
}

// RowFromMap converts a map into a Row with keys sorted for deterministic SQL.
func RowFromMap(m map[string]interface{}) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := make(Row, len(keys))
	for i, k := range keys {
		row[i] = Field{Name: k, Value: m[k]}
	}
	return row
}

type orderBy struct {
	field string
	dir   Direction
}

type cte struct {
	name string
	stmt *Statement
}

// Statement is the mutable description of one SQL command. It is built by
// chaining mutators and compiled with ToSQL. A Statement is meant for a single
// owner; it is not safe for concurrent mutation.
//
// Example:
//
//	sql, args, err := core.Table("users").
//	    Select("id", "name").
//	    Where(C("age", Gt(30)), C("active", true)).
//	    ToSQL()
//	// SELECT id, name FROM users WHERE (age > ? AND active = ?)  [30 true]
type Statement struct {
	op       Operation
	table    string
	columns  []string // nil means the implicit "*"
	distinct bool

	rows []Row
	set  Row

	// where and joins share params; join params are appended when the join is
	// declared, so joins must come before WHERE conditions that bind values.
	where           []string
	params          []interface{}
	whereParamCount int
	joinParamCount  int
	joins           []join

	having       []string
	havingParams []interface{}

	groupBy   []string
	order     *orderBy
	limit     *int
	offset    *int
	returning []string
	ctes      []cte
	dialect   dialects.Dialect

	err error // first error recorded by a mutator
}

// New creates an empty statement.
func New() *Statement {
	return &Statement{}
}

// Table creates a statement targeting table.
func Table(name string) *Statement {
	return &Statement{table: name}
}

// fail records the first mutation error; later ones are dropped.
func (s *Statement) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first error recorded by a mutator, or nil.
// ToSQL returns the same error.
func (s *Statement) Err() error {
	return s.err
}

// Operation returns the operation kind set so far.
func (s *Statement) Operation() Operation {
	return s.op
}

// Select sets the statement to SELECT the given columns, replacing any earlier
// projection. No columns means "*".
func (s *Statement) Select(fields ...string) *Statement {
	s.op = OpSelect
	if len(fields) == 0 {
		s.columns = []string{"*"}
		return s
	}
	s.columns = append([]string(nil), fields...)
	return s
}

// Distinct makes a SELECT return distinct rows only.
func (s *Statement) Distinct() *Statement {
	s.distinct = true
	return s
}

// Insert sets the statement to INSERT rows. The column list is the union of
// all row keys in first-seen order; a row missing a column binds nil for it.
func (s *Statement) Insert(rows ...Row) *Statement {
	s.op = OpInsert
	if len(rows) == 0 {
		s.fail(newValidationError("insert", ErrEmptyRows))
		s.rows = nil
		return s
	}
	s.rows = make([]Row, len(rows))
	for i, r := range rows {
		s.rows[i] = append(Row(nil), r...)
	}
	if len(insertColumns(s.rows)) == 0 {
		s.fail(newValidationError("insert", ErrEmptyColumns))
	}
	return s
}

// Update sets the statement to UPDATE the given columns.
func (s *Statement) Update(set Row) *Statement {
	s.op = OpUpdate
	if len(set) == 0 {
		s.fail(newValidationError("update", ErrEmptySet))
	}
	s.set = append(Row(nil), set...)
	return s
}

// Delete sets the statement to DELETE.
func (s *Statement) Delete() *Statement {
	s.op = OpDelete
	return s
}

// Table sets the target table.
func (s *Statement) Table(name string) *Statement {
	s.table = name
	return s
}

// From is an alias of Table.
func (s *Statement) From(name string) *Statement {
	return s.Table(name)
}

// Where appends one predicate group whose conditions are combined with AND.
// Successive Where/OrWhere calls are combined with AND.
//
//	Where(C("age", Gt(30)), C("active", true))   // (age > ? AND active = ?)
func (s *Statement) Where(conds ...Cond) *Statement {
	s.addWhere("where", " AND ", conds)
	return s
}

// OrWhere appends one predicate group whose conditions are combined with OR.
// The group itself is still AND-ed with the other groups.
//
//	Where(C("a", 1)).OrWhere(C("b", 2), C("c", 3))   // (a = ?) AND (b = ? OR c = ?)
func (s *Statement) OrWhere(conds ...Cond) *Statement {
	s.addWhere("or_where", " OR ", conds)
	return s
}

func (s *Statement) addWhere(op, sep string, conds []Cond) {
	sql, args, err := renderConds(conds, sep, 0)
	if err != nil {
		s.fail(wrapOp(op, err))
		return
	}
	if sql == "" {
		return
	}
	s.where = append(s.where, "("+sql+")")
	s.params = append(s.params, args...)
	s.whereParamCount += len(args)
}

// Having appends one AND-combined predicate group to the HAVING clause.
func (s *Statement) Having(conds ...Cond) *Statement {
	sql, args, err := renderConds(conds, " AND ", 0)
	if err != nil {
		s.fail(wrapOp("having", err))
		return s
	}
	if sql != "" {
		s.having = append(s.having, "("+sql+")")
		s.havingParams = append(s.havingParams, args...)
	}
	return s
}

// GroupBy replaces the GROUP BY columns.
func (s *Statement) GroupBy(fields ...string) *Statement {
	s.groupBy = append([]string(nil), fields...)
	return s
}

// With appends a common table expression. The nested statement is compiled
// when this statement is compiled, so later changes to it are visible.
func (s *Statement) With(name string, stmt *Statement) *Statement {
	switch {
	case strings.TrimSpace(name) == "":
		s.fail(&ValidationError{Op: "with", Detail: "empty name", Err: ErrInvalidCTE})
		return s
	case stmt == nil:
		s.fail(&ValidationError{Op: "with", Detail: name + ": nil statement", Err: ErrInvalidCTE})
		return s
	case stmt == s:
		s.fail(&ValidationError{Op: "with", Detail: name + ": self reference", Err: ErrInvalidCTE})
		return s
	}
	s.ctes = append(s.ctes, cte{name: name, stmt: stmt})
	return s
}

// Returning replaces the RETURNING columns. No columns means "*".
func (s *Statement) Returning(fields ...string) *Statement {
	if len(fields) == 0 {
		s.returning = []string{"*"}
		return s
	}
	s.returning = append([]string(nil), fields...)
	return s
}

// OrderBy replaces the ordering. An empty direction means ascending.
func (s *Statement) OrderBy(field string, dir Direction) *Statement {
	d := Direction(strings.ToUpper(string(dir)))
	switch d {
	case "":
		d = Asc
	case Asc, Desc:
	default:
		s.fail(&ValidationError{Op: "order_by", Detail: string(dir), Err: ErrInvalidDirection})
		return s
	}
	s.order = &orderBy{field: field, dir: d}
	return s
}

// Limit replaces the row limit.
func (s *Statement) Limit(n int) *Statement {
	if n < 0 {
		s.fail(newValidationError("limit", ErrNegativeValue))
		return s
	}
	s.limit = &n
	return s
}

// Offset replaces the row offset.
func (s *Statement) Offset(n int) *Statement {
	if n < 0 {
		s.fail(newValidationError("offset", ErrNegativeValue))
		return s
	}
	s.offset = &n
	return s
}

// Dialect selects the pagination rendering by dialect name ("postgres",
// "mysql", "sqlite"...).
func (s *Statement) Dialect(name string) *Statement {
	d, ok := dialects.Get(name)
	if !ok {
		s.fail(&ValidationError{Op: "dialect", Detail: name, Err: ErrUnsupportedDialect})
		return s
	}
	s.dialect = d
	return s
}

// Clone returns an independent copy that can be mutated without affecting s.
// Nested statements (CTE bodies) are shared, not copied.
func (s *Statement) Clone() *Statement {
	c := *s
	c.columns = cloneStrings(s.columns)
	if s.rows != nil {
		c.rows = make([]Row, len(s.rows))
		for i, r := range s.rows {
			c.rows[i] = append(Row(nil), r...)
		}
	}
	c.set = append(Row(nil), s.set...)
	c.where = cloneStrings(s.where)
	c.params = append([]interface{}(nil), s.params...)
	c.joins = append([]join(nil), s.joins...)
	c.having = cloneStrings(s.having)
	c.havingParams = append([]interface{}(nil), s.havingParams...)
	c.groupBy = cloneStrings(s.groupBy)
	c.returning = cloneStrings(s.returning)
	c.ctes = append([]cte(nil), s.ctes...)
	if s.order != nil {
		o := *s.order
		c.order = &o
	}
	if s.limit != nil {
		n := *s.limit
		c.limit = &n
	}
	if s.offset != nil {
		n := *s.offset
		c.offset = &n
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// wrapOp re-labels a validation error raised while rendering a nested part.
func wrapOp(op string, err error) error {
	if ve, ok := err.(*ValidationError); ok && ve.Op == "condition" {
		return &ValidationError{Op: op, Detail: ve.Detail, Err: ve.Err}
	}
	return err
}
