package core

import (
	"strings"

	"github.com/coregx/chainsql/internal/dialects"
)

// maxNestingDepth bounds subquery/CTE recursion, which also stops CTE cycles.
const maxNestingDepth = 32

// ToSQL compiles the statement into SQL text with "?" placeholders and the
// parameters bound to them, in textual order. It does not modify the
// statement and returns identical results when called again.
func (s *Statement) ToSQL() (string, []interface{}, error) {
	return s.compile(0)
}

// String returns the compiled SQL, or the compile error text.
func (s *Statement) String() string {
	sql, _, err := s.ToSQL()
	if err != nil {
		return err.Error()
	}
	return sql
}

func (s *Statement) compile(depth int) (string, []interface{}, error) {
	if depth > maxNestingDepth {
		return "", nil, newValidationError("compile", ErrNestingTooDeep)
	}
	if s.err != nil {
		return "", nil, s.err
	}
	if s.table == "" {
		if s.op == OpNone && len(s.ctes) == 0 {
			return "", nil, newValidationError("compile", ErrMissingOperation)
		}
		return "", nil, newValidationError("compile", ErrMissingTable)
	}

	var b strings.Builder
	var params []interface{}

	if len(s.ctes) > 0 {
		b.WriteString("WITH ")
		for i, c := range s.ctes {
			sql, args, err := c.stmt.compile(depth + 1)
			if err != nil {
				return "", nil, err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.name + " AS (" + sql + ")")
			params = append(params, args...)
		}
		b.WriteString(" ")
	}

	var err error
	switch s.op {
	case OpInsert:
		params, err = s.writeInsert(&b, params)
	case OpUpdate:
		params, err = s.writeUpdate(&b, params)
	case OpDelete:
		params = s.writeDelete(&b, params)
	default:
		params = s.writeSelect(&b, params)
	}
	if err != nil {
		return "", nil, err
	}

	if len(s.returning) > 0 {
		b.WriteString(" RETURNING " + strings.Join(s.returning, ", "))
	}

	if params == nil {
		params = []interface{}{}
	}
	return b.String(), params, nil
}

func (s *Statement) pagination() dialects.Dialect {
	if s.dialect != nil {
		return s.dialect
	}
	return dialects.Default()
}

func (s *Statement) writeSelect(b *strings.Builder, params []interface{}) []interface{} {
	cols := "*"
	if len(s.columns) > 0 {
		cols = strings.Join(s.columns, ", ")
	}
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(cols + " FROM " + s.table)

	for _, j := range s.joins {
		b.WriteString(j.sql())
	}
	if len(s.where) > 0 {
		b.WriteString(" WHERE " + strings.Join(s.where, " AND "))
	}
	// Join and WHERE params live in one buffer, in declaration order.
	params = append(params, s.params...)

	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY " + strings.Join(s.groupBy, ", "))
	}
	if len(s.having) > 0 {
		b.WriteString(" HAVING " + strings.Join(s.having, " AND "))
		params = append(params, s.havingParams...)
	}
	if s.order != nil {
		b.WriteString(" ORDER BY " + s.order.field + " " + string(s.order.dir))
	}
	b.WriteString(s.pagination().Paginate(s.limit, s.offset))
	return params
}

// insertColumns returns the union of row keys in first-seen order.
func insertColumns(rows []Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, f := range r {
			if !seen[f.Name] {
				seen[f.Name] = true
				cols = append(cols, f.Name)
			}
		}
	}
	return cols
}

func (s *Statement) writeInsert(b *strings.Builder, params []interface{}) ([]interface{}, error) {
	if len(s.rows) == 0 {
		return nil, newValidationError("compile", ErrEmptyRows)
	}
	cols := insertColumns(s.rows)
	if len(cols) == 0 {
		return nil, newValidationError("compile", ErrEmptyColumns)
	}

	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	groups := make([]string, len(s.rows))
	for i, r := range s.rows {
		groups[i] = group
		for _, col := range cols {
			v, _ := r.Get(col) // missing columns bind nil
			params = append(params, v)
		}
	}

	b.WriteString("INSERT INTO " + s.table + " (" + strings.Join(cols, ", ") + ") VALUES " +
		strings.Join(groups, ", "))
	return params, nil
}

func (s *Statement) writeUpdate(b *strings.Builder, params []interface{}) ([]interface{}, error) {
	if len(s.set) == 0 {
		return nil, newValidationError("compile", ErrEmptySet)
	}
	setClauses := make([]string, len(s.set))
	for i, f := range s.set {
		setClauses[i] = f.Name + " = ?"
		params = append(params, f.Value)
	}
	b.WriteString("UPDATE " + s.table + " SET " + strings.Join(setClauses, ", "))
	params = s.writeWhere(b, params)
	b.WriteString(s.pagination().Paginate(s.limit, nil))
	return params, nil
}

func (s *Statement) writeDelete(b *strings.Builder, params []interface{}) []interface{} {
	b.WriteString("DELETE FROM " + s.table)
	params = s.writeWhere(b, params)
	b.WriteString(s.pagination().Paginate(s.limit, nil))
	return params
}

// writeWhere renders WHERE for UPDATE/DELETE, which render no joins, so the
// join prefix of the shared buffer is skipped.
func (s *Statement) writeWhere(b *strings.Builder, params []interface{}) []interface{} {
	if len(s.where) == 0 {
		return params
	}
	b.WriteString(" WHERE " + strings.Join(s.where, " AND "))
	return append(params, s.params[s.joinParamCount:]...)
}
