package core

import "strings"

// Query is a compiled statement: SQL text with "?" placeholders and the
// parameters bound to them, in order.
type Query struct {
	sql    string
	params []interface{}
	op     string
	table  string
}

// NewQuery wraps raw SQL and parameters, e.g. for transaction control text.
func NewQuery(sql string, params ...interface{}) *Query {
	return &Query{sql: sql, params: params}
}

// Build compiles the statement into a Query.
func (s *Statement) Build() (*Query, error) {
	sql, params, err := s.ToSQL()
	if err != nil {
		return nil, err
	}
	op := s.op.String()
	if s.op == OpNone {
		op = OpSelect.String()
	}
	return &Query{sql: sql, params: params, op: op, table: baseTable(s.table)}, nil
}

// baseTable drops an alias: "users u" -> "users".
func baseTable(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return ""
}

// SQL returns the SQL text.
func (q *Query) SQL() string {
	return q.sql
}

// Params returns a copy of the bound parameters.
func (q *Query) Params() []interface{} {
	return append([]interface{}{}, q.params...)
}

// Table returns the main table of a built statement, without alias. It is
// empty for queries made with NewQuery.
func (q *Query) Table() string {
	return q.table
}

// Operation returns the SQL operation of the query text.
func (q *Query) Operation() string {
	if q.op != "" {
		return q.op
	}
	return DetectOperation(q.sql)
}

// DetectOperation attempts to detect the SQL operation type from the query string.
// Returns one of: SELECT, INSERT, UPDATE, DELETE, BEGIN, COMMIT, ROLLBACK or UNKNOWN.
// A statement starting with a CTE reports the operation of its main statement.
func DetectOperation(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	if strings.HasPrefix(sql, "WITH") {
		sql = skipCTEs(sql)
	}
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "BEGIN", "COMMIT", "ROLLBACK"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "UNKNOWN"
}

// skipCTEs drops a leading WITH prologue by tracking parenthesis depth.
func skipCTEs(sql string) string {
	depth := 0
	closed := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closed = true
			}
		default:
			if closed && depth == 0 && sql[i-1] == ' ' && isVerb(sql[i:]) {
				return sql[i:]
			}
		}
	}
	return sql
}

func isVerb(s string) bool {
	for _, v := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(s, v) && (len(s) == len(v) || s[len(v)] == ' ') {
			return true
		}
	}
	return false
}
