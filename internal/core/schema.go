package core

import "strings"

// TableSchema is an optional description of a table's columns. It seeds
// statements with the table name and checks projections against the declared
// columns, catching typos before the SQL reaches the database.
//
// Example:
//
//	users := DefineTable("users", "id", "name", "age", "active")
//	users.Select("id", "name").Where(C("age", Gt(18)))
type TableSchema struct {
	name    string
	columns []string
	index   map[string]bool
}

// DefineTable declares a table and its columns.
func DefineTable(name string, columns ...string) *TableSchema {
	ts := &TableSchema{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   make(map[string]bool, len(columns)),
	}
	for _, c := range columns {
		ts.index[c] = true
	}
	return ts
}

// Name returns the table name.
func (ts *TableSchema) Name() string {
	return ts.name
}

// Columns returns the declared columns in declaration order.
func (ts *TableSchema) Columns() []string {
	return append([]string(nil), ts.columns...)
}

// Has reports whether col is declared. A column qualified with this table's
// name ("users.id") is accepted too.
func (ts *TableSchema) Has(col string) bool {
	if ts.index[col] {
		return true
	}
	if rest, ok := strings.CutPrefix(col, ts.name+"."); ok {
		return ts.index[rest] || rest == "*"
	}
	return false
}

// Query returns a new statement targeting this table.
func (ts *TableSchema) Query() *Statement {
	return Table(ts.name)
}

// Select returns a new SELECT statement on this table. Undeclared columns are
// recorded as a ValidationError wrapping ErrUnknownColumn. "*" is always allowed.
func (ts *TableSchema) Select(cols ...string) *Statement {
	s := ts.Query().Select(cols...)
	for _, c := range cols {
		if c != "*" && !ts.Has(c) {
			s.fail(&ValidationError{Op: "select", Detail: ts.name + "." + c, Err: ErrUnknownColumn})
			break
		}
	}
	return s
}
