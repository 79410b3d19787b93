// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"sort"
	"strings"
)

// Operand is the right-hand side of a condition. It is a closed set:
// a bound literal, an operator expression (Expr), a column reference (Column)
// or a nested *Statement. The variant is fixed when the condition is built,
// so the predicate compiler never has to probe values at compile time.
type Operand interface {
	operand()
}

// literal is a plain value bound as a single parameter.
type literal struct {
	value interface{}
}

func (literal) operand() {}

// valueList is the operand of a multi-value IN / NOT IN.
type valueList []interface{}

func (valueList) operand() {}

// Column references another column instead of binding a value.
// It is mostly useful in join conditions:
//
//	OnConds(C("posts.user_id", Col("users.id")))
type Column string

func (Column) operand() {}

// Col creates a column reference operand.
func Col(name string) Column {
	return Column(name)
}

func (*Statement) operand() {}

// Expr is an operator-tagged operand such as "> 30" or "IN (subquery)".
// Exprs are immutable once created.
type Expr struct {
	op  string
	val Operand
}

func (Expr) operand() {}

// Op returns the SQL operator symbol, e.g. ">=" or "LIKE".
func (e Expr) Op() string { return e.op }

// Value returns the wrapped operand.
func (e Expr) Value() Operand { return e.val }

// Operator symbols understood by the predicate compiler.
const (
	opEq        = "="
	opNe        = "<>"
	opGt        = ">"
	opGte       = ">="
	opLt        = "<"
	opLte       = "<="
	opLike      = "LIKE"
	opNotLike   = "NOT LIKE"
	opIn        = "IN"
	opNotIn     = "NOT IN"
	opIsNull    = "IS NULL"
	opIsNotNull = "IS NOT NULL"
	opNot       = "NOT"
)

// operandOf resolves an arbitrary value into its Operand variant.
func operandOf(v interface{}) Operand {
	if o, ok := v.(Operand); ok {
		return o
	}
	return literal{value: v}
}

// Eq generates "field = value".
func Eq(v interface{}) Expr { return Expr{op: opEq, val: operandOf(v)} }

// Ne generates "field <> value".
func Ne(v interface{}) Expr { return Expr{op: opNe, val: operandOf(v)} }

// Gt generates "field > value".
func Gt(v interface{}) Expr { return Expr{op: opGt, val: operandOf(v)} }

// Gte generates "field >= value".
func Gte(v interface{}) Expr { return Expr{op: opGte, val: operandOf(v)} }

// Lt generates "field < value".
func Lt(v interface{}) Expr { return Expr{op: opLt, val: operandOf(v)} }

// Lte generates "field <= value".
func Lte(v interface{}) Expr { return Expr{op: opLte, val: operandOf(v)} }

// Like generates "field LIKE pattern". The pattern is bound as-is; no
// wildcards are added.
func Like(pattern interface{}) Expr { return Expr{op: opLike, val: operandOf(pattern)} }

// NotLike generates "field NOT LIKE pattern".
func NotLike(pattern interface{}) Expr { return Expr{op: opNotLike, val: operandOf(pattern)} }

// In generates a set-membership test. A single *Statement argument renders a
// subquery, "field IN (SELECT ...)"; anything else is expanded into one
// placeholder per value. A single []interface{} argument is flattened.
//
//	In(1, 2, 3)       // field IN (?, ?, ?)
//	In(sub)           // field IN (SELECT ...)
func In(values ...interface{}) Expr { return setExpr(opIn, values) }

// NotIn is the negated form of In.
func NotIn(values ...interface{}) Expr { return setExpr(opNotIn, values) }

func setExpr(op string, values []interface{}) Expr {
	if len(values) == 1 {
		switch v := values[0].(type) {
		case *Statement:
			return Expr{op: op, val: v}
		case []interface{}:
			values = v
		}
	}
	list := make(valueList, len(values))
	copy(list, values)
	return Expr{op: op, val: list}
}

// IsNull generates "field IS NULL".
func IsNull() Expr { return Expr{op: opIsNull} }

// IsNotNull generates "field IS NOT NULL".
func IsNotNull() Expr { return Expr{op: opIsNotNull} }

// Not wraps a condition and renders it as "NOT (<inner>)". A plain value is
// treated as an equality test. Negations nest freely:
//
//	C("age", Not(Gt(30)))       // NOT (age > ?)
//	C("age", Not(Not(Gt(30))))  // NOT (NOT (age > ?))
func Not(cond interface{}) Expr {
	inner, ok := cond.(Expr)
	if !ok {
		inner = Eq(cond)
	}
	return Expr{op: opNot, val: inner}
}

// Cond pairs a field with an operand. A Cond with an empty field and a
// nested statement is a whole-predicate subquery.
type Cond struct {
	Field string
	Value Operand
}

// C creates a condition. v may be a plain value (implicit equality), an Expr,
// a Column or a *Statement.
func C(field string, v interface{}) Cond {
	return Cond{Field: field, Value: operandOf(v)}
}

// Sub creates a whole-predicate subquery condition rendered as "(<sql>)".
func Sub(stmt *Statement) Cond {
	return Cond{Value: stmt}
}

// Exists creates an "EXISTS (<sql>)" predicate.
func Exists(stmt *Statement) Cond {
	return Cond{Field: "EXISTS", Value: Expr{op: opExists, val: stmt}}
}

// NotExists creates a "NOT EXISTS (<sql>)" predicate.
func NotExists(stmt *Statement) Cond {
	return Cond{Field: "NOT EXISTS", Value: Expr{op: opExists, val: stmt}}
}

// opExists marks a prefix predicate: the field holds the keyword.
const opExists = "EXISTS"

// Hash is a convenience form for equality-heavy conditions.
// Keys are sorted so the generated SQL is deterministic.
//
//	Where(Hash{"status": "active", "age": Gt(18)}.Conds()...)
//	// WHERE (age > ? AND status = ?)
type Hash map[string]interface{}

// Conds returns the hash entries as conditions ordered by field name.
func (h Hash) Conds() []Cond {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Cond, len(keys))
	for i, k := range keys {
		conds[i] = C(k, h[k])
	}
	return conds
}

// renderCond renders one condition. Nested statements are compiled at depth.
func renderCond(c Cond, depth int) (string, []interface{}, error) {
	switch v := c.Value.(type) {
	case nil:
		return "", nil, newValidationError("condition", ErrInvalidOperand)
	case literal:
		return c.Field + " = ?", []interface{}{v.value}, nil
	case Column:
		return c.Field + " = " + string(v), nil, nil
	case *Statement:
		sql, args, err := compileNested(v, depth)
		if err != nil {
			return "", nil, err
		}
		if c.Field == "" {
			return "(" + sql + ")", args, nil
		}
		return c.Field + " = (" + sql + ")", args, nil
	case Expr:
		return renderExpr(c.Field, v, depth)
	default:
		return "", nil, newValidationError("condition", ErrInvalidOperand)
	}
}

func renderExpr(field string, e Expr, depth int) (string, []interface{}, error) {
	switch e.op {
	case opNot:
		inner, ok := e.val.(Expr)
		if !ok {
			return "", nil, newValidationError("not", ErrInvalidOperand)
		}
		sql, args, err := renderExpr(field, inner, depth)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + sql + ")", args, nil
	case opIsNull, opIsNotNull:
		return field + " " + e.op, nil, nil
	case opExists:
		stmt, ok := e.val.(*Statement)
		if !ok {
			return "", nil, newValidationError("exists", ErrInvalidOperand)
		}
		sql, args, err := compileNested(stmt, depth)
		if err != nil {
			return "", nil, err
		}
		return field + " (" + sql + ")", args, nil
	}

	switch v := e.val.(type) {
	case literal:
		return field + " " + e.op + " ?", []interface{}{v.value}, nil
	case Column:
		return field + " " + e.op + " " + string(v), nil, nil
	case *Statement:
		sql, args, err := compileNested(v, depth)
		if err != nil {
			return "", nil, err
		}
		return field + " " + e.op + " (" + sql + ")", args, nil
	case valueList:
		return renderList(field, e.op, v), append([]interface{}(nil), v...), nil
	default:
		return "", nil, newValidationError(strings.ToLower(e.op), ErrInvalidOperand)
	}
}

// renderList expands a value list into one placeholder per value.
func renderList(field, op string, values valueList) string {
	if len(values) == 0 {
		if op == opNotIn {
			return "1=1"
		}
		return "1=0"
	}
	placeholders := strings.Repeat("?, ", len(values))
	return field + " " + op + " (" + placeholders[:len(placeholders)-2] + ")"
}

// renderConds renders conditions joined by sep. It returns "" for no conditions.
func renderConds(conds []Cond, sep string, depth int) (string, []interface{}, error) {
	parts := make([]string, 0, len(conds))
	var args []interface{}
	for _, c := range conds {
		sql, condArgs, err := renderCond(c, depth)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, condArgs...)
	}
	return strings.Join(parts, sep), args, nil
}

func compileNested(stmt *Statement, depth int) (string, []interface{}, error) {
	if stmt == nil {
		return "", nil, newValidationError("subquery", ErrNilStatement)
	}
	return stmt.compile(depth + 1)
}
