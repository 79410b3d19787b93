package core

import "strings"

// JoinKind is the type of a JOIN clause.
type JoinKind string

// Supported join kinds.
const (
	InnerJoinKind JoinKind = "INNER"
	LeftJoinKind  JoinKind = "LEFT"
	RightJoinKind JoinKind = "RIGHT"
	FullJoinKind  JoinKind = "FULL"
)

// JoinCondition is the ON part of a join: either a column pair (On) or a list
// of conditions using the WHERE grammar (OnConds).
type JoinCondition interface {
	render(depth int) (string, []interface{}, error)
}

type columnPair struct {
	left, right string
}

func (p columnPair) render(_ int) (string, []interface{}, error) {
	if p.left == "" || p.right == "" {
		return "", nil, newValidationError("join", ErrInvalidJoin)
	}
	return p.left + " = " + p.right, nil, nil
}

type condList []Cond

func (l condList) render(depth int) (string, []interface{}, error) {
	if len(l) == 0 {
		return "", nil, newValidationError("join", ErrInvalidJoin)
	}
	return renderConds(l, " AND ", depth)
}

// On joins on equality of two columns: "left = right".
func On(left, right string) JoinCondition {
	return columnPair{left: left, right: right}
}

// OnConds joins on AND-combined conditions. Plain values are bound as
// parameters; use Col to compare against another column.
//
//	OnConds(C("o.user_id", Col("u.id")), C("o.status", "paid"))
//	// ON o.user_id = u.id AND o.status = ?
func OnConds(conds ...Cond) JoinCondition {
	return condList(append([]Cond(nil), conds...))
}

// join is a rendered JOIN clause. Its params are already in the statement's
// shared parameter buffer; they are kept here for inspection only.
type join struct {
	kind   JoinKind
	table  string
	on     string
	params []interface{}
}

func (j join) sql() string {
	return " " + string(j.kind) + " JOIN " + j.table + " ON " + j.on
}

// InnerJoin appends an INNER JOIN.
func (s *Statement) InnerJoin(table string, on JoinCondition) *Statement {
	return s.addJoin(InnerJoinKind, table, on)
}

// LeftJoin appends a LEFT JOIN.
func (s *Statement) LeftJoin(table string, on JoinCondition) *Statement {
	return s.addJoin(LeftJoinKind, table, on)
}

// RightJoin appends a RIGHT JOIN.
func (s *Statement) RightJoin(table string, on JoinCondition) *Statement {
	return s.addJoin(RightJoinKind, table, on)
}

// FullJoin appends a FULL JOIN.
func (s *Statement) FullJoin(table string, on JoinCondition) *Statement {
	return s.addJoin(FullJoinKind, table, on)
}

// addJoin renders the ON condition and pushes its parameters into the shared
// buffer right away. A join binding values after WHERE already bound values
// would put its parameters behind the WHERE ones while its text comes first,
// so that order is rejected instead of silently misaligning placeholders.
func (s *Statement) addJoin(kind JoinKind, table string, on JoinCondition) *Statement {
	if strings.TrimSpace(table) == "" || on == nil {
		s.fail(&ValidationError{Op: "join", Detail: table, Err: ErrInvalidJoin})
		return s
	}
	sql, args, err := on.render(0)
	if err != nil {
		s.fail(wrapOp("join", err))
		return s
	}
	if len(args) > 0 && s.whereParamCount > 0 {
		s.fail(&ValidationError{Op: "join", Detail: table, Err: ErrJoinAfterWhere})
	}
	s.joins = append(s.joins, join{kind: kind, table: table, on: sql, params: args})
	s.params = append(s.params, args...)
	s.joinParamCount += len(args)
	return s
}
