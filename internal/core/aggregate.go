// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import "strings"

// =============================================================================
// Aggregate helpers
// =============================================================================

// Unlike Select, which declares the whole projection, the helpers below append
// one rendered expression to it and switch the statement to SELECT. If the
// projection is still the implicit "*", the first helper replaces it.
//
// Example:
//
//	Table("orders").Select("user_id").Sum("total", "spent").GroupBy("user_id")
//
// Generates: SELECT user_id, SUM(total) AS spent FROM orders GROUP BY user_id

// Count appends COUNT(field). An empty field counts rows: COUNT(*).
func (s *Statement) Count(field, alias string) *Statement {
	return s.aggregate("COUNT", field, alias)
}

// Sum appends SUM(field).
func (s *Statement) Sum(field, alias string) *Statement {
	return s.aggregate("SUM", field, alias)
}

// Avg appends AVG(field).
func (s *Statement) Avg(field, alias string) *Statement {
	return s.aggregate("AVG", field, alias)
}

// Min appends MIN(field).
func (s *Statement) Min(field, alias string) *Statement {
	return s.aggregate("MIN", field, alias)
}

// Max appends MAX(field).
func (s *Statement) Max(field, alias string) *Statement {
	return s.aggregate("MAX", field, alias)
}

func (s *Statement) aggregate(fn, field, alias string) *Statement {
	if field == "" {
		field = "*"
	}
	return s.appendColumn(fn+"("+field+")", alias)
}

// =============================================================================
// Window functions
// =============================================================================

// Window describes an OVER clause.
//
//	Window{PartitionBy: []string{"dept"}, OrderBy: []string{"salary DESC"}}
//
// Generates: OVER (PARTITION BY dept ORDER BY salary DESC)
type Window struct {
	PartitionBy []string
	OrderBy     []string
}

// String renders the OVER clause.
func (w Window) String() string {
	parts := make([]string, 0, 2)
	if len(w.PartitionBy) > 0 {
		parts = append(parts, "PARTITION BY "+strings.Join(w.PartitionBy, ", "))
	}
	if len(w.OrderBy) > 0 {
		parts = append(parts, "ORDER BY "+strings.Join(w.OrderBy, ", "))
	}
	return "OVER (" + strings.Join(parts, " ") + ")"
}

// RowNumber appends ROW_NUMBER() OVER (...).
func (s *Statement) RowNumber(w Window, alias string) *Statement {
	return s.appendColumn("ROW_NUMBER() "+w.String(), alias)
}

// Rank appends RANK() OVER (...).
func (s *Statement) Rank(w Window, alias string) *Statement {
	return s.appendColumn("RANK() "+w.String(), alias)
}

// DenseRank appends DENSE_RANK() OVER (...).
func (s *Statement) DenseRank(w Window, alias string) *Statement {
	return s.appendColumn("DENSE_RANK() "+w.String(), alias)
}

func (s *Statement) appendColumn(expr, alias string) *Statement {
	if alias != "" {
		expr += " AS " + alias
	}
	s.op = OpSelect
	s.columns = append(s.columns, expr)
	return s
}
