package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAggregate_Functions tests each aggregate helper on an implicit projection.
func TestAggregate_Functions(t *testing.T) {
	tests := []struct {
		name string
		stmt *Statement
		want string
	}{
		{"count rows", Table("users").Count("", ""), "SELECT COUNT(*) FROM users"},
		{"count alias", Table("users").Count("id", "total"), "SELECT COUNT(id) AS total FROM users"},
		{"sum", Table("orders").Sum("total", "revenue"), "SELECT SUM(total) AS revenue FROM orders"},
		{"avg", Table("orders").Avg("total", ""), "SELECT AVG(total) FROM orders"},
		{"min", Table("orders").Min("total", "lo"), "SELECT MIN(total) AS lo FROM orders"},
		{"max", Table("orders").Max("total", "hi"), "SELECT MAX(total) AS hi FROM orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := tt.stmt.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
			assert.Empty(t, params)
			assert.Equal(t, OpSelect, tt.stmt.Operation())
		})
	}
}

// TestAggregate_AppendsToProjection tests that helpers append while Select overwrites.
func TestAggregate_AppendsToProjection(t *testing.T) {
	s := Table("orders").
		Select("user_id").
		Count("", "n").
		Sum("total", "spent").
		GroupBy("user_id")

	sql, _, err := s.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT user_id, COUNT(*) AS n, SUM(total) AS spent FROM orders GROUP BY user_id", sql)

	// A later Select declares the full projection again.
	sql, _, err = s.Select("user_id").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT user_id FROM orders GROUP BY user_id", sql)
}

func TestAggregate_AfterExplicitWildcard(t *testing.T) {
	sql, _, err := Table("users").Select().Count("", "").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *, COUNT(*) FROM users", sql)
}

// TestAggregate_SetsSelectOnOtherVerb tests the side effect of switching to SELECT.
func TestAggregate_SetsSelectOnOtherVerb(t *testing.T) {
	s := Table("users").Delete().Count("", "n")
	assert.Equal(t, OpSelect, s.Operation())

	sql, _, err := s.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) AS n FROM users", sql)
}

// TestWindow_Functions tests ROW_NUMBER, RANK and DENSE_RANK rendering.
func TestWindow_Functions(t *testing.T) {
	w := Window{PartitionBy: []string{"dept"}, OrderBy: []string{"salary DESC", "id"}}

	sql, _, err := Table("employees").
		Select("name").
		RowNumber(w, "rn").
		Rank(w, "rnk").
		DenseRank(Window{OrderBy: []string{"salary DESC"}}, "").
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "SELECT name,"+
		" ROW_NUMBER() OVER (PARTITION BY dept ORDER BY salary DESC, id) AS rn,"+
		" RANK() OVER (PARTITION BY dept ORDER BY salary DESC, id) AS rnk,"+
		" DENSE_RANK() OVER (ORDER BY salary DESC)"+
		" FROM employees", sql)
}

func TestWindow_String(t *testing.T) {
	assert.Equal(t, "OVER ()", Window{}.String())
	assert.Equal(t, "OVER (PARTITION BY a, b)", Window{PartitionBy: []string{"a", "b"}}.String())
}
