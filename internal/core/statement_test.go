package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWhere_GroupsChainWithAnd tests that every Where/OrWhere call is one AND-ed group.
func TestWhere_GroupsChainWithAnd(t *testing.T) {
	sql, params, err := Table("users").
		Where(C("active", true)).
		OrWhere(C("role", "admin"), C("role", "owner")).
		Where(C("age", Gte(18)), C("age", Lt(65))).
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE (active = ?) AND (role = ? OR role = ?) AND (age >= ? AND age < ?)", sql)
	assert.Equal(t, []interface{}{true, "admin", "owner", 18, 65}, params)
}

func TestWhere_EmptyCallAddsNoGroup(t *testing.T) {
	sql, _, err := Table("users").Where().OrWhere().ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", sql)
}

// TestHaving_SeparateBuffer tests HAVING params come after WHERE params regardless of call order.
func TestHaving_SeparateBuffer(t *testing.T) {
	sql, params, err := Table("orders").
		Select("user_id").
		Count("", "n").
		Having(C("COUNT(*)", Gt(2))).
		Where(C("status", "paid")).
		GroupBy("user_id").
		Having(C("SUM(total)", Lte(1000))).
		ToSQL()

	require.NoError(t, err)
	assert.Equal(t, "SELECT user_id, COUNT(*) AS n FROM orders WHERE (status = ?) GROUP BY user_id HAVING (COUNT(*) > ?) AND (SUM(total) <= ?)", sql)
	assert.Equal(t, []interface{}{"paid", 2, 1000}, params)
}

func TestGroupBy_Overwrites(t *testing.T) {
	sql, _, err := Table("t").GroupBy("a", "b").GroupBy("c").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t GROUP BY c", sql)
}

func TestFrom_IsTableAlias(t *testing.T) {
	sql, _, err := New().Select("id").From("users").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users", sql)

	sql, _, err = Table("a").From("b").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM b", sql)
}

// TestInsert_FailsFast tests that empty INSERT input is rejected at call time.
func TestInsert_FailsFast(t *testing.T) {
	s := Table("users").Insert()
	require.Error(t, s.Err())
	assert.ErrorIs(t, s.Err(), ErrEmptyRows)

	s = Table("users").Insert(Row{}, Row{})
	require.Error(t, s.Err())
	assert.ErrorIs(t, s.Err(), ErrEmptyColumns)

	_, _, err := s.ToSQL()
	assert.ErrorIs(t, err, ErrEmptyColumns)
}

// TestInsert_CopiesRows tests that later changes to the caller's rows are not observed.
func TestInsert_CopiesRows(t *testing.T) {
	row := Row{{"name", "Alice"}}
	s := Table("users").Insert(row)
	row[0].Value = "Mallory"

	_, params, err := s.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Alice"}, params)
}

// TestUpdate_FailsFast tests that an empty set map is rejected at call time.
func TestUpdate_FailsFast(t *testing.T) {
	s := Table("users").Update(Row{})
	require.Error(t, s.Err())
	assert.ErrorIs(t, s.Err(), ErrEmptySet)

	var ve *ValidationError
	require.ErrorAs(t, s.Err(), &ve)
	assert.Equal(t, "update", ve.Op)
}

// TestErr_FirstErrorSticks tests that the first recorded error is kept.
func TestErr_FirstErrorSticks(t *testing.T) {
	s := Table("users").Limit(-1).Offset(-1).OrderBy("a", "up")
	assert.ErrorIs(t, s.Err(), ErrNegativeValue)

	var ve *ValidationError
	require.ErrorAs(t, s.Err(), &ve)
	assert.Equal(t, "limit", ve.Op)

	// A later valid verb does not clear it.
	s.Select("id")
	assert.ErrorIs(t, s.Err(), ErrNegativeValue)
}

func TestOrderBy_InvalidDirection(t *testing.T) {
	s := Table("users").OrderBy("name", "sideways")
	assert.ErrorIs(t, s.Err(), ErrInvalidDirection)
	assert.Contains(t, s.Err().Error(), "sideways")
}

func TestDialect_Unknown(t *testing.T) {
	s := Table("users").Dialect("oracle")
	assert.ErrorIs(t, s.Err(), ErrUnsupportedDialect)
}

func TestLimit_Zero(t *testing.T) {
	sql, _, err := Table("users").Limit(0).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users LIMIT 0", sql)
}

// TestClone_Independent tests that a clone can diverge from its source.
func TestClone_Independent(t *testing.T) {
	base := Table("users").Select("id").Where(C("active", true)).Limit(10).OrderBy("id", Asc)

	admins := base.Clone().Where(C("role", "admin")).Limit(1).OrderBy("name", Desc)

	sql, params, err := base.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE (active = ?) ORDER BY id ASC LIMIT 10", sql)
	assert.Equal(t, []interface{}{true}, params)

	sql, params, err = admins.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE (active = ?) AND (role = ?) ORDER BY name DESC LIMIT 1", sql)
	assert.Equal(t, []interface{}{true, "admin"}, params)
}

func TestClone_Insert(t *testing.T) {
	base := Table("users").Insert(Row{{"a", 1}})
	c := base.Clone()
	c.rows[0][0].Value = 2

	_, params, err := base.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1}, params)
}

func TestRow_Set(t *testing.T) {
	r := Row{{"a", 1}}
	r2 := r.Set("b", 2)
	r3 := r2.Set("a", 3)

	assert.Equal(t, Row{{"a", 1}}, r)
	assert.Equal(t, Row{{"a", 1}, {"b", 2}}, r2)
	assert.Equal(t, Row{{"a", 3}, {"b", 2}}, r3)
}

func TestRow_GetLastWins(t *testing.T) {
	r := Row{{"a", 1}, {"a", 2}}
	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = r.Get("b")
	assert.False(t, ok)
}

func TestRowFromMap_Sorted(t *testing.T) {
	r := RowFromMap(map[string]interface{}{"name": "Bob", "age": 30, "email": "b@x"})
	assert.Equal(t, Row{{"age", 30}, {"email", "b@x"}, {"name", "Bob"}}, r)
}

func TestInsert_DuplicateKeyInRow(t *testing.T) {
	sql, params, err := Table("t").Insert(Row{{"a", 1}, {"a", 2}}).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (a) VALUES (?)", sql)
	assert.Equal(t, []interface{}{2}, params)
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "SELECT", OpSelect.String())
	assert.Equal(t, "INSERT", OpInsert.String())
	assert.Equal(t, "UPDATE", OpUpdate.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "NONE", OpNone.String())
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Op: "select", Detail: "users.nme", Err: ErrUnknownColumn}
	assert.Equal(t, "chainsql: select: unknown column (users.nme)", err.Error())
	assert.Equal(t, "chainsql: insert: insert requires at least one row", newValidationError("insert", ErrEmptyRows).Error())
	assert.False(t, IsValidationError(ErrEmptyRows))
	assert.False(t, IsValidationError(nil))
}
