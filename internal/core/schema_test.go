package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineTable(t *testing.T) {
	users := DefineTable("users", "id", "name", "age", "active")

	assert.Equal(t, "users", users.Name())
	assert.Equal(t, []string{"id", "name", "age", "active"}, users.Columns())
	assert.True(t, users.Has("name"))
	assert.True(t, users.Has("users.name"))
	assert.True(t, users.Has("users.*"))
	assert.False(t, users.Has("email"))
	assert.False(t, users.Has("posts.name"))
}

func TestTableSchema_ColumnsIsCopy(t *testing.T) {
	users := DefineTable("users", "id")
	cols := users.Columns()
	cols[0] = "changed"
	assert.Equal(t, []string{"id"}, users.Columns())
}

// TestTableSchema_Select tests schema-checked projections.
func TestTableSchema_Select(t *testing.T) {
	users := DefineTable("users", "id", "name", "age", "active")

	sql, params, err := users.Select("id", "name").Where(C("age", Gt(30))).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM users WHERE (age > ?)", sql)
	assert.Equal(t, []interface{}{30}, params)

	sql, _, err = users.Select().ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", sql)
}

func TestTableSchema_SelectUnknownColumn(t *testing.T) {
	users := DefineTable("users", "id", "name")

	s := users.Select("id", "nme")
	require.Error(t, s.Err())
	assert.ErrorIs(t, s.Err(), ErrUnknownColumn)
	assert.Contains(t, s.Err().Error(), "users.nme")
}

func TestTableSchema_Query(t *testing.T) {
	users := DefineTable("users", "id", "name")
	sql, params, err := users.Query().Insert(Row{{"name", "Zed"}}).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (name) VALUES (?)", sql)
	assert.Equal(t, []interface{}{"Zed"}, params)
}
