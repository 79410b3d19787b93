// Package chainsql is a fluent SQL builder. Chained calls accumulate a
// statement which compiles into SQL text with "?" placeholders plus the
// parameters bound to them, in order:
//
//	sql, params, err := chainsql.Table("users").
//	    Select("id", "name").
//	    Where(chainsql.C("age", chainsql.Gt(30)), chainsql.C("active", true)).
//	    ToSQL()
//	// SELECT id, name FROM users WHERE (age > ? AND active = ?)  [30 true]
//
// Compiled statements can optionally be handed to a database client with Run,
// or to a database/sql pool opened with Open.
package chainsql

import (
	"github.com/coregx/chainsql/internal/core"
	"github.com/coregx/chainsql/internal/logger"
	"github.com/coregx/chainsql/internal/runner"
	"github.com/coregx/chainsql/internal/sqlclient"
	"github.com/coregx/chainsql/internal/tracer"
)

type (
	// Statement is one SQL command being built.
	Statement = core.Statement
	// Query is a compiled statement.
	Query = core.Query
	// Operation is the verb of a statement.
	Operation = core.Operation
	// Direction is an ORDER BY direction.
	Direction = core.Direction
	// Row is an ordered set of column values for INSERT or UPDATE.
	Row = core.Row
	// Field is one column value of a Row.
	Field = core.Field
	// Cond is one condition of a WHERE, HAVING or ON clause.
	Cond = core.Cond
	// Hash builds equality-style conditions from a map, sorted by column.
	Hash = core.Hash
	// Expr is an operator-tagged condition value.
	Expr = core.Expr
	// Operand is a condition value.
	Operand = core.Operand
	// Column references another column instead of binding a value.
	Column = core.Column
	// JoinCondition is the ON part of a join.
	JoinCondition = core.JoinCondition
	// Window describes an OVER clause.
	Window = core.Window
	// TableSchema declares a table and its columns.
	TableSchema = core.TableSchema
	// ValidationError reports an invalid statement.
	ValidationError = core.ValidationError

	// Runner executes statements against a client.
	Runner = runner.Runner
	// RunnerOption configures a Runner.
	RunnerOption = runner.Option
	// Record is one result row.
	Record = runner.Record
	// Result is one entry of an Executor answer.
	Result = runner.Result
	// Querier is a query-shaped client.
	Querier = runner.Querier
	// Executor is an execute-shaped client.
	Executor = runner.Executor
	// UnsupportedClientError is returned for clients with neither shape.
	UnsupportedClientError = runner.UnsupportedClientError

	// DB is a database/sql pool usable as a client.
	DB = sqlclient.DB
	// Conn is one pinned connection usable as a transactional client.
	Conn = sqlclient.Conn
	// Option configures a DB.
	Option = sqlclient.Option

	// Logger receives one record per execution.
	Logger = logger.Logger
	// Tracer starts one span per execution.
	Tracer = tracer.Tracer
)

// Operations and directions.
const (
	OpNone   = core.OpNone
	OpSelect = core.OpSelect
	OpInsert = core.OpInsert
	OpUpdate = core.OpUpdate
	OpDelete = core.OpDelete

	Asc  = core.Asc
	Desc = core.Desc
)

// Errors.
var (
	ErrMissingTable       = core.ErrMissingTable
	ErrMissingOperation   = core.ErrMissingOperation
	ErrEmptyRows          = core.ErrEmptyRows
	ErrEmptyColumns       = core.ErrEmptyColumns
	ErrEmptySet           = core.ErrEmptySet
	ErrInvalidDirection   = core.ErrInvalidDirection
	ErrNegativeValue      = core.ErrNegativeValue
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrInvalidCTE         = core.ErrInvalidCTE
	ErrNilStatement       = core.ErrNilStatement
	ErrInvalidOperand     = core.ErrInvalidOperand
	ErrInvalidJoin        = core.ErrInvalidJoin
	ErrNestingTooDeep     = core.ErrNestingTooDeep
	ErrJoinAfterWhere     = core.ErrJoinAfterWhere
	ErrUnknownColumn      = core.ErrUnknownColumn
	ErrUnsupportedDriver  = sqlclient.ErrUnsupportedDriver
)

// Re-export core functions.
var (
	New         = core.New
	Table       = core.Table
	DefineTable = core.DefineTable
	NewQuery    = core.NewQuery
	RowFromMap  = core.RowFromMap

	IsValidationError = core.IsValidationError
	DetectOperation   = core.DetectOperation

	// Condition builders
	C         = core.C
	Col       = core.Col
	Sub       = core.Sub
	Exists    = core.Exists
	NotExists = core.NotExists
	Eq        = core.Eq
	Ne        = core.Ne
	Gt        = core.Gt
	Gte       = core.Gte
	Lt        = core.Lt
	Lte       = core.Lte
	Like      = core.Like
	NotLike   = core.NotLike
	In        = core.In
	NotIn     = core.NotIn
	IsNull    = core.IsNull
	IsNotNull = core.IsNotNull
	Not       = core.Not

	// Join conditions
	On      = core.On
	OnConds = core.OnConds
)

// Re-export execution helpers.
var (
	NewRunner             = runner.New
	Run                   = runner.Run
	WithLogger            = runner.WithLogger
	WithTracer            = runner.WithTracer
	WithSensitiveFields   = runner.WithSensitiveFields
	NewSlogLogger         = logger.NewSlog
	NewOtelTracer         = tracer.FromProvider
	Open                  = sqlclient.Open
	WrapDB                = sqlclient.Wrap
	WithMaxOpenConns      = sqlclient.WithMaxOpenConns
	WithMaxIdleConns      = sqlclient.WithMaxIdleConns
	WithStmtCacheCapacity = sqlclient.WithStmtCacheCapacity
)
