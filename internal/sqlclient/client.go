// Package sqlclient adapts database/sql to the runner's client shapes.
//
// DB is execute-shaped and runs each statement on the pool. Conn pins one
// pooled connection and is query-shaped, so BEGIN/COMMIT/ROLLBACK issued by a
// runner transaction land on the same session.
package sqlclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/coregx/chainsql/internal/cache"
	"github.com/coregx/chainsql/internal/core"
	"github.com/coregx/chainsql/internal/dialects"
	"github.com/coregx/chainsql/internal/runner"
)

// ErrUnsupportedDriver is returned for driver names with no registered dialect.
var ErrUnsupportedDriver = errors.New("chainsql: unsupported driver")

// DB wraps a *sql.DB with a dialect and a prepared statement cache.
type DB struct {
	db            *sql.DB
	driverName    string
	dialect       dialects.Dialect
	stmts         *cache.StmtCache
	cacheCapacity int
}

// Option configures a DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(d *DB) {
		d.db.SetMaxOpenConns(n)
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(d *DB) {
		d.db.SetMaxIdleConns(n)
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity, for the
// pool and for each Conn.
func WithStmtCacheCapacity(capacity int) Option {
	return func(d *DB) {
		d.cacheCapacity = capacity
		d.stmts = cache.New(capacity)
	}
}

// Open validates dsn for the driver, then opens a pool.
// The postgres and mysql drivers are registered by this package.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	if err := ValidateDSN(driverName, dsn); err != nil {
		return nil, err
	}
	if _, ok := dialects.Get(driverName); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driverName)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return Wrap(db, driverName, opts...)
}

// Wrap adapts an existing pool. Close closes db.
func Wrap(db *sql.DB, driverName string, opts ...Option) (*DB, error) {
	d, ok := dialects.Get(driverName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driverName)
	}
	w := &DB{
		db:         db,
		driverName: driverName,
		dialect:    d,
		stmts:      cache.New(0),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// ValidateDSN checks the connection string of the drivers whose format is
// known: PostgreSQL URLs and MySQL DSNs. Other drivers are not checked.
func ValidateDSN(driverName, dsn string) error {
	switch dialectName(driverName) {
	case "postgres":
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			if _, err := pq.ParseURL(dsn); err != nil {
				return fmt.Errorf("chainsql: invalid postgres dsn: %w", err)
			}
		}
	case "mysql":
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return fmt.Errorf("chainsql: invalid mysql dsn: %w", err)
		}
	}
	return nil
}

func dialectName(driverName string) string {
	if d, ok := dialects.Get(driverName); ok {
		return d.Name()
	}
	return ""
}

// System returns the OpenTelemetry db.system value for the dialect.
func (d *DB) System() string {
	return system(d.dialect)
}

func system(d dialects.Dialect) string {
	if d.Name() == "postgres" {
		return "postgresql"
	}
	return d.Name()
}

// Dialect returns the dialect resolved from the driver name.
func (d *DB) Dialect() dialects.Dialect {
	return d.dialect
}

// DriverName returns the database/sql driver name.
func (d *DB) DriverName() string {
	return d.driverName
}

// SQL returns the underlying pool.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// CacheStats returns the pool-level statement cache counters.
func (d *DB) CacheStats() cache.Stats {
	return d.stmts.Stats()
}

// Execute runs sql on the pool. Statements that produce rows (SELECT, or any
// statement with RETURNING) yield one Result holding them; others yield one
// Result with RowsAffected.
func (d *DB) Execute(ctx context.Context, query string, args []interface{}) ([]runner.Result, error) {
	text := Rebind(d.dialect, query)
	stmt, release, err := d.stmts.Prepared(ctx, text, d.db.PrepareContext)
	if err != nil {
		return nil, err
	}
	defer release()

	if returnsRows(query) {
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		records, err := scanRecords(rows)
		if err != nil {
			return nil, err
		}
		return []runner.Result{{Rows: records}}, nil
	}

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return []runner.Result{{Rows: []runner.Record{}, RowsAffected: n}}, nil
}

// Conn pins one connection from the pool.
func (d *DB) Conn(ctx context.Context) (*Conn, error) {
	c, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{
		conn:    c,
		dialect: d.dialect,
		stmts:   cache.New(d.cacheCapacity),
	}, nil
}

// Close closes cached statements and the pool.
func (d *DB) Close() error {
	cacheErr := d.stmts.Close()
	if err := d.db.Close(); err != nil {
		return err
	}
	return cacheErr
}

func returnsRows(query string) bool {
	if core.DetectOperation(query) == "SELECT" {
		return true
	}
	return strings.Contains(strings.ToUpper(query), " RETURNING ")
}

// scanRecords reads every row into a Record. []byte values become strings.
func scanRecords(rows *sql.Rows) ([]runner.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []runner.Record{}
	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for rows.Next() {
		for i := range vals {
			vals[i] = nil
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(runner.Record, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[col] = string(b)
				continue
			}
			rec[col] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
