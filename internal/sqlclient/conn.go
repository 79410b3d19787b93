package sqlclient

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/coregx/chainsql/internal/cache"
	"github.com/coregx/chainsql/internal/core"
	"github.com/coregx/chainsql/internal/dialects"
	"github.com/coregx/chainsql/internal/runner"
)

// Conn is a single pinned connection. It implements runner.Querier and is
// not safe for concurrent use.
type Conn struct {
	conn    *sql.Conn
	dialect dialects.Dialect
	stmts   *cache.StmtCache
}

// System returns the OpenTelemetry db.system value for the dialect.
func (c *Conn) System() string {
	return system(c.dialect)
}

// Query runs sql on the pinned connection and returns its rows (none for
// statements that produce no rows). Transaction control text is executed
// directly; everything else goes through the statement cache.
func (c *Conn) Query(ctx context.Context, query string, args []interface{}) ([]runner.Record, error) {
	if isTxControl(query) {
		if _, err := c.conn.ExecContext(ctx, query); err != nil {
			return nil, err
		}
		return []runner.Record{}, nil
	}

	text := Rebind(c.dialect, query)
	stmt, release, err := c.stmts.Prepared(ctx, text, c.conn.PrepareContext)
	if err != nil {
		return nil, err
	}
	defer release()
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		if errors.Is(err, driver.ErrBadConn) {
			c.stmts.Forget(text)
		}
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CacheStats returns this connection's statement cache counters.
func (c *Conn) CacheStats() cache.Stats {
	return c.stmts.Stats()
}

// Close closes cached statements and returns the connection to the pool.
func (c *Conn) Close() error {
	cacheErr := c.stmts.Close()
	if err := c.conn.Close(); err != nil {
		return err
	}
	return cacheErr
}

func isTxControl(query string) bool {
	switch core.DetectOperation(query) {
	case "BEGIN", "COMMIT", "ROLLBACK":
		return true
	}
	return false
}

var (
	_ runner.Querier  = (*Conn)(nil)
	_ runner.Executor = (*DB)(nil)
)
