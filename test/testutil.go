//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coregx/chainsql"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

// DatabaseSetup holds a connected client and the container backing it, if any.
type DatabaseSetup struct {
	DB        *chainsql.DB
	Container testcontainers.Container
	Dialect   string
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupPostgreSQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, err := chainsql.Open("postgres", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "postgres"}
	}

	pgContainer, err := postgres.Run(
		ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := chainsql.Open("postgres", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{DB: db, Container: pgContainer, Dialect: "postgres"}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupMySQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		db, err := chainsql.Open("mysql", withParseTime(dsn))
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "mysql"}
	}

	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := chainsql.Open("mysql", withParseTime(dsn))
	require.NoError(t, err)

	return &DatabaseSetup{DB: db, Container: mysqlContainer, Dialect: "mysql"}
}

// SetupSQLiteTestDB creates a file-backed SQLite database.
// Always works, no external dependencies.
func SetupSQLiteTestDB(t *testing.T) *DatabaseSetup {
	db, err := chainsql.Open("sqlite", filepath.Join(t.TempDir(), "integration.db"))
	require.NoError(t, err)
	return &DatabaseSetup{DB: db, Dialect: "sqlite"}
}

func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=true") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// CreateSchema creates the accounts and transfers tables used by the suite.
func CreateSchema(t *testing.T, ds *DatabaseSetup) {
	var ddl []string

	switch ds.Dialect {
	case "postgres":
		ddl = []string{
			`CREATE TABLE IF NOT EXISTS accounts (
				id SERIAL PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				balance INTEGER NOT NULL DEFAULT 0,
				closed_at TIMESTAMP NULL
			)`,
			`CREATE TABLE IF NOT EXISTS transfers (
				id SERIAL PRIMARY KEY,
				account_id INTEGER NOT NULL,
				amount INTEGER NOT NULL
			)`,
		}
	case "mysql":
		ddl = []string{
			`CREATE TABLE IF NOT EXISTS accounts (
				id INT AUTO_INCREMENT PRIMARY KEY,
				owner VARCHAR(255) NOT NULL,
				balance INT NOT NULL DEFAULT 0,
				closed_at TIMESTAMP NULL
			)`,
			`CREATE TABLE IF NOT EXISTS transfers (
				id INT AUTO_INCREMENT PRIMARY KEY,
				account_id INT NOT NULL,
				amount INT NOT NULL
			)`,
		}
	case "sqlite":
		ddl = []string{
			`CREATE TABLE IF NOT EXISTS accounts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				owner VARCHAR(255) NOT NULL,
				balance INTEGER NOT NULL DEFAULT 0,
				closed_at TIMESTAMP NULL
			)`,
			`CREATE TABLE IF NOT EXISTS transfers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				account_id INTEGER NOT NULL,
				amount INTEGER NOT NULL
			)`,
		}
	}

	for _, stmt := range ddl {
		_, err := ds.DB.SQL().ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
}

// forEachDialect runs fn against every available database.
func forEachDialect(t *testing.T, fn func(t *testing.T, ds *DatabaseSetup)) {
	setups := map[string]func(*testing.T) *DatabaseSetup{
		"sqlite":   SetupSQLiteTestDB,
		"postgres": SetupPostgreSQLTestDB,
		"mysql":    SetupMySQLTestDB,
	}
	for _, name := range []string{"sqlite", "postgres", "mysql"} {
		t.Run(name, func(t *testing.T) {
			ds := setups[name](t)
			defer ds.Close()
			CreateSchema(t, ds)
			fn(t, ds)
		})
	}
}

// asInt normalizes integer columns, which drivers return as int64 or text.
func asInt(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case string:
		out, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return -1
		}
		return out
	}
	return -1
}
