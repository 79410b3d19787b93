package dialects

import "strconv"

// PostgresDialect implements PostgreSQL pagination and $n placeholders.
type PostgresDialect struct{}

func init() {
	Register("postgres", &PostgresDialect{})
	Register("postgresql", &PostgresDialect{})
	Register("pgx", &PostgresDialect{})
}

// Name returns "postgres".
func (d *PostgresDialect) Name() string { return "postgres" }

// Paginate renders LIMIT/OFFSET.
func (d *PostgresDialect) Paginate(limit, offset *int) string {
	return limitOffset(limit, offset)
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}
