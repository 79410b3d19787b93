package dialects

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

var sqliteDialect = &SQLiteDialect{}

func init() {
	Register("sqlite", sqliteDialect)
	Register("sqlite3", sqliteDialect)
}

// Name returns "sqlite".
func (d *SQLiteDialect) Name() string { return "sqlite" }

// Paginate renders LIMIT/OFFSET.
func (d *SQLiteDialect) Paginate(limit, offset *int) string {
	return limitOffset(limit, offset)
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int) string {
	return "?"
}
