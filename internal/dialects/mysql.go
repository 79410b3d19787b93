package dialects

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

func init() {
	Register("mysql", &MySQLDialect{})
}

// Name returns "mysql".
func (d *MySQLDialect) Name() string { return "mysql" }

// Paginate renders LIMIT/OFFSET.
func (d *MySQLDialect) Paginate(limit, offset *int) string {
	return limitOffset(limit, offset)
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}
