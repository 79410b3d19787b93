// Package dialects provides the SQL dialects chainsql knows about. A dialect
// controls how pagination is rendered and which placeholder format the
// execution layer rebinds "?" into; the compiler itself always emits "?".
package dialects

import (
	"strconv"
	"strings"
	"sync"
)

// Dialect defines database-specific behaviors.
type Dialect interface {
	// Name returns the canonical dialect name.
	Name() string
	// Paginate renders the pagination suffix (with a leading space) for the
	// given limit and offset. Nil values are omitted.
	Paginate(limit, offset *int) string
	// Placeholder returns the positional placeholder for the 1-based index.
	Placeholder(int) string
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// Register registers a dialect under name. Later registrations replace earlier ones.
func Register(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[strings.ToLower(name)] = d
}

// Get retrieves a registered dialect by name (case-insensitive).
func Get(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Default returns the dialect used when none was selected.
func Default() Dialect {
	return sqliteDialect
}

// limitOffset renders "LIMIT n" then "OFFSET n". OFFSET may appear without LIMIT.
// TODO: MySQL and SQLite both reject a bare OFFSET at execution time. Their
// Paginate should emit an unbounded LIMIT first (MySQL 18446744073709551615,
// SQLite -1) once the default dialect stops being SQLite.
func limitOffset(limit, offset *int) string {
	var b strings.Builder
	if limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(*limit))
	}
	if offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(*offset))
	}
	return b.String()
}
