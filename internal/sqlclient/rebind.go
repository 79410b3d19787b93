package sqlclient

import (
	"strings"

	"github.com/coregx/chainsql/internal/dialects"
)

// Rebind rewrites the "?" placeholders of compiled SQL into d's positional
// form ("$1", "$2"... for PostgreSQL). Question marks inside quoted strings or
// quoted identifiers are left alone. Text is returned unchanged for dialects
// that use "?" themselves.
func Rebind(d dialects.Dialect, sql string) string {
	if d.Placeholder(1) == "?" || !strings.Contains(sql, "?") {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 8)

	n := 0
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
