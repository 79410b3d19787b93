package logger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Mask replaces sensitive parameter values in log output.
const Mask = "***REDACTED***"

const maxValueLen = 100

// DefaultSensitiveFields are the column names masked when no list is given.
var DefaultSensitiveFields = []string{
	"password", "passwd", "pwd",
	"token", "api_key", "apikey", "api_token",
	"secret", "auth", "authorization",
	"credit_card", "card_number", "cvv", "cvc",
	"ssn", "social_security",
	"private_key", "priv_key",
}

// Sanitizer masks parameters bound to sensitive columns before they are logged.
//
// Compiled statements use "?" placeholders, so the column a parameter binds to
// can be recovered from the text: the identifier preceding the placeholder
// ("password = ?"), or the INSERT column list for VALUES groups. When the
// placeholders cannot be aligned with the parameters, every parameter is
// masked as soon as the text mentions a sensitive column.
type Sanitizer struct {
	fields   []string
	patterns []*regexp.Regexp
}

// NewSanitizer creates a sanitizer for the given column names.
// An empty list selects DefaultSensitiveFields.
func NewSanitizer(fields []string) *Sanitizer {
	if len(fields) == 0 {
		fields = DefaultSensitiveFields
	}
	s := &Sanitizer{
		fields:   append([]string(nil), fields...),
		patterns: make([]*regexp.Regexp, 0, len(fields)),
	}
	for _, f := range fields {
		// "password" matches password, user_password and password_hash.
		s.patterns = append(s.patterns, regexp.MustCompile(`(?i)(^|_)`+regexp.QuoteMeta(f)+`($|_)`))
	}
	return s
}

// Fields returns the masked "sql"/"params" key-value pairs for a log record.
func (s *Sanitizer) Fields(sql string, params []interface{}) []any {
	return []any{"sql", sql, "params", s.FormatParams(s.MaskParams(sql, params))}
}

// IsSensitive reports whether column (optionally table-qualified) is sensitive.
func (s *Sanitizer) IsSensitive(column string) bool {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		column = column[i+1:]
	}
	for _, p := range s.patterns {
		if p.MatchString(column) {
			return true
		}
	}
	return false
}

// MaskParams returns params with sensitive values replaced by Mask.
// The input slice is never modified; it is returned as-is when nothing is masked.
func (s *Sanitizer) MaskParams(sql string, params []interface{}) []interface{} {
	if len(params) == 0 {
		return params
	}

	cols := placeholderColumns(sql)
	if len(cols) != len(params) {
		if !s.mentionsSensitive(sql) {
			return params
		}
		masked := make([]interface{}, len(params))
		for i := range masked {
			masked[i] = Mask
		}
		return masked
	}

	var masked []interface{}
	for i, col := range cols {
		if !s.IsSensitive(col) {
			continue
		}
		if masked == nil {
			masked = append([]interface{}(nil), params...)
		}
		masked[i] = Mask
	}
	if masked == nil {
		return params
	}
	return masked
}

func (s *Sanitizer) mentionsSensitive(sql string) bool {
	for _, tok := range tokenize(sql) {
		if isIdent(tok) && s.IsSensitive(tok) {
			return true
		}
	}
	return false
}

// FormatParams renders params for a log line, truncating long values.
func (s *Sanitizer) FormatParams(params []interface{}) string {
	if len(params) == 0 {
		return "[]"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatValue(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatValue(v interface{}) string {
	var str string
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(x))
	case string:
		str = x
	default:
		str = fmt.Sprintf("%v", x)
	}
	if len(str) > maxValueLen {
		return truncate(str, maxValueLen) + "..."
	}
	return str
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var keywords = map[string]bool{
	"SELECT": true, "DISTINCT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
	"NOT": true, "IN": true, "LIKE": true, "IS": true, "NULL": true, "EXISTS": true,
	"AS": true, "ON": true, "JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true,
	"FULL": true, "SET": true, "VALUES": true, "INTO": true, "INSERT": true, "UPDATE": true,
	"DELETE": true, "GROUP": true, "BY": true, "HAVING": true, "ORDER": true, "ASC": true,
	"DESC": true, "LIMIT": true, "OFFSET": true, "RETURNING": true, "WITH": true,
}

// placeholderColumns returns, for each "?" in sql, the column it binds to
// ("" when none can be determined).
func placeholderColumns(sql string) []string {
	toks := tokenize(sql)

	var (
		cols       []string
		last       string
		insertCols []string
		inValues   bool
		pos        int
	)
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		upper := strings.ToUpper(t)
		switch {
		case t == "?":
			if inValues && len(insertCols) > 0 {
				cols = append(cols, insertCols[pos%len(insertCols)])
				pos++
			} else {
				cols = append(cols, last)
			}
		case t == "(" && inValues:
			pos = 0
		case upper == "INTO":
			// INTO table (a, b, c)
			if i+2 < len(toks) && toks[i+2] == "(" {
				insertCols = insertCols[:0]
				j := i + 3
				for ; j < len(toks) && toks[j] != ")"; j++ {
					if toks[j] != "," {
						insertCols = append(insertCols, toks[j])
					}
				}
				i = j
			}
		case upper == "VALUES":
			inValues = true
		case upper == "RETURNING":
			inValues = false
		case isIdent(t) && !keywords[upper]:
			last = t
		}
	}
	return cols
}

// tokenize splits sql into identifiers, placeholders and single-byte
// punctuation. String literals are dropped; quoted identifiers are unquoted.
func tokenize(sql string) []string {
	var toks []string
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == '\'':
			j := i + 1
			for j < len(sql) {
				if sql[j] == '\'' {
					if j+1 < len(sql) && sql[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			i = j + 1
		case c == '"' || c == '`':
			end := strings.IndexByte(sql[i+1:], c)
			if end < 0 {
				toks = append(toks, sql[i+1:])
				i = len(sql)
				continue
			}
			toks = append(toks, sql[i+1:i+1+end])
			i += end + 2
		case isIdentByte(c):
			j := i
			for j < len(sql) && isIdentByte(sql[j]) {
				j++
			}
			toks = append(toks, sql[i:j])
			i = j
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			toks = append(toks, sql[i:i+1])
			i++
		}
	}
	return toks
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdent(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
