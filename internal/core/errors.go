package core

import "errors"

// Predefined validation causes. A *ValidationError wraps exactly one of them,
// so callers can test with errors.Is.
var (
	// ErrMissingTable is returned when a statement is compiled without a target table.
	ErrMissingTable = errors.New("table required")
	// ErrMissingOperation is returned when neither an operation nor a table was given.
	ErrMissingOperation = errors.New("no operation specified")
	// ErrEmptyRows is returned when INSERT is given no rows.
	ErrEmptyRows = errors.New("insert requires at least one row")
	// ErrEmptyColumns is returned when INSERT rows carry no columns at all.
	ErrEmptyColumns = errors.New("insert rows have no columns")
	// ErrEmptySet is returned when UPDATE is given an empty set of columns.
	ErrEmptySet = errors.New("update requires at least one column")
	// ErrInvalidDirection is returned for an ORDER BY direction other than ASC or DESC.
	ErrInvalidDirection = errors.New("invalid order direction")
	// ErrNegativeValue is returned for a negative LIMIT or OFFSET.
	ErrNegativeValue = errors.New("value must not be negative")
	// ErrUnsupportedDialect is returned when an unknown dialect name is selected.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrInvalidCTE is returned for a CTE with an empty name, a nil body or a self reference.
	ErrInvalidCTE = errors.New("invalid common table expression")
	// ErrNilStatement is returned when a nil statement is embedded as a subquery.
	ErrNilStatement = errors.New("nested statement is nil")
	// ErrInvalidOperand is returned for a condition whose operand cannot be rendered.
	ErrInvalidOperand = errors.New("invalid condition operand")
	// ErrInvalidJoin is returned for a join without a table or an ON condition.
	ErrInvalidJoin = errors.New("join requires a table and an on condition")
	// ErrNestingTooDeep is returned when nested statements exceed maxNestingDepth.
	ErrNestingTooDeep = errors.New("statement nesting too deep")
	// ErrJoinAfterWhere is returned when a join binding parameters is declared after
	// WHERE parameters were bound, which would misalign placeholders and parameters.
	ErrJoinAfterWhere = errors.New("join with bound parameters declared after where")
	// ErrUnknownColumn is returned when a schema-bound select names an undeclared column.
	ErrUnknownColumn = errors.New("unknown column")
)

// ValidationError reports a structural problem with a statement, either detected
// by a mutator (and surfaced by ToSQL) or by the compiler itself.
type ValidationError struct {
	// Op is the builder call or compile phase that detected the problem.
	Op string
	// Detail is optional extra context, such as a column name.
	Detail string
	// Err is one of the predefined causes above.
	Err error
}

func newValidationError(op string, err error) *ValidationError {
	return &ValidationError{Op: op, Err: err}
}

func (e *ValidationError) Error() string {
	msg := "chainsql: " + e.Op + ": " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
