// Package runner hands compiled statements to an external database client.
//
// A client is anything exposing one of two call shapes:
//
//	Query(ctx, sql, args) ([]Record, error)    // Querier
//	Execute(ctx, sql, args) ([]Result, error)  // Executor
//
// The runner detects the shape, normalizes the answer to a row set and passes
// database errors through unmodified.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/coregx/chainsql/internal/core"
	"github.com/coregx/chainsql/internal/logger"
	"github.com/coregx/chainsql/internal/tracer"
)

// Record is one result row keyed by column name.
type Record map[string]interface{}

// Result is one entry of an Executor answer.
type Result struct {
	Rows         []Record
	RowsAffected int64
}

// Querier is the query-shaped client.
type Querier interface {
	Query(ctx context.Context, sql string, args []interface{}) ([]Record, error)
}

// Executor is the execute-shaped client. The first Result's rows are the row set.
type Executor interface {
	Execute(ctx context.Context, sql string, args []interface{}) ([]Result, error)
}

// Builder is anything that compiles to a Query, such as *core.Statement.
type Builder interface {
	Build() (*core.Query, error)
}

// UnsupportedClientError is returned when the client exposes neither call shape.
type UnsupportedClientError struct {
	Client string // dynamic type of the client
	Need   string // shape that was required
}

func (e *UnsupportedClientError) Error() string {
	return fmt.Sprintf("chainsql: unsupported client %s: %s", e.Client, e.Need)
}

func unsupported(client interface{}, need string) error {
	return &UnsupportedClientError{Client: fmt.Sprintf("%T", client), Need: need}
}

// Runner executes statements against one client.
type Runner struct {
	client    interface{}
	system    string
	logger    logger.Logger
	tracer    tracer.Tracer
	sanitizer *logger.Sanitizer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger logs every execution to l.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer records a span per execution.
func WithTracer(t tracer.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithSensitiveFields replaces the column names whose parameters are masked in logs.
func WithSensitiveFields(fields ...string) Option {
	return func(r *Runner) {
		r.sanitizer = logger.NewSanitizer(fields)
	}
}

// New returns a runner for client. A client with a System() string method
// reports it as the db.system span attribute.
func New(client interface{}, opts ...Option) *Runner {
	r := &Runner{
		client:    client,
		logger:    logger.Nop{},
		tracer:    tracer.Nop{},
		sanitizer: logger.NewSanitizer(nil),
	}
	if s, ok := client.(interface{ System() string }); ok {
		r.system = s.System()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compiles and executes stmt with a default runner.
func Run(ctx context.Context, client interface{}, stmt Builder) ([]Record, error) {
	return New(client).Run(ctx, stmt)
}

// Run compiles stmt and executes it. Compile errors are returned before the
// client is contacted.
func (r *Runner) Run(ctx context.Context, stmt Builder) ([]Record, error) {
	q, err := stmt.Build()
	if err != nil {
		return nil, err
	}
	return r.RunQuery(ctx, q)
}

// RunQuery executes an already compiled query.
func (r *Runner) RunQuery(ctx context.Context, q *core.Query) ([]Record, error) {
	switch r.client.(type) {
	case Querier, Executor:
	default:
		return nil, unsupported(r.client, "needs Query or Execute")
	}

	ctx, span := r.tracer.Start(ctx, "chainsql.run")
	defer span.End()

	params := q.Params()
	start := time.Now()
	rows, err := r.dispatch(ctx, q.SQL(), params)
	elapsed := time.Since(start)

	tracer.Annotate(span, tracer.Execution{
		System:    r.system,
		Operation: q.Operation(),
		Table:     q.Table(),
		SQL:       q.SQL(),
		Params:    len(params),
		Rows:      len(rows),
		Duration:  elapsed,
		Err:       err,
	})
	r.logResult(q.SQL(), params, len(rows), elapsed, err)
	return rows, err
}

func (r *Runner) dispatch(ctx context.Context, sql string, args []interface{}) ([]Record, error) {
	switch c := r.client.(type) {
	case Querier:
		rows, err := c.Query(ctx, sql, args)
		if err != nil {
			return nil, err
		}
		return normalize(rows), nil
	case Executor:
		results, err := c.Execute(ctx, sql, args)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return []Record{}, nil
		}
		return normalize(results[0].Rows), nil
	default:
		return nil, unsupported(r.client, "needs Query or Execute")
	}
}

func normalize(rows []Record) []Record {
	if rows == nil {
		return []Record{}
	}
	return rows
}

func (r *Runner) logResult(sql string, params []interface{}, rows int, elapsed time.Duration, err error) {
	fields := r.sanitizer.Fields(sql, params)
	fields = append(fields, "duration_ms", elapsed.Milliseconds())
	if r.system != "" {
		fields = append(fields, "database", r.system)
	}
	if err != nil {
		r.logger.Error("statement failed", append(fields, "error", err)...)
		return
	}
	r.logger.Info("statement executed", append(fields, "rows", rows)...)
}
