package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/coregx/chainsql/internal/core"
	"github.com/coregx/chainsql/internal/logger"
	"github.com/coregx/chainsql/internal/tracer"
)

type call struct {
	sql  string
	args []interface{}
}

// fakeQuerier is a query-shaped client that records every call.
type fakeQuerier struct {
	calls []call
	rows  []Record
	errOn map[string]error
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args []interface{}) ([]Record, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if err := f.errOn[core.DetectOperation(sql)]; err != nil {
		return nil, err
	}
	return f.rows, nil
}

func (f *fakeQuerier) statements() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.sql
	}
	return out
}

// fakeExecutor is an execute-shaped client.
type fakeExecutor struct {
	results []Result
	err     error
	got     call
}

func (f *fakeExecutor) Execute(_ context.Context, sql string, args []interface{}) ([]Result, error) {
	f.got = call{sql: sql, args: args}
	return f.results, f.err
}

func (f *fakeExecutor) System() string { return "sqlite" }

func TestRun_Querier(t *testing.T) {
	client := &fakeQuerier{rows: []Record{{"id": int64(1), "name": "Alice"}}}
	stmt := core.Table("users").Select("id", "name").Where(core.C("age", core.Gt(30)))

	rows, err := Run(context.Background(), client, stmt)

	require.NoError(t, err)
	assert.Equal(t, []Record{{"id": int64(1), "name": "Alice"}}, rows)
	require.Len(t, client.calls, 1)
	assert.Equal(t, "SELECT id, name FROM users WHERE (age > ?)", client.calls[0].sql)
	assert.Equal(t, []interface{}{30}, client.calls[0].args)
}

func TestRun_QuerierNilRows(t *testing.T) {
	rows, err := Run(context.Background(), &fakeQuerier{}, core.Table("users").Delete())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

// TestRun_Executor tests that the first result's rows become the row set.
func TestRun_Executor(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    []Record
	}{
		{"first result", []Result{{Rows: []Record{{"n": 3}}}, {Rows: []Record{{"n": 4}}}}, []Record{{"n": 3}}},
		{"no results", nil, []Record{}},
		{"write result", []Result{{RowsAffected: 2}}, []Record{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeExecutor{results: tt.results}
			rows, err := New(client).Run(context.Background(), core.Table("t").Count("", "n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
			assert.Equal(t, "SELECT COUNT(*) AS n FROM t", client.got.sql)
		})
	}
}

func TestRun_UnsupportedClient(t *testing.T) {
	_, err := Run(context.Background(), struct{}{}, core.Table("users"))

	var uce *UnsupportedClientError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, "struct {}", uce.Client)
	assert.Contains(t, err.Error(), "needs Query or Execute")
}

// TestRun_CompileErrorFirst tests that invalid statements never reach the client.
func TestRun_CompileErrorFirst(t *testing.T) {
	client := &fakeQuerier{}
	_, err := Run(context.Background(), client, core.New().Select("id"))

	assert.ErrorIs(t, err, core.ErrMissingTable)
	assert.Empty(t, client.calls)
}

// TestRun_DatabaseErrorUnmodified tests that client errors are passed through as-is.
func TestRun_DatabaseErrorUnmodified(t *testing.T) {
	dbErr := errors.New("relation \"users\" does not exist")

	_, err := Run(context.Background(), &fakeQuerier{errOn: map[string]error{"SELECT": dbErr}}, core.Table("users"))
	assert.True(t, err == dbErr)

	_, err = Run(context.Background(), &fakeExecutor{err: dbErr}, core.Table("users"))
	assert.True(t, err == dbErr)
}

// TestRun_LogsMaskedParams tests the log record written per execution.
func TestRun_LogsMaskedParams(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewSlog(slog.New(slog.NewTextHandler(&buf, nil)))

	r := New(&fakeQuerier{}, WithLogger(l))
	_, err := r.Run(context.Background(), core.Table("users").Update(core.Row{{Name: "password", Value: "hunter2"}}).Where(core.C("id", 7)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "statement executed")
	assert.Contains(t, out, "***REDACTED***")
	assert.Contains(t, out, "7]")
	assert.NotContains(t, out, "hunter2")
}

func TestRun_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewSlog(slog.New(slog.NewTextHandler(&buf, nil)))

	r := New(&fakeQuerier{errOn: map[string]error{"SELECT": errors.New("boom")}}, WithLogger(l))
	_, err := r.Run(context.Background(), core.Table("users"))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "statement failed")
	assert.Contains(t, out, "error=boom")
}

func TestRun_CustomSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewSlog(slog.New(slog.NewTextHandler(&buf, nil)))

	r := New(&fakeQuerier{}, WithLogger(l), WithSensitiveFields("email"))
	_, err := r.Run(context.Background(), core.Table("users").Where(core.C("email", "a@b.c")))
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "a@b.c")
}

// TestRun_Span tests the span recorded for one execution.
func TestRun_Span(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := New(&fakeExecutor{}, WithTracer(tracer.FromProvider(tp)))
	_, err := r.Run(context.Background(), core.Table("users").Where(core.C("id", 1)))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "chainsql.run", spans[0].Name)

	attrs := map[string]interface{}{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "SELECT", attrs["db.operation"])
	assert.Equal(t, "sqlite", attrs["db.system"])
	assert.Equal(t, int64(1), attrs["db.chainsql.params"])
	assert.Equal(t, "users", attrs["db.sql.table"])
}

func TestRunQuery_RawTextHasNoTable(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := New(&fakeQuerier{}, WithTracer(tracer.FromProvider(tp)))
	_, err := r.RunQuery(context.Background(), core.NewQuery(Begin))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	for _, kv := range spans[0].Attributes {
		assert.NotEqual(t, "db.sql.table", string(kv.Key))
	}
}

func TestNew_NilOptionsKeepDefaults(t *testing.T) {
	r := New(&fakeQuerier{}, WithLogger(nil), WithTracer(nil))
	assert.Equal(t, logger.Nop{}, r.logger)
	assert.Equal(t, tracer.Nop{}, r.tracer)
}
