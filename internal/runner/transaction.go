package runner

import (
	"context"

	"go.opentelemetry.io/otel/codes"

	"github.com/coregx/chainsql/internal/core"
)

// Transaction control text issued through the client's Query method.
const (
	Begin    = "BEGIN"
	Commit   = "COMMIT"
	Rollback = "ROLLBACK"
)

// Transaction runs fn between BEGIN and COMMIT on the runner's client.
// If fn returns an error, ROLLBACK is issued and fn's error is returned even
// when the rollback itself fails. If fn panics, ROLLBACK is issued and the
// panic continues. The client must be a Querier, and must keep all calls on
// one connection (see sqlclient.Conn).
//
// Example:
//
//	err := r.Transaction(ctx, func(ctx context.Context, tx *Runner) error {
//	    if _, err := tx.Run(ctx, debit); err != nil {
//	        return err
//	    }
//	    _, err := tx.Run(ctx, credit)
//	    return err
//	})
func (r *Runner) Transaction(ctx context.Context, fn func(ctx context.Context, tx *Runner) error) (err error) {
	if _, ok := r.client.(Querier); !ok {
		return unsupported(r.client, "transactions need Query")
	}

	ctx, span := r.tracer.Start(ctx, "chainsql.transaction")
	defer span.End()

	if _, err = r.RunQuery(ctx, core.NewQuery(Begin)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			r.rollback(ctx)
			span.SetStatus(codes.Error, "panic in transaction")
			panic(p)
		}
	}()

	if err = fn(ctx, r); err != nil {
		r.rollback(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err = r.RunQuery(ctx, core.NewQuery(Commit)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *Runner) rollback(ctx context.Context) {
	if _, err := r.RunQuery(ctx, core.NewQuery(Rollback)); err != nil {
		r.logger.Error("rollback failed", "error", err)
	}
}
