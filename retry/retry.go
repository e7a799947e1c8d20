// Package retry implements the single-retry envelope wrapped around every provider-facing call.
package retry

import (
	"context"

	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/metrics"
	"github.com/samber/mo"
)

// Once runs op and, if it fails, runs it exactly one more time.
// The second outcome is returned as is. There is no backoff.
func Once[T any](ctx context.Context, op func(context.Context) (T, error)) mo.Result[T] {
	return OnceNamed(ctx, "anonymous", op)
}

// OnceNamed is Once with a label for the retry counter and log line.
func OnceNamed[T any](ctx context.Context, name string, op func(context.Context) (T, error)) mo.Result[T] {
	value, err := op(ctx)
	if err == nil {
		return mo.Ok(value)
	}

	metrics.Retries.WithLabelValues(name).Inc()
	log.WithField("op", name).WithError(err).Debug("retrying once")

	return mo.TupleToResult(op(ctx))
}

// Do is Once for call sites that want the plain (T, error) pair.
func Do[T any](ctx context.Context, name string, op func(context.Context) (T, error)) (T, error) {
	return OnceNamed(ctx, name, op).Get()
}

// DoUnless is Do, except that failures matching final are returned without the second run.
func DoUnless[T any](ctx context.Context, name string, final func(error) bool, op func(context.Context) (T, error)) (T, error) {
	value, err := op(ctx)
	if err == nil || final(err) {
		return value, err
	}

	metrics.Retries.WithLabelValues(name).Inc()
	log.WithField("op", name).WithError(err).Debug("retrying once")

	return op(ctx)
}
