// Package retry runs storage units of work again when a race guard
// rejected the first attempt.
package retry

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/playpark/internal/httperr"
)

// Operation is one atomic unit of work. A failed attempt must leave no
// committed side effects.
type Operation func(ctx context.Context) error

// Once runs op and repeats it a single time when the first attempt fails
// with httperr.ErrRetryable. A second retryable failure is surfaced as a
// transient error.
func Once(ctx context.Context, op Operation) error {
	err := op(ctx)
	if err == nil || !errors.Is(err, httperr.ErrRetryable) {
		return err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	err = op(ctx)
	if err != nil && errors.Is(err, httperr.ErrRetryable) {
		return httperr.ErrTransient("storage_contention")
	}
	return err
}
