// Package txn runs optimistic read-check-write cycles against the document
// store.
//
// Each cycle reads the current document, checks authorization and
// invariants against it, and issues one conditional update keyed on the
// version it read. When another writer got there first the store reports a
// version mismatch and the whole cycle runs again, up to a bounded number of
// attempts, after which the caller sees apperr.KindConflict. The whole loop,
// retries included, runs within timeouts.Medium().
package txn

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/gatherhub/internal/app/store/docstore"
	"github.com/dalemusser/gatherhub/internal/app/system/apperr"
	"github.com/dalemusser/gatherhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DefaultAttempts is used when a repository is configured with fewer than
// one attempt.
const DefaultAttempts = 3

// Retry runs fn until it returns something other than a version mismatch
// or attempts are used up. Store errors that escape fn are translated with
// StoreError; apperr errors pass through untouched.
func Retry(ctx context.Context, attempts int, log *zap.Logger, op string, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), log, op)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, docstore.ErrVersionMismatch) {
			err = StoreError(op, err)
			if apperr.KindOf(err) == apperr.KindUnavailable {
				log.Error("store unavailable", zap.String("op", op), zap.Error(err))
			}
			return err
		}

		if attempt >= attempts {
			log.Error("optimistic retries exhausted",
				zap.String("op", op),
				zap.Int("attempts", attempt))
			return apperr.Wrap(apperr.KindConflict, op, err)
		}
		log.Warn("version conflict, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt))

		if err := pause(ctx, attempt); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, op, err)
		}
	}
}

// StoreError maps a docstore error onto the engine's error kinds. Errors
// that already carry a kind are returned as they are.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, op, err)
	case errors.Is(err, docstore.ErrVersionMismatch), errors.Is(err, docstore.ErrDuplicate):
		return apperr.Wrap(apperr.KindConflict, op, err)
	case errors.Is(err, docstore.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.KindUnavailable, op, err)
	default:
		return apperr.Wrap(apperr.KindInternal, op, err)
	}
}

// pause backs off briefly between attempts so that contending writers
// spread out. It returns the context error if ctx ends first.
func pause(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt) * 2 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
