package e

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

// WrapError maps a storage error onto one of the package sentinels, prefixed with op.
// Anything that is not a known "no rows" case is treated as the store being unavailable.
func WrapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, ErrInvalidInput):
		return fmt.Errorf("%s: %w", op, ErrInvalidInput)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
	if ctx != nil && ctx.Err() != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, ctx.Err())
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
