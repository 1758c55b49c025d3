// Package concurrent runs bounded fan-out work over slices.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach calls action for every item with at most limit calls in flight.
// A limit below one means one worker per item. The first error cancels the
// context passed to the remaining calls and is returned.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return action(ctx, item)
		})
	}
	return g.Wait()
}

// Map applies fn to every item with at most limit calls in flight and keeps
// the input order. Every item is processed; errors are returned per item.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, []error) {
	out := make([]R, len(items))
	errs := make([]error, len(items))
	g := errgroup.Group{}
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			out[i], errs[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return out, errs
}
