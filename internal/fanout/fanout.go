// Package fanout runs independent remote requests in fixed-size groups with
// a barrier between groups. Peak in-flight requests never exceed the group
// size, and no group starts while the previous one has work outstanding.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Batches calls fn for every item, size items at a time. fn receives the
// item's index in items so callers can write results into a pre-sized slice
// without locking. The first error cancels the group's context, waits for
// the rest of the group and is returned; later groups are not started.
func Batches[T any](ctx context.Context, items []T, size int, fn func(ctx context.Context, i int, item T) error) error {
	if size <= 0 {
		size = 1
	}
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, len(items))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				return fn(gctx, i, items[i])
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Map is Batches collecting one result per item, in input order.
func Map[T, R any](ctx context.Context, items []T, size int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	err := Batches(ctx, items, size, func(ctx context.Context, i int, item T) error {
		r, err := fn(ctx, item)
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
