// Package batch runs work in bounded, sequential chunks.
//
// Items are sliced into chunks of at most size elements. Each chunk runs
// concurrently and must finish completely before the next chunk starts, so
// no more than size calls are ever in flight. A failing item never cancels
// its siblings; failures are reported next to the successful results.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Failure records an item whose call returned an error.
type Failure[T any] struct {
	Index int
	Item  T
	Err   error
}

// Map calls fn for every item and returns the successful results in input
// order, with failed items dropped from results and listed in failures.
// Chunks not yet started when ctx is cancelled are reported as failures
// carrying ctx.Err().
func Map[T, R any](ctx context.Context, items []T, size int, fn func(context.Context, T) (R, error)) ([]R, []Failure[T]) {
	if size < 1 {
		size = 1
	}

	type outcome struct {
		val R
		err error
	}
	outcomes := make([]outcome, len(items))

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))

		if err := ctx.Err(); err != nil {
			for i := start; i < len(items); i++ {
				outcomes[i].err = err
			}
			break
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				v, err := fn(ctx, items[i])
				outcomes[i] = outcome{val: v, err: err}
				return nil // never fail the group, failures are per item
			})
		}
		_ = g.Wait()
	}

	results := make([]R, 0, len(items))
	var failures []Failure[T]
	for i, o := range outcomes {
		if o.err != nil {
			failures = append(failures, Failure[T]{Index: i, Item: items[i], Err: o.err})
			continue
		}
		results = append(results, o.val)
	}
	return results, failures
}

// Each is Map for calls without a result value.
func Each[T any](ctx context.Context, items []T, size int, fn func(context.Context, T) error) []Failure[T] {
	_, failures := Map(ctx, items, size, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return failures
}
