// Package consensus runs independent provider rounds and aggregates the usable ones.
package consensus

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Spec describes one multi-round consensus run
type Spec[T, R any] struct {
	// Rounds is the number of independent attempts
	Rounds int

	// Call performs one round. An error marks the round failed.
	Call func(ctx context.Context, round int) (T, error)

	// Usable decides whether a successful round counts. Nil accepts every round.
	Usable func(T) bool

	// Aggregate combines the usable rounds, in round order
	Aggregate func([]T) R

	// Parallel runs rounds concurrently instead of one after another
	Parallel bool
}

// Stats counts what happened to each round
type Stats struct {
	Rounds   int     `json:"rounds"`
	Usable   int     `json:"usable"`
	Failed   int     `json:"failed"`
	Unusable int     `json:"unusable"`
	Errors   []error `json:"-"`
}

type roundResult[T any] struct {
	value T
	err   error
}

// Run executes spec.Rounds rounds and aggregates the usable results.
// ok is false when no round was usable; Aggregate is not called in that case.
func Run[T, R any](ctx context.Context, spec Spec[T, R]) (result R, stats Stats, ok bool) {
	stats.Rounds = spec.Rounds
	if spec.Rounds <= 0 || spec.Call == nil {
		return result, stats, false
	}

	results := make([]roundResult[T], spec.Rounds)
	if spec.Parallel && spec.Rounds > 1 {
		// Rounds never return errors to the group, so one failure does not cancel the others
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < spec.Rounds; i++ {
			i := i
			g.Go(func() error {
				v, err := spec.Call(gctx, i)
				results[i] = roundResult[T]{value: v, err: err}
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := 0; i < spec.Rounds; i++ {
			if err := ctx.Err(); err != nil {
				results[i] = roundResult[T]{err: err}
				continue
			}
			v, err := spec.Call(ctx, i)
			results[i] = roundResult[T]{value: v, err: err}
		}
	}

	usable := make([]T, 0, spec.Rounds)
	for _, r := range results {
		switch {
		case r.err != nil:
			stats.Failed++
			stats.Errors = append(stats.Errors, r.err)
		case spec.Usable != nil && !spec.Usable(r.value):
			stats.Unusable++
		default:
			usable = append(usable, r.value)
		}
	}
	stats.Usable = len(usable)

	if len(usable) == 0 || spec.Aggregate == nil {
		return result, stats, false
	}
	return spec.Aggregate(usable), stats, true
}
