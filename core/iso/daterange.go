package iso

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/gridstatus/core/model"
)

// DefaultMaxConcurrency bounds parallel day fetches when unset.
const DefaultMaxConcurrency = 4

// FetchRange calls fetch once per market day when d is a range and
// concatenates the results in day order. Other specs are passed through
// unchanged. The first error cancels the remaining days.
func FetchRange[T any](ctx context.Context, d model.DateSpec, loc *time.Location, limit int,
	fetch func(context.Context, model.DateSpec) ([]T, error)) ([]T, error) {
	if d.Kind != model.DateRange {
		return fetch(ctx, d)
	}
	days := SplitDays(d.Start, d.End, loc)
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	results := make([][]T, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, day := range days {
		g.Go(func() error {
			recs, err := fetch(gctx, model.Day(day))
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []T
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
