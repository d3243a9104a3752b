package classifier

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ClassifyAll classifies messages concurrently with at most workers
// goroutines. Results are returned in input order. Classification itself
// cannot fail; the only error is context cancellation.
func (c *Classifier) ClassifyAll(ctx context.Context, messages []string, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, msg := range messages {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.Classify(msg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
