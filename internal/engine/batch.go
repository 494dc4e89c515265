package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a request with its outcome. Err holds per-plan failures
// such as a malformed plan; they do not stop the batch.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// CompileBatch compiles independent plans on at most workers goroutines.
// Results keep the order of reqs. The returned error is non-nil only when ctx
// is cancelled; plans not yet started are then left with ctx's error.
func (c *Compiler) CompileBatch(ctx context.Context, reqs []Request, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = c.Config.Jobs.Workers
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	results := make([]BatchResult, len(reqs))
	for i, r := range reqs {
		results[i].Name = r.Name
	}
	if len(reqs) == 0 {
		return results, nil
	}

	// Пул воркеров: не больше workers планов одновременно
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			// Ошибка одного плана не останавливает остальные
			res, err := c.Compile(req)
			results[i].Result, results[i].Err = res, err
			if err != nil {
				c.log.Warn().Str("plan", req.Name).Err(err).Msg("plan failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
