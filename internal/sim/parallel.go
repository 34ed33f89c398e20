package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds an independent simulator for one seed.
type Factory func(seed uint64) (*Simulator, error)

// Batch runs statistically independent replicas of one configuration,
// each with its own seed, ensemble and generator. Every replica runs
// sequentially on its own goroutine.
type Batch struct {
	factory   Factory
	replicas  int
	seedStart uint64
}

func NewBatch(factory Factory, replicas int, seedStart uint64) *Batch {
	return &Batch{factory: factory, replicas: replicas, seedStart: seedStart}
}

// Run returns the results in replica order. The first failure cancels
// the remaining replicas.
func (b *Batch) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if b.replicas <= 0 {
		return nil, ErrNoReplicas
	}
	results := make([]*Result, b.replicas)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < b.replicas; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = b.seedStart + uint64(idx)

			s, err := b.factory(cfgCopy.Seed)
			if err != nil {
				return fmt.Errorf("replica %d: %w", idx, err)
			}
			res, err := s.Run(ctx, cfgCopy)
			if err != nil {
				return fmt.Errorf("replica %d: %w", idx, err)
			}
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
