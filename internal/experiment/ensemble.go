package experiment

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/tiltsand/internal/config"
	"github.com/san-kum/tiltsand/internal/dispatch"
)

// Ensemble runs copies of one configuration with consecutive seeds. All
// members share a single worker pool.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart int64
	parallel  int
	logger    *slog.Logger
}

func NewEnsemble(cfg *config.Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		base:      cfg,
		numRuns:   numRuns,
		seedStart: seedStart,
		parallel:  4,
		logger:    slog.Default(),
	}
}

// SetParallel caps how many members run at once.
func (e *Ensemble) SetParallel(n int) { e.parallel = n }

func (e *Ensemble) SetLogger(l *slog.Logger) { e.logger = l }

// Run returns one result per member in seed order. The first failure
// cancels the remaining members.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if e.base == nil {
		return nil, ErrNilConfig
	}
	if e.numRuns < 1 {
		return nil, ErrInvalidRuns
	}

	pool := dispatch.New(e.base.Workers)
	defer pool.Close()

	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	if e.parallel > 0 {
		g.SetLimit(e.parallel)
	}

	for i := 0; i < e.numRuns; i++ {
		i := i
		cfg := e.base.Clone()
		cfg.Seed = e.seedStart + int64(i)
		g.Go(func() error {
			exp, err := New(cfg, WithPool(pool), WithLogger(e.logger.With("seed", cfg.Seed)))
			if err != nil {
				return err
			}
			defer exp.Close()

			res, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
