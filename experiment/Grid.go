package experiment

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/agent"
	"github.com/samuelfneumann/walker/environment/envconfig"
	"github.com/samuelfneumann/walker/experiment/tracker"
	"github.com/samuelfneumann/walker/experiment/trackers"
)

// Result is the outcome of one instance of a Grid experiment
type Result struct {
	ID       uuid.UUID
	Index    int
	Origin   r3.Vec
	Seed     uint64
	Steps    int
	Episodes int

	// Returns and Lengths hold one value per finished episode
	Returns []float64
	Lengths []float64

	Instance *envconfig.Instance
}

// Grid is an experiment which runs isolated instances of a ragdoll
// walker in parallel, one per cell of the configured grid. Each
// instance has its own world, ragdoll, policy, and trackers, and
// instances share no mutable state.
type Grid struct {
	config   envconfig.Config
	policy   agent.Config
	steps    int
	parallel int
	dir      string
	logger   *zap.Logger
}

// NewGrid returns a new Grid experiment running each instance for
// steps steps. At most parallel instances run at once, or all of them
// if parallel is not positive. If dir is not empty, the trackers of
// each instance are saved there, named by instance ID.
func NewGrid(c envconfig.Config, p agent.Config, steps, parallel int,
	dir string, logger *zap.Logger) (*Grid, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newGrid: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("newGrid: %v", err)
	}
	if steps <= 0 {
		return nil, fmt.Errorf("newGrid: steps must be positive, got %v",
			steps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Grid{
		config:   c,
		policy:   p,
		steps:    steps,
		parallel: parallel,
		dir:      dir,
		logger:   logger,
	}, nil
}

// Seed returns the seed of the instance at index i
func (g *Grid) Seed(i int) uint64 {
	return g.config.Seed + uint64(i)<<16
}

// Run runs every instance to completion and returns their results in
// grid order. The first failing instance cancels the others.
func (g *Grid) Run(ctx context.Context) ([]Result, error) {
	origins := g.config.Grid.Origins()
	results := make([]Result, len(origins))

	eg, ctx := errgroup.WithContext(ctx)
	if g.parallel > 0 {
		eg.SetLimit(g.parallel)
	}

	for i, origin := range origins {
		i, origin := i, origin
		id := uuid.New()
		eg.Go(func() error {
			res, err := g.runInstance(ctx, id, i, origin)
			if err != nil {
				return fmt.Errorf("run: instance %v: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Grid) runInstance(ctx context.Context, id uuid.UUID, i int,
	origin r3.Vec) (Result, error) {
	logger := g.logger.With(zap.String("instance", id.String()),
		zap.Int("index", i))
	seed := g.Seed(i)

	inst, _, err := g.config.CreateAt(origin, seed, logger)
	if err != nil {
		return Result{}, err
	}
	policy, err := g.policy.CreatePolicy(inst.Ragdoll, seed)
	if err != nil {
		return Result{}, err
	}

	returns := trackers.NewReturn(g.path(id, "return"))
	lengths := trackers.NewEpisodeLength(g.path(id, "length"))
	terms := trackers.NewTerms(g.path(id, "terms"))
	online := NewOnline(inst.Ragdoll, policy, g.steps, logger)
	for _, t := range []tracker.Tracker{returns, lengths, terms} {
		online.Register(tracker.Register(t, inst.Ragdoll))
	}

	logger.Info("instance started",
		zap.Float64("x", origin.X),
		zap.Float64("z", origin.Z),
		zap.Uint64("seed", seed))

	if err := online.Run(ctx); err != nil {
		return Result{}, err
	}
	if g.dir != "" {
		if err := online.Save(); err != nil {
			return Result{}, err
		}
	}

	logger.Info("instance finished",
		zap.Int("steps", online.Steps()),
		zap.Int("episodes", online.Episodes()))

	return Result{
		ID:       id,
		Index:    i,
		Origin:   origin,
		Seed:     seed,
		Steps:    online.Steps(),
		Episodes: online.Episodes(),
		Returns:  returns.Data(),
		Lengths:  lengths.Data(),
		Instance: inst,
	}, nil
}

func (g *Grid) path(id uuid.UUID, name string) string {
	return filepath.Join(g.dir, fmt.Sprintf("%v_%v.bin", id, name))
}
