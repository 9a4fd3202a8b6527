package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/walker/agent"
	"github.com/samuelfneumann/walker/environment"
	"github.com/samuelfneumann/walker/environment/envconfig"
	"github.com/samuelfneumann/walker/experiment/tracker"
	"github.com/samuelfneumann/walker/experiment/trackers"
	ts "github.com/samuelfneumann/walker/timestep"
)

// countdown is an environment whose episodes last length steps, each
// paying a reward of 1
type countdown struct {
	length  int
	resets  int
	current ts.TimeStep
}

func (c *countdown) Reset() (ts.TimeStep, error) {
	c.resets++
	c.current = ts.New(ts.First, 0, 1, mat.NewVecDense(1, nil), 0)
	return c.current, nil
}

func (c *countdown) Step(*mat.VecDense) (ts.TimeStep, bool, error) {
	t := ts.New(ts.Mid, 1, 1, mat.NewVecDense(1, nil), c.current.Number+1)
	last := environment.NewStepLimit(c.length).End(&t)
	c.current = t
	return t, last, nil
}

func (c *countdown) CurrentTimeStep() ts.TimeStep { return c.current }

func (c *countdown) ObservationSpec() environment.Spec {
	return environment.NewUnboundedSpec(1, environment.Observation)
}

func (c *countdown) ActionSpec() environment.Spec {
	return environment.NewBoxSpec(1, environment.Action, -1, 1)
}

func (c *countdown) DiscountSpec() environment.Spec {
	return environment.NewBoxSpec(1, environment.Discount, 0, 1)
}

func TestOnline(t *testing.T) {
	e := &countdown{length: 4}
	p := agent.NewUniform(e.ActionSpec(), 0)
	returns := trackers.NewReturn(filepath.Join(t.TempDir(), "r.bin"))
	lengths := trackers.NewEpisodeLength(filepath.Join(t.TempDir(), "l.bin"))

	o := NewOnline(e, p, 10, zaptest.NewLogger(t), returns)
	o.Register(tracker.Register(lengths, e))
	require.NoError(t, o.Run(context.Background()))

	// Two full episodes and two steps of a third
	assert.Equal(t, 10, o.Steps())
	assert.Equal(t, 2, o.Episodes())
	assert.Equal(t, 3, e.resets)
	assert.Equal(t, []float64{4, 4}, returns.Data())
	assert.Equal(t, []float64{4, 4}, lengths.Data())
	assert.NoError(t, o.Save())
}

func TestRegisterTracksSource(t *testing.T) {
	e := &countdown{length: 2}
	returns := trackers.NewReturn(filepath.Join(t.TempDir(), "r.bin"))
	bound := tracker.Register(returns, e)

	// The timesteps handed to Track are ignored in favour of the
	// environment's own
	stray := ts.New(ts.Last, 100, 1, mat.NewVecDense(1, nil), 7)
	_, err := e.Reset()
	require.NoError(t, err)
	bound.Track(stray)
	for i := 0; i < 2; i++ {
		_, _, err := e.Step(nil)
		require.NoError(t, err)
		bound.Track(stray)
	}
	assert.Equal(t, []float64{2}, returns.Data())

	assert.Panics(t, func() { tracker.Register(nil, e) })
	assert.Panics(t, func() { tracker.Register(returns, nil) })
}

func TestOnlineCancelled(t *testing.T) {
	e := &countdown{length: 4}
	o := NewOnline(e, agent.NewUniform(e.ActionSpec(), 0), 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, o.Run(ctx), context.Canceled)
	assert.Equal(t, 0, o.Steps())
}

func TestGrid(t *testing.T) {
	c := envconfig.Default()
	c.StepLimit = 15
	c.Grid = envconfig.Grid{XCount: 2, ZCount: 1, OffsetX: 40, OffsetZ: 40}

	core, logs := observer.New(zap.InfoLevel)
	dir := t.TempDir()
	g, err := NewGrid(c, agent.Config{Type: agent.HeuristicType, Period: 20},
		40, 0, dir, zap.New(core))
	require.NoError(t, err)

	results, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, float64(40*i), res.Origin.X)
		assert.Equal(t, g.Seed(i), res.Seed)
		assert.Equal(t, 40, res.Steps)
		assert.Equal(t, 2, res.Episodes)
		assert.Equal(t, []float64{15, 15}, res.Lengths)
		assert.Len(t, res.Returns, 2)

		// Each instance keeps to its own cell of the grid
		hips := res.Instance.Bodies[0].Position()
		assert.InDelta(t, res.Origin.X, hips.X, 15)

		data, err := tracker.LoadData(filepath.Join(dir,
			res.ID.String()+"_return.bin"))
		require.NoError(t, err)
		assert.Equal(t, res.Returns, data)
	}
	assert.NotEqual(t, results[0].ID, results[1].ID)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 6)

	started := logs.FilterMessage("instance started").All()
	require.Len(t, started, 2)
	for _, entry := range started {
		assert.Contains(t, entry.ContextMap(), "instance")
	}
	assert.Equal(t, 2, logs.FilterMessage("instance finished").Len())
}

func TestNewGridValidates(t *testing.T) {
	c := envconfig.Default()
	p := agent.Config{Type: agent.UniformType}

	_, err := NewGrid(c, p, 0, 0, "", nil)
	assert.Error(t, err)

	_, err = NewGrid(c, agent.Config{Type: "learned"}, 10, 0, "", nil)
	assert.Error(t, err)

	c.Discount = 2
	_, err = NewGrid(c, p, 10, 0, "", nil)
	assert.Error(t, err)
}
