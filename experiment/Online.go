package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/samuelfneumann/walker/agent"
	env "github.com/samuelfneumann/walker/environment"
	"github.com/samuelfneumann/walker/experiment/tracker"
	ts "github.com/samuelfneumann/walker/timestep"
)

// Online is an Experiment that runs a policy online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Policy
	maxSteps     int
	currentSteps int
	episodes     int
	trackers     []tracker.Tracker
	logger       *zap.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given policy. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter
// is a slice of tracker.Tracker which determine what data is saved.
func NewOnline(e env.Environment, p agent.Policy, steps int,
	logger *zap.Logger, t ...tracker.Tracker) *Online {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Online{
		Environment: e,
		Policy:      p,
		maxSteps:    steps,
		trackers:    t,
		logger:      logger,
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment. Episodes cut
// short by the step limit of the experiment are not finished.
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: %w", err)
	}
	o.track(step)

	var episodeReturn float64
	for !step.Last() && o.currentSteps < o.maxSteps {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		o.currentSteps++

		action := o.Policy.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
		episodeReturn += step.Reward

		o.track(step)
	}

	if step.Last() {
		o.episodes++
		o.logger.Debug("episode finished",
			zap.Int("episode", o.episodes),
			zap.Int("length", step.Number),
			zap.Stringer("end", step.EndType()),
			zap.Float64("return", episodeReturn))
	}

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run(ctx context.Context) error {
	for {
		ended, err := o.RunEpisode(ctx)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if ended {
			return nil
		}
	}
}

// Steps returns the number of steps taken so far
func (o *Online) Steps() int {
	return o.currentSteps
}

// Episodes returns the number of episodes finished so far
func (o *Online) Episodes() int {
	return o.episodes
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}
