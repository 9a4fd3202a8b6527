package tracker

import (
	ts "github.com/samuelfneumann/walker/timestep"
)

// Source is anything which reports its most recent timestep, such as
// an environment.Environment
type Source interface {
	CurrentTimeStep() ts.TimeStep
}

// bound is a Tracker tied to the timesteps of a single Source
type bound struct {
	Tracker
	src Source
}

// Register ties t to src. The returned Tracker ignores the timestep
// passed to Track and tracks the current timestep of src instead, so
// that trackers of side by side instances never see each other's data.
// Saving is left to t.
func Register(t Tracker, src Source) Tracker {
	if t == nil || src == nil {
		panic("register: tracker and source must be non-nil")
	}
	return &bound{Tracker: t, src: src}
}

// Track tracks the current timestep of the registered Source
func (b *bound) Track(ts.TimeStep) {
	b.Tracker.Track(b.src.CurrentTimeStep())
}
