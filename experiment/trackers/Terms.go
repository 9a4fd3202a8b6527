package trackers

import (
	"fmt"

	"github.com/samuelfneumann/walker/experiment/tracker"
	ts "github.com/samuelfneumann/walker/timestep"
)

// Terms tracks the per-episode sum of each named reward term an
// environment reports in TimeStep.Info. Terms missing from a timestep
// count as zero.
type Terms struct {
	current  map[string]float64
	episodes map[string][]float64
	finished int
	filename string
}

// NewTerms returns a new Terms Tracker which will save its data at the
// specified location filename
func NewTerms(filename string) *Terms {
	return &Terms{
		current:  make(map[string]float64),
		episodes: make(map[string][]float64),
		filename: filename,
	}
}

// Track adds the reward terms of t to the current episode
func (r *Terms) Track(t ts.TimeStep) {
	if t.First() {
		r.current = make(map[string]float64)
	}
	for name, v := range t.Info {
		r.current[name] += v
	}
	if !t.Last() {
		return
	}

	for name := range r.current {
		if _, ok := r.episodes[name]; !ok {
			r.episodes[name] = make([]float64, r.finished)
		}
	}
	for name := range r.episodes {
		r.episodes[name] = append(r.episodes[name], r.current[name])
	}
	r.finished++
	r.current = make(map[string]float64)
}

// Data returns the per-episode sums of each term over the finished
// episodes
func (r *Terms) Data() map[string][]float64 {
	data := make(map[string][]float64, len(r.episodes))
	for name, sums := range r.episodes {
		data[name] = append([]float64(nil), sums...)
	}
	return data
}

// Save saves the data tracked by the Terms Tracker to disk.
func (r *Terms) Save() error {
	if err := tracker.Encode(r.filename, r.episodes); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}
