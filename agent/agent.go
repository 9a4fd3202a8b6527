// Package agent implements policies which select actions in an
// environment. The policies here do not learn: they exercise an
// environment and give baselines for experiments.
package agent

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/walker/environment/ragdoll"
	ts "github.com/samuelfneumann/walker/timestep"
)

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. SelectAction is called
// once per timestep with the timestep the environment last returned.
type Policy interface {
	SelectAction(t ts.TimeStep) *mat.VecDense
}

// Type is a kind of policy which can be configured
type Type string

const (
	UniformType   Type = "uniform"
	HeuristicType Type = "heuristic"
)

// Config represents a configuration for creating a policy
type Config struct {
	Type Type `yaml:"type"`

	// Period is the number of steps of one gait cycle of the
	// heuristic policy
	Period int `yaml:"period"`
}

// Validate returns an error describing whether or not the
// configuration is valid or not.
func (c Config) Validate() error {
	switch c.Type {
	case UniformType:
		return nil
	case HeuristicType:
		if c.Period <= 0 {
			return fmt.Errorf("validate: heuristic period must be "+
				"positive, got %v", c.Period)
		}
		return nil
	}
	return fmt.Errorf("validate: no such policy type %q", c.Type)
}

// CreatePolicy creates the policy that the config describes for the
// ragdoll r
func (c Config) CreatePolicy(r *ragdoll.Ragdoll, seed uint64) (Policy,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createPolicy: %v", err)
	}

	switch c.Type {
	case UniformType:
		return NewUniform(r.ActionSpec(), seed), nil
	default:
		return NewHeuristic(r.Schema(), c.Period), nil
	}
}
