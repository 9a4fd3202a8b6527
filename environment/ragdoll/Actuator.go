package ragdoll

import (
	"fmt"

	"github.com/samuelfneumann/walker/physics"
)

// ActuatorMapper decodes flat action vectors into joint drive commands.
// Every driven segment receives a target rotation and a strength on
// each call to Apply.
type ActuatorMapper struct {
	schema   Schema
	skeleton *Skeleton
	drive    physics.Drive
}

// NewActuatorMapper returns a new ActuatorMapper. The schema must cover
// every driven segment of the skeleton. The spring and damper of drive
// are sent with every strength command and drive.MaxForce is the force
// a strength command of 1 maps onto.
func NewActuatorMapper(schema Schema, skeleton *Skeleton,
	drive physics.Drive) (*ActuatorMapper, error) {
	if skeleton == nil {
		return nil, configErrorf("newActuatorMapper", "no skeleton")
	}
	if err := schema.Validate(skeleton); err != nil {
		return nil, fmt.Errorf("newActuatorMapper: %w", err)
	}
	if !(drive.MaxForce > 0) {
		return nil, configErrorf("newActuatorMapper", "max joint force "+
			"limit must be positive, got %v", drive.MaxForce)
	}

	return &ActuatorMapper{
		schema:   schema,
		skeleton: skeleton,
		drive:    drive,
	}, nil
}

// Schema returns the action schema of the mapper
func (a *ActuatorMapper) Schema() Schema {
	return a.schema
}

// Drive returns the drive settings of the mapper
func (a *ActuatorMapper) Drive() physics.Drive {
	return a.drive
}

// Apply sends the commands encoded in action to the joint drives. An
// action of the wrong length is a ConfigurationError and no command is
// sent.
func (a *ActuatorMapper) Apply(action []float64) error {
	commands, err := a.schema.Decode(action)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	for _, seg := range a.skeleton.Segments() {
		cmd := commands[seg.Role]
		if cmd.HasRotation {
			seg.SetJointTargetRotation(cmd.X, cmd.Y, cmd.Z)
		}
		if cmd.HasStrength {
			seg.SetJointStrength(cmd.Strength, a.drive)
		}
	}
	return nil
}
