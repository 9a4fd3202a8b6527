package ragdoll

import "fmt"

// Axis is a set of joint rotation axes
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ

	AxesXZ  = AxisX | AxisZ
	AxesXY  = AxisX | AxisY
	AxesXYZ = AxisX | AxisY | AxisZ
)

// Has returns whether the set contains axis
func (a Axis) Has(axis Axis) bool {
	return a&axis != 0
}

// Count returns the number of axes in the set
func (a Axis) Count() int {
	n := 0
	for _, axis := range [...]Axis{AxisX, AxisY, AxisZ} {
		if a.Has(axis) {
			n++
		}
	}
	return n
}

func (a Axis) String() string {
	s := ""
	for i, axis := range [...]Axis{AxisX, AxisY, AxisZ} {
		if a.Has(axis) {
			s += string("xyz"[i])
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Field is the kind of command an action schema entry carries
type Field int

const (
	RotationField Field = iota
	StrengthField
)

func (f Field) String() string {
	if f == StrengthField {
		return "strength"
	}
	return "rotation"
}

// Entry is one entry of an action schema: the command of a field for a
// segment. Rotation entries consume one action value per axis in x, y,
// z order. Strength entries consume a single value.
type Entry struct {
	Role  Role
	Field Field
	Axes  Axis
}

// Width returns the number of action values the entry consumes
func (e Entry) Width() int {
	if e.Field == StrengthField {
		return 1
	}
	return e.Axes.Count()
}

// Command is the decoded command for one segment. X, Y, Z are zero for
// axes the segment's entry does not control.
type Command struct {
	X, Y, Z  float64
	Strength float64

	HasRotation bool
	HasStrength bool
}

// Schema is the ordered layout of the action vector: a block of
// rotation entries followed by a block of strength entries. The same
// Schema decodes actions, encodes heuristic actions, and orders the
// strength observations, so the three always agree.
type Schema struct {
	entries []Entry
	length  int
}

// NewSchema returns a new Schema with the given entries. All rotation
// entries must precede all strength entries, each role may appear at
// most once per block, and rotation entries need at least one axis.
func NewSchema(entries ...Entry) (Schema, error) {
	const op = "newSchema"

	var rotation, strength [NumRoles]bool
	length := 0
	inStrength := false
	for i, e := range entries {
		if !e.Role.Valid() {
			return Schema{}, configErrorf(op, "entry %v: invalid role %v", i,
				e.Role)
		}

		switch e.Field {
		case RotationField:
			if inStrength {
				return Schema{}, configErrorf(op, "entry %v: rotation entry "+
					"for %v after strength block", i, e.Role)
			}
			if e.Axes.Count() == 0 {
				return Schema{}, configErrorf(op, "entry %v: rotation entry "+
					"for %v has no axes", i, e.Role)
			}
			if rotation[e.Role] {
				return Schema{}, configErrorf(op, "entry %v: duplicate "+
					"rotation entry for %v", i, e.Role)
			}
			rotation[e.Role] = true

		case StrengthField:
			inStrength = true
			if strength[e.Role] {
				return Schema{}, configErrorf(op, "entry %v: duplicate "+
					"strength entry for %v", i, e.Role)
			}
			strength[e.Role] = true

		default:
			return Schema{}, configErrorf(op, "entry %v: unknown field %v", i,
				e.Field)
		}
		length += e.Width()
	}

	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return Schema{entries: cp, length: length}, nil
}

// DefaultSchema returns the action layout of the humanoid ragdoll.
// Hinge-like joints (shins, forearms) only bend around x, ball joints
// of the hips and shoulders skip the twist axis, and the head cannot
// roll.
func DefaultSchema() Schema {
	s, err := NewSchema(
		Entry{Spine, RotationField, AxesXYZ},
		Entry{ThighL, RotationField, AxesXZ},
		Entry{ThighR, RotationField, AxesXZ},
		Entry{ShinL, RotationField, AxisX},
		Entry{ShinR, RotationField, AxisX},
		Entry{FootR, RotationField, AxesXYZ},
		Entry{FootL, RotationField, AxesXYZ},
		Entry{ArmL, RotationField, AxesXZ},
		Entry{ArmR, RotationField, AxesXZ},
		Entry{ForearmL, RotationField, AxisX},
		Entry{ForearmR, RotationField, AxisX},
		Entry{Head, RotationField, AxesXY},

		Entry{Role: Spine, Field: StrengthField},
		Entry{Role: Head, Field: StrengthField},
		Entry{Role: ThighL, Field: StrengthField},
		Entry{Role: ShinL, Field: StrengthField},
		Entry{Role: FootL, Field: StrengthField},
		Entry{Role: ThighR, Field: StrengthField},
		Entry{Role: ShinR, Field: StrengthField},
		Entry{Role: FootR, Field: StrengthField},
		Entry{Role: ArmL, Field: StrengthField},
		Entry{Role: ForearmL, Field: StrengthField},
		Entry{Role: ArmR, Field: StrengthField},
		Entry{Role: ForearmR, Field: StrengthField},
	)
	if err != nil {
		panic(fmt.Sprintf("defaultSchema: %v", err))
	}
	return s
}

// Len returns the length of action vectors described by the schema
func (s Schema) Len() int {
	return s.length
}

// Entries returns the entries of the schema in order
func (s Schema) Entries() []Entry {
	cp := make([]Entry, len(s.entries))
	copy(cp, s.entries)
	return cp
}

// Validate checks the schema against a skeleton: every driven segment
// must have exactly one rotation and one strength entry, and no entry
// may name a segment without a joint drive.
func (s Schema) Validate(sk *Skeleton) error {
	const op = "validate"

	var rotation, strength [NumRoles]bool
	for _, e := range s.entries {
		if !sk.Segment(e.Role).Driven() {
			return configErrorf(op, "%v entry for %v, which has no joint "+
				"drive", e.Field, e.Role)
		}
		if e.Field == RotationField {
			rotation[e.Role] = true
		} else {
			strength[e.Role] = true
		}
	}

	for _, seg := range sk.Segments() {
		if !seg.Driven() {
			continue
		}
		if !rotation[seg.Role] {
			return configErrorf(op, "no rotation entry for %v", seg.Role)
		}
		if !strength[seg.Role] {
			return configErrorf(op, "no strength entry for %v", seg.Role)
		}
	}
	return nil
}

// Decode splits an action vector into per-segment commands
func (s Schema) Decode(action []float64) ([NumRoles]Command, error) {
	var commands [NumRoles]Command
	if len(action) != s.length {
		return commands, configErrorf("decode", "action vector has length "+
			"%v, schema expects %v", len(action), s.length)
	}

	i := 0
	for _, e := range s.entries {
		cmd := &commands[e.Role]
		if e.Field == StrengthField {
			cmd.Strength = action[i]
			cmd.HasStrength = true
			i++
			continue
		}

		cmd.HasRotation = true
		for _, axis := range [...]Axis{AxisX, AxisY, AxisZ} {
			if !e.Axes.Has(axis) {
				continue
			}
			switch axis {
			case AxisX:
				cmd.X = action[i]
			case AxisY:
				cmd.Y = action[i]
			case AxisZ:
				cmd.Z = action[i]
			}
			i++
		}
	}
	return commands, nil
}

// Encode lays out values produced per entry axis into an action vector.
// The function value is called once per action slot, in order, with
// the entry and the axis the slot controls (zero for strength slots).
func (s Schema) Encode(value func(e Entry, axis Axis) float64) []float64 {
	action := make([]float64, 0, s.length)
	for _, e := range s.entries {
		if e.Field == StrengthField {
			action = append(action, value(e, 0))
			continue
		}
		for _, axis := range [...]Axis{AxisX, AxisY, AxisZ} {
			if e.Axes.Has(axis) {
				action = append(action, value(e, axis))
			}
		}
	}
	return action
}
