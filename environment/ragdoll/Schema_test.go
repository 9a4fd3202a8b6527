package ragdoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaLayout(t *testing.T) {
	s := DefaultSchema()
	assert.Equal(t, 35, s.Len())

	rotations, strengths := 0, 0
	for _, e := range s.Entries() {
		if e.Field == RotationField {
			assert.Zero(t, strengths, "rotation entry after strengths")
			rotations += e.Width()
		} else {
			strengths++
		}
	}
	assert.Equal(t, 23, rotations)
	assert.Equal(t, 12, strengths)
}

func TestSchemaValidatesAgainstSkeleton(t *testing.T) {
	sk := newTestRig().skeleton(&rewardCounter{})
	require.NoError(t, DefaultSchema().Validate(sk))

	entries := DefaultSchema().Entries()

	// Drop the strength entry of the right forearm
	missing, err := NewSchema(entries[:len(entries)-1]...)
	require.NoError(t, err)
	assert.True(t, IsConfigurationError(missing.Validate(sk)))

	// The root has no joint drive to command
	withRoot, err := NewSchema(append([]Entry{{Hips, RotationField, AxisX}},
		entries...)...)
	require.NoError(t, err)
	assert.True(t, IsConfigurationError(withRoot.Validate(sk)))
}

func TestNewSchemaRejectsMalformedLayouts(t *testing.T) {
	_, err := NewSchema(
		Entry{Role: Spine, Field: StrengthField},
		Entry{Spine, RotationField, AxisX},
	)
	assert.True(t, IsConfigurationError(err), "rotation after strength")

	_, err = NewSchema(
		Entry{Spine, RotationField, AxisX},
		Entry{Spine, RotationField, AxisY},
	)
	assert.True(t, IsConfigurationError(err), "duplicate rotation")

	_, err = NewSchema(Entry{Spine, RotationField, 0})
	assert.True(t, IsConfigurationError(err), "no axes")

	_, err = NewSchema(Entry{Role(NumRoles), RotationField, AxisX})
	assert.True(t, IsConfigurationError(err), "invalid role")
}

func TestSchemaDecode(t *testing.T) {
	s := DefaultSchema()
	action := make([]float64, s.Len())
	for i := range action {
		action[i] = float64(i)
	}

	commands, err := s.Decode(action)
	require.NoError(t, err)

	assert.Equal(t, Command{X: 0, Y: 1, Z: 2, HasRotation: true,
		Strength: 23, HasStrength: true}, commands[Spine])

	// thighL[x,z] follows spine and leaves y at zero
	assert.Equal(t, 3.0, commands[ThighL].X)
	assert.Zero(t, commands[ThighL].Y)
	assert.Equal(t, 4.0, commands[ThighL].Z)

	// head[x,y] is the last rotation entry, head strength the second
	// strength entry
	assert.Equal(t, 21.0, commands[Head].X)
	assert.Equal(t, 22.0, commands[Head].Y)
	assert.Zero(t, commands[Head].Z)
	assert.Equal(t, 24.0, commands[Head].Strength)

	assert.Equal(t, 34.0, commands[ForearmR].Strength)
	assert.False(t, commands[Hips].HasRotation)
	assert.False(t, commands[Hips].HasStrength)
}

func TestSchemaDecodeLengthMismatch(t *testing.T) {
	s := DefaultSchema()
	for _, n := range []int{0, s.Len() - 1, s.Len() + 1} {
		_, err := s.Decode(make([]float64, n))
		assert.True(t, IsConfigurationError(err), "length %v", n)
	}
}

func TestSchemaEncodeMatchesDecode(t *testing.T) {
	s := DefaultSchema()
	action := s.Encode(func(e Entry, axis Axis) float64 {
		if e.Field == StrengthField {
			return -float64(e.Role)
		}
		return float64(e.Role) + float64(axis)/10
	})
	require.Len(t, action, s.Len())

	commands, err := s.Decode(action)
	require.NoError(t, err)
	for _, e := range s.Entries() {
		cmd := commands[e.Role]
		if e.Field == StrengthField {
			assert.Equal(t, -float64(e.Role), cmd.Strength)
			continue
		}
		if e.Axes.Has(AxisX) {
			assert.Equal(t, float64(e.Role)+0.1, cmd.X)
		}
		if e.Axes.Has(AxisZ) {
			assert.Equal(t, float64(e.Role)+0.4, cmd.Z)
		}
	}
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "xz", AxesXZ.String())
	assert.Equal(t, "xyz", AxesXYZ.String())
	assert.Equal(t, "none", Axis(0).String())
	assert.Equal(t, 2, AxesXY.Count())
}
