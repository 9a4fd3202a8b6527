// Package envconfig provides configuration documents for ragdoll
// walker environments. A Config describes the task, the joint drives,
// the target spawner, the simulated world, and the grid of isolated
// instances an experiment runs. Configurations are YAML serializable,
// and every field left out of a document keeps its default value.
package envconfig

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/walker/environment/ragdoll"
	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/physics/sim"
	"github.com/samuelfneumann/walker/utils/curve"
)

// Interval is a closed interval of reals
type Interval struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// R1 returns the interval as an r1.Interval
func (i Interval) R1() r1.Interval {
	return r1.Interval{Min: i.Min, Max: i.Max}
}

func (i Interval) shift(by float64) Interval {
	return Interval{Min: i.Min + by, Max: i.Max + by}
}

// Stabilizer configures the upright stabilizers. A zero Gain selects
// the gain of the configured mode.
type Stabilizer struct {
	Curve    []curve.Key `yaml:"curve"`
	Gain     float64     `yaml:"gain"`
	Segments []string    `yaml:"segments"`
}

// Spawn configures where targets are placed
type Spawn struct {
	Region string   `yaml:"region"`
	X      Interval `yaml:"x"`
	Y      Interval `yaml:"y"`
	Z      Interval `yaml:"z"`

	Centre r3.Vec  `yaml:"centre"`
	Radius float64 `yaml:"radius"`

	RayDown        float64 `yaml:"ray_down"`
	Scale          float64 `yaml:"scale"`
	MaxAttempts    int     `yaml:"max_attempts"`
	FallThreshold  float64 `yaml:"fall_threshold"`
	RespawnOnTouch bool    `yaml:"respawn_on_touch"`
}

// Grid lays out isolated instances of the environment on a grid in
// the ground plane, XCount along x and ZCount along z
type Grid struct {
	XCount  int     `yaml:"x_count"`
	ZCount  int     `yaml:"z_count"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetZ float64 `yaml:"offset_z"`
}

// Size returns the number of instances on the grid
func (g Grid) Size() int {
	return g.XCount * g.ZCount
}

// Origins returns the origin of each instance on the grid, row by row
// along x
func (g Grid) Origins() []r3.Vec {
	origins := make([]r3.Vec, 0, g.Size())
	for j := 0; j < g.ZCount; j++ {
		for i := 0; i < g.XCount; i++ {
			origins = append(origins, r3.Vec{
				X: float64(i) * g.OffsetX,
				Z: float64(j) * g.OffsetZ,
			})
		}
	}
	return origins
}

// Config is the configuration of a ragdoll walker experiment
type Config struct {
	Preset string `yaml:"preset"`
	Mode   string `yaml:"mode"`

	WalkingSpeed   float64  `yaml:"walking_speed"`
	SpeedRange     Interval `yaml:"speed_range"`
	RandomizeSpeed bool     `yaml:"randomize_speed"`

	StepLimit int     `yaml:"step_limit"`
	Discount  float64 `yaml:"discount"`
	Seed      uint64  `yaml:"seed"`

	Drive       physics.Drive                  `yaml:"drive"`
	JointLimits map[string]ragdoll.JointLimits `yaml:"joint_limits"`
	Stabilizer  Stabilizer                     `yaml:"stabilizer"`
	Spawn       Spawn                          `yaml:"spawn"`

	World sim.Config `yaml:"world"`
	Grid  Grid       `yaml:"grid"`
}

// Default returns the walker preset in standard mode, a single
// instance on the default platform
func Default() Config {
	r := ragdoll.DefaultConfig()
	spawn := r.Spawn

	limits := make(map[string]ragdoll.JointLimits, ragdoll.NumRoles-1)
	for i, l := range DefaultJointLimits {
		if role := ragdoll.Role(i); role != ragdoll.Root {
			limits[role.String()] = l
		}
	}

	segments := make([]string, len(r.Stabilized))
	for i, role := range r.Stabilized {
		segments[i] = role.String()
	}

	return Config{
		Preset:         r.Preset.String(),
		Mode:           r.Mode.String(),
		WalkingSpeed:   r.WalkingSpeed,
		SpeedRange:     Interval{Min: r.SpeedRange.Min, Max: r.SpeedRange.Max},
		RandomizeSpeed: r.RandomizeSpeed,
		StepLimit:      r.StepLimit,
		Discount:       r.Discount,
		Drive:          r.Drive,
		JointLimits:    limits,
		Stabilizer: Stabilizer{
			Curve:    r.StabilizerCurve.Keys(),
			Segments: segments,
		},
		Spawn: Spawn{
			Region:         spawn.Region.String(),
			X:              Interval{Min: spawn.X.Min, Max: spawn.X.Max},
			Y:              Interval{Min: spawn.Y.Min, Max: spawn.Y.Max},
			Z:              Interval{Min: spawn.Z.Min, Max: spawn.Z.Max},
			Centre:         spawn.Centre,
			Radius:         spawn.Radius,
			RayDown:        spawn.RayDown,
			Scale:          spawn.Scale,
			MaxAttempts:    spawn.MaxAttempts,
			FallThreshold:  spawn.FallThreshold,
			RespawnOnTouch: spawn.RespawnOnTouch,
		},
		World: sim.DefaultConfig(),
		Grid:  Grid{XCount: 1, ZCount: 1, OffsetX: 40, OffsetZ: 40},
	}
}

// Load reads a YAML document from r over the default configuration
// and validates the result. Unknown keys are errors.
func Load(r io.Reader) (Config, error) {
	c := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("load: %v", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML document from the file at path
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadFile: %v", err)
	}
	defer f.Close()

	return Load(f)
}

// Save writes c as a YAML document to w
func (c Config) Save(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("save: %v", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Validate returns an error if c does not describe a valid experiment
func (c Config) Validate() error {
	if _, err := c.Ragdoll(r3.Vec{}); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if _, err := sim.New(c.World); err != nil {
		return fmt.Errorf("validate: world: %v", err)
	}
	if c.Grid.XCount < 1 || c.Grid.ZCount < 1 {
		return fmt.Errorf("validate: grid needs at least one instance "+
			"along each axis, got %v x %v", c.Grid.XCount, c.Grid.ZCount)
	}
	if c.Grid.XCount > 1 && c.Grid.OffsetX <= 0 ||
		c.Grid.ZCount > 1 && c.Grid.OffsetZ <= 0 {
		return fmt.Errorf("validate: grid offsets must be positive, got "+
			"(%v, %v)", c.Grid.OffsetX, c.Grid.OffsetZ)
	}
	return nil
}

// Limits returns the joint limits of each role. Roles without
// configured limits get DefaultJointLimits.
func (c Config) Limits() ([ragdoll.NumRoles]ragdoll.JointLimits, error) {
	limits := DefaultJointLimits
	for name, l := range c.JointLimits {
		role, err := ragdoll.ParseRole(name)
		if err != nil {
			return limits, fmt.Errorf("limits: %v", err)
		}
		if role == ragdoll.Root {
			return limits, fmt.Errorf("limits: root %v has no joint", role)
		}
		limits[role] = l
	}
	return limits, nil
}

// Ragdoll returns the configuration of a ragdoll whose instance is
// placed at origin
func (c Config) Ragdoll(origin r3.Vec) (ragdoll.Config, error) {
	r := ragdoll.DefaultConfig()

	var err error
	if r.Preset, err = ragdoll.ParsePreset(c.Preset); err != nil {
		return r, fmt.Errorf("ragdoll: %v", err)
	}
	if r.Mode, err = ragdoll.ParseMode(c.Mode); err != nil {
		return r, fmt.Errorf("ragdoll: %v", err)
	}

	r.Drive = c.Drive
	if !(r.Drive.MaxForce > 0) {
		return r, fmt.Errorf("ragdoll: max joint force limit must be "+
			"positive, got %v", r.Drive.MaxForce)
	}

	r.WalkingSpeed = c.WalkingSpeed
	r.SpeedRange = c.SpeedRange.R1()
	r.RandomizeSpeed = c.RandomizeSpeed
	if !(r.SpeedRange.Min > 0) || r.SpeedRange.Min > r.SpeedRange.Max {
		return r, fmt.Errorf("ragdoll: invalid speed range %+v",
			c.SpeedRange)
	}

	if c.StepLimit <= 0 {
		return r, fmt.Errorf("ragdoll: step limit must be positive, got %v",
			c.StepLimit)
	}
	r.StepLimit = c.StepLimit
	if c.Discount < 0 || c.Discount > 1 {
		return r, fmt.Errorf("ragdoll: discount %v not in [0, 1]",
			c.Discount)
	}
	r.Discount = c.Discount
	r.Seed = c.Seed

	if len(c.Stabilizer.Curve) > 0 {
		r.StabilizerCurve, err = curve.New(c.Stabilizer.Curve...)
		if err != nil {
			return r, fmt.Errorf("ragdoll: stabilizer: %v", err)
		}
	}
	r.StabilizerGain = c.Stabilizer.Gain
	if len(c.Stabilizer.Segments) > 0 {
		r.Stabilized = nil
		for _, name := range c.Stabilizer.Segments {
			role, err := ragdoll.ParseRole(name)
			if err != nil {
				return r, fmt.Errorf("ragdoll: stabilizer: %v", err)
			}
			r.Stabilized = append(r.Stabilized, role)
		}
	}

	if _, err := c.Limits(); err != nil {
		return r, fmt.Errorf("ragdoll: %v", err)
	}

	r.Spawn, err = c.spawn(origin)
	if err != nil {
		return r, fmt.Errorf("ragdoll: %w", err)
	}
	return r, nil
}

// spawn returns the spawn region shifted to origin
func (c Config) spawn(origin r3.Vec) (ragdoll.SpawnConfig, error) {
	s := c.Spawn
	region, err := ragdoll.ParseRegion(s.Region)
	if err != nil {
		return ragdoll.SpawnConfig{}, fmt.Errorf("spawn: %v", err)
	}

	spawn := ragdoll.SpawnConfig{
		Region:         region,
		X:              s.X.shift(origin.X).R1(),
		Y:              s.Y.R1(),
		Z:              s.Z.shift(origin.Z).R1(),
		Centre:         r3.Add(s.Centre, origin),
		Radius:         s.Radius,
		RayDown:        s.RayDown + origin.Y,
		Scale:          s.Scale,
		MaxAttempts:    s.MaxAttempts,
		FallThreshold:  s.FallThreshold + origin.Y,
		RespawnOnTouch: s.RespawnOnTouch,
	}
	if err := spawn.Validate(); err != nil {
		return ragdoll.SpawnConfig{}, fmt.Errorf("spawn: %w", err)
	}
	return spawn, nil
}

// Sim returns the configuration of a world whose platform and
// obstacles are shifted to origin
func (c Config) Sim(origin r3.Vec) sim.Config {
	w := c.World
	w.Platform.Centre = r3.Add(w.Platform.Centre, origin)

	w.Obstacles = make([]sim.Obstacle, len(c.World.Obstacles))
	for i, o := range c.World.Obstacles {
		o.X += origin.X
		o.Z += origin.Z
		w.Obstacles[i] = o
	}
	return w
}
