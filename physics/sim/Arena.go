package sim

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/spatial/r3"
)

// Obstacle is a static box standing on the platform, such as a wall.
// Its footprint is a rectangle in the ground plane centred on (X, Z)
// and turned by Yaw degrees around the up axis.
type Obstacle struct {
	X     float64 `yaml:"x"`
	Z     float64 `yaml:"z"`
	HalfX float64 `yaml:"half_x"`
	HalfZ float64 `yaml:"half_z"`
	Yaw   float64 `yaml:"yaw"`

	// Height is measured from the platform surface
	Height float64 `yaml:"height"`
}

// local expresses the ground plane point (x, z) in the obstacle's
// footprint frame
func (o *Obstacle) local(x, z float64) (float64, float64) {
	dx, dz := x-o.X, z-o.Z
	sin, cos := math.Sincos(o.Yaw * math.Pi / 180)

	// Undo a turn of Yaw around +y, which maps +z toward +x
	return dx*cos - dz*sin, dx*sin + dz*cos
}

// Contains returns whether (x, z) lies within the footprint
func (o *Obstacle) Contains(x, z float64) bool {
	lx, lz := o.local(x, z)
	return math.Abs(lx) <= o.HalfX && math.Abs(lz) <= o.HalfZ
}

// Distance returns the distance from (x, z) to the footprint, which is
// zero inside it
func (o *Obstacle) Distance(x, z float64) float64 {
	lx, lz := o.local(x, z)
	dx := math.Max(math.Abs(lx)-o.HalfX, 0)
	dz := math.Max(math.Abs(lz)-o.HalfZ, 0)
	return math.Hypot(dx, dz)
}

// Arena holds the static obstacles of a world. Footprints live in a
// box2d world which maps the ground plane (x, z) onto box2d's (x, y),
// and its broadphase answers area queries before the exact footprint
// tests.
type Arena struct {
	world     box2d.B2World
	obstacles []*Obstacle
	floor     float64
}

// NewArena returns an arena with the given obstacles standing on a
// floor at height floor
func NewArena(floor float64, obstacles ...Obstacle) (*Arena, error) {
	a := &Arena{
		world: box2d.MakeB2World(box2d.MakeB2Vec2(0, 0)),
		floor: floor,
	}
	for i, o := range obstacles {
		if err := a.Add(o); err != nil {
			return nil, fmt.Errorf("newArena: obstacle %v: %v", i, err)
		}
	}
	return a, nil
}

// Add adds an obstacle to the arena
func (a *Arena) Add(o Obstacle) error {
	if !(o.HalfX > 0) || !(o.HalfZ > 0) || !(o.Height > 0) {
		return fmt.Errorf("add: obstacle %+v has no volume", o)
	}
	obstacle := &o

	def := box2d.NewB2BodyDef()
	def.Type = 0 // Static body
	def.Position = box2d.MakeB2Vec2(o.X, o.Z)

	// box2d turns counterclockwise from +x to +y, which in the ground
	// plane is from +x to +z, the opposite sense of a turn around +y
	def.Angle = -o.Yaw * math.Pi / 180
	body := a.world.CreateBody(def)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(o.HalfX, o.HalfZ)

	fixture := box2d.MakeB2FixtureDef()
	fixture.Shape = shape
	fixture.UserData = obstacle
	body.CreateFixtureFromDef(&fixture)

	a.obstacles = append(a.obstacles, obstacle)
	return nil
}

// Obstacles returns the obstacles of the arena
func (a *Arena) Obstacles() []Obstacle {
	obstacles := make([]Obstacle, len(a.obstacles))
	for i, o := range a.obstacles {
		obstacles[i] = *o
	}
	return obstacles
}

// Footprints returns the corners of each obstacle footprint in the
// ground plane, as tracked by box2d
func (a *Arena) Footprints() [][][2]float64 {
	var footprints [][][2]float64
	for body := a.world.GetBodyList(); body != nil; body = body.GetNext() {
		for fix := body.GetFixtureList(); fix != nil; fix = fix.M_next {
			shape, ok := fix.M_shape.(*box2d.B2PolygonShape)
			if !ok {
				continue
			}
			corners := make([][2]float64, 0, shape.M_count)
			for i := 0; i < shape.M_count; i++ {
				v := box2d.B2TransformVec2Mul(body.M_xf, shape.M_vertices[i])
				corners = append(corners, [2]float64{v.X, v.Y})
			}
			footprints = append(footprints, corners)
		}
	}
	return footprints
}

// query calls fn for every obstacle whose bounding box intersects the
// square of half width r around (x, z)
func (a *Arena) query(x, z, r float64, fn func(o *Obstacle)) {
	var aabb box2d.B2AABB
	aabb.LowerBound = box2d.MakeB2Vec2(x-r, z-r)
	aabb.UpperBound = box2d.MakeB2Vec2(x+r, z+r)

	a.world.QueryAABB(func(fixture *box2d.B2Fixture) bool {
		if o, ok := fixture.GetUserData().(*Obstacle); ok {
			fn(o)
		}
		return true
	}, aabb)
}

// Overlaps returns whether a sphere intersects any obstacle
func (a *Arena) Overlaps(center r3.Vec, radius float64) bool {
	if center.Y+radius < a.floor {
		return false
	}

	hit := false
	a.query(center.X, center.Z, radius, func(o *Obstacle) {
		if hit || center.Y-radius > a.floor+o.Height {
			return
		}
		hit = o.Distance(center.X, center.Z) <= radius
	})
	return hit
}

// Top returns the height of the highest obstacle top below y at the
// ground plane point (x, z)
func (a *Arena) Top(x, z, y float64) (float64, bool) {
	top, found := math.Inf(-1), false
	a.query(x, z, 0, func(o *Obstacle) {
		h := a.floor + o.Height
		if h <= y && h > top && o.Contains(x, z) {
			top, found = h, true
		}
	})
	return top, found
}
