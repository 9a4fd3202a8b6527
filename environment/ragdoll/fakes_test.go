package ragdoll

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

type fakeBody struct {
	pos, vel, angVel r3.Vec
	rot              quat.Number
	torque           r3.Vec
	listeners        []physics.ContactListener
}

func newFakeBody(pos r3.Vec) *fakeBody {
	return &fakeBody{pos: pos, rot: spatialutils.Identity}
}

func (b *fakeBody) Position() r3.Vec           { return b.pos }
func (b *fakeBody) Rotation() quat.Number      { return b.rot }
func (b *fakeBody) LocalRotation() quat.Number { return b.rot }
func (b *fakeBody) Velocity() r3.Vec           { return b.vel }
func (b *fakeBody) AngularVelocity() r3.Vec    { return b.angVel }
func (b *fakeBody) AddTorque(t r3.Vec)         { b.torque = r3.Add(b.torque, t) }
func (b *fakeBody) Subscribe(l physics.ContactListener) {
	b.listeners = append(b.listeners, l)
}

func (b *fakeBody) Teleport(pos r3.Vec, rot quat.Number) {
	b.pos, b.rot = pos, rot
}

func (b *fakeBody) SetVelocity(lin, ang r3.Vec) {
	b.vel, b.angVel = lin, ang
}

func (b *fakeBody) enter(tag physics.Tag) {
	for _, l := range b.listeners {
		l.OnCollisionEnter(tag)
	}
}

func (b *fakeBody) stay(tag physics.Tag) {
	for _, l := range b.listeners {
		l.OnCollisionStay(tag)
	}
}

func (b *fakeBody) exit(tag physics.Tag) {
	for _, l := range b.listeners {
		l.OnCollisionExit(tag)
	}
}

type fakeJoint struct {
	target   quat.Number
	drive    physics.Drive
	commands int
}

func (j *fakeJoint) SetTargetRotation(q quat.Number) {
	j.target = q
	j.commands++
}

func (j *fakeJoint) SetDrive(d physics.Drive) {
	j.drive = d
	j.commands++
}

// fakeWorld is a scene with a flat floor at height floor. Overlaps
// reports an overlap wherever blocked returns true.
type fakeWorld struct {
	floor   float64
	noFloor bool
	blocked func(center r3.Vec, radius float64) bool
	onStep  func()
	steps   int
}

func (w *fakeWorld) Overlaps(center r3.Vec, radius float64) bool {
	if w.blocked == nil {
		return false
	}
	return w.blocked(center, radius)
}

func (w *fakeWorld) RaycastDown(origin r3.Vec, maxDistance float64) (r3.Vec,
	bool) {
	if w.noFloor || origin.Y < w.floor || origin.Y-w.floor > maxDistance {
		return r3.Vec{}, false
	}
	return r3.Vec{X: origin.X, Y: w.floor, Z: origin.Z}, true
}

func (w *fakeWorld) Step(float64) {
	w.steps++
	if w.onStep != nil {
		w.onStep()
	}
}

func (w *fakeWorld) Dt() float64 { return 0.02 }

type rewardCounter struct {
	total float64
	calls int
}

func (r *rewardCounter) AddReward(reward float64) {
	r.total += reward
	r.calls++
}

var testLimits = JointLimits{LowX: -90, HighX: 90, Y: 30, Z: 30}

var testLayout = [NumRoles]r3.Vec{
	Hips:     {X: 0, Y: 1, Z: 0},
	Spine:    {X: 0, Y: 1.3, Z: 0},
	Head:     {X: 0, Y: 1.7, Z: 0},
	ThighL:   {X: -0.1, Y: 0.8, Z: 0},
	ShinL:    {X: -0.1, Y: 0.45, Z: 0},
	FootL:    {X: -0.1, Y: 0.05, Z: 0},
	ThighR:   {X: 0.1, Y: 0.8, Z: 0},
	ShinR:    {X: 0.1, Y: 0.45, Z: 0},
	FootR:    {X: 0.1, Y: 0.05, Z: 0},
	ArmL:     {X: -0.3, Y: 1.4, Z: 0},
	ForearmL: {X: -0.55, Y: 1.4, Z: 0},
	ArmR:     {X: 0.3, Y: 1.4, Z: 0},
	ForearmR: {X: 0.55, Y: 1.4, Z: 0},
}

type testRig struct {
	bodies   [NumRoles]*fakeBody
	joints   [NumRoles]*fakeJoint
	bindings []Binding
}

func newTestRig() *testRig {
	rig := &testRig{}
	for _, role := range Roles() {
		rig.bodies[role] = newFakeBody(testLayout[role])
		b := Binding{Role: role, Body: rig.bodies[role]}
		if role != Root {
			rig.joints[role] = &fakeJoint{}
			b.Joint = rig.joints[role]
			b.Limits = testLimits
		}
		rig.bindings = append(rig.bindings, b)
	}
	return rig
}

func (rig *testRig) skeleton(sink RewardSink) *Skeleton {
	sk, err := NewSkeleton(rig.bindings, [NumRoles]ContactRewards{}, sink)
	if err != nil {
		panic(err)
	}
	return sk
}
