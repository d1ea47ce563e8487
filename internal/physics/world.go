// Package physics is a small rigid-body world: box colliders, gravity,
// per-axis swept collision and ray casts. It is the collaborator the
// character controller queries and commands.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type World struct {
	gravity mgl64.Vec3
	bodies  []*Body
	nextID  BodyID
}

type Option func(*World)

// WithGravity sets the vertical gravity acceleration (negative is down).
func WithGravity(g float64) Option {
	return func(w *World) {
		w.gravity = mgl64.Vec3{0, g, 0}
	}
}

func NewWorld(opts ...Option) *World {
	w := &World{gravity: mgl64.Vec3{0, DefaultGravity, 0}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

// AddBody creates a body from desc and adds it to the world.
func (w *World) AddBody(desc BodyDesc) *Body {
	w.nextID++
	scale := desc.GravityScale
	if scale == 0 {
		scale = 1
	}
	b := &Body{
		id:           w.nextID,
		world:        w,
		name:         desc.Name,
		kind:         desc.Type,
		position:     desc.Position,
		half:         absVec(desc.HalfExtents),
		gravityScale: scale,
		sleepless:    desc.Sleepless,
	}
	w.bodies = append(w.bodies, b)
	return b
}

// RemoveBody detaches b. Handles to it stay valid but stop being simulated
// or hit by ray casts.
func (w *World) RemoveBody(b *Body) {
	if b == nil || b.world != w {
		return
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.removed = true
	b.world = nil
}

// Bodies returns the live bodies in insertion order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Body looks a body up by id.
func (w *World) Body(id BodyID) (*Body, bool) {
	for _, b := range w.bodies {
		if b.id == id {
			return b, true
		}
	}
	return nil, false
}

// Step integrates every awake dynamic body over dt seconds.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	for _, b := range w.bodies {
		if b.kind != Dynamic || b.asleep {
			continue
		}
		w.integrate(b, dt)
	}

	w.applyBodyPush()

	for _, b := range w.bodies {
		if b.kind != Dynamic || b.asleep {
			continue
		}
		w.updateSleep(b)
	}
}

func (w *World) integrate(b *Body, dt float64) {
	b.velocity = b.velocity.Add(w.gravity.Mul(b.gravityScale * dt))

	obstacles := w.obstaclesFor(b, b.velocity.Mul(dt))
	moved, blocked := ResolveMovement(b.AABB(), b.velocity.Mul(dt), obstacles)
	b.position = b.position.Add(moved)
	falling := b.velocity.Y() < 0

	for axis := 0; axis < 3; axis++ {
		if blocked[axis] {
			b.velocity[axis] = 0
		}
	}
	b.contacts = blocked
	b.grounded = blocked[1] && falling
	zeroResidualVelocity(&b.velocity)
}

// obstaclesFor gathers every collider the body's swept box could touch this
// step.
func (w *World) obstaclesFor(b *Body, delta mgl64.Vec3) []AABB {
	box := b.AABB()
	swept := box
	if delta.X() < 0 {
		swept.MinX += delta.X()
	} else {
		swept.MaxX += delta.X()
	}
	if delta.Y() < 0 {
		swept.MinY += delta.Y()
	} else {
		swept.MaxY += delta.Y()
	}
	if delta.Z() < 0 {
		swept.MinZ += delta.Z()
	} else {
		swept.MaxZ += delta.Z()
	}
	swept.MinX -= ContactSkin
	swept.MinY -= ContactSkin
	swept.MinZ -= ContactSkin
	swept.MaxX += ContactSkin
	swept.MaxY += ContactSkin
	swept.MaxZ += ContactSkin

	var out []AABB
	for _, other := range w.bodies {
		if other == b {
			continue
		}
		ob := other.AABB()
		if ob.Intersects(swept) {
			out = append(out, ob)
		}
	}
	return out
}

func (w *World) updateSleep(b *Body) {
	if b.sleepless {
		return
	}
	if b.grounded && b.velocity.Len() < SleepLinearThreshold {
		b.restFrames++
		if b.restFrames >= SleepFrames {
			b.asleep = true
			b.velocity = mgl64.Vec3{}
		}
		return
	}
	b.restFrames = 0
}

func zeroResidualVelocity(v *mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		if math.Abs(v[i]) < MinimumResidualSpeed {
			v[i] = 0
		}
	}
}

func absVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v.X()), math.Abs(v.Y()), math.Abs(v.Z())}
}
