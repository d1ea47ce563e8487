package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BodyType uint8

const (
	Fixed BodyType = iota
	Dynamic
)

func (t BodyType) String() string {
	if t == Fixed {
		return "fixed"
	}
	return "dynamic"
}

type BodyID uint32

// BodyDesc describes a body to add to a World.
type BodyDesc struct {
	Name         string
	Type         BodyType
	Position     mgl64.Vec3
	HalfExtents  mgl64.Vec3
	GravityScale float64
	// Sleepless bodies never fall asleep, even when resting.
	Sleepless bool
}

// Body is a rigid body with an axis-aligned box collider and locked
// rotations. Yaw only orients the attached model.
type Body struct {
	id    BodyID
	world *World
	name  string
	kind  BodyType

	position mgl64.Vec3
	velocity mgl64.Vec3
	half     mgl64.Vec3
	yaw      float64

	gravityScale float64
	sleepless    bool
	asleep       bool
	restFrames   int
	contacts     [3]bool
	grounded     bool
	removed      bool
}

func (b *Body) ID() BodyID { return b.id }
func (b *Body) Name() string { return b.name }
func (b *Body) Type() BodyType { return b.kind }
func (b *Body) Yaw() float64 { return b.yaw }
func (b *Body) Sleeping() bool { return b.asleep }

// Removed reports whether the body left its world. A nil body counts as
// removed.
func (b *Body) Removed() bool { return b == nil || b.removed }
func (b *Body) HalfExtents() mgl64.Vec3 { return b.half }

// Position is the collider centre.
func (b *Body) Position() mgl64.Vec3 {
	return b.position
}

// SetPosition teleports the body and wakes it.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.position = p
	b.Wake()
}

func (b *Body) LinearVelocity() mgl64.Vec3 {
	return b.velocity
}

// SetLinearVelocity replaces the body's velocity. Fixed bodies ignore it.
// A sleeping body only starts moving again when wake is set.
func (b *Body) SetLinearVelocity(v mgl64.Vec3, wake bool) {
	if b.kind == Fixed {
		return
	}
	if math.IsNaN(v.X()) || math.IsNaN(v.Y()) || math.IsNaN(v.Z()) {
		return
	}
	b.velocity = v
	if wake {
		b.Wake()
	}
}

// SetYaw orients the body's model about +Y.
func (b *Body) SetYaw(yaw float64) {
	b.yaw = yaw
}

func (b *Body) Wake() {
	b.asleep = false
	b.restFrames = 0
}

// Grounded reports whether the last step's downward sweep was stopped by a
// collider. This is the contact flag a collision-event ground policy would
// use; it goes false again as soon as a step moves the body freely.
func (b *Body) Grounded() bool {
	return b.grounded
}

// Contacts reports, per axis, whether the last step was blocked on it.
func (b *Body) Contacts() [3]bool {
	return b.contacts
}

func (b *Body) AABB() AABB {
	return BoxAround(b.position, b.half)
}
