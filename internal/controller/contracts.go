package controller

import "github.com/go-gl/mathgl/mgl64"

// Body is the rigid body a controller commands. The controller never owns
// it; it only reads its kinematics and replaces its velocity.
type Body interface {
	Position() mgl64.Vec3
	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(v mgl64.Vec3, wake bool)
}

// Yawer is implemented by bodies whose model can be turned to face the
// movement direction.
type Yawer interface {
	SetYaw(yaw float64)
}

// ContactReporter is implemented by bodies whose physics step reports
// resting contact below them. Only the contact ground policy reads it.
type ContactReporter interface {
	Grounded() bool
}

// RayCaster answers ray queries against the physics world. exclude is
// skipped so a body can probe from its own centre.
type RayCaster interface {
	CastRay(origin, dir mgl64.Vec3, maxDist float64, solid bool, exclude any) bool
}

// Camera is the view the character is steered relative to and that follows
// it.
type Camera interface {
	Yaw() float64
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	LookAt(target mgl64.Vec3)
}

// RayCasterFunc adapts a function to RayCaster.
type RayCasterFunc func(origin, dir mgl64.Vec3, maxDist float64, solid bool, exclude any) bool

func (f RayCasterFunc) CastRay(origin, dir mgl64.Vec3, maxDist float64, solid bool, exclude any) bool {
	return f(origin, dir, maxDist, solid, exclude)
}

// despawned reports whether body is missing or already removed from its
// world.
func despawned(body Body) bool {
	if body == nil {
		return true
	}
	if r, ok := body.(interface{ Removed() bool }); ok && r.Removed() {
		return true
	}
	return false
}
