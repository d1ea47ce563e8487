// Package camera is the perspective camera handle the controller drives:
// it is positioned imperatively and aimed with LookAt, and reports the yaw
// movement input is made relative to.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aydinterzi/sisyphus-game/internal/vmath"
)

type Camera struct {
	FOV  float64
	Near float64
	Far  float64

	position mgl64.Vec3
	target   mgl64.Vec3
	yaw      float64
	pitch    float64
}

// New returns a camera at position looking down -Z.
func New(position mgl64.Vec3, fov float64) *Camera {
	if fov <= 0 {
		fov = 60
	}
	c := &Camera{
		FOV:      fov,
		Near:     0.1,
		Far:      1000,
		position: position,
	}
	c.LookAt(position.Add(mgl64.Vec3{0, 0, -1}))
	return c
}

func (c *Camera) Position() mgl64.Vec3 {
	return c.position
}

// SetPosition moves the camera without changing where it points, so the yaw
// stays what the last LookAt produced.
func (c *Camera) SetPosition(p mgl64.Vec3) {
	c.target = c.target.Add(p.Sub(c.position))
	c.position = p
}

// LookAt aims the camera at target. Looking straight up or down keeps the
// previous yaw.
func (c *Camera) LookAt(target mgl64.Vec3) {
	c.target = target
	dir := target.Sub(c.position)
	if dir.Len() <= 1e-9 {
		return
	}
	if vmath.HorizontalLen(dir) > 1e-9 {
		c.yaw = vmath.NormalizeAngle(math.Atan2(-dir.X(), -dir.Z()))
	}
	c.pitch = math.Atan2(dir.Y(), vmath.HorizontalLen(dir))
}

func (c *Camera) Target() mgl64.Vec3 {
	return c.target
}

// Yaw is the rotation about +Y in radians; 0 looks down -Z and positive
// turns toward -X.
func (c *Camera) Yaw() float64 {
	return c.yaw
}

// Pitch is positive when looking up.
func (c *Camera) Pitch() float64 {
	return c.pitch
}

// Forward is the unit view direction.
func (c *Camera) Forward() mgl64.Vec3 {
	return DirectionFromYawPitch(c.yaw, c.pitch)
}

// View is the right-handed view matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.position, c.position.Add(c.Forward()), mgl64.Vec3{0, 1, 0})
}

// Projection is the perspective matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float64) mgl64.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// DirectionFromYawPitch converts camera angles to a unit view direction.
func DirectionFromYawPitch(yaw, pitch float64) mgl64.Vec3 {
	return mgl64.Vec3{
		-math.Sin(yaw) * math.Cos(pitch),
		math.Sin(pitch),
		-math.Cos(yaw) * math.Cos(pitch),
	}
}
