// Package vmath holds the small angle and vector helpers shared by the
// controller, camera and physics packages.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

// NearlyZero reports whether v is within epsilon of zero.
func NearlyZero(v float64) bool {
	return math.Abs(v) <= epsilon
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v
// has no length. mgl64.Vec3.Normalize divides by zero in that case.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l <= epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// HorizontalLen is the length of v projected onto the XZ plane.
func HorizontalLen(v mgl64.Vec3) float64 {
	return math.Hypot(v.X(), v.Z())
}

// RotateY rotates v about +Y by yaw radians (right handed, same as a
// three-axis Euler with only the Y component set).
func RotateY(v mgl64.Vec3, yaw float64) mgl64.Vec3 {
	if yaw == 0 {
		return v
	}
	return mgl64.Rotate3DY(yaw).Mul3x1(v)
}

// Lerp moves a toward b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec3 moves a toward b by t component-wise.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// LerpAngle moves current toward target by t along the shortest arc and
// returns the result normalized to (-pi, pi].
func LerpAngle(current, target, t float64) float64 {
	return NormalizeAngle(current + SignedAngleDelta(current, target)*t)
}

// SignedAngleDelta is the shortest signed rotation from -> to.
func SignedAngleDelta(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// AngleDiff is the absolute shortest rotation between a and b.
func AngleDiff(a, b float64) float64 {
	return math.Abs(SignedAngleDelta(a, b))
}

// NormalizeAngle wraps v into (-pi, pi].
func NormalizeAngle(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Mod(v, 2*math.Pi)
	if v <= -math.Pi {
		v += 2 * math.Pi
	} else if v > math.Pi {
		v -= 2 * math.Pi
	}
	return v
}

// YawOf returns the heading of a horizontal direction, measured so that
// +Z is 0 and +X is pi/2.
func YawOf(dir mgl64.Vec3) float64 {
	return math.Atan2(dir.X(), dir.Z())
}
