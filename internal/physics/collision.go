package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type AABB struct {
	MinX float64
	MinY float64
	MinZ float64
	MaxX float64
	MaxY float64
	MaxZ float64
}

// BoxAround builds the box centred on center with the given half extents.
func BoxAround(center, half mgl64.Vec3) AABB {
	return AABB{
		MinX: center.X() - half.X(),
		MinY: center.Y() - half.Y(),
		MinZ: center.Z() - half.Z(),
		MaxX: center.X() + half.X(),
		MaxY: center.Y() + half.Y(),
		MaxZ: center.Z() + half.Z(),
	}
}

// CapsuleExtents approximates an upright capsule by its bounding box. The
// arguments follow the usual capsule collider convention: half height of the
// cylinder part, then radius.
func CapsuleExtents(halfHeight, radius float64) mgl64.Vec3 {
	return mgl64.Vec3{radius, halfHeight + radius, radius}
}

func (a AABB) Intersects(b AABB) bool {
	return a.MinX < b.MaxX &&
		a.MaxX > b.MinX &&
		a.MinY < b.MaxY &&
		a.MaxY > b.MinY &&
		a.MinZ < b.MaxZ &&
		a.MaxZ > b.MinZ
}

func (a AABB) Contains(p mgl64.Vec3) bool {
	return p.X() > a.MinX && p.X() < a.MaxX &&
		p.Y() > a.MinY && p.Y() < a.MaxY &&
		p.Z() > a.MinZ && p.Z() < a.MaxZ
}

func (a AABB) Center() mgl64.Vec3 {
	return mgl64.Vec3{(a.MinX + a.MaxX) / 2, (a.MinY + a.MaxY) / 2, (a.MinZ + a.MaxZ) / 2}
}

func (a AABB) min(axis int) float64 {
	switch axis {
	case 0:
		return a.MinX
	case 1:
		return a.MinY
	default:
		return a.MinZ
	}
}

func (a AABB) max(axis int) float64 {
	switch axis {
	case 0:
		return a.MaxX
	case 1:
		return a.MaxY
	default:
		return a.MaxZ
	}
}

// overlapsExcept reports whether a and b overlap on the two axes other than
// skip, which is what a sweep along skip needs to collide.
func (a AABB) overlapsExcept(b AABB, skip int) bool {
	for axis := 0; axis < 3; axis++ {
		if axis == skip {
			continue
		}
		if a.max(axis) <= b.min(axis)+CollisionAxisTolerance ||
			a.min(axis) >= b.max(axis)-CollisionAxisTolerance {
			return false
		}
	}
	return true
}

// ResolveMovement sweeps box by delta one axis at a time (Y, X, Z) against
// the obstacles. It returns the displacement actually allowed and which axes
// were cut short.
func ResolveMovement(box AABB, delta mgl64.Vec3, obstacles []AABB) (mgl64.Vec3, [3]bool) {
	var moved mgl64.Vec3
	var blocked [3]bool

	for _, axis := range [3]int{1, 0, 2} {
		allowed := resolveAxis(box, axis, delta[axis], obstacles)
		if !nearlyEqual(allowed, delta[axis]) {
			blocked[axis] = true
		}
		moved[axis] = allowed
		box = box.offset(axis, allowed)
	}
	return moved, blocked
}

func resolveAxis(box AABB, axis int, delta float64, obstacles []AABB) float64 {
	if nearlyZero(delta) {
		return delta
	}
	allowed := delta
	for _, other := range obstacles {
		if !box.overlapsExcept(other, axis) {
			continue
		}
		if delta > 0 {
			gap := other.min(axis) - box.max(axis)
			if gap < -CollisionAxisTolerance {
				continue
			}
			gap = math.Max(gap-ContactSkin, 0)
			if gap < allowed {
				allowed = gap
			}
		} else {
			gap := other.max(axis) - box.min(axis)
			if gap > CollisionAxisTolerance {
				continue
			}
			gap = math.Min(gap+ContactSkin, 0)
			if gap > allowed {
				allowed = gap
			}
		}
	}
	return allowed
}

func (a AABB) offset(axis int, d float64) AABB {
	switch axis {
	case 0:
		a.MinX += d
		a.MaxX += d
	case 1:
		a.MinY += d
		a.MaxY += d
	default:
		a.MinZ += d
		a.MaxZ += d
	}
	return a
}

func nearlyZero(v float64) bool {
	return math.Abs(v) <= CollisionAxisTolerance
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= CollisionAxisTolerance
}
