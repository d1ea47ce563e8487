package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

type RayHit struct {
	Body *Body
	// TOI is the distance along the normalised ray direction.
	TOI   float64
	Point mgl64.Vec3
}

// CastRay reports whether a ray from origin along dir hits any collider
// within maxDist. exclude, when it is one of the world's bodies, is skipped
// so a body can probe below itself from its own centre.
func (w *World) CastRay(origin, dir mgl64.Vec3, maxDist float64, solid bool, exclude any) bool {
	_, ok := w.RayCast(Ray{Origin: origin, Direction: dir}, maxDist, solid, exclude)
	return ok
}

// RayCast returns the closest hit within maxDist. With solid set, a ray that
// starts inside a collider hits it at distance zero; otherwise it hits where
// it leaves the collider.
func (w *World) RayCast(ray Ray, maxDist float64, solid bool, exclude any) (RayHit, bool) {
	dir := ray.Direction
	l := dir.Len()
	if l <= CollisionAxisTolerance || math.IsNaN(l) || maxDist < 0 {
		return RayHit{}, false
	}
	dir = dir.Mul(1 / l)

	best := RayHit{TOI: math.Inf(1)}
	found := false
	for _, b := range w.bodies {
		if exclude != nil && any(b) == exclude {
			continue
		}
		toi, ok := rayBox(ray.Origin, dir, b.AABB(), solid)
		if !ok || toi > maxDist || toi >= best.TOI {
			continue
		}
		best = RayHit{Body: b, TOI: toi, Point: ray.Origin.Add(dir.Mul(toi))}
		found = true
	}
	return best, found
}

// rayBox is the slab test for a unit direction.
func rayBox(origin, dir mgl64.Vec3, box AABB, solid bool) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := origin[axis]
		lo, hi := box.min(axis), box.max(axis)
		if nearlyZero(dir[axis]) {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t1 := (lo - o) * inv
		t2 := (hi - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 {
		return 0, false
	}
	if tMin < 0 {
		if solid {
			return 0, true
		}
		return tMax, true
	}
	return tMin, true
}
