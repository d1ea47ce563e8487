package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// applyBodyPush separates overlapping dynamic bodies horizontally, a little
// per step, the way crowds shove each other apart instead of snapping.
func (w *World) applyBodyPush() {
	for _, b := range w.bodies {
		if b.kind != Dynamic {
			continue
		}
		push := w.pushFor(b)
		if push.Len() <= CollisionAxisTolerance {
			continue
		}
		obstacles := w.staticObstaclesFor(b)
		moved, _ := ResolveMovement(b.AABB(), push, obstacles)
		b.position = b.position.Add(moved)
		b.Wake()
	}
}

func (w *World) pushFor(b *Body) mgl64.Vec3 {
	var pushX, pushZ float64
	self := b.AABB()

	for _, other := range w.bodies {
		if other == b || other.kind != Dynamic {
			continue
		}
		ob := other.AABB()
		if self.MaxY <= ob.MinY || self.MinY >= ob.MaxY {
			continue
		}

		dx := b.position.X() - other.position.X()
		dz := b.position.Z() - other.position.Z()
		dist2 := dx*dx + dz*dz

		minDist := math.Max(b.half.X(), b.half.Z()) + math.Max(other.half.X(), other.half.Z())
		if dist2 >= minDist*minDist {
			continue
		}

		dist := math.Sqrt(dist2)
		if dist < CollisionAxisTolerance {
			// Coincident centres: push the later body along +X.
			if b.id < other.id {
				continue
			}
			dx, dz, dist = 1, 0, 1
		}

		mag := (minDist - dist) * bodyPushStrength
		if mag > bodyPushMaxPerPair {
			mag = bodyPushMaxPerPair
		}
		pushX += (dx / dist) * mag
		pushZ += (dz / dist) * mag
	}

	length := math.Hypot(pushX, pushZ)
	if length > bodyPushMaxPerStep {
		scale := bodyPushMaxPerStep / length
		pushX *= scale
		pushZ *= scale
	}
	return mgl64.Vec3{pushX, 0, pushZ}
}

func (w *World) staticObstaclesFor(b *Body) []AABB {
	var out []AABB
	for _, other := range w.bodies {
		if other == b || other.kind != Fixed {
			continue
		}
		out = append(out, other.AABB())
	}
	return out
}
