package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/aydinterzi/sisyphus-game/internal/physics"
)

// CharacterSnapshot is a copy of one character's state.
type CharacterSnapshot struct {
	Name        string
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	HalfExtents mgl64.Vec3
	Facing      float64
	Grounded    bool
	CanDash     bool
}

// BodySnapshot is a copy of one non-character body.
type BodySnapshot struct {
	Name        string
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
	Fixed       bool
	Sleeping    bool
}

// Snapshot is everything a front end draws, copied on the frame goroutine
// so other goroutines can read it without touching live state.
type Snapshot struct {
	Frame      Frame
	Characters []CharacterSnapshot
	Bodies     []BodySnapshot
	CameraPos  mgl64.Vec3
	CameraYaw  float64
}

// Character finds a character by name.
func (s Snapshot) Character(name string) (CharacterSnapshot, bool) {
	for _, c := range s.Characters {
		if c.Name == name {
			return c, true
		}
	}
	return CharacterSnapshot{}, false
}

// Snapshot copies the current world. Call it from the frame goroutine, for
// example inside an Observer.
func (l *Loop) Snapshot(f Frame) Snapshot {
	s := Snapshot{Frame: f}
	if l.camera != nil {
		s.CameraPos = l.camera.Position()
		s.CameraYaw = l.camera.Yaw()
	}

	owned := make(map[*physics.Body]bool)
	if l.roster != nil {
		for _, name := range l.roster.Names() {
			c, ok := l.roster.Get(name)
			if !ok {
				continue
			}
			owned[c.Body] = true
			st := c.Controller.State()
			s.Characters = append(s.Characters, CharacterSnapshot{
				Name:        name,
				Position:    c.Body.Position(),
				Velocity:    c.Body.LinearVelocity(),
				HalfExtents: c.Body.HalfExtents(),
				Facing:      st.FacingAngle,
				Grounded:    st.Grounded,
				CanDash:     st.CanDash,
			})
		}
	}

	if l.physics != nil {
		for _, b := range l.physics.Bodies() {
			if owned[b] {
				continue
			}
			s.Bodies = append(s.Bodies, BodySnapshot{
				Name:        b.Name(),
				Position:    b.Position(),
				HalfExtents: b.HalfExtents(),
				Fixed:       b.Type() == physics.Fixed,
				Sleeping:    b.Sleeping(),
			})
		}
	}
	return s
}
