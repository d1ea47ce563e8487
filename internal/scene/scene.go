// Package scene lays out the arena: a fixed ground slab, the player's spawn
// and any loose props, all as bodies of one physics world.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aydinterzi/sisyphus-game/internal/physics"
)

var ErrInvalidScene = errors.New("invalid scene")

// Prop is an extra box in the arena. Dynamic props fall and can be pushed.
type Prop struct {
	Name        string
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
	Dynamic     bool
}

type Config struct {
	// GroundSize is the edge length of the square ground; its top face is
	// y=0.
	GroundSize      float64
	GroundThickness float64
	Gravity         float64

	PlayerName       string
	PlayerSpawn      mgl64.Vec3
	PlayerHalfHeight float64
	PlayerRadius     float64

	Props []Prop
}

func DefaultConfig() Config {
	return Config{
		GroundSize:       30,
		GroundThickness:  1,
		Gravity:          physics.DefaultGravity,
		PlayerName:       "player",
		PlayerSpawn:      mgl64.Vec3{0, 2, 0},
		PlayerHalfHeight: 0.5,
		PlayerRadius:     0.5,
		Props: []Prop{{
			Name:        "rock",
			Position:    mgl64.Vec3{2, 4, 0},
			HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5},
			Dynamic:     true,
		}},
	}
}

func (c Config) Validate() error {
	switch {
	case c.GroundSize <= 0:
		return fmt.Errorf("%w: ground size must be positive", ErrInvalidScene)
	case c.GroundThickness <= 0:
		return fmt.Errorf("%w: ground thickness must be positive", ErrInvalidScene)
	case c.PlayerName == "":
		return fmt.Errorf("%w: player name is empty", ErrInvalidScene)
	case c.PlayerHalfHeight < 0 || c.PlayerRadius <= 0:
		return fmt.Errorf("%w: player capsule needs a positive radius", ErrInvalidScene)
	}
	seen := map[string]bool{c.PlayerName: true, groundName: true}
	for i, p := range c.Props {
		if p.Name == "" {
			return fmt.Errorf("%w: prop %d has no name", ErrInvalidScene, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate body name %q", ErrInvalidScene, p.Name)
		}
		seen[p.Name] = true
		if p.HalfExtents.X() <= 0 || p.HalfExtents.Y() <= 0 || p.HalfExtents.Z() <= 0 {
			return fmt.Errorf("%w: prop %q needs positive half extents", ErrInvalidScene, p.Name)
		}
	}
	return nil
}

const groundName = "ground"

type Scene struct {
	Physics *physics.World
	Ground  *physics.Body
	Props   []*physics.Body

	// Player describes the body the character roster spawns.
	Player physics.BodyDesc
	// HalfSize is half the ground edge; the arena spans [-HalfSize, HalfSize]
	// on X and Z.
	HalfSize float64
}

// Build creates the physics world for cfg. The player body itself is left to
// the character roster.
func Build(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	half := cfg.GroundSize / 2
	gravity := cfg.Gravity
	if gravity == 0 {
		gravity = physics.DefaultGravity
	}
	w := physics.NewWorld(physics.WithGravity(gravity))

	s := &Scene{Physics: w, HalfSize: half}
	s.Ground = w.AddBody(physics.BodyDesc{
		Name:        groundName,
		Type:        physics.Fixed,
		Position:    mgl64.Vec3{0, -cfg.GroundThickness / 2, 0},
		HalfExtents: mgl64.Vec3{half, cfg.GroundThickness / 2, half},
	})
	for _, p := range cfg.Props {
		kind := physics.Fixed
		if p.Dynamic {
			kind = physics.Dynamic
		}
		s.Props = append(s.Props, w.AddBody(physics.BodyDesc{
			Name:        p.Name,
			Type:        kind,
			Position:    p.Position,
			HalfExtents: p.HalfExtents,
		}))
	}

	s.Player = physics.BodyDesc{
		Name:        cfg.PlayerName,
		Type:        physics.Dynamic,
		Position:    cfg.PlayerSpawn,
		HalfExtents: physics.CapsuleExtents(cfg.PlayerHalfHeight, cfg.PlayerRadius),
		Sleepless:   true,
	}
	return s, nil
}

// OutOfBounds reports whether p has fallen off the arena.
func (s *Scene) OutOfBounds(p mgl64.Vec3) bool {
	return p.Y() < -20 || p.X() < -s.HalfSize-5 || p.X() > s.HalfSize+5 ||
		p.Z() < -s.HalfSize-5 || p.Z() > s.HalfSize+5
}
