package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// GroundPolicy selects how the controller decides the character is
// supported.
type GroundPolicy uint8

const (
	// GroundRaycast probes straight down every tick. Walking off a ledge
	// clears the flag on the next tick.
	GroundRaycast GroundPolicy = iota
	// GroundContact latches the physics contact flag and only clears it when
	// a jump is accepted. Cheaper, but it stays set after walking off an edge.
	GroundContact
)

func (p GroundPolicy) String() string {
	switch p {
	case GroundRaycast:
		return "raycast"
	case GroundContact:
		return "contact"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParseGroundPolicy accepts "raycast", "contact" or "" (raycast).
func ParseGroundPolicy(s string) (GroundPolicy, error) {
	switch s {
	case "", "raycast":
		return GroundRaycast, nil
	case "contact":
		return GroundContact, nil
	default:
		return 0, fmt.Errorf("unknown ground policy %q", s)
	}
}

// Params are the controller tunables. Speeds are in units per second.
type Params struct {
	MoveSpeed    float64
	AirControl   float64
	JumpSpeed    float64
	JumpDebounce time.Duration
	DashSpeed    float64
	DashCooldown time.Duration
	Deadzone     float64
	RotationLerp float64

	GroundProbe  float64
	GroundPolicy GroundPolicy

	CameraOffset     mgl64.Vec3
	CameraLookHeight float64
	CameraLerpGround float64
	CameraLerpAir    float64
}

func DefaultParams() Params {
	return Params{
		MoveSpeed:        6,
		AirControl:       0.3,
		JumpSpeed:        7,
		JumpDebounce:     200 * time.Millisecond,
		DashSpeed:        15,
		DashCooldown:     time.Second,
		Deadzone:         0.1,
		RotationLerp:     0.15,
		GroundProbe:      1.1,
		GroundPolicy:     GroundRaycast,
		CameraOffset:     mgl64.Vec3{0, 4, 10},
		CameraLookHeight: 2,
		CameraLerpGround: 0.1,
		CameraLerpAir:    0.05,
	}
}

var ErrInvalidParams = errors.New("invalid controller params")

// Validate rejects tunables the control law cannot work with.
func (p Params) Validate() error {
	switch {
	case p.MoveSpeed <= 0:
		return fmt.Errorf("%w: move speed must be positive", ErrInvalidParams)
	case p.AirControl <= 0 || p.AirControl > 1:
		return fmt.Errorf("%w: air control must be in (0,1]", ErrInvalidParams)
	case p.JumpSpeed <= 0:
		return fmt.Errorf("%w: jump speed must be positive", ErrInvalidParams)
	case p.JumpDebounce < 0:
		return fmt.Errorf("%w: jump debounce must not be negative", ErrInvalidParams)
	case p.DashSpeed <= 0:
		return fmt.Errorf("%w: dash speed must be positive", ErrInvalidParams)
	case p.DashCooldown < 0:
		return fmt.Errorf("%w: dash cooldown must not be negative", ErrInvalidParams)
	case p.Deadzone < 0:
		return fmt.Errorf("%w: deadzone must not be negative", ErrInvalidParams)
	case p.RotationLerp <= 0 || p.RotationLerp > 1:
		return fmt.Errorf("%w: rotation lerp must be in (0,1]", ErrInvalidParams)
	case p.GroundProbe <= 0:
		return fmt.Errorf("%w: ground probe must be positive", ErrInvalidParams)
	case p.CameraLerpGround <= 0 || p.CameraLerpGround > 1:
		return fmt.Errorf("%w: ground camera lerp must be in (0,1]", ErrInvalidParams)
	case p.CameraLerpAir <= 0 || p.CameraLerpAir > 1:
		return fmt.Errorf("%w: air camera lerp must be in (0,1]", ErrInvalidParams)
	}
	return nil
}
