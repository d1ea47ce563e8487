package event

import "github.com/go-gl/mathgl/mgl64"

const (
	EventCharacterSpawn     = "character.spawn"
	EventCharacterDespawn   = "character.despawn"
	EventCharacterJump      = "character.jump"
	EventCharacterDash      = "character.dash"
	EventCharacterDashReady = "character.dash_ready"
	EventCharacterLand      = "character.land"
	EventCharacterAirborne  = "character.airborne"
)

// CharacterEvent is the payload of every character.* event. Name identifies
// the character; At is the frame time in seconds.
type CharacterEvent struct {
	Name     string
	At       float64
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}
