// Package controller turns held input and rigid-body feedback into a
// velocity command and a follow-camera pose, once per frame.
package controller

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/aydinterzi/sisyphus-game/internal/event"
	"github.com/aydinterzi/sisyphus-game/internal/input"
	"github.com/aydinterzi/sisyphus-game/internal/schedule"
	"github.com/aydinterzi/sisyphus-game/internal/vmath"
)

var down = mgl64.Vec3{0, -1, 0}

// State is the per-character controller state. Only the controller's own
// tick mutates it; State() hands out copies.
type State struct {
	Grounded     bool
	CanDash      bool
	LastJumpTime float64
	FacingAngle  float64
	CameraTarget mgl64.Vec3
}

// Kinematics is what one control step reads from the world.
type Kinematics struct {
	Position       mgl64.Vec3
	Velocity       mgl64.Vec3
	Grounded       bool
	CameraYaw      float64
	CameraPosition mgl64.Vec3
}

// Command is what one control step wants done to the world.
type Command struct {
	Velocity mgl64.Vec3
	Wake     bool

	Facing float64

	CameraPosition mgl64.Vec3
	CameraLookAt   mgl64.Vec3

	Jumped bool
	Dashed bool
}

// Controller drives one character. It is not safe for concurrent use; the
// frame loop owns it.
type Controller struct {
	name   string
	params Params
	state  State

	rays      RayCaster
	clock     *schedule.Clock
	ownsClock bool
	dashTimer *schedule.Timer

	bus *event.Bus
	log *slog.Logger

	// last kinematics seen by Step, reported by timer-driven events
	last Kinematics

	generation uint64
	primed     bool
	closed     bool
}

// Option configures a Controller in New.
type Option func(*Controller)

// WithParams replaces the default tunables.
func WithParams(p Params) Option {
	return func(c *Controller) { c.params = p }
}

// WithClock shares a frame clock owned by the frame loop, which must
// Advance it before ticking. Without it the controller keeps a private clock
// advanced by each tick.
func WithClock(clock *schedule.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
			c.ownsClock = false
		}
	}
}

// WithBus publishes character events on bus.
func WithBus(bus *event.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithLogger sets the logger; nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a controller for the character called name. rays may be nil,
// in which case the raycast ground policy never finds ground.
func New(name string, rays RayCaster, opts ...Option) *Controller {
	c := &Controller{
		name:      name,
		params:    DefaultParams(),
		rays:      rays,
		clock:     schedule.New(),
		ownsClock: true,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("character", name)
	c.state = initialState()
	return c
}

func initialState() State {
	return State{
		CanDash:      true,
		LastJumpTime: math.Inf(-1),
	}
}

func (c *Controller) Name() string { return c.name }
func (c *Controller) Params() Params { return c.params }
func (c *Controller) State() State { return c.state }
func (c *Controller) Closed() bool { return c.closed }

// Generation changes every time pending timers are invalidated.
func (c *Controller) Generation() uint64 { return c.generation }

// Reset re-arms the controller as if the character had just spawned.
// A pending dash cooldown is cancelled and can no longer fire.
func (c *Controller) Reset() {
	c.cancelTimers()
	c.state = initialState()
	c.primed = false
}

// Close cancels pending timers and turns Tick into a no-op. It is called when
// the character despawns.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.cancelTimers()
	c.closed = true
}

func (c *Controller) cancelTimers() {
	c.generation++
	if c.dashTimer != nil {
		c.dashTimer.Stop()
		c.dashTimer = nil
	}
}

// Tick runs one frame: it probes the ground under body, runs the control
// law, then commands body and camera. A missing or removed body makes the
// tick a no-op; a nil camera only skips the camera follow.
func (c *Controller) Tick(now float64, in input.State, body Body, cam Camera) {
	if c.closed || despawned(body) {
		return
	}

	pos := body.Position()
	k := Kinematics{
		Position: pos,
		Velocity: body.LinearVelocity(),
		Grounded: c.probeGround(pos, body),
	}
	if cam != nil {
		k.CameraYaw = cam.Yaw()
		k.CameraPosition = cam.Position()
	}

	cmd := c.Step(now, in, k)

	body.SetLinearVelocity(cmd.Velocity, cmd.Wake)
	if y, ok := body.(Yawer); ok {
		y.SetYaw(cmd.Facing)
	}
	if cam != nil {
		cam.SetPosition(cmd.CameraPosition)
		cam.LookAt(cmd.CameraLookAt)
	}
}

func (c *Controller) probeGround(pos mgl64.Vec3, body Body) bool {
	switch c.params.GroundPolicy {
	case GroundContact:
		contact := false
		if r, ok := body.(ContactReporter); ok {
			contact = r.Grounded()
		}
		return c.state.Grounded || contact
	default:
		if c.rays == nil {
			return false
		}
		return c.rays.CastRay(pos, down, c.params.GroundProbe, true, body)
	}
}

// Step is the control law. It reads k, updates the controller state and
// returns the command for this frame without touching any handle.
func (c *Controller) Step(now float64, in input.State, k Kinematics) Command {
	c.last = k
	if c.ownsClock {
		c.clock.Advance(now)
	}

	c.updateGrounded(now, k)
	grounded := c.state.Grounded

	dir := c.desiredDirection(in, k.CameraYaw)
	moveLen := vmath.HorizontalLen(dir)

	scale := 1.0
	if !grounded {
		scale = c.params.AirControl
	}

	cmd := Command{Wake: true}
	vy := k.Velocity.Y()

	if in.Jump && grounded && now-c.state.LastJumpTime > c.params.JumpDebounce.Seconds() {
		vy = c.params.JumpSpeed
		c.state.LastJumpTime = now
		cmd.Jumped = true
		if c.params.GroundPolicy == GroundContact {
			c.state.Grounded = false
		}
	}

	if in.Dash && c.state.CanDash && moveLen > c.params.Deadzone {
		dash := vmath.SafeNormalize(dir).Mul(c.params.DashSpeed)
		cmd.Velocity = mgl64.Vec3{dash.X(), 0, dash.Z()}
		cmd.Dashed = true
		c.startDashCooldown()
	} else {
		cmd.Velocity = mgl64.Vec3{dir.X() * scale, vy, dir.Z() * scale}
	}

	if moveLen > c.params.Deadzone {
		target := vmath.YawOf(dir)
		c.state.FacingAngle = vmath.LerpAngle(c.state.FacingAngle, target, c.params.RotationLerp)
	}
	cmd.Facing = c.state.FacingAngle

	c.state.CameraTarget = k.Position.Add(c.params.CameraOffset)
	lerp := c.params.CameraLerpGround
	if !grounded {
		lerp = c.params.CameraLerpAir
	}
	cmd.CameraPosition = vmath.LerpVec3(k.CameraPosition, c.state.CameraTarget, lerp)
	cmd.CameraLookAt = k.Position.Add(mgl64.Vec3{0, c.params.CameraLookHeight, 0})

	if cmd.Jumped && !cmd.Dashed {
		c.log.Debug("jump", "at", now, "vy", vy)
		c.publish(event.EventCharacterJump, now, k.Position, cmd.Velocity)
	}
	if cmd.Dashed {
		c.log.Debug("dash", "at", now, "velocity", cmd.Velocity)
		c.publish(event.EventCharacterDash, now, k.Position, cmd.Velocity)
	}
	return cmd
}

// desiredDirection maps the four movement actions to a ground-plane vector
// of length MoveSpeed (or zero), turned into the camera's frame.
func (c *Controller) desiredDirection(in input.State, cameraYaw float64) mgl64.Vec3 {
	dir := mgl64.Vec3{
		axis(in.Rightward, in.Leftward),
		0,
		axis(in.Backward, in.Forward),
	}
	dir = vmath.SafeNormalize(dir).Mul(c.params.MoveSpeed)
	return vmath.RotateY(dir, cameraYaw)
}

func axis(positive, negative bool) float64 {
	var v float64
	if positive {
		v++
	}
	if negative {
		v--
	}
	return v
}

func (c *Controller) updateGrounded(now float64, k Kinematics) {
	was := c.state.Grounded
	c.state.Grounded = k.Grounded
	if !c.primed {
		c.primed = true
		return
	}
	switch {
	case !was && k.Grounded:
		c.publish(event.EventCharacterLand, now, k.Position, k.Velocity)
	case was && !k.Grounded:
		c.publish(event.EventCharacterAirborne, now, k.Position, k.Velocity)
	}
}

func (c *Controller) startDashCooldown() {
	c.state.CanDash = false
	if c.dashTimer != nil {
		c.dashTimer.Stop()
	}
	gen := c.generation
	c.dashTimer = c.clock.AfterFunc(c.params.DashCooldown, func() {
		if c.closed || c.generation != gen {
			return
		}
		c.dashTimer = nil
		c.state.CanDash = true
		c.publish(event.EventCharacterDashReady, c.clock.Now(), c.last.Position, c.last.Velocity)
	})
}

func (c *Controller) publish(name string, at float64, pos, vel mgl64.Vec3) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(name, event.CharacterEvent{
		Name:     c.name,
		At:       at,
		Position: pos,
		Velocity: vel,
	})
}
