// Package character keeps every controlled character as an ECS entity that
// pairs its physics body with the one controller allowed to drive it.
package character

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/aydinterzi/sisyphus-game/internal/controller"
	"github.com/aydinterzi/sisyphus-game/internal/event"
	"github.com/aydinterzi/sisyphus-game/internal/input"
	"github.com/aydinterzi/sisyphus-game/internal/physics"
	"github.com/aydinterzi/sisyphus-game/internal/schedule"
)

var (
	ErrDuplicate = errors.New("character already spawned")
	ErrUnknown   = errors.New("unknown character")
)

// Handle is the physical half of a character.
type Handle struct {
	Name  string
	Body  *physics.Body
	Spawn mgl64.Vec3
}

// Pilot is the control half of a character.
type Pilot struct {
	Controller *controller.Controller
}

// Character is a snapshot of one roster entry.
type Character struct {
	Name       string
	Entity     ecs.Entity
	Body       *physics.Body
	Controller *controller.Controller
	Spawn      mgl64.Vec3
}

type Roster struct {
	world  ecs.World
	chars  *ecs.Map2[Handle, Pilot]
	filter *ecs.Filter2[Handle, Pilot]
	byName map[string]ecs.Entity

	physics *physics.World
	clock   *schedule.Clock
	bus     *event.Bus
	params  controller.Params
	log     *slog.Logger
}

type Option func(*Roster)

// WithParams sets the tunables of characters spawned afterwards.
func WithParams(p controller.Params) Option {
	return func(r *Roster) { r.params = p }
}

func WithBus(bus *event.Bus) Option {
	return func(r *Roster) { r.bus = bus }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Roster) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns an empty roster whose characters live in pw and share clock
// for their timers. The owner of clock advances it once per frame; a nil
// clock gets a fresh one, reachable through Clock.
func New(pw *physics.World, clock *schedule.Clock, opts ...Option) *Roster {
	if clock == nil {
		clock = schedule.New()
	}
	r := &Roster{
		world:   ecs.NewWorld(),
		byName:  make(map[string]ecs.Entity),
		physics: pw,
		clock:   clock,
		params:  controller.DefaultParams(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.chars = ecs.NewMap2[Handle, Pilot](&r.world)
	r.filter = ecs.NewFilter2[Handle, Pilot](&r.world)
	return r
}

// Spawn adds a dynamic body described by desc and attaches a fresh
// controller to it.
func (r *Roster) Spawn(desc physics.BodyDesc) (Character, error) {
	if desc.Name == "" {
		return Character{}, fmt.Errorf("spawn: empty character name")
	}
	if _, ok := r.byName[desc.Name]; ok {
		return Character{}, fmt.Errorf("spawn %q: %w", desc.Name, ErrDuplicate)
	}
	if err := r.params.Validate(); err != nil {
		return Character{}, fmt.Errorf("spawn %q: %w", desc.Name, err)
	}

	desc.Type = physics.Dynamic
	body := r.physics.AddBody(desc)
	ctrl := controller.New(desc.Name, r.physics,
		controller.WithParams(r.params),
		controller.WithClock(r.clock),
		controller.WithBus(r.bus),
		controller.WithLogger(r.log),
	)

	e := r.chars.NewEntity(
		&Handle{Name: desc.Name, Body: body, Spawn: desc.Position},
		&Pilot{Controller: ctrl},
	)
	r.byName[desc.Name] = e

	r.log.Info("character spawned", "character", desc.Name, "position", desc.Position)
	r.publish(event.EventCharacterSpawn, desc.Name, body)
	return r.snapshot(e), nil
}

// Despawn closes the character's controller, so its pending cooldowns never
// fire, and removes its body from the physics world.
func (r *Roster) Despawn(name string) error {
	e, ok := r.entity(name)
	if !ok {
		return fmt.Errorf("despawn %q: %w", name, ErrUnknown)
	}
	h, p := r.chars.Get(e)
	p.Controller.Close()
	r.physics.RemoveBody(h.Body)
	body := h.Body

	r.world.RemoveEntity(e)
	delete(r.byName, name)

	r.log.Info("character despawned", "character", name)
	r.publish(event.EventCharacterDespawn, name, body)
	return nil
}

// Get looks a character up by name.
func (r *Roster) Get(name string) (Character, bool) {
	e, ok := r.entity(name)
	if !ok {
		return Character{}, false
	}
	return r.snapshot(e), true
}

// Alive reports whether e still refers to a spawned character. Entities are
// recycled with a new generation, so a stale handle reports false.
func (r *Roster) Alive(e ecs.Entity) bool {
	return r.world.Alive(e)
}

func (r *Roster) Clock() *schedule.Clock {
	return r.clock
}

func (r *Roster) Len() int {
	return len(r.byName)
}

// Names lists the spawned characters in name order.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Tick runs one controller frame for every character.
func (r *Roster) Tick(now float64, in input.State, cam controller.Camera) {
	// Controllers publish events whose handlers may despawn; the ECS world
	// must not be locked by a query while that happens.
	type pair struct {
		body *physics.Body
		ctrl *controller.Controller
	}
	var batch []pair
	query := r.filter.Query()
	for query.Next() {
		h, p := query.Get()
		batch = append(batch, pair{body: h.Body, ctrl: p.Controller})
	}
	for _, c := range batch {
		c.ctrl.Tick(now, in, c.body, cam)
	}
}

// Respawn puts the character back at its spawn point at rest and re-arms
// its controller.
func (r *Roster) Respawn(name string) error {
	e, ok := r.entity(name)
	if !ok {
		return fmt.Errorf("respawn %q: %w", name, ErrUnknown)
	}
	h, p := r.chars.Get(e)
	h.Body.SetPosition(h.Spawn)
	h.Body.SetLinearVelocity(mgl64.Vec3{}, true)
	p.Controller.Reset()
	return nil
}

// Teleport moves the character without touching its controller state.
func (r *Roster) Teleport(name string, pos mgl64.Vec3) error {
	e, ok := r.entity(name)
	if !ok {
		return fmt.Errorf("teleport %q: %w", name, ErrUnknown)
	}
	h, _ := r.chars.Get(e)
	h.Body.SetPosition(pos)
	h.Body.SetLinearVelocity(mgl64.Vec3{}, true)
	return nil
}

func (r *Roster) entity(name string) (ecs.Entity, bool) {
	e, ok := r.byName[name]
	if !ok || !r.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

func (r *Roster) snapshot(e ecs.Entity) Character {
	h, p := r.chars.Get(e)
	return Character{
		Name:       h.Name,
		Entity:     e,
		Body:       h.Body,
		Controller: p.Controller,
		Spawn:      h.Spawn,
	}
}

func (r *Roster) publish(name, character string, body *physics.Body) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(name, event.CharacterEvent{
		Name:     character,
		At:       r.clock.Now(),
		Position: body.Position(),
		Velocity: body.LinearVelocity(),
	})
}
