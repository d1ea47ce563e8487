// Package game runs the fixed-rate frame loop that advances timers, reads
// input, ticks every character controller and steps the physics world.
package game

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aydinterzi/sisyphus-game/internal/camera"
	"github.com/aydinterzi/sisyphus-game/internal/character"
	"github.com/aydinterzi/sisyphus-game/internal/input"
	"github.com/aydinterzi/sisyphus-game/internal/physics"
	"github.com/aydinterzi/sisyphus-game/internal/schedule"
)

const (
	DefaultTickRate = 60
	commandChanSize = 64
	// maxFrameStep caps one physics step after a stall so bodies do not
	// tunnel through the ground.
	maxFrameStep = 0.1
)

// Frame describes one finished frame to observers.
type Frame struct {
	Tick  uint64
	Now   float64
	Dt    float64
	Input input.State
}

// Observer is told about every finished frame on the frame goroutine.
type Observer func(Frame)

type Loop struct {
	interval time.Duration

	clock   *schedule.Clock
	input   input.Source
	roster  *character.Roster
	physics *physics.World
	camera  *camera.Camera

	commands chan func()

	obsMu     sync.Mutex
	observers []Observer

	tickCounter atomic.Uint64
	last        float64
	started     bool
	log         *slog.Logger
}

type Option func(*Loop)

// WithTickRate sets frames per second; non-positive rates are ignored.
func WithTickRate(hz int) Option {
	return func(l *Loop) {
		if hz > 0 {
			l.interval = time.Second / time.Duration(hz)
		}
	}
}

func WithLogger(lg *slog.Logger) Option {
	return func(l *Loop) {
		if lg != nil {
			l.log = lg
		}
	}
}

// New wires a loop. clock must be the clock the roster's controllers
// schedule on; src may be nil for no input; cam may be nil to skip the
// camera follow.
func New(clock *schedule.Clock, src input.Source, roster *character.Roster, pw *physics.World, cam *camera.Camera, opts ...Option) *Loop {
	if clock == nil {
		if roster != nil {
			clock = roster.Clock()
		} else {
			clock = schedule.New()
		}
	}
	if src == nil {
		src = input.Static{}
	}
	l := &Loop{
		interval: time.Second / DefaultTickRate,
		clock:    clock,
		input:    src,
		roster:   roster,
		physics:  pw,
		camera:   cam,
		commands: make(chan func(), commandChanSize),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) Interval() time.Duration {
	return l.interval
}

func (l *Loop) Clock() *schedule.Clock {
	return l.clock
}

func (l *Loop) Roster() *character.Roster {
	return l.roster
}

func (l *Loop) Camera() *camera.Camera {
	return l.camera
}

func (l *Loop) Ticks() uint64 {
	return l.tickCounter.Load()
}

// Observe registers fn for every following frame.
func (l *Loop) Observe(fn Observer) {
	if fn == nil {
		return
	}
	l.obsMu.Lock()
	l.observers = append(l.observers, fn)
	l.obsMu.Unlock()
}

// Do queues fn to run on the frame goroutine at the start of the next frame.
// Front ends use it for anything that touches the world. It reports false if
// the queue is full.
func (l *Loop) Do(fn func()) bool {
	if fn == nil {
		return true
	}
	select {
	case l.commands <- fn:
		return true
	default:
		l.log.Warn("frame command queue full, dropping command")
		return false
	}
}

// Run ticks frames at the configured rate until ctx is done. Frame time is
// wall time since Run started.
func (l *Loop) Run(ctx context.Context) error {
	start := time.Now()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info("frame loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("frame loop stopped", "ticks", l.Ticks())
			return nil
		case now := <-ticker.C:
			l.Frame(now.Sub(start).Seconds())
		}
	}
}

// Frame runs one frame at now seconds: queued commands, due timers, input,
// controllers, physics, then observers. now must not decrease; an earlier
// value is treated as the previous frame time.
func (l *Loop) Frame(now float64) {
	if !l.started {
		l.started = true
		l.last = now
	}
	if now < l.last {
		now = l.last
	}
	dt := now - l.last
	l.last = now

	l.drainCommands()
	l.clock.Advance(now)

	in := l.input.Poll()
	if l.roster != nil {
		l.tickRoster(now, in, l.camera)
	}

	if l.physics != nil {
		step := dt
		if step > maxFrameStep {
			step = maxFrameStep
		}
		l.physics.Step(step)
	}

	f := Frame{Tick: l.tickCounter.Add(1), Now: now, Dt: dt, Input: in}
	l.obsMu.Lock()
	observers := append([]Observer(nil), l.observers...)
	l.obsMu.Unlock()
	for _, fn := range observers {
		fn(f)
	}
}

func (l *Loop) tickRoster(now float64, in input.State, cam *camera.Camera) {
	// A nil *camera.Camera must reach the controller as a nil interface.
	if cam == nil {
		l.roster.Tick(now, in, nil)
		return
	}
	l.roster.Tick(now, in, cam)
}

func (l *Loop) drainCommands() {
	for {
		select {
		case fn := <-l.commands:
			fn()
		default:
			return
		}
	}
}
