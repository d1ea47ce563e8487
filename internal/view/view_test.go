package view

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/aydinterzi/sisyphus-game/internal/game"
	"github.com/aydinterzi/sisyphus-game/internal/input"
)

type mockFrames struct {
	observers []game.Observer
	snap      game.Snapshot
	queued    []func()
}

func (m *mockFrames) Observe(fn game.Observer) { m.observers = append(m.observers, fn) }

func (m *mockFrames) Snapshot(f game.Frame) game.Snapshot {
	s := m.snap
	s.Frame = f
	return s
}

func (m *mockFrames) Do(fn func()) bool {
	m.queued = append(m.queued, fn)
	return true
}

func (m *mockFrames) frame(f game.Frame) {
	for _, fn := range m.queued {
		fn()
	}
	m.queued = nil
	for _, fn := range m.observers {
		fn(f)
	}
}

type mockCharacters struct {
	respawned []string
}

func (m *mockCharacters) Teleport(string, mgl64.Vec3) error { return nil }

func (m *mockCharacters) Respawn(name string) error {
	m.respawned = append(m.respawned, name)
	return nil
}

func newTestView(t *testing.T, width, height int) (*View, tcell.SimulationScreen, *mockFrames, *mockCharacters) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init() error = %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(width, height)

	frames := &mockFrames{}
	chars := &mockCharacters{}
	v := New(screen, frames, chars, input.NewPulser(time.Hour), nil, "player")
	return v, screen, frames, chars
}

func runeAt(s tcell.Screen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteRune(runeAt(s, x, y))
	}
	return b.String()
}

func TestFacingGlyph(t *testing.T) {
	tests := []struct {
		angle float64
		want  rune
	}{
		{0, '↑'},
		{math.Pi / 2, '←'},
		{math.Pi, '↓'},
		{-math.Pi, '↓'},
		{-math.Pi / 2, '→'},
		{math.Pi / 4, '↖'},
		{-math.Pi / 4, '↗'},
		{2 * math.Pi, '↑'},
		{0.1, '↑'},
	}
	for _, tt := range tests {
		if got := facingGlyph(tt.angle); got != tt.want {
			t.Errorf("facingGlyph(%v) = %q, want %q", tt.angle, got, tt.want)
		}
	}
}

func TestProjection(t *testing.T) {
	p := newProjection(80, 23, mgl64.Vec3{1, 5, 1})

	tests := []struct {
		name     string
		pos      mgl64.Vec3
		col, row int
		ok       bool
	}{
		{"focus at centre", mgl64.Vec3{1, 0, 1}, 40, 11, true},
		{"+X to the right", mgl64.Vec3{2, 0, 1}, 42, 11, true},
		{"-Z up", mgl64.Vec3{1, 0, 0}, 40, 10, true},
		{"height ignored", mgl64.Vec3{1, 100, 1}, 40, 11, true},
		{"off the left edge", mgl64.Vec3{-40, 0, 1}, -42, 11, false},
		{"off the bottom", mgl64.Vec3{1, 0, 13}, 40, 23, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, ok := p.toScreen(tt.pos)
			if col != tt.col || row != tt.row || ok != tt.ok {
				t.Fatalf("toScreen(%v) = (%d, %d, %v), want (%d, %d, %v)", tt.pos, col, row, ok, tt.col, tt.row, tt.ok)
			}
		})
	}
}

func TestDrawPlacesSceneAroundPlayer(t *testing.T) {
	v, screen, frames, _ := newTestView(t, 80, 11)
	frames.snap = game.Snapshot{
		Characters: []game.CharacterSnapshot{{
			Name:     "player",
			Position: mgl64.Vec3{0, 1, 0},
			Grounded: true,
			CanDash:  true,
		}},
		Bodies: []game.BodySnapshot{
			{Name: "rock", Position: mgl64.Vec3{2, 0.5, 0}, HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
			{Name: "ground", Position: mgl64.Vec3{0, -0.5, 0}, HalfExtents: mgl64.Vec3{15, 0.5, 15}, Fixed: true},
		},
		CameraPos: mgl64.Vec3{0, 10, 3},
	}
	frames.frame(game.Frame{Tick: 1, Now: 0.5})

	v.draw()

	if got := runeAt(screen, 40, 5); got != '↑' {
		t.Errorf("player cell = %q, want '↑'", got)
	}
	if got := runeAt(screen, 44, 5); got != 'O' {
		t.Errorf("rock cell = %q, want 'O'", got)
	}
	// The slab spans x in [-15, 15], columns 10 to 70 at two cells per unit.
	if got := runeAt(screen, 12, 0); got != '.' {
		t.Errorf("ground cell = %q, want '.'", got)
	}
	if got := runeAt(screen, 0, 0); got != ' ' {
		t.Errorf("cell outside the arena = %q, want blank", got)
	}
	if got := runeAt(screen, 40, 8); got != 'C' {
		t.Errorf("camera cell = %q, want 'C'", got)
	}
	if status := rowText(screen, 10); !strings.Contains(status, "GND:on") {
		t.Errorf("status row = %q, want it to contain GND:on", status)
	}
}

func TestDrawWithoutPlayer(t *testing.T) {
	v, screen, _, _ := newTestView(t, 60, 5)

	v.draw()

	if status := rowText(screen, 4); !strings.Contains(status, "not spawned") {
		t.Errorf("status row = %q, want a not spawned notice", status)
	}
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name     string
		ev       *tcell.EventKey
		wantRun  bool
		wantHeld input.State
	}{
		{"bound rune", tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), true, input.State{Forward: true}},
		{"upper case rune", tcell.NewEventKey(tcell.KeyRune, 'D', tcell.ModShift), true, input.State{Rightward: true}},
		{"space jumps", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), true, input.State{Jump: true}},
		{"arrow key", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), true, input.State{Leftward: true}},
		{"unbound rune", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), true, input.State{}},
		{"escape quits", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), false, input.State{}},
		{"ctrl+c quits", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), false, input.State{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, _, _ := newTestView(t, 20, 5)
			if got := v.handleEvent(tt.ev); got != tt.wantRun {
				t.Fatalf("handleEvent() = %v, want %v", got, tt.wantRun)
			}
			if got := v.pulser.Poll(); got != tt.wantHeld {
				t.Fatalf("Poll() = %v, want %v", got, tt.wantHeld)
			}
		})
	}
}

func TestHandleEventClear(t *testing.T) {
	v, _, _, _ := newTestView(t, 20, 5)
	v.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone))
	v.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))

	if got := v.pulser.Poll(); got != (input.State{}) {
		t.Fatalf("Poll() after clear = %v, want idle", got)
	}
}

func TestCtrlRRespawnsOnFrame(t *testing.T) {
	v, _, frames, chars := newTestView(t, 20, 5)

	v.handleEvent(tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl))
	if len(chars.respawned) != 0 {
		t.Fatalf("respawned before the frame ran")
	}
	frames.frame(game.Frame{Tick: 1})

	if len(chars.respawned) != 1 || chars.respawned[0] != "player" {
		t.Fatalf("respawned = %v, want [player]", chars.respawned)
	}
}
