// Package view draws the arena top down in a terminal with tcell. World X
// runs left to right and world Z top to bottom, so the default camera sits
// below the player looking up the screen.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/aydinterzi/sisyphus-game/internal/debug"
	"github.com/aydinterzi/sisyphus-game/internal/game"
	"github.com/aydinterzi/sisyphus-game/internal/input"
)

const (
	defaultRenderInterval = 16 * time.Millisecond
	eventChanSize         = 100

	// Terminal cells are about twice as tall as wide.
	cellsPerUnitX = 2.0
	cellsPerUnitZ = 1.0
)

var (
	groundStyle  = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	fixedStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	dynamicStyle = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	readyStyle   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	coolingStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	cameraStyle  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Facing arrows, counterclockwise from -Z.
var facingGlyphs = [8]rune{'↑', '↖', '←', '↙', '↓', '↘', '→', '↗'}

type View struct {
	screen         tcell.Screen
	frames         debug.Frames
	characters     debug.Characters
	pulser         *input.Pulser
	keys           input.Keymap
	player         string
	renderInterval time.Duration

	mu     sync.Mutex
	status game.Snapshot
}

// New returns a view over screen. Key presses feed pulser, which must be the
// frame loop's input source. Ctrl+R respawns player.
func New(screen tcell.Screen, frames debug.Frames, characters debug.Characters, pulser *input.Pulser, keys input.Keymap, player string) *View {
	if keys == nil {
		keys = input.DefaultKeymap()
	}
	v := &View{
		screen:         screen,
		frames:         frames,
		characters:     characters,
		pulser:         pulser,
		keys:           keys,
		player:         player,
		renderInterval: defaultRenderInterval,
	}
	frames.Observe(func(f game.Frame) {
		snap := frames.Snapshot(f)
		v.mu.Lock()
		v.status = snap
		v.mu.Unlock()
	})
	return v
}

// Run owns the screen until ctx is done or the user quits with Esc or
// Ctrl+C.
func (v *View) Run(ctx context.Context) error {
	if err := v.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer v.screen.Fini()

	events := make(chan tcell.Event, eventChanSize)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(v.renderInterval)
	defer ticker.Stop()

	v.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			v.draw()
		}
	}
}

func (v *View) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyCtrlR:
			v.respawn()
		case tcell.KeyUp:
			v.pulser.Press(input.Forward)
		case tcell.KeyDown:
			v.pulser.Press(input.Backward)
		case tcell.KeyLeft:
			v.pulser.Press(input.Leftward)
		case tcell.KeyRight:
			v.pulser.Press(input.Rightward)
		case tcell.KeyRune:
			r := ev.Rune()
			if r == 'x' || r == 'X' {
				v.pulser.Clear()
				break
			}
			if a, ok := v.keys.Lookup(r); ok {
				v.pulser.Press(a)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *View) respawn() {
	if v.characters == nil {
		return
	}
	ok := v.frames.Do(func() {
		if err := v.characters.Respawn(v.player); err != nil {
			slog.Warn("respawn failed", "character", v.player, "error", err)
		}
	})
	if !ok {
		slog.Warn("respawn dropped, frame loop busy", "character", v.player)
	}
}

func (v *View) snapshot() game.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *View) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w <= 0 || h <= 1 {
		v.screen.Show()
		return
	}

	snap := v.snapshot()
	var focus mgl64.Vec3
	if p, ok := snap.Character(v.player); ok {
		focus = p.Position
	}
	proj := newProjection(w, h-1, focus)

	// Largest footprints first so props land on top of the ground.
	bodies := append([]game.BodySnapshot(nil), snap.Bodies...)
	sort.SliceStable(bodies, func(i, j int) bool {
		return footprint(bodies[i]) > footprint(bodies[j])
	})
	for i, b := range bodies {
		glyph, style := bodyGlyph(b, i == 0)
		v.fill(proj, b.Position, b.HalfExtents, glyph, style)
	}

	if col, row, ok := proj.toScreen(snap.CameraPos); ok {
		v.screen.SetContent(col, row, 'C', nil, cameraStyle)
	}

	for _, c := range snap.Characters {
		col, row, ok := proj.toScreen(c.Position)
		if !ok {
			continue
		}
		style := coolingStyle
		if c.CanDash {
			style = readyStyle
		}
		if !c.Grounded {
			style = style.Underline(true)
		}
		v.screen.SetContent(col, row, facingGlyph(c.Facing), nil, style)
	}

	var in input.State
	if v.pulser != nil {
		in = v.pulser.Poll()
	}
	v.drawText(0, h-1, w, debug.StatusLine(snap, in, v.player), statusStyle)
	v.screen.Show()
}

func (v *View) fill(proj projection, center, half mgl64.Vec3, glyph rune, style tcell.Style) {
	c0, r0 := proj.cell(center.Sub(half))
	c1, r1 := proj.cell(center.Add(half))
	c0, c1 = max(c0, 0), min(c1, proj.width-1)
	r0, r1 = max(r0, 0), min(r1, proj.height-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			v.screen.SetContent(col, row, glyph, nil, style)
		}
	}
}

func (v *View) drawText(x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= width {
			return
		}
		v.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		v.screen.SetContent(col, y, ' ', nil, style)
	}
}

// projection maps the XZ plane onto screen cells centred on focus.
type projection struct {
	width, height int
	focus         mgl64.Vec3
}

func newProjection(width, height int, focus mgl64.Vec3) projection {
	return projection{width: width, height: height, focus: focus}
}

func (p projection) cell(pos mgl64.Vec3) (col, row int) {
	col = p.width/2 + int(math.Round((pos.X()-p.focus.X())*cellsPerUnitX))
	row = p.height/2 + int(math.Round((pos.Z()-p.focus.Z())*cellsPerUnitZ))
	return col, row
}

func (p projection) toScreen(pos mgl64.Vec3) (col, row int, ok bool) {
	col, row = p.cell(pos)
	ok = col >= 0 && col < p.width && row >= 0 && row < p.height
	return col, row, ok
}

func footprint(b game.BodySnapshot) float64 {
	return b.HalfExtents.X() * b.HalfExtents.Z()
}

func bodyGlyph(b game.BodySnapshot, floor bool) (rune, tcell.Style) {
	switch {
	case floor && b.Fixed:
		return '.', groundStyle
	case b.Fixed:
		return '#', fixedStyle
	case b.Sleeping:
		return 'o', dynamicStyle
	default:
		return 'O', dynamicStyle
	}
}

// facingGlyph picks the arrow nearest to a facing angle. Angle 0 looks
// toward -Z and positive angles turn toward -X.
func facingGlyph(angle float64) rune {
	step := math.Pi / 4
	i := int(math.Round(angle/step)) % len(facingGlyphs)
	if i < 0 {
		i += len(facingGlyphs)
	}
	return facingGlyphs[i]
}
