package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"

	"github.com/aydinterzi/sisyphus-game/internal/game"
	"github.com/aydinterzi/sisyphus-game/internal/input"
)

const defaultRenderInterval = 50 * time.Millisecond

// Frames is the slice of the frame loop the console drives.
type Frames interface {
	Observe(fn game.Observer)
	Snapshot(f game.Frame) game.Snapshot
	Do(fn func()) bool
}

// Characters is what the console's commands act on. They only run inside
// Frames.Do.
type Characters interface {
	Teleport(name string, pos mgl64.Vec3) error
	Respawn(name string) error
}

type Console struct {
	frames         Frames
	characters     Characters
	pulser         *input.Pulser
	keys           input.Keymap
	player         string
	out            io.Writer
	renderInterval time.Duration

	mu          sync.Mutex
	status      game.Snapshot
	commandMode bool
	commandBuf  []rune
	statusWidth int
}

// NewConsole returns a console that feeds key presses into pulser, which
// must be the frame loop's input source, and controls the character named
// player.
func NewConsole(frames Frames, characters Characters, pulser *input.Pulser, keys input.Keymap, player string) *Console {
	if keys == nil {
		keys = input.DefaultKeymap()
	}
	c := &Console{
		frames:         frames,
		characters:     characters,
		pulser:         pulser,
		keys:           keys,
		player:         player,
		out:            os.Stdout,
		renderInterval: defaultRenderInterval,
	}
	frames.Observe(func(f game.Frame) {
		snap := frames.Snapshot(f)
		c.mu.Lock()
		c.status = snap
		c.mu.Unlock()
	})
	return c
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.pulser == nil {
		return fmt.Errorf("console input is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprintf(c.out, "[debug] console started (%s, X clears, : commands)\r\n", c.bindingSummary())
	c.renderStatusLine()

	go c.renderLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if b == 3 { // Ctrl+C arrives as a byte in raw mode
			return nil
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) renderLoop(ctx context.Context) {
	ticker := time.NewTicker(c.renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.renderStatusLine()
		}
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'x', 'X':
		c.pulser.Clear()
	case 27: // ESC + arrow sequence, unused
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		_, _ = reader.ReadByte()
		return
	default:
		if a, ok := c.keys.Lookup(rune(b)); ok {
			c.pulser.Press(a)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		c.printState()
	case "tp":
		if len(parts) != 4 {
			fmt.Fprintf(c.out, "[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || !finite(x, y, z) {
			fmt.Fprintf(c.out, "[debug] invalid tp args\r\n")
			return
		}
		pos := mgl64.Vec3{x, y, z}
		c.run("tp", func() error { return c.characters.Teleport(c.player, pos) })
		fmt.Fprintf(c.out, "[debug] tp queued to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "reset":
		c.run("reset", func() error { return c.characters.Respawn(c.player) })
		fmt.Fprintf(c.out, "[debug] reset queued\r\n")
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

// run queues fn on the frame goroutine; failures are logged there.
func (c *Console) run(name string, fn func() error) {
	ok := c.frames.Do(func() {
		if err := fn(); err != nil {
			slog.Warn("debug command failed", "command", name, "error", err)
		}
	})
	if !ok {
		fmt.Fprintf(c.out, "[debug] %s dropped, frame loop busy\r\n", name)
	}
}

func (c *Console) printState() {
	snap := c.snapshot()
	p, ok := snap.Character(c.player)
	if !ok {
		fmt.Fprintf(c.out, "[debug] %s is not spawned\r\n", c.player)
		return
	}
	fmt.Fprintf(c.out, "[debug] t=%.3f pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) ground=%t dash=%t facing=%.1f\r\n",
		snap.Frame.Now,
		p.Position.X(), p.Position.Y(), p.Position.Z(),
		p.Velocity.X(), p.Velocity.Y(), p.Velocity.Z(),
		p.Grounded, p.CanDash, degrees(p.Facing),
	)
	fmt.Fprintf(c.out, "[debug] camera=(%.3f,%.3f,%.3f) yaw=%.1f\r\n",
		snap.CameraPos.X(), snap.CameraPos.Y(), snap.CameraPos.Z(), degrees(snap.CameraYaw))
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	for _, a := range input.Actions() {
		fmt.Fprintf(c.out, "  %s: %s\r\n", keyLabel(c.keys, a), a)
	}
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :reset\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	snap := c.status
	width := c.statusWidth
	c.mu.Unlock()

	line := StatusLine(snap, c.pulser.Poll(), c.player)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

// StatusLine is the one-line summary of player shown under both front ends.
func StatusLine(snap game.Snapshot, in input.State, player string) string {
	p, ok := snap.Character(player)
	if !ok {
		return fmt.Sprintf("[IN:%s | %s not spawned]", in, player)
	}
	return fmt.Sprintf(
		"[IN:%s | X:%.2f Y:%.2f Z:%.2f | SPD:%.2f VY:%.2f | GND:%s DASH:%s | FACE:%.0f]",
		in,
		p.Position.X(), p.Position.Y(), p.Position.Z(),
		math.Hypot(p.Velocity.X(), p.Velocity.Z()), p.Velocity.Y(),
		boolLabel(p.Grounded), boolLabel(p.CanDash),
		degrees(p.Facing),
	)
}

func (c *Console) snapshot() game.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) bindingSummary() string {
	var parts []string
	for _, a := range input.Actions() {
		parts = append(parts, keyLabel(c.keys, a)+" "+a.String())
	}
	return strings.Join(parts, ", ")
}

func keyLabel(km input.Keymap, a input.Action) string {
	r, ok := km.KeyFor(a)
	switch {
	case !ok:
		return "(unbound)"
	case r == ' ':
		return "Space"
	default:
		return strings.ToUpper(string(r))
	}
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
