// Package input defines the fixed action set the character controller reads
// each frame and the keyboard plumbing that produces it.
package input

import (
	"errors"
	"fmt"
	"strings"
)

type Action uint8

const (
	Forward Action = iota
	Backward
	Leftward
	Rightward
	Jump
	Dash

	actionCount
)

var ErrUnknownAction = errors.New("unknown action")

var actionNames = [actionCount]string{
	Forward:   "forward",
	Backward:  "backward",
	Leftward:  "leftward",
	Rightward: "rightward",
	Jump:      "jump",
	Dash:      "dash",
}

func (a Action) String() string {
	if a >= actionCount {
		return fmt.Sprintf("action(%d)", uint8(a))
	}
	return actionNames[a]
}

// Actions lists every action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// ParseAction resolves a config name such as "jump" to its Action.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return Action(a), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// State is one frame's snapshot of which actions are held. The controller
// only reads it.
type State struct {
	Forward   bool
	Backward  bool
	Leftward  bool
	Rightward bool
	Jump      bool
	Dash      bool
}

// Held reports whether a is held in s.
func (s State) Held(a Action) bool {
	switch a {
	case Forward:
		return s.Forward
	case Backward:
		return s.Backward
	case Leftward:
		return s.Leftward
	case Rightward:
		return s.Rightward
	case Jump:
		return s.Jump
	case Dash:
		return s.Dash
	default:
		return false
	}
}

// With returns a copy of s with action a set to held.
func (s State) With(a Action, held bool) State {
	switch a {
	case Forward:
		s.Forward = held
	case Backward:
		s.Backward = held
	case Leftward:
		s.Leftward = held
	case Rightward:
		s.Rightward = held
	case Jump:
		s.Jump = held
	case Dash:
		s.Dash = held
	}
	return s
}

// AnyDirection reports whether any of the four movement actions is held.
func (s State) AnyDirection() bool {
	return s.Forward || s.Backward || s.Leftward || s.Rightward
}

func (s State) String() string {
	var b strings.Builder
	for _, a := range Actions() {
		if !s.Held(a) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('+')
		}
		b.WriteString(a.String())
	}
	if b.Len() == 0 {
		return "idle"
	}
	return b.String()
}

// Source is polled once per frame.
type Source interface {
	Poll() State
}

// SourceFunc adapts a function to Source.
type SourceFunc func() State

func (f SourceFunc) Poll() State { return f() }

// Static is a Source that always reports the same state.
type Static State

func (s Static) Poll() State { return State(s) }
