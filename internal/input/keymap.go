package input

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Keymap binds single printable keys to actions.
type Keymap map[rune]Action

// DefaultKeymap is WASD movement, space to jump and e to dash.
func DefaultKeymap() Keymap {
	return Keymap{
		'w': Forward,
		's': Backward,
		'a': Leftward,
		'd': Rightward,
		' ': Jump,
		'e': Dash,
	}
}

// ParseKeymap builds a Keymap from action name -> key strings, e.g.
// {"jump": "space", "dash": "e"}. Actions that are not mentioned keep their
// default binding.
func ParseKeymap(bindings map[string]string) (Keymap, error) {
	km := DefaultKeymap()
	if len(bindings) == 0 {
		return km, nil
	}

	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		action, err := ParseAction(name)
		if err != nil {
			return nil, err
		}
		key, err := parseKey(bindings[name])
		if err != nil {
			return nil, fmt.Errorf("binding for %s: %w", action, err)
		}
		for k, a := range km {
			if a == action {
				delete(km, k)
			}
		}
		km[key] = action
	}
	return km, nil
}

// Lookup resolves a key, folding upper case letters to lower case.
func (km Keymap) Lookup(r rune) (Action, bool) {
	if a, ok := km[r]; ok {
		return a, true
	}
	if r >= 'A' && r <= 'Z' {
		a, ok := km[r+('a'-'A')]
		return a, ok
	}
	return 0, false
}

// KeyFor returns the key bound to a, for help text.
func (km Keymap) KeyFor(a Action) (rune, bool) {
	for k, v := range km {
		if v == a {
			return k, true
		}
	}
	return 0, false
}

func parseKey(s string) (rune, error) {
	switch s {
	case "space":
		return ' ', nil
	case "":
		return 0, fmt.Errorf("empty key")
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r < 32 || r > 126 {
		return 0, fmt.Errorf("key %q must be a single printable character", s)
	}
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	return r, nil
}
