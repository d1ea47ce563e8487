package input

import (
	"sync"
	"time"
)

// Pulser turns key presses into held actions. Terminals only report key
// repeats, never releases, so each press keeps its action held for a short
// pulse that the key repeat keeps extending.
type Pulser struct {
	mu     sync.Mutex
	pulse  time.Duration
	now    func() time.Time
	until  [actionCount]time.Time
	sticky State
}

// NewPulser returns a Pulser holding each press for pulse.
func NewPulser(pulse time.Duration) *Pulser {
	return &Pulser{pulse: pulse, now: time.Now}
}

// Press extends a's pulse.
func (p *Pulser) Press(a Action) {
	if a >= actionCount {
		return
	}
	p.mu.Lock()
	p.until[a] = p.now().Add(p.pulse)
	p.mu.Unlock()
}

// Toggle flips a latched action that stays held until toggled again or
// cleared.
func (p *Pulser) Toggle(a Action) {
	p.mu.Lock()
	p.sticky = p.sticky.With(a, !p.sticky.Held(a))
	p.mu.Unlock()
}

// Clear drops every pulse and latch.
func (p *Pulser) Clear() {
	p.mu.Lock()
	p.until = [actionCount]time.Time{}
	p.sticky = State{}
	p.mu.Unlock()
}

// Poll implements Source.
func (p *Pulser) Poll() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	s := p.sticky
	for a := Action(0); a < actionCount; a++ {
		if now.Before(p.until[a]) {
			s = s.With(a, true)
		}
	}
	return s
}
