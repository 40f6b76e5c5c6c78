package agent

// Gate fires once every N ticks. It replaces the hand-rolled
// counter/threshold/reset pattern that periodic agent behaviors
// otherwise repeat.
type Gate struct {
	every uint64
	count uint64
}

// NewGate returns a gate that fires every `every` calls to Tick.
// A zero interval never fires.
func NewGate(every uint64) Gate {
	return Gate{every: every}
}

// Tick advances the gate and reports whether it fired. The counter
// resets on fire, so a gate of 100 fires on calls 100, 200, 300, ...
func (g *Gate) Tick() bool {
	if g.every == 0 {
		return false
	}
	g.count++
	if g.count >= g.every {
		g.count = 0
		return true
	}
	return false
}

// Interval returns the configured firing interval.
func (g *Gate) Interval() uint64 { return g.every }
