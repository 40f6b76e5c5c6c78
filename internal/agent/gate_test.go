package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateFiresEveryN(t *testing.T) {
	g := NewGate(3)

	var fired []int
	for i := 1; i <= 10; i++ {
		if g.Tick() {
			fired = append(fired, i)
		}
	}

	assert.Equal(t, []int{3, 6, 9}, fired)
}

func TestGateIntervalOne(t *testing.T) {
	g := NewGate(1)

	for i := 0; i < 5; i++ {
		assert.True(t, g.Tick())
	}
}

func TestGateZeroNeverFires(t *testing.T) {
	g := NewGate(0)

	for i := 0; i < 100; i++ {
		assert.False(t, g.Tick())
	}
}

func TestGateInterval(t *testing.T) {
	g := NewGate(42)
	assert.Equal(t, uint64(42), g.Interval())
}
