package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierNames(t *testing.T) {
	assert.Equal(t, "Core", TierCore.String())
	assert.Equal(t, "Maintained", TierMaintained.String())
	assert.Equal(t, "Sandbox", TierSandbox.String())
	assert.Equal(t, "unknown", WriteTier(0).String())
}

func TestTierAutonomy(t *testing.T) {
	assert.False(t, TierCore.AllowsAutonomousChange())
	assert.False(t, TierGuarded.AllowsAutonomousChange())
	assert.True(t, TierMaintained.AllowsAutonomousChange())
	assert.True(t, TierPlayground.AllowsAutonomousChange())
	assert.False(t, TierSandbox.AllowsAutonomousChange())

	assert.True(t, TierSandbox.Restricted())
	assert.False(t, TierPlayground.Restricted())
}
