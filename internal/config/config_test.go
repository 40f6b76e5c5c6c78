package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "genesis", cfg.Logger().ServiceName)
	assert.Equal(t, 100, cfg.Kernel().TickRate)
	assert.Equal(t, uint64(100), cfg.Kernel().HeartbeatInterval)
	assert.Equal(t, uint64(500), cfg.Kernel().SerendipityInterval)
	assert.Equal(t, 200, cfg.Memory().MaxEntries)
	assert.Equal(t, 10, cfg.Memory().SearchResultCap)
	assert.Equal(t, 60, cfg.Memory().PreviewRunes)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromViperOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("kernel.tick_rate", 50)
	v.Set("memory.max_entries", 500)
	v.Set("persistence.state_dir", "/tmp/genesis-test")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Kernel().TickRate)
	assert.Equal(t, 500, cfg.Memory().MaxEntries)
	assert.Equal(t, "/tmp/genesis-test", cfg.Persistence().StateDir)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick rate", func(c *Config) { c.KernelCfg.TickRate = 0 }},
		{"negative capacity", func(c *Config) { c.MemoryCfg.MaxEntries = -1 }},
		{"zero result cap", func(c *Config) { c.MemoryCfg.SearchResultCap = 0 }},
		{"zero preview", func(c *Config) { c.MemoryCfg.PreviewRunes = 0 }},
		{"negative warmup", func(c *Config) { c.KernelCfg.WarmupTicks = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewConfigFromViperRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("memory.max_entries", 0)

	_, err := NewConfigFromViper(v)
	assert.Error(t, err)
}
