// Package config loads and validates the application configuration from
// defaults, an optional config file, and GENESIS_-prefixed environment
// variables.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Interface is the read contract handed to the rest of the application.
type Interface interface {
	Logger() LoggerConfig
	Kernel() KernelConfig
	Memory() MemoryConfig
	Persistence() PersistenceConfig
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	KernelCfg      KernelConfig      `mapstructure:"kernel" yaml:"kernel"`
	MemoryCfg      MemoryConfig      `mapstructure:"memory" yaml:"memory"`
	PersistenceCfg PersistenceConfig `mapstructure:"persistence" yaml:"persistence"`
}

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Kernel() KernelConfig           { return c.KernelCfg }
func (c *Config) Memory() MemoryConfig           { return c.MemoryCfg }
func (c *Config) Persistence() PersistenceConfig { return c.PersistenceCfg }

// LoggerConfig controls the zap logger and its file rotation.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// KernelConfig tunes the supervisor's tick loop and periodic behaviors.
type KernelConfig struct {
	// TickRate is the target scheduler frequency in ticks per second.
	TickRate int `mapstructure:"tick_rate" yaml:"tick_rate"`
	// HeartbeatInterval is the ambition heartbeat period, in ticks.
	HeartbeatInterval uint64 `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
	// SerendipityInterval is the shared-theme scan period, in ticks.
	SerendipityInterval uint64 `mapstructure:"serendipity_interval" yaml:"serendipity_interval"`
	// CheckpointInterval is the rhythm checkpoint period, in ticks.
	CheckpointInterval uint64 `mapstructure:"checkpoint_interval" yaml:"checkpoint_interval"`
	// EODInterval is the end-of-day report period, in ticks.
	EODInterval uint64 `mapstructure:"eod_interval" yaml:"eod_interval"`
	// MaxInsights caps the supervisor's feedback constellation.
	MaxInsights int `mapstructure:"max_insights" yaml:"max_insights"`
	// WarmupTicks is how many ticks run at boot before the shell opens.
	WarmupTicks int `mapstructure:"warmup_ticks" yaml:"warmup_ticks"`
}

// MemoryConfig tunes the memory store.
type MemoryConfig struct {
	// MaxEntries caps the store; oldest entries evict first.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`
	// SearchResultCap bounds memory-protocol search replies.
	SearchResultCap int `mapstructure:"search_result_cap" yaml:"search_result_cap"`
	// PreviewRunes is the rune length of result previews.
	PreviewRunes int `mapstructure:"preview_runes" yaml:"preview_runes"`
}

// PersistenceConfig locates on-disk state.
type PersistenceConfig struct {
	// StateDir is the workspace root. Empty means ~/.genesis.
	StateDir string `mapstructure:"state_dir" yaml:"state_dir"`
	// SerialLog is the output log the bridge follows for persist lines.
	SerialLog string `mapstructure:"serial_log" yaml:"serial_log"`
}

// NewDefaultConfig returns a configuration populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "genesis")
	v.SetDefault("logger.log_file", "genesis.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Kernel --
	v.SetDefault("kernel.tick_rate", 100)
	v.SetDefault("kernel.heartbeat_interval", 100)
	v.SetDefault("kernel.serendipity_interval", 500)
	v.SetDefault("kernel.checkpoint_interval", 10000)
	v.SetDefault("kernel.eod_interval", 20000)
	v.SetDefault("kernel.max_insights", 50)
	v.SetDefault("kernel.warmup_ticks", 3)

	// -- Memory --
	v.SetDefault("memory.max_entries", 200)
	v.SetDefault("memory.search_result_cap", 10)
	v.SetDefault("memory.preview_runes", 60)

	// -- Persistence --
	v.SetDefault("persistence.state_dir", "")
	v.SetDefault("persistence.serial_log", "genesis.log")
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that already has file and env sources wired.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.KernelCfg.TickRate <= 0 {
		return fmt.Errorf("kernel.tick_rate must be a positive integer")
	}
	if c.MemoryCfg.MaxEntries <= 0 {
		return fmt.Errorf("memory.max_entries must be a positive integer")
	}
	if c.MemoryCfg.SearchResultCap <= 0 {
		return fmt.Errorf("memory.search_result_cap must be a positive integer")
	}
	if c.MemoryCfg.PreviewRunes <= 0 {
		return fmt.Errorf("memory.preview_runes must be a positive integer")
	}
	if c.KernelCfg.WarmupTicks < 0 {
		return fmt.Errorf("kernel.warmup_ticks must not be negative")
	}
	return nil
}
