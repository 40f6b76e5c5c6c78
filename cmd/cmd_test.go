package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeNoPreRun runs the command tree with config loading disabled,
// for flag and argument validation tests.
func executeNoPreRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd, _ := newRootCmd()
	rootCmd.PersistentPreRunE = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootHelpListsSubcommands(t *testing.T) {
	out, err := executeNoPreRun(t, "--help")

	require.NoError(t, err)
	for _, sub := range []string{"run", "bridge", "memory"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := executeNoPreRun(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestMemorySearchRequiresQuery(t *testing.T) {
	_, err := executeNoPreRun(t, "memory", "search")

	require.Error(t, err)
}

func TestInitializeConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, initializeConfig(""))

	assert.Equal(t, 100, viper.GetInt("kernel.tick_rate"))
	assert.Equal(t, 200, viper.GetInt("memory.max_entries"))
	assert.Equal(t, "genesis", viper.GetString("logger.service_name"))
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("GENESIS_KERNEL_TICK_RATE", "250")

	require.NoError(t, initializeConfig(""))

	assert.Equal(t, 250, viper.GetInt("kernel.tick_rate"))
}

func TestInitializeConfigFileOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	tmp, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmp.WriteString("memory:\n  max_entries: 42\n")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	require.NoError(t, initializeConfig(tmp.Name()))

	assert.Equal(t, 42, viper.GetInt("memory.max_entries"))
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, viper.GetInt("kernel.tick_rate"))
}

func TestInitializeConfigBadFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	tmp, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmp.WriteString("memory: [not a map\n")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	assert.Error(t, initializeConfig(tmp.Name()))
}
