package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/config"
	"github.com/genesisos/genesis/internal/observability"
)

// newRootCmd builds the base command tree. Every invocation gets a
// fresh tree so flags never leak between runs.
func newRootCmd() (*cobra.Command, *config.Config) {
	cfg := config.NewDefaultConfig()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "genesis",
		Short:   "Genesis is a cooperative agent runtime with a searchable memory.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(cfgFile); err != nil {
				return err
			}

			loaded, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				// Fall back to a console logger so the error is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "genesis"})
				return fmt.Errorf("loading configuration: %w", err)
			}
			*cfg = *loaded

			observability.InitializeLogger(cfg.LoggerCfg)
			observability.GetLogger().Info("starting genesis", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newBridgeCmd(cfg))
	rootCmd.AddCommand(newMemoryCmd(cfg))

	return rootCmd, cfg
}

// Execute runs the command tree with the given signal-aware context.
func Execute(ctx context.Context) error {
	rootCmd, _ := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}

// initializeConfig wires the config file, environment and defaults into
// viper. Missing config files are fine; everything has a default.
func initializeConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GENESIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}
