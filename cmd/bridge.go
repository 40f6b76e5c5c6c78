package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/config"
	"github.com/genesisos/genesis/internal/observability"
	"github.com/genesisos/genesis/internal/persist"
)

// newBridgeCmd creates the `bridge` command group. The bridge is the
// companion process on the host side of the serial link: it captures
// memory dumps the core emits on its serial log, and replays saved
// memory back as load lines the shell understands.
func newBridgeCmd(cfg *config.Config) *cobra.Command {
	bridgeCmd := &cobra.Command{
		Use:   "bridge",
		Short: "Capture and replay memory snapshots over the serial link",
	}
	bridgeCmd.AddCommand(newBridgeCaptureCmd(cfg))
	bridgeCmd.AddCommand(newBridgeReplayCmd(cfg))
	return bridgeCmd
}

func newBridgeCaptureCmd(cfg *config.Config) *cobra.Command {
	var serialLog string

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Follow the serial log and save persisted memory dumps",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger().Named("bridge")

			fs, err := openWorkspace(cfg, logger)
			if err != nil {
				return err
			}
			if serialLog == "" {
				serialLog = cfg.PersistenceCfg.SerialLog
			}

			t, err := tail.TailFile(serialLog, tail.Config{
				Follow:    true,
				ReOpen:    true,
				MustExist: false,
				Logger:    tail.DiscardingLogger,
			})
			if err != nil {
				return fmt.Errorf("tailing serial log %s: %w", serialLog, err)
			}
			defer t.Cleanup()

			logger.Info("bridge capturing", zap.String("serial_log", serialLog))

			var dump []string
			for {
				select {
				case <-cmd.Context().Done():
					if err := t.Stop(); err != nil {
						logger.Warn("stopping tail", zap.Error(err))
					}
					return nil
				case line, ok := <-t.Lines:
					if !ok {
						return nil
					}
					if line.Err != nil {
						logger.Warn("tail error", zap.Error(line.Err))
						continue
					}
					if entry, tagged := persist.CutTag(line.Text, persist.PersistTag); tagged {
						dump = append(dump, entry)
						continue
					}
					if strings.HasPrefix(line.Text, persist.PersistDoneTag) {
						snapshot := strings.Join(dump, "\n") + "\n"
						if err := fs.WriteText(persist.MemoryFile, snapshot); err != nil {
							logger.Error("saving captured dump", zap.Error(err))
						} else {
							logger.Info("memory dump captured", zap.Int("entries", len(dump)))
						}
						dump = nil
					}
				}
			}
		},
	}

	captureCmd.Flags().StringVar(&serialLog, "serial-log", "", "serial log file to follow (defaults to persistence.serial_log)")
	return captureCmd
}

func newBridgeReplayCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Emit saved memory as load lines for a booting core",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger().Named("bridge")

			fs, err := openWorkspace(cfg, logger)
			if err != nil {
				return err
			}
			data, err := fs.ReadText(persist.MemoryFile)
			if err != nil {
				if errors.Is(err, persist.ErrNotFound) {
					// Nothing saved yet; an empty transfer tells the
					// core it is a fresh start.
					fmt.Fprintln(os.Stdout, persist.LoadDoneTag)
					return nil
				}
				return fmt.Errorf("reading saved memory: %w", err)
			}

			count := 0
			for _, line := range strings.Split(data, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				fmt.Fprintf(os.Stdout, "%s %s\n", persist.LoadTag, line)
				count++
			}
			fmt.Fprintln(os.Stdout, persist.LoadDoneTag)
			logger.Info("memory replayed", zap.Int("entries", count))
			return nil
		},
	}
}
