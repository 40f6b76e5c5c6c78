package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/genesisos/genesis/internal/agents/archimedes"
	"github.com/genesisos/genesis/internal/agents/thomas"
	"github.com/genesisos/genesis/internal/config"
	"github.com/genesisos/genesis/internal/memstore"
	"github.com/genesisos/genesis/internal/observability"
	"github.com/genesisos/genesis/internal/persist"
	"github.com/genesisos/genesis/internal/shell"
	"github.com/genesisos/genesis/internal/supervisor"
)

// newRunCmd creates the `run` command, which boots the coordination
// core and serves the interactive shell until interrupted.
func newRunCmd(cfg *config.Config) *cobra.Command {
	var (
		ambition string
		maxTicks uint64
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the coordination core and serve the interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			fs, err := openWorkspace(cfg, logger)
			if err != nil {
				return err
			}

			return runCore(cmd.Context(), cfg, fs, os.Stdin, os.Stdout, ambition, maxTicks, logger)
		},
	}

	runCmd.Flags().StringVar(&ambition, "breathe", "", "set the living ambition at boot")
	runCmd.Flags().Uint64Var(&maxTicks, "ticks", 0, "stop after this many ticks (0 runs until interrupted)")
	return runCmd
}

// openWorkspace resolves the state directory and opens the persistence
// layer rooted there.
func openWorkspace(cfg *config.Config, logger *zap.Logger) (*persist.Filesystem, error) {
	dir := cfg.PersistenceCfg.StateDir
	if dir == "" {
		var err error
		dir, err = persist.DefaultStateDir()
		if err != nil {
			return nil, fmt.Errorf("resolving state directory: %w", err)
		}
	}
	return persist.NewFilesystem(dir, logger)
}

// bootSupervisor assembles the store, supervisor and agents from the
// loaded configuration and restores persisted memory.
func bootSupervisor(cfg *config.Config, fs *persist.Filesystem, logger *zap.Logger) (*supervisor.Supervisor, error) {
	store := memstore.New(cfg.MemoryCfg.MaxEntries, logger)
	if fs != nil {
		if err := fs.LoadMemory(store); err != nil {
			return nil, fmt.Errorf("restoring memory: %w", err)
		}
	}

	sup := supervisor.New(supervisor.Config{
		HeartbeatInterval:   cfg.KernelCfg.HeartbeatInterval,
		SerendipityInterval: cfg.KernelCfg.SerendipityInterval,
		CheckpointInterval:  cfg.KernelCfg.CheckpointInterval,
		EODInterval:         cfg.KernelCfg.EODInterval,
		MaxInsights:         cfg.KernelCfg.MaxInsights,
		SearchResultCap:     cfg.MemoryCfg.SearchResultCap,
		PreviewRunes:        cfg.MemoryCfg.PreviewRunes,
	}, store, logger)

	sup.Register(thomas.New(sup.NextAgentID(), logger))
	// A typed nil must not reach the interface, or the nil-workspace
	// guard inside the agent stops working.
	var ws archimedes.Workspace
	if fs != nil {
		ws = fs
	}
	sup.Register(archimedes.New(sup.NextAgentID(), ws, logger))

	sup.TriggerEnvironmentSetup()
	for i := 0; i < cfg.KernelCfg.WarmupTicks; i++ {
		sup.Tick()
	}
	return sup, nil
}

// runCore drives the tick loop and the shell until the context is
// canceled, the input stream closes, or the tick budget runs out.
func runCore(ctx context.Context, cfg *config.Config, fs *persist.Filesystem, in io.Reader, out io.Writer, ambition string, maxTicks uint64, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	sup, err := bootSupervisor(cfg, fs, logger)
	if err != nil {
		return err
	}
	if ambition != "" {
		sup.Breathe(ambition)
	}

	dispatcher := shell.New(sup, fs, out, logger)
	limiter := rate.NewLimiter(rate.Limit(cfg.KernelCfg.TickRate), 1)

	lines := make(chan string)
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, loopCtx := errgroup.WithContext(loopCtx)

	// The reader stays outside the group: a blocked read on stdin must
	// not hold up shutdown. Cancellation unblocks any pending send.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-loopCtx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("reading input", zap.Error(err))
		}
	}()

	g.Go(func() error {
		defer cancel() // stops the reader once the core loop exits
		input := lines
		for {
			select {
			case <-loopCtx.Done():
				return loopCtx.Err()
			case line, ok := <-input:
				if !ok {
					// Input closed. An interactive session is over; a
					// ticked run keeps going until its budget is spent.
					if maxTicks == 0 {
						return nil
					}
					input = nil
					continue
				}
				trimmed := strings.TrimSpace(line)
				if trimmed == "exit" || trimmed == "quit" {
					return nil
				}
				dispatcher.Execute(line)
			default:
				if err := limiter.Wait(loopCtx); err != nil {
					return err
				}
				sup.Tick()
				if maxTicks > 0 && sup.CurrentTick() >= maxTicks {
					return nil
				}
			}
		}
	})

	runErr := g.Wait()
	// The caller stopping the run is not a failure, whether the signal
	// arrives through the loop context or through the rate limiter's
	// own deadline error, which wraps neither sentinel.
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) || (runErr != nil && ctx.Err() != nil) {
		runErr = nil
	}

	// Shutdown is unconditional so memory survives interrupts too.
	sup.Shutdown()
	if fs != nil {
		if err := fs.SaveMemory(sup.Memory()); err != nil {
			logger.Error("persisting memory at shutdown", zap.Error(err))
			if runErr == nil {
				runErr = err
			}
		}
	}
	logger.Info("core stopped",
		zap.Uint64("ticks", sup.CurrentTick()),
		zap.Int("memories", sup.Memory().Len()))
	return runErr
}
