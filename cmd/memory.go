package cmd

import (
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genesisos/genesis/internal/config"
	"github.com/genesisos/genesis/internal/memstore"
	"github.com/genesisos/genesis/internal/observability"
)

// newMemoryCmd creates the `memory` command group for inspecting a
// saved memory store without booting the core.
func newMemoryCmd(cfg *config.Config) *cobra.Command {
	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect saved memory without booting the core",
	}
	memoryCmd.AddCommand(newMemorySearchCmd(cfg))
	memoryCmd.AddCommand(newMemoryStatsCmd(cfg))
	memoryCmd.AddCommand(newMemoryRecentCmd(cfg))
	return memoryCmd
}

// loadSavedStore opens the workspace and restores the persisted store.
// A missing memory file yields an empty store, not an error.
func loadSavedStore(cfg *config.Config, logger *zap.Logger) (*memstore.Store, error) {
	fs, err := openWorkspace(cfg, logger)
	if err != nil {
		return nil, err
	}
	store := memstore.New(cfg.MemoryCfg.MaxEntries, logger)
	if err := fs.LoadMemory(store); err != nil {
		return nil, fmt.Errorf("restoring memory: %w", err)
	}
	return store, nil
}

func newMemorySearchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search saved memory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadSavedStore(cfg, observability.GetLogger())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results := store.Search(query)
			if len(results) == 0 {
				fmt.Fprintf(os.Stdout, "No results for: %s\n", query)
				return nil
			}
			if limit := cfg.MemoryCfg.SearchResultCap; len(results) > limit {
				results = results[:limit]
			}
			for _, r := range results {
				if entry, ok := store.Peek(r.ID); ok {
					fmt.Fprintf(os.Stdout, "[%d] score=%d (%s) %s\n", r.ID, r.Score, entry.Kind, entry.Content)
				}
			}
			return nil
		},
	}
}

func newMemoryStatsCmd(cfg *config.Config) *cobra.Command {
	var asJSON bool

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for saved memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadSavedStore(cfg, observability.GetLogger())
			if err != nil {
				return err
			}

			st := store.Stats()
			if asJSON {
				data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(st, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding stats: %w", err)
				}
				fmt.Fprintln(os.Stdout, string(data))
				return nil
			}
			fmt.Fprintf(os.Stdout, "Entries: %d / %d\n", st.EntryCount, store.MaxEntries())
			fmt.Fprintf(os.Stdout, "Index keywords: %d\n", st.IndexSize)
			fmt.Fprintf(os.Stdout, "Estimated size: %d bytes\n", st.EstimatedBytes)
			for _, kw := range st.TopKeywords {
				fmt.Fprintf(os.Stdout, "  %s (%d)\n", kw.Keyword, kw.Count)
			}
			return nil
		},
	}

	statsCmd.Flags().BoolVar(&asJSON, "json", false, "emit statistics as JSON")
	return statsCmd
}

func newMemoryRecentCmd(cfg *config.Config) *cobra.Command {
	var n int

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent saved entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadSavedStore(cfg, observability.GetLogger())
			if err != nil {
				return err
			}

			entries := store.Recent(n)
			if len(entries) == 0 {
				fmt.Fprintln(os.Stdout, "No memories stored yet.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(os.Stdout, "[%d] (%s, %s, tick %d) %s\n",
					entry.ID, entry.Kind, entry.Source, entry.Timestamp, entry.Content)
			}
			return nil
		},
	}

	recentCmd.Flags().IntVar(&n, "limit", 10, "number of entries to show")
	return recentCmd
}
