package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"harvest/config"
	"harvest/internal/adapter/memstore"
	"harvest/internal/adapter/store"
	"harvest/internal/port"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local document cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached document counts and sizes",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached document",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheList bool

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheList, "list", false, "list cached documents")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cachePath(cfg *config.Config) string {
	return config.ResolvePath(GetRootDir(), cfg.Cache.Path)
}

// openDocumentCache returns the persistent cache when enabled, otherwise an
// in-memory cache scoped to this run.
func openDocumentCache(cmd *cobra.Command, cfg *config.Config) (port.DocumentCache, func(), error) {
	if !cfg.Cache.Enabled {
		mem := memstore.NewMemoryStore()
		return mem, func() { mem.Close() }, nil
	}

	path := cachePath(cfg)
	if err := config.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	st, err := store.NewBoltCache(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document cache: %w", err)
	}

	result, err := st.Prepare(cfg)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to prepare document cache: %w", err)
	}
	if result.NeedsRebuild {
		fmt.Fprintf(cmd.ErrOrStderr(), "Document cache cleared: %s\n", result.Reason)
	} else if result.NeedsMigration {
		slog.InfoContext(cmd.Context(), "migrated document cache", "reason", result.Reason)
	}

	return st, func() {
		if err := st.Close(); err != nil {
			slog.WarnContext(cmd.Context(), "failed to close document cache", "err", err)
		}
	}, nil
}

func openExistingCache(cfg *config.Config) (*store.BoltCache, error) {
	path := cachePath(cfg)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no document cache at %s", path)
	}
	return store.NewBoltCache(path)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	st, err := openExistingCache(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}
	info, err := st.GetSchemaInfo()
	if err != nil {
		return fmt.Errorf("failed to read schema info: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Document cache: %s\n", cachePath(cfg))
	fmt.Fprintf(out, "  Documents:   %d\n", stats.Documents)
	fmt.Fprintf(out, "  Text size:   %s\n", humanize.Bytes(uint64(stats.Bytes)))
	fmt.Fprintf(out, "  Schema:      v%d\n", info.Version)
	if info.SourceHash != "" && info.SourceHash != store.ComputeSourceHash(cfg) {
		fmt.Fprintf(out, "  Note:        cached documents belong to a different source and will be cleared on the next run\n")
	}

	if cacheList {
		docs, err := st.ListDocs()
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		t := newTable(out)
		t.AppendHeader(table.Row{"ID", "URL", "Fetched"})
		for _, d := range docs {
			t.AppendRow(table.Row{d.ID, d.URL, humanize.Time(d.FetchedAt)})
		}
		t.Render()
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	st, err := openExistingCache(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		return err
	}
	if err := st.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached documents (%s)\n", stats.Documents, humanize.Bytes(uint64(stats.Bytes)))
	return nil
}
