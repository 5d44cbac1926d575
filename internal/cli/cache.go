package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cache directory",
		Long:  "Clean and show information about staged archives and the browser log",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var (
		scratch bool
		logs    bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the cache",
		Long:  "Remove staged archives left behind by interrupted installs and the browser log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd, scratch, logs)
		},
	}

	cmd.Flags().BoolVar(&scratch, "scratch", false, "Clean only staged archives")
	cmd.Flags().BoolVar(&logs, "logs", false, "Clean only the browser log")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size of the cache directory",
		Args:  cobra.NoArgs,
		RunE:  runCacheInfo,
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		Args:  cobra.NoArgs,
		RunE:  runCacheDir,
	}
}

func loadCacheManager() (*cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewManager(cfg.Settings.CacheDir), nil
}

func runCacheClean(cmd *cobra.Command, scratch, logs bool) error {
	cacheManager, err := loadCacheManager()
	if err != nil {
		return err
	}

	result, err := cacheManager.Clean(cache.CleanOptions{Scratch: scratch, Logs: logs})
	if err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}

	if result.ScratchFreed > 0 {
		logger.Info("Cleaned staged archives", logger.Fields{"size": humanize.Bytes(uint64(result.ScratchFreed))})
	}
	if result.LogsFreed > 0 {
		logger.Info("Cleaned browser log", logger.Fields{"size": humanize.Bytes(uint64(result.LogsFreed))})
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Freed %s\n", humanize.Bytes(uint64(result.TotalFreed)))
	logger.Success("Cache cleaning completed", logger.Fields{"total_freed": result.TotalFreed})
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	cacheManager, err := loadCacheManager()
	if err != nil {
		return err
	}

	info, err := cacheManager.GetInfo()
	if err != nil {
		return fmt.Errorf("failed to get cache info: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Cache Directory: %s\n", info.Directory)
	_, _ = fmt.Fprintf(out, "Total Size: %s\n", humanize.Bytes(uint64(info.TotalSize)))
	_, _ = fmt.Fprintf(out, "Staged Archives: %s (%d files)\n", humanize.Bytes(uint64(info.ScratchSize)), info.ScratchFiles)
	_, _ = fmt.Fprintf(out, "Browser Log: %s\n", humanize.Bytes(uint64(info.LogSize)))

	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	cacheManager, err := loadCacheManager()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cacheManager.GetDirectory())
	return nil
}
