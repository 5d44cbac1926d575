package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/modpick/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	targetDir  string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modpick",
		Short: "A catalog-driven mod installer",
		Long: `modpick installs game mods listed in a remote manifest:
- Browse: page through the catalog and install with one key
- Install: download a mod and every dependency it names
- Open: jump to a mod's repository page`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&targetDir, "target-dir", "", "install directory (overrides target_dir)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.TargetDir = &targetDir

	// Add subcommands
	cmd.AddCommand(
		cli.NewBrowseCmd(),
		cli.NewListCmd(),
		cli.NewShowCmd(),
		cli.NewInstallCmd(),
		cli.NewOpenCmd(),
		cli.NewConfigCmd(),
		cli.NewCacheCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
