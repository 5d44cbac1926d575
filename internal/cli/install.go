package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/pkg/model"
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "install NAME",
		Short: "Install a mod and its dependencies",
		Long: `Download a mod into the target directory. Archives are extracted,
anything else is written as a single file. Dependencies named in the
manifest are installed after the mod, depth-first in declared order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the install chain without downloading anything")

	return cmd
}

func runInstall(cmd *cobra.Command, name string, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := contextOrBackground(cmd.Context())

	client := loadClient(cfg)
	cat, err := loadFetcher(cfg, client).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}

	target, err := findPackage(cat, name)
	if err != nil {
		return err
	}

	orch := loadOrchestrator(cfg, client, logHooks())
	out := cmd.OutOrStdout()

	if dryRun {
		plan, err := orch.Plan(target, cat)
		printPlan(out, plan)
		if err != nil {
			return fmt.Errorf("failed to plan install: %w", err)
		}
		return nil
	}

	logger.Debug("Installing", logger.Fields{"package": target.Name, "target_dir": cfg.Settings.TargetDir})
	report, err := orch.Install(ctx, target, cat)
	_, _ = fmt.Fprint(out, report.String())
	if err != nil {
		return fmt.Errorf("failed to install %s: %w", target.Name, err)
	}
	return nil
}

func printPlan(w io.Writer, plan model.ResolvedPackages) {
	for _, step := range plan.Packages {
		indent := strings.Repeat("  ", step.Depth)
		line := fmt.Sprintf("%s%s %s v%s (%s)", indent, step.Action, step.Name, step.Version, step.Strategy)
		if step.Reason != "" {
			line += ": " + step.Reason
		}
		_, _ = fmt.Fprintln(w, line)
	}
}
