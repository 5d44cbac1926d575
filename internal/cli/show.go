package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/glorpus-work/modpick/pkg/config"
	"github.com/glorpus-work/modpick/pkg/model"
	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show details of a mod",
		Long:  "Display the manifest entry of a single mod, as the browser would show it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}

	return cmd
}

func runShow(cmd *cobra.Command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := fetchCatalog(contextOrBackground(cmd.Context()), cfg)
	if err != nil {
		return err
	}

	pkg, err := findPackage(cat, name)
	if err != nil {
		return err
	}

	printPackage(cmd.OutOrStdout(), cfg, pkg)
	return nil
}

func printPackage(w io.Writer, cfg *config.Config, pkg model.Package) {
	_, _ = fmt.Fprintln(w, pkg.Title())
	_, _ = fmt.Fprintln(w)

	requires := "none"
	if len(pkg.Dependencies) > 0 {
		requires = strings.Join(pkg.Dependencies, ", ")
	}
	strategy := model.StrategyWrite
	if pkg.HasExtension(cfg.Settings.ArchiveExtensions) {
		strategy = model.StrategyExtract
	}

	tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintf(tabWriter, "Developers:\t%s\n", pkg.Developers)
	_, _ = fmt.Fprintf(tabWriter, "Requires:\t%s\n", requires)
	_, _ = fmt.Fprintf(tabWriter, "File:\t%s (%s)\n", pkg.FileName(), strategy)
	_, _ = fmt.Fprintf(tabWriter, "Download:\t%s\n", pkg.DownloadURL)
	_, _ = fmt.Fprintf(tabWriter, "Repository:\t%s\n", pkg.BrowseURL(cfg.Settings.BrowseBaseURL))
	_ = tabWriter.Flush()
}
