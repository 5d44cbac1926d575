package cli

import (
	"fmt"

	"github.com/glorpus-work/modpick/pkg/browser"
	"github.com/spf13/cobra"
)

// NewOpenCmd creates the open command.
func NewOpenCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "open NAME",
		Short: "Open the repository page of a mod",
		Long:  "Open the browse link of a mod in the default web browser.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, args[0], printOnly)
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the link instead of opening it")

	return cmd
}

func runOpen(cmd *cobra.Command, name string, printOnly bool) error {
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

	link := pkg.BrowseURL(cfg.Settings.BrowseBaseURL)
	if printOnly {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	}

	if err := browser.NewOpener().Open(link); err != nil {
		return fmt.Errorf("failed to open %s: %w", link, err)
	}
	return nil
}
