package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/glorpus-work/modpick/pkg/errors"
	"github.com/glorpus-work/modpick/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var (
		output   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available mods",
		Long: `List every mod offered by the manifest, grouped by category.

The host's own loader package is never listed. Use --category to show a
single category and --output to print JSON or YAML instead of a table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, output, category)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", OutputText, "Output format (text, json, yaml)")
	cmd.Flags().StringVar(&category, "category", "", "Only list mods in this category (case-insensitive)")

	return cmd
}

func runList(cmd *cobra.Command, output, category string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := fetchCatalog(contextOrBackground(cmd.Context()), cfg)
	if err != nil {
		return err
	}

	packages := filterCategory(cat.Packages(), category)
	return printPackages(cmd.OutOrStdout(), packages, output)
}

func filterCategory(packages []model.Package, category string) []model.Package {
	if category == "" {
		return packages
	}
	filtered := make([]model.Package, 0, len(packages))
	for _, pkg := range packages {
		if strings.EqualFold(pkg.Category, category) {
			filtered = append(filtered, pkg)
		}
	}
	return filtered
}

func printPackages(w io.Writer, packages []model.Package, output string) error {
	switch output {
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(packages)
	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()
		return encoder.Encode(packages)
	case OutputText, "":
	default:
		return fmt.Errorf("unsupported output format %q (must be text, json or yaml): %w", output, errors.ErrValidation)
	}

	if len(packages) == 0 {
		_, _ = fmt.Fprintln(w, "No mods available")
		return nil
	}

	tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "NAME\tVERSION\tCATEGORY\tDEVELOPERS\tREQUIRES")
	for _, pkg := range packages {
		requires := "-"
		if len(pkg.Dependencies) > 0 {
			requires = strings.Join(pkg.Dependencies, ", ")
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\t%s\n", pkg.Name, pkg.Version, pkg.Category, pkg.Developers, requires)
	}
	return tabWriter.Flush()
}
