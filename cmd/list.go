package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the modules detected in the monorepo",
	Long: `Detect the monorepo's modules with the build-system adapter and
print each module's id, current version, and dependents.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	listCmd.Flags().StringVar(
		&adapterFlag, "adapter", "",
		"Pin the build-system adapter (gradle, gomod, cargo)",
	)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dir, err := targetDir(args)
	if err != nil {
		return err
	}

	registry := buildAdapterRegistry()

	adapter, err := resolveAdapter(ctx, registry, dir, adapterFlag)
	if err != nil {
		return err
	}

	modules, err := adapter.DetectModules(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to detect modules: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Adapter: %s\n", adapter.Name())
	for _, m := range modules {
		declared := "tag-derived"
		if m.DeclaredVersion {
			declared = "declared"
		}
		fmt.Fprintf(out, "%-30s %-12s %s (%s)\n", m.ID, m.Version, declared, m.Kind)
		if len(m.Dependents) > 0 {
			fmt.Fprintf(out, "%-30s   dependents: %s\n", "", strings.Join(m.Dependents, ", "))
		}
	}
	return nil
}
