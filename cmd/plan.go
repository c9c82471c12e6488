package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/monover/monover/application"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var planCmd = &cobra.Command{
	Use:   "plan [dir]",
	Short: "Show the versions a release would produce, without writing",
	Long: `Run the full version computation and print the modules that would
be updated. Identical to "release --dry-run".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	planCmd.Flags().StringVar(
		&adapterFlag, "adapter", "",
		"Pin the build-system adapter (gradle, gomod, cargo)",
	)
	planCmd.Flags().BoolVar(
		&prerelease, "prerelease", false,
		"Plan on the pre-release track",
	)
	planCmd.Flags().StringVar(
		&prereleaseID, "preid", "",
		"Pre-release base identifier (overrides config)",
	)
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	dir, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := injectReleaseService()

	_, runErr := svc.Run(ctx, dir, cfg, application.RunOptions{
		AdapterName:  adapterFlag,
		DryRun:       true,
		Prerelease:   prerelease,
		PrereleaseID: prereleaseID,
	})
	return runErr
}
