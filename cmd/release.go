package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monover/monover/application"
	"github.com/monover/monover/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	adapterFlag    string
	prerelease     bool
	prereleaseID   string
	timestampID    bool
	bumpUnchanged  bool
	buildMetadata  bool
	appendSnapshot bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var releaseCmd = &cobra.Command{
	Use:   "release [dir]",
	Short: "Compute and apply the next version of every changed module",
	Long: `Detect the monorepo's modules, classify their commits since the
last release tags, cascade version bumps through the dependency graph,
and apply the result: write versions into build files, insert changelog
sections, and create {module}@{version} tags.

With --dry-run the computation runs unmodified but nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelease,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	releaseCmd.Flags().StringVar(
		&adapterFlag, "adapter", "",
		"Pin the build-system adapter (gradle, gomod, cargo)",
	)
	releaseCmd.Flags().BoolVar(
		&prerelease, "prerelease", false,
		"Release on the pre-release track",
	)
	releaseCmd.Flags().StringVar(
		&prereleaseID, "preid", "",
		"Pre-release base identifier (overrides config)",
	)
	releaseCmd.Flags().BoolVar(
		&timestampID, "timestamp", false,
		"Derive the pre-release identifier as {id}.{YYYYMMDD}.{HHMM} (UTC)",
	)
	releaseCmd.Flags().BoolVar(
		&bumpUnchanged, "bump-unchanged", false,
		"In pre-release mode, also bump modules without qualifying commits",
	)
	releaseCmd.Flags().BoolVar(
		&buildMetadata, "metadata", false,
		"Append the short head commit hash as build metadata",
	)
	releaseCmd.Flags().BoolVar(
		&appendSnapshot, "snapshot", false,
		"Append the snapshot suffix where the ecosystem supports it",
	)
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(_ *cobra.Command, args []string) error {
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
		AdapterName:    adapterFlag,
		DryRun:         dryRun,
		Prerelease:     prerelease,
		PrereleaseID:   prereleaseID,
		TimestampID:    timestampID,
		BumpUnchanged:  bumpUnchanged,
		BuildMetadata:  buildMetadata,
		AppendSnapshot: appendSnapshot,
	})
	return runErr
}

// targetDir resolves the optional positional directory argument.
func targetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return abs, nil
}

// loadConfig loads the configured file, a discovered one, or the defaults.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			logger.Debug("No config file found, using defaults")
			return config.Default(), nil
		}
		path = found
	}

	logger.Infof("Using config file: %s", path)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
