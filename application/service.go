package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/monover/monover/config"
	"github.com/monover/monover/domain"
	adapterPkg "github.com/monover/monover/infrastructure/adapter"
	"github.com/monover/monover/infrastructure/changelog"
)

// ReleaseService orchestrates the full release flow: detect modules via a
// build-system adapter, collect commits since the last tags, run the
// cascade engine, then apply the results (version write-back, changelogs,
// tags). The apply step is all-or-nothing staged after the pure engine
// run, which is what makes dry runs free.
type ReleaseService struct {
	adapters  *adapterPkg.Registry
	collector domain.CommitCollector
	engine    *Engine
	changelog *changelog.Writer
	log       logger.FieldLogger
}

// NewReleaseService creates a service with the given collaborators.
func NewReleaseService(
	adapters *adapterPkg.Registry,
	collector domain.CommitCollector,
	engine *Engine,
	changelogWriter *changelog.Writer,
	log logger.FieldLogger,
) *ReleaseService {
	return &ReleaseService{
		adapters:  adapters,
		collector: collector,
		engine:    engine,
		changelog: changelogWriter,
		log:       log,
	}
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	AdapterName    string // If set, pin the adapter instead of auto-detecting
	DryRun         bool
	Prerelease     bool
	PrereleaseID   string // Overrides the configured base identifier
	TimestampID    bool
	BumpUnchanged  bool
	BuildMetadata  bool
	AppendSnapshot bool
}

// Run executes the full release cycle for the repository at dir and
// returns the modules that were (or, in dry-run mode, would be) updated.
func (s *ReleaseService) Run(
	ctx context.Context,
	dir string,
	cfg *config.Config,
	opts RunOptions,
) ([]domain.ProcessedChange, error) {
	runID := uuid.NewString()[:8]
	log := s.log.WithField("run", runID)

	adapter, err := s.selectAdapter(ctx, dir, cfg, opts)
	if err != nil {
		return nil, err
	}

	projectName, err := adapter.IdentifyProject(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to identify project: %w", err)
	}
	log.Infof("Project %q (adapter: %s)", projectName, adapter.Name())

	detected, err := adapter.DetectModules(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to detect modules: %w", err)
	}
	log.Infof("Detected %d modules", len(detected))

	commitsByModule, err := s.collector.Collect(ctx, dir, detected)
	if err != nil {
		return nil, fmt.Errorf("failed to collect commits: %w", err)
	}

	detected, err = fillTagVersions(detected, commitsByModule)
	if err != nil {
		return nil, err
	}

	modules, err := domain.NewModuleSet(detected)
	if err != nil {
		return nil, err
	}

	engineOpts, err := s.buildEngineOptions(ctx, dir, cfg, opts, adapter)
	if err != nil {
		return nil, err
	}

	changes, err := s.engine.Run(modules, commitsByModule, cfg.Rules(), engineOpts)
	if err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		log.Info("All modules up to date, nothing to release")
		return changes, nil
	}

	for _, change := range changes {
		log.Infof(
			"  %s: %s -> %s (%s, %s)",
			change.Module.ID, change.FromVersion, change.ToVersion, change.Bump, change.Reason,
		)
	}

	if opts.DryRun {
		log.Infof("[DRY RUN] Would update %d modules", len(changes))
		return changes, nil
	}

	if err := s.apply(ctx, dir, adapter, changes, commitsByModule, log); err != nil {
		return nil, err
	}

	log.Infof("Released %d modules", len(changes))
	return changes, nil
}

// selectAdapter resolves the adapter from the CLI flag, the config, or
// auto-detection, in that order.
func (s *ReleaseService) selectAdapter(
	ctx context.Context,
	dir string,
	cfg *config.Config,
	opts RunOptions,
) (domain.Adapter, error) {
	name := opts.AdapterName
	if name == "" {
		name = cfg.Adapter
	}
	if name != "" {
		return s.adapters.Get(name)
	}
	return s.adapters.Detect(ctx, dir)
}

// buildEngineOptions resolves the run flags into engine options, deriving
// the pre-release identifier and fetching the head hash for build metadata.
func (s *ReleaseService) buildEngineOptions(
	ctx context.Context,
	dir string,
	cfg *config.Config,
	opts RunOptions,
	adapter domain.Adapter,
) (EngineOptions, error) {
	engineOpts := EngineOptions{
		Prerelease:        opts.Prerelease,
		BumpUnchanged:     opts.BumpUnchanged,
		AppendSnapshot:    opts.AppendSnapshot,
		SnapshotSupported: adapter.SupportsSnapshots(),
	}

	if opts.Prerelease {
		baseID := opts.PrereleaseID
		if baseID == "" {
			baseID = cfg.Prerelease.ID
		}
		if opts.TimestampID || cfg.Prerelease.Timestamp {
			baseID = domain.TimestampPrereleaseID(baseID, time.Now())
		}
		engineOpts.PrereleaseID = baseID
	}

	if opts.BuildMetadata {
		head, err := s.collector.HeadIdentifier(ctx, dir)
		if err != nil {
			return EngineOptions{}, fmt.Errorf("failed to resolve head identifier: %w", err)
		}
		engineOpts.BuildMetadata = head
	}

	return engineOpts, nil
}

// apply performs the write phase: build-file versions, changelogs, tags.
func (s *ReleaseService) apply(
	ctx context.Context,
	dir string,
	adapter domain.Adapter,
	changes []domain.ProcessedChange,
	commitsByModule map[string]domain.ModuleCommits,
	log logger.FieldLogger,
) error {
	if err := adapter.WriteVersions(ctx, dir, changes); err != nil {
		return fmt.Errorf("failed to write versions: %w", err)
	}

	now := time.Now()
	for _, change := range changes {
		history := commitsByModule[change.Module.ID]
		if err := s.changelog.Write(change, history.Commits, now); err != nil {
			return fmt.Errorf("failed to update changelog for %q: %w", change.Module.ID, err)
		}
	}

	for _, change := range changes {
		if err := s.collector.TagRelease(ctx, dir, change.Module.Name, change.ToVersion); err != nil {
			return fmt.Errorf("failed to tag %q: %w", change.Module.ID, err)
		}
	}

	log.Debugf("Applied %d changes", len(changes))
	return nil
}

// fillTagVersions substitutes the version parsed from a module's last
// release tag when the build files declare none. Modules that were never
// tagged keep the adapter's placeholder.
func fillTagVersions(
	modules []domain.Module,
	commitsByModule map[string]domain.ModuleCommits,
) ([]domain.Module, error) {
	for i, m := range modules {
		if m.DeclaredVersion {
			continue
		}
		lastTag := commitsByModule[m.ID].LastTag
		if lastTag == "" {
			continue
		}
		version, err := semver.NewVersion(lastTag)
		if err != nil {
			return nil, fmt.Errorf("malformed release tag version %q for module %q: %w", lastTag, m.ID, err)
		}
		modules[i].Version = version
	}
	return modules, nil
}
