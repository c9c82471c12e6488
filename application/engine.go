package application

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/monover/monover/domain"
)

// Engine computes the next version of every module in three phases:
// classify commits, cascade bumps through the dependents graph, synthesize
// version strings. It is a pure in-memory computation; all I/O happens
// before (detection, collection) or after (write-back, tagging) a run, so a
// caller aborting mid-run simply discards the result.
type Engine struct {
	log logger.FieldLogger
}

// NewEngine creates an engine. The logger is injected so tests can pass a
// capturing or silenced one; the engine never touches the global logger.
func NewEngine(log logger.FieldLogger) *Engine {
	return &Engine{log: log}
}

// EngineOptions are the run-wide settings of one engine invocation.
type EngineOptions struct {
	// Prerelease switches the run to the pre-release track.
	Prerelease bool

	// PrereleaseID is the base pre-release identifier. Required whenever
	// the pre-release track is active.
	PrereleaseID string

	// BumpUnchanged, in pre-release mode, also bumps modules that had no
	// qualifying commits.
	BumpUnchanged bool

	// BuildMetadata, when non-empty, is appended to every processed
	// module's version after "+".
	BuildMetadata string

	// AppendSnapshot requests the snapshot suffix; it only takes effect
	// when SnapshotSupported is also set.
	AppendSnapshot bool

	// SnapshotSupported mirrors the adapter's capability flag.
	SnapshotSupported bool
}

// Track returns the release track implied by the options.
func (o EngineOptions) Track() domain.Track {
	if o.Prerelease {
		return domain.TrackPrerelease
	}
	return domain.TrackStable
}

// Run executes the three phases and returns the modules that require an
// update. It either returns a complete result or a single error for the
// whole run; records are never exposed half-finished.
func (e *Engine) Run(
	modules *domain.ModuleSet,
	commitsByModule map[string]domain.ModuleCommits,
	rules domain.BumpRules,
	opts EngineOptions,
) ([]domain.ProcessedChange, error) {
	if opts.Prerelease && opts.PrereleaseID == "" {
		return nil, fmt.Errorf("engine: %w", domain.ErrMissingPrereleaseID)
	}

	track := opts.Track()

	records, err := e.classify(modules, commitsByModule, rules, opts, track)
	if err != nil {
		return nil, err
	}

	domain.Propagate(records, rules.Cascade, track, e.log)

	return e.synthesize(records, opts)
}

// classify is phase 1: one record per module, in registry iteration order,
// with the initial bump kind and reason.
func (e *Engine) classify(
	modules *domain.ModuleSet,
	commitsByModule map[string]domain.ModuleCommits,
	rules domain.BumpRules,
	opts EngineOptions,
	track domain.Track,
) ([]*domain.ChangeRecord, error) {
	records := make([]*domain.ChangeRecord, 0, modules.Len())

	for _, id := range modules.IDs() {
		m, err := modules.Get(id)
		if err != nil {
			return nil, err
		}
		if m.Version == nil {
			return nil, fmt.Errorf("module %q has no parseable version", id)
		}

		history := commitsByModule[id]
		bump := domain.BumpForModule(history.Commits, rules, track)

		record := &domain.ChangeRecord{
			Module:      m,
			FromVersion: m.Version,
			Bump:        bump,
		}

		switch {
		case bump != domain.BumpNone:
			record.Reason = domain.ReasonCommits
			record.NeedsProcessing = true
		case opts.Prerelease && opts.BumpUnchanged:
			record.Reason = domain.ReasonPrereleaseUnchanged
			record.NeedsProcessing = true
		case opts.BuildMetadata != "":
			record.Reason = domain.ReasonBuildMetadata
			record.NeedsProcessing = true
		default:
			record.Reason = domain.ReasonUnchanged
		}

		e.log.Debugf(
			"classified %s: %d commits -> bump=%s reason=%s",
			id, len(history.Commits), record.Bump, record.Reason,
		)
		records = append(records, record)
	}

	return records, nil
}

// synthesize is phase 3: finalize every record and collect the ones that
// need processing. The snapshot step can pull in records that were
// unchanged up to here.
func (e *Engine) synthesize(
	records []*domain.ChangeRecord,
	opts EngineOptions,
) ([]domain.ProcessedChange, error) {
	synthOpts := domain.SynthesisOptions{
		PrereleaseID:   opts.PrereleaseID,
		BuildMetadata:  opts.BuildMetadata,
		AppendSnapshot: opts.AppendSnapshot && opts.SnapshotSupported,
	}

	changes := make([]domain.ProcessedChange, 0, len(records))
	for _, record := range records {
		if err := domain.Synthesize(record, synthOpts); err != nil {
			return nil, err
		}
		if !record.NeedsProcessing {
			continue
		}
		changes = append(changes, domain.ProcessedChange{
			Module:      record.Module,
			FromVersion: record.FromVersion.String(),
			ToVersion:   record.ToVersion,
			Bump:        record.Bump,
			Reason:      record.Reason,
		})
	}

	return changes, nil
}
