// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"

	"github.com/monover/monover/domain"
)

// ---------------------------------------------------------------------------
// SpyAdapter
// ---------------------------------------------------------------------------

// SpyAdapter implements domain.Adapter as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyAdapter struct {
	// --- identity / capabilities ---
	AdapterName      string
	DetectResult     bool
	SnapshotsAllowed bool

	// --- IdentifyProject ---
	ProjectName    string
	IdentifyErr    error

	// --- DetectModules ---
	Modules          []domain.Module
	DetectModulesErr error
	// spy: dirs that were scanned
	DetectedDirs []string

	// --- WriteVersions ---
	WriteErr error
	// spy: changes received
	WrittenChanges [][]domain.ProcessedChange
}

var _ domain.Adapter = (*SpyAdapter)(nil)

func (a *SpyAdapter) Name() string { return a.AdapterName }

func (a *SpyAdapter) SupportsSnapshots() bool { return a.SnapshotsAllowed }

func (a *SpyAdapter) Detect(_ context.Context, _ string) bool { return a.DetectResult }

func (a *SpyAdapter) IdentifyProject(_ context.Context, _ string) (string, error) {
	return a.ProjectName, a.IdentifyErr
}

func (a *SpyAdapter) DetectModules(_ context.Context, dir string) ([]domain.Module, error) {
	a.DetectedDirs = append(a.DetectedDirs, dir)
	return a.Modules, a.DetectModulesErr
}

func (a *SpyAdapter) WriteVersions(
	_ context.Context,
	_ string,
	changes []domain.ProcessedChange,
) error {
	a.WrittenChanges = append(a.WrittenChanges, changes)
	return a.WriteErr
}

// ---------------------------------------------------------------------------
// SpyCollector
// ---------------------------------------------------------------------------

// SpyCollector implements domain.CommitCollector as a configurable spy.
type SpyCollector struct {
	// --- Collect ---
	CommitsByModule map[string]domain.ModuleCommits
	CollectErr      error
	// spy: module ids requested
	CollectedModules []string

	// --- HeadIdentifier ---
	Head    string
	HeadErr error

	// --- TagRelease ---
	TagErr error
	// spy: tags created, as "{name}@{version}"
	CreatedTags []string
}

var _ domain.CommitCollector = (*SpyCollector)(nil)

func (c *SpyCollector) Collect(
	_ context.Context,
	_ string,
	modules []domain.Module,
) (map[string]domain.ModuleCommits, error) {
	for _, m := range modules {
		c.CollectedModules = append(c.CollectedModules, m.ID)
	}
	return c.CommitsByModule, c.CollectErr
}

func (c *SpyCollector) HeadIdentifier(_ context.Context, _ string) (string, error) {
	return c.Head, c.HeadErr
}

func (c *SpyCollector) TagRelease(_ context.Context, _, name, version string) error {
	if c.TagErr != nil {
		return c.TagErr
	}
	c.CreatedTags = append(c.CreatedTags, name+"@"+version)
	return nil
}

// ---------------------------------------------------------------------------
// Dummies
// ---------------------------------------------------------------------------

// DummyAdapter satisfies domain.Adapter with zero values, for tests that
// only need the interface filled.
type DummyAdapter struct{}

var _ domain.Adapter = (*DummyAdapter)(nil)

func (a *DummyAdapter) Name() string                                 { return "dummy" }
func (a *DummyAdapter) SupportsSnapshots() bool                      { return false }
func (a *DummyAdapter) Detect(_ context.Context, _ string) bool      { return false }
func (a *DummyAdapter) IdentifyProject(_ context.Context, _ string) (string, error) {
	return "dummy", nil
}
func (a *DummyAdapter) DetectModules(_ context.Context, _ string) ([]domain.Module, error) {
	return nil, nil
}
func (a *DummyAdapter) WriteVersions(_ context.Context, _ string, _ []domain.ProcessedChange) error {
	return nil
}

// DummyCollector satisfies domain.CommitCollector with zero values.
type DummyCollector struct{}

var _ domain.CommitCollector = (*DummyCollector)(nil)

func (c *DummyCollector) Collect(
	_ context.Context,
	_ string,
	_ []domain.Module,
) (map[string]domain.ModuleCommits, error) {
	return map[string]domain.ModuleCommits{}, nil
}

func (c *DummyCollector) HeadIdentifier(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (c *DummyCollector) TagRelease(_ context.Context, _, _, _ string) error {
	return nil
}
