package domain

import (
	"github.com/Masterminds/semver/v3"
)

// ModuleKind distinguishes the repository root module from submodules.
type ModuleKind string

const (
	ModuleKindRoot      ModuleKind = "root"
	ModuleKindSubmodule ModuleKind = "submodule"
)

// Track selects which bump table applies to a run: the stable release track
// or the pre-release track.
type Track string

const (
	TrackStable     Track = "stable"
	TrackPrerelease Track = "prerelease"
)

// Module is one versioned unit of a monorepo, produced once per run by a
// build-system adapter and immutable for the duration of the run.
type Module struct {
	ID   string
	Name string
	Path string
	Kind ModuleKind

	// Version is the module's current version. It must parse; a malformed
	// version is fatal for the run because all downstream math depends on it.
	Version *semver.Version

	// DeclaredVersion reports whether the version is explicitly authored in
	// the module's build files (as opposed to inherited or tag-derived).
	// Only declared versions are written back on release.
	DeclaredVersion bool

	// Dependents lists the ids of modules affected when this module's
	// version changes — outgoing edges in the cascade graph.
	Dependents []string
}

// ClassifiedCommit is a single commit reduced to the facts versioning cares
// about: its conventional type and whether it is marked breaking.
type ClassifiedCommit struct {
	Hash     string
	Type     string // conventional type, "unknown" when unparsable
	Scope    string
	Subject  string
	Breaking bool
}

// ModuleCommits carries the commit history of one module since its last
// release tag. Commits touching nested child modules are already excluded
// by the collector.
type ModuleCommits struct {
	Commits []ClassifiedCommit
	LastTag string // empty when the module has never been tagged
}

// ChangeReason records why a module ended up in the result set.
type ChangeReason string

const (
	ReasonUnchanged           ChangeReason = "unchanged"
	ReasonCommits             ChangeReason = "commits"
	ReasonCascade             ChangeReason = "cascade"
	ReasonPrereleaseUnchanged ChangeReason = "prerelease-unchanged"
	ReasonBuildMetadata       ChangeReason = "build-metadata"
	ReasonSnapshot            ChangeReason = "snapshot"
)

// ChangeRecord is the mutable per-module working state of a run. One record
// exists per module: created during classification, raised in place by the
// cascade, and finalized by the synthesizer.
type ChangeRecord struct {
	Module          Module
	FromVersion     *semver.Version
	ToVersion       string // empty until synthesis
	Bump            BumpKind
	Reason          ChangeReason
	NeedsProcessing bool
}

// ProcessedChange is the immutable result for one module that requires an
// update. Consumers are the version-write strategy, the changelog writer,
// and the tag step ({name}@{toVersion}).
type ProcessedChange struct {
	Module      Module
	FromVersion string
	ToVersion   string
	Bump        BumpKind
	Reason      ChangeReason
}
