package domain

import "context"

// CommitCollector abstracts the git side of a run: per-module commit
// history since the last release tag, the current head identifier, and tag
// creation. The collector owns the exclusion of nested child-module paths
// from a parent module's history; consumers can assume it already happened.
type CommitCollector interface {
	// Collect returns the classified commits and last release tag for every
	// module, keyed by module id. Modules with no history map to an empty
	// commit list.
	Collect(ctx context.Context, dir string, modules []Module) (map[string]ModuleCommits, error)

	// HeadIdentifier returns a short identifier for the current head commit,
	// used as build metadata.
	HeadIdentifier(ctx context.Context, dir string) (string, error)

	// TagRelease creates the release tag {name}@{version} at head.
	TagRelease(ctx context.Context, dir, name, version string) error
}
