package domain

import "context"

// Adapter abstracts a build system (Gradle, Go modules, Cargo, etc.).
// Each implementation owns module discovery and version write-back for its
// ecosystem. Implementations are selected by explicit registration and
// lookup by name, never by dynamic loading.
type Adapter interface {
	// Name returns the adapter identifier (e.g. "gradle", "gomod", "cargo").
	Name() string

	// Detect returns true if the directory looks like a project of this
	// build system.
	Detect(ctx context.Context, dir string) bool

	// IdentifyProject returns a human-readable project name for the
	// directory, used in logs and as the root module name.
	IdentifyProject(ctx context.Context, dir string) (string, error)

	// DetectModules discovers every module in the monorepo, including the
	// dependents edges between them. A module whose declared version fails
	// to parse is a fatal error.
	DetectModules(ctx context.Context, dir string) ([]Module, error)

	// WriteVersions persists computed versions into the build system's
	// files. Modules without a declared version are skipped; their release
	// lives in tags only.
	WriteVersions(ctx context.Context, dir string, changes []ProcessedChange) error

	// SupportsSnapshots reports whether the snapshot suffix convention is
	// meaningful for this ecosystem.
	SupportsSnapshots() bool
}
