package domain

// TrackBumps holds one bump kind per release track.
type TrackBumps struct {
	Stable     BumpKind
	Prerelease BumpKind
}

// For returns the bump kind configured for the given track.
func (t TrackBumps) For(track Track) BumpKind {
	if track == TrackPrerelease {
		return t.Prerelease
	}
	return t.Stable
}

// CascadeRules maps the bump kind of a dependency to the bump kind imposed
// on its dependents. Match is an explicit shortcut meaning "propagate the
// dependency's bump kind unchanged"; when set, the tables are ignored.
type CascadeRules struct {
	Match      bool
	Stable     map[BumpKind]BumpKind
	Prerelease map[BumpKind]BumpKind
}

// DependencyBump returns the bump kind a dependent must receive when one of
// its dependencies changed with the given kind. An unmapped kind yields
// none, i.e. the change does not cascade.
func (r CascadeRules) DependencyBump(from BumpKind, track Track) BumpKind {
	if from == BumpNone {
		return BumpNone
	}
	if r.Match {
		return from
	}
	table := r.Stable
	if track == TrackPrerelease {
		table = r.Prerelease
	}
	kind, ok := table[from]
	if !ok {
		return BumpNone
	}
	return kind
}

// BumpRules is the full classification and cascade rule set for a run,
// already resolved from configuration into domain vocabulary.
type BumpRules struct {
	// CommitTypes maps a conventional commit type to its bump per track.
	CommitTypes map[string]TrackBumps

	// Breaking is applied to any commit marked breaking, regardless of type.
	Breaking TrackBumps

	// UnknownType is the fallback for unknown or unmapped commit types.
	UnknownType TrackBumps

	// Cascade governs how bumps propagate along the dependents graph.
	Cascade CascadeRules
}
