package domain

// UnknownCommitType is the conventional type assigned to commits whose
// subject does not parse as a Conventional Commit.
const UnknownCommitType = "unknown"

// BumpForCommit maps one classified commit to a bump kind. Breaking commits
// always yield the track's configured breaking kind, ignoring the type.
// Unknown or unmapped types resolve through the configured fallback and are
// never an error.
func BumpForCommit(commit ClassifiedCommit, rules BumpRules, track Track) BumpKind {
	if commit.Breaking {
		return rules.Breaking.For(track)
	}
	if bumps, ok := rules.CommitTypes[commit.Type]; ok {
		return bumps.For(track)
	}
	return rules.UnknownType.For(track)
}

// BumpForModule reduces a module's commit history to a single bump kind.
// An empty history yields none.
func BumpForModule(commits []ClassifiedCommit, rules BumpRules, track Track) BumpKind {
	result := BumpNone
	for _, c := range commits {
		result = MaxBump(result, BumpForCommit(c, rules, track))
	}
	return result
}
