package domain

import "fmt"

// BumpKind is the category of semantic version change a module receives.
// The kinds form a strict total order so that stable and pre-release bumps
// can be merged with a single max operation.
type BumpKind string

const (
	BumpNone       BumpKind = "none"
	BumpPrerelease BumpKind = "prerelease"
	BumpPrepatch   BumpKind = "prepatch"
	BumpPreminor   BumpKind = "preminor"
	BumpPremajor   BumpKind = "premajor"
	BumpPatch      BumpKind = "patch"
	BumpMinor      BumpKind = "minor"
	BumpMajor      BumpKind = "major"
)

// bumpPriority defines the total order over bump kinds. Higher wins when
// two kinds are merged.
//
//nolint:gochecknoglobals // lookup table for the bump order
var bumpPriority = map[BumpKind]int{
	BumpNone:       0,
	BumpPrerelease: 1,
	BumpPrepatch:   2,
	BumpPreminor:   3,
	BumpPremajor:   4,
	BumpPatch:      5,
	BumpMinor:      6,
	BumpMajor:      7,
}

// String returns the string representation of the bump kind.
func (k BumpKind) String() string {
	return string(k)
}

// IsValid returns true if the bump kind is one of the eight known kinds.
func (k BumpKind) IsValid() bool {
	_, ok := bumpPriority[k]
	return ok
}

// IsPrerelease returns true for the pre-release family of bump kinds.
func (k BumpKind) IsPrerelease() bool {
	switch k {
	case BumpPrerelease, BumpPrepatch, BumpPreminor, BumpPremajor:
		return true
	default:
		return false
	}
}

// Cmp compares two bump kinds along the total order. It returns a negative
// number when k is lower than other, zero when equal, and a positive number
// when k is higher.
func (k BumpKind) Cmp(other BumpKind) int {
	return bumpPriority[k] - bumpPriority[other]
}

// MaxBump returns the higher-priority of two bump kinds. It is commutative,
// associative, and idempotent, which is what makes the cascade confluent.
func MaxBump(a, b BumpKind) BumpKind {
	if bumpPriority[b] > bumpPriority[a] {
		return b
	}
	return a
}

// ReduceBumps folds a list of bump kinds into a single one, using none as
// the identity. An empty list yields none.
func ReduceBumps(kinds []BumpKind) BumpKind {
	result := BumpNone
	for _, k := range kinds {
		result = MaxBump(result, k)
	}
	return result
}

// ParseBumpKind parses a configured bump kind string. "ignore" is accepted
// as an alias of "none" so config tables can read naturally.
func ParseBumpKind(s string) (BumpKind, error) {
	if s == "ignore" {
		return BumpNone, nil
	}
	kind := BumpKind(s)
	if !kind.IsValid() {
		return BumpNone, fmt.Errorf("unknown bump kind: %q", s)
	}
	return kind, nil
}
