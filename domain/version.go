package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// SnapshotSuffix is the fixed marker appended to non-release builds in
// ecosystems where the convention is meaningful (Gradle/Maven).
const SnapshotSuffix = "-SNAPSHOT"

// ErrMissingPrereleaseID signals a contract violation: a pre-release bump
// was requested without an established base identifier. The orchestration
// layer passed an inconsistent combination of flags.
var ErrMissingPrereleaseID = errors.New("pre-release bump requested without a pre-release identifier")

// SynthesisOptions carries the run-wide knobs the synthesizer needs.
type SynthesisOptions struct {
	// PrereleaseID is the base pre-release identifier (e.g. "alpha").
	PrereleaseID string

	// BuildMetadata, when non-empty, is appended after "+". Typically a
	// short commit hash. Replaces any existing metadata, never stacks.
	BuildMetadata string

	// AppendSnapshot appends SnapshotSuffix to the final string when the
	// adapter supports the convention.
	AppendSnapshot bool
}

// TimestampPrereleaseID derives a pre-release identifier of the form
// {base}.{YYYYMMDD}.{HHMM} from the given instant, in UTC.
func TimestampPrereleaseID(base string, now time.Time) string {
	utc := now.UTC()
	return fmt.Sprintf("%s.%s.%s", base, utc.Format("20060102"), utc.Format("1504"))
}

// Synthesize finalizes one record: it computes ToVersion from FromVersion,
// the record's bump kind, and the run options, and may flip NeedsProcessing
// when the snapshot suffix is the only change. Records the synthesizer does
// not mark keep an empty ToVersion.
func Synthesize(record *ChangeRecord, opts SynthesisOptions) error {
	if record.FromVersion == nil {
		return fmt.Errorf("module %q has no parsed version", record.Module.ID)
	}

	next := *record.FromVersion

	switch {
	case record.NeedsProcessing && record.Bump != BumpNone:
		bumped, err := nextVersion(record.FromVersion, record.Bump, opts.PrereleaseID)
		if err != nil {
			return fmt.Errorf("module %q: %w", record.Module.ID, err)
		}
		next = *bumped

	case record.NeedsProcessing && record.Reason == ReasonPrereleaseUnchanged:
		bumped, err := incPrerelease(record.FromVersion, opts.PrereleaseID, false)
		if err != nil {
			return fmt.Errorf("module %q: %w", record.Module.ID, err)
		}
		next = *bumped
	}

	if record.NeedsProcessing && opts.BuildMetadata != "" {
		withMeta, err := next.SetMetadata(opts.BuildMetadata)
		if err != nil {
			return fmt.Errorf("module %q: invalid build metadata %q: %w",
				record.Module.ID, opts.BuildMetadata, err)
		}
		next = withMeta
	}

	result := next.String()

	if opts.AppendSnapshot {
		snapshotted := ApplySnapshot(result)
		if snapshotted != result && !record.NeedsProcessing {
			// The suffix is the only reason this module changes at all.
			record.NeedsProcessing = true
			record.Reason = ReasonSnapshot
		}
		result = snapshotted
	}

	if record.NeedsProcessing {
		record.ToVersion = result
	}
	return nil
}

// ApplySnapshot appends the snapshot suffix unless it is already present.
func ApplySnapshot(version string) string {
	if strings.HasSuffix(version, SnapshotSuffix) {
		return version
	}
	return version + SnapshotSuffix
}

// nextVersion applies a standard SemVer 2.0.0 increment for the given bump
// kind. Stable kinds increment their field, zero the lower fields, and drop
// any pre-release component. Pre-release kinds advance their field past any
// existing pre-release and attach "{id}.0". A bare prerelease bump continues
// an existing counter.
func nextVersion(current *semver.Version, kind BumpKind, preID string) (*semver.Version, error) {
	switch kind {
	case BumpMajor:
		v := current.IncMajor()
		return &v, nil
	case BumpMinor:
		v := current.IncMinor()
		return &v, nil
	case BumpPatch:
		v := current.IncPatch()
		return &v, nil
	case BumpPremajor:
		return setPrereleaseCounter(current.IncMajor(), preID)
	case BumpPreminor:
		return setPrereleaseCounter(current.IncMinor(), preID)
	case BumpPrepatch:
		return setPrereleaseCounter(nextPatch(current), preID)
	case BumpPrerelease:
		return incPrerelease(current, preID, true)
	default:
		return nil, fmt.Errorf("bump kind %q has no version transform", kind)
	}
}

// incPrerelease implements the bare "prerelease" bump. A version already
// carrying the same base identifier has its trailing numeric counter
// incremented; any other version is treated as a prepatch with counter 0.
// When stableIncrement is false the numeric triple is left alone, which is
// the "bump unchanged modules in pre-release mode" path.
func incPrerelease(current *semver.Version, preID string, stableIncrement bool) (*semver.Version, error) {
	if preID == "" {
		return nil, ErrMissingPrereleaseID
	}

	pre := current.Prerelease()
	if pre == preID {
		// Same identifier, no counter yet: 1.0.0-alpha -> 1.0.0-alpha.0.
		return setVersionPrerelease(current, preID+".0")
	}

	if strings.HasPrefix(pre, preID+".") {
		head, tail := splitTrailingIdentifier(pre)
		if n, err := strconv.Atoi(tail); err == nil {
			return setVersionPrerelease(current, fmt.Sprintf("%s.%d", head, n+1))
		}
	}

	// Different or absent identifier.
	base := *current
	if stableIncrement {
		base = current.IncPatch()
	}
	return setPrereleaseCounter(base, preID)
}

// nextPatch always advances the patch field. IncPatch alone would finalize
// a version that carries a pre-release component instead of moving past it,
// which would make a prepatch bump go backward in precedence.
func nextPatch(v *semver.Version) semver.Version {
	return *semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
}

// splitTrailingIdentifier splits a dotted pre-release string into everything
// before the last dot and the final identifier.
func splitTrailingIdentifier(pre string) (string, string) {
	idx := strings.LastIndex(pre, ".")
	if idx < 0 {
		return pre, ""
	}
	return pre[:idx], pre[idx+1:]
}

// setPrereleaseCounter attaches "{id}.0" to a version.
func setPrereleaseCounter(v semver.Version, preID string) (*semver.Version, error) {
	if preID == "" {
		return nil, ErrMissingPrereleaseID
	}
	return setVersionPrerelease(&v, preID+".0")
}

func setVersionPrerelease(v *semver.Version, pre string) (*semver.Version, error) {
	withPre, err := v.SetPrerelease(pre)
	if err != nil {
		return nil, fmt.Errorf("invalid pre-release identifier %q: %w", pre, err)
	}
	return &withPre, nil
}
