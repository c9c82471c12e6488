package domain_test

import (
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monover/monover/domain"
)

func recordFor(version string, bump domain.BumpKind, reason domain.ChangeReason) *domain.ChangeRecord {
	return &domain.ChangeRecord{
		Module:          domain.Module{ID: "core", Name: "core"},
		FromVersion:     semver.MustParse(version),
		Bump:            bump,
		Reason:          reason,
		NeedsProcessing: true,
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	t.Run("should apply stable increments and zero the lower fields", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			from string
			bump domain.BumpKind
			want string
		}{
			{"1.2.3", domain.BumpPatch, "1.2.4"},
			{"1.2.3", domain.BumpMinor, "1.3.0"},
			{"1.2.3", domain.BumpMajor, "2.0.0"},
		}

		for _, c := range cases {
			record := recordFor(c.from, c.bump, domain.ReasonCommits)

			err := domain.Synthesize(record, domain.SynthesisOptions{})

			require.NoError(t, err)
			assert.Equal(t, c.want, record.ToVersion)
		}
	})

	t.Run("should finalize a pre-release on a patch bump", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.2.3-alpha.0", domain.BumpPatch, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", record.ToVersion)
	})

	t.Run("should always advance major even from a pre-release", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.2.3-alpha.4", domain.BumpMajor, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", record.ToVersion)
	})

	t.Run("should attach the counter on pre kinds", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			from string
			bump domain.BumpKind
			want string
		}{
			{"1.2.3", domain.BumpPrepatch, "1.2.4-alpha.0"},
			{"1.2.3", domain.BumpPreminor, "1.3.0-alpha.0"},
			{"1.2.3", domain.BumpPremajor, "2.0.0-alpha.0"},
		}

		for _, c := range cases {
			record := recordFor(c.from, c.bump, domain.ReasonCommits)

			err := domain.Synthesize(record, domain.SynthesisOptions{PrereleaseID: "alpha"})

			require.NoError(t, err)
			assert.Equal(t, c.want, record.ToVersion)
		}
	})

	t.Run("should advance past an existing pre-release on pre kinds", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			from string
			bump domain.BumpKind
			want string
		}{
			{"1.1.0-alpha.2", domain.BumpPrepatch, "1.1.1-alpha.0"},
			{"1.1.0-alpha.2", domain.BumpPreminor, "1.2.0-alpha.0"},
			{"1.1.0-alpha.2", domain.BumpPremajor, "2.0.0-alpha.0"},
		}

		for _, c := range cases {
			record := recordFor(c.from, c.bump, domain.ReasonCommits)

			err := domain.Synthesize(record, domain.SynthesisOptions{PrereleaseID: "alpha"})

			require.NoError(t, err)
			assert.Equal(t, c.want, record.ToVersion)

			// the new version must never sort below the old one
			assert.Positive(t, semver.MustParse(record.ToVersion).Compare(record.FromVersion),
				"%s + %s went backward to %s", c.from, c.bump, record.ToVersion)
		}
	})

	t.Run("should continue an existing pre-release counter", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0-alpha.0", domain.BumpPrerelease, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{PrereleaseID: "alpha"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.0.0-alpha.1", record.ToVersion)
	})

	t.Run("should start the counter when the identifier has none", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0-alpha", domain.BumpPrerelease, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{PrereleaseID: "alpha"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.0.0-alpha.0", record.ToVersion)
	})

	t.Run("should treat a stable version as prepatch on a bare prerelease bump", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0", domain.BumpPrerelease, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{PrereleaseID: "alpha"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.0.1-alpha.0", record.ToVersion)
	})

	t.Run("should advance the counter without commits in pre-release mode", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0-alpha.3", domain.BumpNone, domain.ReasonPrereleaseUnchanged)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{PrereleaseID: "alpha"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.0.0-alpha.4", record.ToVersion)
	})

	t.Run("should replace build metadata instead of stacking it", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.2.3+old", domain.BumpPatch, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{BuildMetadata: "abc1234"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.4+abc1234", record.ToVersion)
	})

	t.Run("should keep exactly one metadata segment across repeated runs", func(t *testing.T) {
		t.Parallel()

		// given: the previous run already stamped metadata
		record := recordFor("1.2.3+run1", domain.BumpNone, domain.ReasonBuildMetadata)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{BuildMetadata: "run2"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.3+run2", record.ToVersion)
	})

	t.Run("should stamp metadata onto an otherwise unchanged version", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.2.3", domain.BumpNone, domain.ReasonBuildMetadata)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{BuildMetadata: "abc1234"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.3+abc1234", record.ToVersion)
	})

	t.Run("should pull an unchanged module in for the snapshot suffix alone", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0", domain.BumpNone, domain.ReasonUnchanged)
		record.NeedsProcessing = false

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{AppendSnapshot: true})

		// then
		require.NoError(t, err)
		assert.True(t, record.NeedsProcessing)
		assert.Equal(t, domain.ReasonSnapshot, record.Reason)
		assert.Equal(t, "1.0.0-SNAPSHOT", record.ToVersion)
	})

	t.Run("should leave an already suffixed unchanged module alone", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0-SNAPSHOT", domain.BumpNone, domain.ReasonUnchanged)
		record.NeedsProcessing = false

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{AppendSnapshot: true})

		// then
		require.NoError(t, err)
		assert.False(t, record.NeedsProcessing)
		assert.Empty(t, record.ToVersion)
	})

	t.Run("should suffix bumped versions when snapshots are on", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.2.3", domain.BumpMinor, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{AppendSnapshot: true})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.3.0-SNAPSHOT", record.ToVersion)
	})

	t.Run("should fail a pre-release bump without an identifier", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0", domain.BumpPreminor, domain.ReasonCommits)

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{})

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingPrereleaseID)
	})

	t.Run("should fail when the record has no parsed version", func(t *testing.T) {
		t.Parallel()

		// given
		record := &domain.ChangeRecord{Module: domain.Module{ID: "broken"}}

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("should leave unchanged records without a target version", func(t *testing.T) {
		t.Parallel()

		// given
		record := recordFor("1.0.0", domain.BumpNone, domain.ReasonUnchanged)
		record.NeedsProcessing = false

		// when
		err := domain.Synthesize(record, domain.SynthesisOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, record.ToVersion)
		assert.False(t, record.NeedsProcessing)
	})
}

func TestApplySnapshot(t *testing.T) {
	t.Parallel()

	t.Run("should be idempotent", func(t *testing.T) {
		t.Parallel()

		once := domain.ApplySnapshot("1.2.3")

		assert.Equal(t, "1.2.3-SNAPSHOT", once)
		assert.Equal(t, once, domain.ApplySnapshot(once))
	})
}

func TestTimestampPrereleaseID(t *testing.T) {
	t.Parallel()

	t.Run("should format the identifier from the UTC instant", func(t *testing.T) {
		t.Parallel()

		// given
		now := time.Date(2026, 8, 28, 14, 5, 0, 0, time.UTC)

		// when
		id := domain.TimestampPrereleaseID("rc", now)

		// then
		assert.Equal(t, "rc.20260828.1405", id)
	})
}
