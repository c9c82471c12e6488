package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monover/monover/config"
	"github.com/monover/monover/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".monover.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	t.Run("should map the conventional types onto both tracks", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()

		assert.Equal(t, "minor", cfg.CommitTypes["feat"].Stable)
		assert.Equal(t, "preminor", cfg.CommitTypes["feat"].Prerelease)
		assert.Equal(t, "patch", cfg.CommitTypes["fix"].Stable)
		assert.Equal(t, "ignore", cfg.CommitTypes["chore"].Stable)
		assert.Equal(t, "major", cfg.BreakingChange.Stable)
		assert.Equal(t, "alpha", cfg.Prerelease.ID)
		require.NoError(t, config.Validate(cfg))
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("should overlay the file on top of the defaults", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
adapter: gradle
commit_types:
  feat:
    stable: major
    prerelease: premajor
prerelease:
  id: rc
  timestamp: true
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "gradle", cfg.Adapter)
		assert.Equal(t, "major", cfg.CommitTypes["feat"].Stable)
		assert.Equal(t, "rc", cfg.Prerelease.ID)
		assert.True(t, cfg.Prerelease.Timestamp)
		// untouched defaults survive
		assert.Equal(t, "patch", cfg.CommitTypes["fix"].Stable)
		assert.Equal(t, "patch", cfg.Cascade.Stable["minor"])
	})

	t.Run("should reject an invalid bump kind", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeConfig(t, `
commit_types:
  feat:
    stable: enormous
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commit_types[feat]")
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

		require.Error(t, err)
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "commit_types: [not a map")

		_, err := config.Load(path)

		require.Error(t, err)
	})
}

// No t.Parallel here: t.Setenv is not allowed in parallel tests.
func TestLoadEnvExpansion(t *testing.T) {
	t.Run("should expand environment placeholders in the identifier", func(t *testing.T) {
		// given
		t.Setenv("RELEASE_CHANNEL", "beta")
		path := writeConfig(t, `
prerelease:
  id: ${RELEASE_CHANNEL}
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "beta", cfg.Prerelease.ID)
	})

	t.Run("should blank unset placeholders", func(t *testing.T) {
		// given
		t.Setenv("RELEASE_CHANNEL", "")
		path := writeConfig(t, `
prerelease:
  id: ${RELEASE_CHANNEL}
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Empty(t, cfg.Prerelease.ID)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("should require a cascade table unless match is set", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Default()
		cfg.Cascade = config.CascadeConfig{}

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cascade")

		cfg.Cascade.Match = true
		require.NoError(t, config.Validate(cfg))
	})

	t.Run("should reject unknown kinds in the cascade tables", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Default()
		cfg.Cascade.Stable["minor"] = "colossal"

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown bump kind")
	})
}

func TestRules(t *testing.T) {
	t.Parallel()

	t.Run("should resolve the default config into domain rules", func(t *testing.T) {
		t.Parallel()

		// given
		rules := config.Default().Rules()

		// then
		assert.Equal(t, domain.BumpMinor, rules.CommitTypes["feat"].Stable)
		assert.Equal(t, domain.BumpPreminor, rules.CommitTypes["feat"].Prerelease)
		assert.Equal(t, domain.BumpNone, rules.CommitTypes["chore"].Stable)
		assert.Equal(t, domain.BumpMajor, rules.Breaking.Stable)
		assert.Equal(t, domain.BumpNone, rules.UnknownType.Stable)
		assert.Equal(t, domain.BumpPatch, rules.Cascade.Stable[domain.BumpMinor])
		assert.Equal(t, domain.BumpPrerelease, rules.Cascade.Prerelease[domain.BumpPreminor])
		assert.False(t, rules.Cascade.Match)
	})

	t.Run("should carry the match shortcut through", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Default()
		cfg.Cascade = config.CascadeConfig{Match: true}

		// when
		rules := cfg.Rules()

		// then
		assert.True(t, rules.Cascade.Match)
		assert.Equal(t, domain.BumpMinor, rules.Cascade.DependencyBump(domain.BumpMinor, domain.TrackStable))
	})
}
