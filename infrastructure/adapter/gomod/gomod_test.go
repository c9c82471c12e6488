package gomod_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monover/monover/domain"
	"github.com/monover/monover/infrastructure/adapter/gomod"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// goFixture lays out a multi-module repo: a root module and two nested
// ones, where api requires core.
func goFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "go.mod", "module example.com/demo\n\ngo 1.22\n")
	writeFile(t, dir, "core/go.mod", "module example.com/demo/core\n\ngo 1.22\n")
	writeFile(t, dir, "api/go.mod", `module example.com/demo/api

go 1.22

require example.com/demo/core v1.2.0
`)

	return dir
}

func moduleByID(modules []domain.Module, id string) *domain.Module {
	for i := range modules {
		if modules[i].ID == id {
			return &modules[i]
		}
	}
	return nil
}

func TestGoModAdapter(t *testing.T) {
	t.Parallel()

	t.Run("should detect a directory with a go.mod", func(t *testing.T) {
		t.Parallel()

		adapter := gomod.New()

		assert.True(t, adapter.Detect(context.Background(), goFixture(t)))
		assert.False(t, adapter.Detect(context.Background(), t.TempDir()))
	})

	t.Run("should identify the project from the root module path", func(t *testing.T) {
		t.Parallel()

		name, err := gomod.New().IdentifyProject(context.Background(), goFixture(t))

		require.NoError(t, err)
		assert.Equal(t, "demo", name)
	})

	t.Run("should discover every module in the tree", func(t *testing.T) {
		t.Parallel()

		// given
		dir := goFixture(t)

		// when
		modules, err := gomod.New().DetectModules(context.Background(), dir)

		// then
		require.NoError(t, err)
		require.Len(t, modules, 3)

		root := moduleByID(modules, "example.com/demo")
		require.NotNil(t, root)
		assert.Equal(t, domain.ModuleKindRoot, root.Kind)
		assert.Equal(t, "demo", root.Name)

		core := moduleByID(modules, "example.com/demo/core")
		require.NotNil(t, core)
		assert.Equal(t, domain.ModuleKindSubmodule, core.Kind)
		// versions are tag-derived, never declared in the tree
		assert.False(t, core.DeclaredVersion)
		assert.Equal(t, "0.0.0", core.Version.String())
	})

	t.Run("should wire dependents from require directives", func(t *testing.T) {
		t.Parallel()

		// given
		dir := goFixture(t)

		// when
		modules, err := gomod.New().DetectModules(context.Background(), dir)

		// then
		require.NoError(t, err)
		core := moduleByID(modules, "example.com/demo/core")
		require.NotNil(t, core)
		assert.Equal(t, []string{"example.com/demo/api"}, core.Dependents)
	})

	t.Run("should skip vendor and hidden directories", func(t *testing.T) {
		t.Parallel()

		// given
		dir := goFixture(t)
		writeFile(t, dir, "vendor/dep/go.mod", "module vendored\n")
		writeFile(t, dir, ".cache/go.mod", "module cached\n")

		// when
		modules, err := gomod.New().DetectModules(context.Background(), dir)

		// then
		require.NoError(t, err)
		assert.Len(t, modules, 3)
	})

	t.Run("should fail on an unparsable go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "go.mod", "modul broken\n")

		// when
		_, err := gomod.New().DetectModules(context.Background(), dir)

		// then
		require.Error(t, err)
	})

	t.Run("should treat writes as a no-op", func(t *testing.T) {
		t.Parallel()

		err := gomod.New().WriteVersions(context.Background(), t.TempDir(), []domain.ProcessedChange{
			{Module: domain.Module{ID: "example.com/demo/core"}, ToVersion: "1.3.0"},
		})

		require.NoError(t, err)
	})

	t.Run("should not support snapshots", func(t *testing.T) {
		t.Parallel()

		assert.False(t, gomod.New().SupportsSnapshots())
	})
}
