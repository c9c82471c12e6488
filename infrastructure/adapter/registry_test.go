package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monover/monover/infrastructure/adapter"
	testdoubles "github.com/monover/monover/test"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("should return registered adapters by name", func(t *testing.T) {
		t.Parallel()

		// given
		registry := adapter.NewRegistry()
		spy := &testdoubles.SpyAdapter{AdapterName: "gradle"}
		registry.Register(spy)

		// when
		got, err := registry.Get("gradle")

		// then
		require.NoError(t, err)
		assert.Same(t, spy, got.(*testdoubles.SpyAdapter))
	})

	t.Run("should fail for unknown names", func(t *testing.T) {
		t.Parallel()

		registry := adapter.NewRegistry()

		_, err := registry.Get("bazel")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown adapter type")
	})

	t.Run("should auto-detect in registration order", func(t *testing.T) {
		t.Parallel()

		// given
		registry := adapter.NewRegistry()
		first := &testdoubles.SpyAdapter{AdapterName: "first", DetectResult: true}
		second := &testdoubles.SpyAdapter{AdapterName: "second", DetectResult: true}
		registry.Register(first)
		registry.Register(second)

		// when
		got, err := registry.Detect(context.Background(), "/repo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "first", got.Name())
	})

	t.Run("should fail when nothing matches", func(t *testing.T) {
		t.Parallel()

		registry := adapter.NewRegistry()
		registry.Register(&testdoubles.SpyAdapter{AdapterName: "quiet"})

		_, err := registry.Detect(context.Background(), "/repo")

		require.Error(t, err)
	})

	t.Run("should list names in registration order", func(t *testing.T) {
		t.Parallel()

		registry := adapter.NewRegistry()
		registry.Register(&testdoubles.SpyAdapter{AdapterName: "gradle"})
		registry.Register(&testdoubles.SpyAdapter{AdapterName: "gomod"})
		registry.Register(&testdoubles.SpyAdapter{AdapterName: "cargo"})

		assert.Equal(t, []string{"gradle", "gomod", "cargo"}, registry.Names())
	})
}
