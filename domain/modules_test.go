package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monover/monover/domain"
	"github.com/monover/monover/test/domain/entitybuilders"
)

func TestModuleSet(t *testing.T) {
	t.Parallel()

	t.Run("should retrieve registered modules by id", func(t *testing.T) {
		t.Parallel()

		// given
		set, err := domain.NewModuleSet([]domain.Module{
			entitybuilders.NewModuleBuilder().WithID("core").Build(),
			entitybuilders.NewModuleBuilder().WithID("utils").Build(),
		})
		require.NoError(t, err)

		// when
		m, getErr := set.Get("core")

		// then
		require.NoError(t, getErr)
		assert.Equal(t, "core", m.ID)
		assert.True(t, set.Has("utils"))
		assert.False(t, set.Has("api"))
	})

	t.Run("should return ErrModuleNotFound for unknown ids", func(t *testing.T) {
		t.Parallel()

		// given
		set, err := domain.NewModuleSet(nil)
		require.NoError(t, err)

		// when
		_, getErr := set.Get("ghost")

		// then
		require.Error(t, getErr)
		assert.ErrorIs(t, getErr, domain.ErrModuleNotFound)
	})

	t.Run("should preserve insertion order in IDs", func(t *testing.T) {
		t.Parallel()

		// given
		set, err := domain.NewModuleSet([]domain.Module{
			entitybuilders.NewModuleBuilder().WithID("root").Build(),
			entitybuilders.NewModuleBuilder().WithID("core").Build(),
			entitybuilders.NewModuleBuilder().WithID("api").Build(),
		})
		require.NoError(t, err)

		// when / then
		assert.Equal(t, []string{"root", "core", "api"}, set.IDs())
		assert.Equal(t, 3, set.Len())
	})

	t.Run("should reject duplicate module ids", func(t *testing.T) {
		t.Parallel()

		// given
		modules := []domain.Module{
			entitybuilders.NewModuleBuilder().WithID("core").Build(),
			entitybuilders.NewModuleBuilder().WithID("core").Build(),
		}

		// when
		_, err := domain.NewModuleSet(modules)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate module id")
	})
}
