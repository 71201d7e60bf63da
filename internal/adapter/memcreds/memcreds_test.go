package memcreds_test

import (
	"testing"

	"github.com/eclypse/storefront/internal/adapter/memcreds"
	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	t.Run("SeededDemoAccount", func(t *testing.T) {
		repo := memcreds.New()

		c, err := repo.FindByEmail(t.Context(), "maria@exemplo.com")
		require.NoError(t, err)
		assert.Equal(t, "Maria Silva", c.Profile.Name)
		assert.Equal(t, "123456", c.Password)
	})

	t.Run("LookupIgnoresCase", func(t *testing.T) {
		repo := memcreds.New()

		c, err := repo.FindByEmail(t.Context(), "MARIA@exemplo.com")
		require.NoError(t, err)
		assert.Equal(t, "USR-1", c.Profile.UserID)
	})

	t.Run("UnknownEmailNotFound", func(t *testing.T) {
		repo := memcreds.New()

		_, err := repo.FindByEmail(t.Context(), "ghost@exemplo.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("AppendThenFind", func(t *testing.T) {
		repo := memcreds.New()
		cred := domain.Credential{
			Profile: domain.UserProfile{
				UserID: "USR-3",
				Email:  "ana@exemplo.com",
				Name:   "Ana Costa",
			},
			Password: "654321",
		}
		require.NoError(t, repo.Append(t.Context(), cred))

		got, err := repo.FindByEmail(t.Context(), "ana@exemplo.com")
		require.NoError(t, err)
		assert.Equal(t, cred, got)
	})

	t.Run("AppendDuplicateFails", func(t *testing.T) {
		repo := memcreds.New()
		err := repo.Append(t.Context(), domain.Credential{
			Profile: domain.UserProfile{Email: "joao@exemplo.com"},
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}
