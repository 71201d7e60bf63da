package kvstore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/eclypse/storefront/internal/adapter/kvstore"
	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*kvstore.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return kvstore.New(path), path
}

func TestFileStoreCart(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		store, _ := newStore(t)

		lines := []domain.CartLine{
			{
				Product: domain.Product{
					ProductID: "1",
					Name:      "Vestido Eclipse Solar",
					Price:     89.90,
					Category:  "Vestidos",
				},
				Quantity: 2,
				Size:     "M",
				Color:    "Preto",
			},
		}
		require.NoError(t, store.StoreCart(t.Context(), lines))

		got, err := store.LoadCart(t.Context())
		require.NoError(t, err)
		assert.Equal(t, lines, got)
	})

	t.Run("AbsentKeyYieldsEmpty", func(t *testing.T) {
		store, _ := newStore(t)
		got, err := store.LoadCart(t.Context())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UsesStableStorageKey", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.StoreCart(t.Context(), nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var entries map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &entries))
		assert.Contains(t, entries, "eclypse-cart")
	})

	t.Run("WriteLeavesNoPartialFile", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.StoreCart(t.Context(), nil))
		require.NoError(t, store.StoreLanguage(t.Context(), "pt"))

		_, err := os.Stat(path + ".tmp")
		assert.ErrorIs(t, err, os.ErrNotExist)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, json.Valid(data))
	})

	t.Run("CorruptEntryDiscarded", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, os.WriteFile(
			path, []byte(`{"eclypse-cart":"not a list"}`), 0o644,
		))

		got, err := store.LoadCart(t.Context())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("CorruptFileDiscarded", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

		got, err := store.LoadCart(t.Context())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFileStoreSession(t *testing.T) {
	profile := domain.UserProfile{
		UserID:    "USR-1",
		Email:     "maria@exemplo.com",
		Name:      "Maria Silva",
		Favorites: []string{"1", "3"},
	}

	t.Run("RoundTrip", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.StoreSession(t.Context(), profile))

		got, ok, err := store.LoadSession(t.Context())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, profile, got)
	})

	t.Run("AbsentSessionNotOK", func(t *testing.T) {
		store, _ := newStore(t)
		_, ok, err := store.LoadSession(t.Context())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DropRemovesSession", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.StoreSession(t.Context(), profile))
		require.NoError(t, store.DropSession(t.Context()))

		_, ok, err := store.LoadSession(t.Context())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DropKeepsOtherKeys", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.StoreSession(t.Context(), profile))
		require.NoError(t, store.StoreLanguage(t.Context(), "en"))
		require.NoError(t, store.DropSession(t.Context()))

		code, err := store.LoadLanguage(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "en", code)
	})
}

func TestFileStoreLanguage(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.StoreLanguage(t.Context(), "es"))

		code, err := store.LoadLanguage(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "es", code)
	})

	t.Run("AbsentYieldsEmpty", func(t *testing.T) {
		store, _ := newStore(t)
		code, err := store.LoadLanguage(t.Context())
		require.NoError(t, err)
		assert.Empty(t, code)
	})

	t.Run("ReadsPreexistingPreference", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, os.WriteFile(
			path, []byte(`{"eclypse-language":"en"}`), 0o644,
		))

		code, err := store.LoadLanguage(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "en", code)
	})
}
