package service_test

import (
	"testing"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{ProductID: "1", Name: "Eclipse Solar", Description: "Peça única inspirada no eclipse solar.", Category: "Coleção Eclipse", Price: 89.90},
		{ProductID: "2", Name: "Lua Crescente", Description: "Fase de renovação e crescimento.", Category: "Coleção Lunar", Price: 75.00},
		{ProductID: "3", Name: "Via Láctea", Description: "Homenagem à vastidão do universo.", Category: "Coleção Cósmica", Price: 120.00},
	}
}

func TestFilter(t *testing.T) {
	products := testProducts()

	t.Run("EmptyTermAllCategoryReturnsEverything", func(t *testing.T) {
		got := service.Filter(products, "", service.CategoryAll)
		assert.Equal(t, products, got, "full list in original order")
	})

	t.Run("TermMatchesNameCaseInsensitive", func(t *testing.T) {
		got := service.Filter(products, "ECLIPSE", service.CategoryAll)
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ProductID)
	})

	t.Run("TermMatchesDescription", func(t *testing.T) {
		got := service.Filter(products, "universo", service.CategoryAll)
		require.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ProductID)
	})

	t.Run("CategoryNarrows", func(t *testing.T) {
		got := service.Filter(products, "", "Coleção Lunar")
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ProductID)
	})

	t.Run("TermAndCategoryCombine", func(t *testing.T) {
		got := service.Filter(products, "eclipse", "Coleção Lunar")
		assert.Empty(t, got)
	})

	t.Run("StableOrder", func(t *testing.T) {
		got := service.Filter(products, "o", service.CategoryAll)
		var ids []string
		for _, p := range got {
			ids = append(ids, p.ProductID)
		}
		assert.Equal(t, []string{"1", "2", "3"}, ids)
	})
}

func TestCatalog(t *testing.T) {
	catalog := service.NewCatalog(testProducts())

	t.Run("Categories", func(t *testing.T) {
		want := []string{
			service.CategoryAll,
			"Coleção Eclipse", "Coleção Lunar", "Coleção Cósmica",
		}
		assert.Equal(t, want, catalog.Categories())
	})

	t.Run("Featured", func(t *testing.T) {
		assert.Len(t, catalog.Featured(2), 2)
		assert.Len(t, catalog.Featured(10), 3)
	})

	t.Run("ProductLookup", func(t *testing.T) {
		p, err := catalog.Product("2")
		require.NoError(t, err)
		assert.Equal(t, "Lua Crescente", p.Name)

		_, err = catalog.Product("ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
