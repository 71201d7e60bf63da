package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCartStore struct {
	mock.Mock
}

func (s *MockCartStore) StoreCart(ctx context.Context, lines []domain.CartLine) error {
	args := s.Called(ctx, lines)
	return args.Error(0)
}

func (s *MockCartStore) LoadCart(ctx context.Context) ([]domain.CartLine, error) {
	args := s.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.CartLine), args.Error(1)
	}
	return nil, args.Error(1)
}

func emptyStore(t *testing.T) *MockCartStore {
	t.Helper()
	store := new(MockCartStore)
	store.On("LoadCart", mock.Anything).Return(nil, nil)
	store.On("StoreCart", mock.Anything, mock.Anything).Return(nil)
	return store
}

var (
	productA = domain.Product{ProductID: "1", Name: "Eclipse Solar", Price: 89.90, Category: "Coleção Eclipse"}
	productB = domain.Product{ProductID: "2", Name: "Lua Crescente", Price: 75.00, Category: "Coleção Lunar"}
)

func TestCartAdd(t *testing.T) {
	t.Run("RepeatedAddsMergeIntoOneLine", func(t *testing.T) {
		cart := service.NewCart(t.Context(), emptyStore(t))

		require.NoError(t, cart.Add(t.Context(), productA, 1))
		require.NoError(t, cart.Add(t.Context(), productA, 2))
		require.NoError(t, cart.Add(t.Context(), productA, 3))

		lines := cart.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, productA.ProductID, lines[0].Product.ProductID)
		assert.Equal(t, 6, lines[0].Quantity)
	})

	t.Run("SnapshotTakenAtAddTime", func(t *testing.T) {
		cart := service.NewCart(t.Context(), emptyStore(t))
		require.NoError(t, cart.Add(t.Context(), productA, 1))

		line, ok := cart.Line(productA.ProductID)
		require.True(t, ok)
		assert.Equal(t, productA, line.Product)
	})

	t.Run("VariantSelectionRidesOnLine", func(t *testing.T) {
		cart := service.NewCart(t.Context(), emptyStore(t))

		require.NoError(t, cart.Add(
			t.Context(), productA, 1,
			service.WithSize("M"), service.WithColor("Preto"),
		))

		line, ok := cart.Line(productA.ProductID)
		require.True(t, ok)
		assert.Equal(t, "M", line.Size)
		assert.Equal(t, "Preto", line.Color)

		require.NoError(t, cart.Add(
			t.Context(), productA, 1, service.WithSize("L"),
		))

		lines := cart.Lines()
		require.Len(t, lines, 1, "variants never split the line")
		assert.Equal(t, "L", lines[0].Size)
		assert.Equal(t, "Preto", lines[0].Color)
	})

	t.Run("ZeroQuantityClampsToOne", func(t *testing.T) {
		cart := service.NewCart(t.Context(), emptyStore(t))
		require.NoError(t, cart.Add(t.Context(), productA, 0))

		line, _ := cart.Line(productA.ProductID)
		assert.Equal(t, 1, line.Quantity)
	})

	t.Run("EveryMutationPersists", func(t *testing.T) {
		store := emptyStore(t)
		cart := service.NewCart(t.Context(), store)

		require.NoError(t, cart.Add(t.Context(), productA, 1))
		require.NoError(t, cart.SetQuantity(t.Context(), productA.ProductID, 4))
		require.NoError(t, cart.Remove(t.Context(), productA.ProductID))

		store.AssertNumberOfCalls(t, "StoreCart", 3)
	})
}

func TestCartSetQuantity(t *testing.T) {
	t.Run("ClampsToMinimumOne", func(t *testing.T) {
		cart := service.NewCart(t.Context(), emptyStore(t))
		require.NoError(t, cart.Add(t.Context(), productA, 3))

		require.NoError(t, cart.SetQuantity(t.Context(), productA.ProductID, 0))

		line, ok := cart.Line(productA.ProductID)
		require.True(t, ok, "setting quantity never removes the line")
		assert.Equal(t, 1, line.Quantity)
	})

	t.Run("AbsentLineIsNoop", func(t *testing.T) {
		store := new(MockCartStore)
		store.On("LoadCart", mock.Anything).Return(nil, nil)
		cart := service.NewCart(t.Context(), store)

		require.NoError(t, cart.SetQuantity(t.Context(), "ghost", 5))
		store.AssertNotCalled(t, "StoreCart", mock.Anything, mock.Anything)
	})
}

func TestCartTotals(t *testing.T) {
	t.Run("EmptyCartIsZero", func(t *testing.T) {
		cart := service.NewCart(t.Context(), emptyStore(t))
		assert.Equal(t, 0.0, cart.Total())
		assert.Equal(t, 0, cart.ItemCount())
	})

	t.Run("SumOfPriceTimesQuantity", func(t *testing.T) {
		cart := service.NewCart(t.Context(), emptyStore(t))
		a := domain.Product{ProductID: "a", Price: 10.00}
		b := domain.Product{ProductID: "b", Price: 25.50}

		require.NoError(t, cart.Add(t.Context(), a, 2))
		require.NoError(t, cart.Add(t.Context(), b, 1))

		assert.Equal(t, 45.50, cart.Total())
		assert.Equal(t, 3, cart.ItemCount(), "badge counts units, not lines")
	})
}

func TestCartPersistence(t *testing.T) {
	t.Run("ReloadReproducesLines", func(t *testing.T) {
		stored := []domain.CartLine{
			{Product: productA, Quantity: 2},
			{Product: productB, Quantity: 1},
		}
		store := new(MockCartStore)
		store.On("LoadCart", mock.Anything).Return(stored, nil)

		cart := service.NewCart(t.Context(), store)
		assert.Equal(t, stored, cart.Lines())
	})

	t.Run("CorruptStorageFallsBackToEmpty", func(t *testing.T) {
		store := new(MockCartStore)
		store.On("LoadCart", mock.Anything).Return(nil, errors.New("unexpected end of JSON input"))

		cart := service.NewCart(t.Context(), store)
		assert.Empty(t, cart.Lines())
		assert.Equal(t, 0, cart.ItemCount())
	})

	t.Run("StoreFailureSurfacesButKeepsMutation", func(t *testing.T) {
		store := new(MockCartStore)
		store.On("LoadCart", mock.Anything).Return(nil, nil)
		store.On("StoreCart", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		cart := service.NewCart(t.Context(), store)
		err := cart.Add(t.Context(), productA, 1)
		require.Error(t, err)
		assert.Equal(t, 1, cart.ItemCount())
	})
}
