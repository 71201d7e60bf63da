package service_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(records map[string]domain.StockRecord) *service.StockLedger {
	return service.NewStockLedger(5, records)
}

func TestStockLedgerAvailable(t *testing.T) {
	t.Run("UnknownProduct", func(t *testing.T) {
		l := newLedger(nil)
		assert.Equal(t, 0, l.Available("ghost"))
	})

	t.Run("ReservedSubtracted", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 10, Reserved: 3},
		})
		assert.Equal(t, 7, l.Available("1"))
	})

	t.Run("NeverNegative", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 2, Reserved: 5},
		})
		assert.Equal(t, 0, l.Available("1"))
	})
}

func TestStockLedgerReserveRelease(t *testing.T) {
	t.Run("ReserveThenReleaseRestores", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 10},
		})
		before := l.Available("1")

		require.NoError(t, l.Reserve("1", 4))
		assert.Equal(t, before-4, l.Available("1"))

		l.Release("1", 4)
		assert.Equal(t, before, l.Available("1"))
	})

	t.Run("UnknownProductStaysUntracked", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 10},
		})

		err := l.Reserve("ghost", 0)
		require.ErrorIs(t, err, domain.ErrStockUnavailable)
		assert.NotContains(t, l.OutOfStock(), "ghost")
	})

	t.Run("ReserveBeyondAvailableFails", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 3},
		})
		err := l.Reserve("1", 4)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStockUnavailable)
		assert.Equal(t, 3, l.Available("1"), "failed reserve must not mutate")
	})

	t.Run("OverReleaseFloorsAtZero", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 5, Reserved: 1},
		})
		l.Release("1", 10)
		assert.Equal(t, 0, l.Record("1").Reserved)
		assert.Equal(t, 5, l.Available("1"))
	})
}

func TestStockLedgerPurchase(t *testing.T) {
	t.Run("MovesQuantityToSold", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 10, Reserved: 2, Sold: 7},
		})
		require.NoError(t, l.Purchase("1", 2))

		r := l.Record("1")
		assert.Equal(t, 8, r.Quantity)
		assert.Equal(t, 0, r.Reserved)
		assert.Equal(t, 9, r.Sold)
	})

	t.Run("NeverExceedsAvailable", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 5, Reserved: 4},
		})
		err := l.Purchase("1", 2)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStockUnavailable)

		r := l.Record("1")
		assert.Equal(t, 5, r.Quantity)
		assert.Equal(t, 0, r.Sold)
	})

	t.Run("ReservedDropsByAtMostQty", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 10, Reserved: 1},
		})
		require.NoError(t, l.Purchase("1", 3))

		r := l.Record("1")
		assert.Equal(t, 7, r.Quantity)
		assert.Equal(t, 0, r.Reserved)
		assert.Equal(t, 3, r.Sold)
	})

	t.Run("BatchAllOrNothing", func(t *testing.T) {
		l := newLedger(map[string]domain.StockRecord{
			"1": {Quantity: 10},
			"2": {Quantity: 1},
		})
		err := l.PurchaseBatch(map[string]int{"1": 2, "2": 2})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStockUnavailable)
		assert.Equal(t, 10, l.Record("1").Quantity, "no partial purchase")

		require.NoError(t, l.PurchaseBatch(map[string]int{"1": 2, "2": 1}))
		assert.Equal(t, 8, l.Record("1").Quantity)
		assert.Equal(t, 0, l.Record("2").Quantity)
	})
}

func TestStockLedgerRestock(t *testing.T) {
	l := newLedger(map[string]domain.StockRecord{
		"1": {Quantity: 0, Sold: 12},
	})
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	l.Restock("1", 15, date)

	r := l.Record("1")
	assert.Equal(t, 15, r.Quantity)
	assert.Equal(t, date, r.RestockDate)
	assert.Equal(t, 12, r.Sold, "sold is monotonic")
}

func TestStockLedgerStatus(t *testing.T) {
	l := newLedger(map[string]domain.StockRecord{
		"out":  {Quantity: 2, Reserved: 2},
		"low":  {Quantity: 5},
		"full": {Quantity: 6},
	})

	assert.Equal(t, domain.StockStatusOut, l.Status("out"))
	assert.Equal(t, domain.StockStatusLow, l.Status("low"))
	assert.Equal(t, domain.StockStatusIn, l.Status("full"))
	assert.Equal(t, domain.StockStatusOut, l.Status("ghost"))

	assert.ElementsMatch(t, []string{"low"}, l.LowStock())
	assert.ElementsMatch(t, []string{"out"}, l.OutOfStock())
}

func TestStockLedgerAdjust(t *testing.T) {
	l := newLedger(map[string]domain.StockRecord{
		"1": {Quantity: 1},
	})
	l.Adjust("1", -1)
	assert.Equal(t, 0, l.Record("1").Quantity)

	l.Adjust("1", -1)
	assert.Equal(t, 0, l.Record("1").Quantity, "floored at zero")

	l.Adjust("1", 2)
	assert.Equal(t, 2, l.Record("1").Quantity)

	l.Adjust("ghost", 1)
	assert.Equal(t, 0, l.Record("ghost").Quantity, "unknown products stay untracked")
}

func TestSeedRandom(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	records := service.SeedRandom(rnd, []string{"1", "2", "3"})

	require.Len(t, records, 3)
	for id, r := range records {
		assert.GreaterOrEqual(t, r.Quantity, 5, id)
		assert.LessOrEqual(t, r.Quantity, 24, id)
		assert.GreaterOrEqual(t, r.Sold, 0, id)
		assert.Less(t, r.Sold, 50, id)
		assert.Zero(t, r.Reserved, id)
	}
}
