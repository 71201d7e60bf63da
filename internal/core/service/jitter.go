package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
)

// A StockJitter perturbs a random product's quantity by -1, 0 or +1 on
// every tick, simulating warehouse drift. The tick channel is injected so
// tests drive it directly instead of waiting on a real timer; writes go
// through the ledger and stay serialized with reserve/purchase calls.
type StockJitter struct {
	ledger *StockLedger
	ticks  <-chan struct{}
	rnd    *rand.Rand
}

func NewStockJitter(ledger *StockLedger, ticks <-chan struct{}, rnd *rand.Rand) StockJitter {
	return StockJitter{ledger: ledger, ticks: ticks, rnd: rnd}
}

func (j StockJitter) Run(ctx context.Context) {
	const op = "StockJitter.Run"
	log := slog.With("op", op)

	log.Info("running")
	for {
		select {
		case <-ctx.Done():
			log.Info("stopped")
			return
		case <-j.ticks:
			j.tick()
		}
	}
}

func (j StockJitter) tick() {
	ids := j.ledger.ProductIDs()
	if len(ids) == 0 {
		return
	}
	id := ids[j.rnd.IntN(len(ids))]
	delta := j.rnd.IntN(3) - 1
	if delta != 0 {
		j.ledger.Adjust(id, delta)
	}
}
