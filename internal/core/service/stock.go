package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/eclypse/storefront/internal/core/domain"
)

const DefaultLowStockThreshold = 5

// A StockLedger keeps per-product counters: quantity on hand, reservations
// held by open carts and a monotonically growing sold count.
//
// Every operation is atomic under one mutex, so a check and its write
// cannot interleave with another operation.
type StockLedger struct {
	mu        sync.Mutex
	records   map[string]domain.StockRecord
	threshold int
}

func NewStockLedger(threshold int, records map[string]domain.StockRecord) *StockLedger {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	rs := make(map[string]domain.StockRecord, len(records))
	for id, r := range records {
		rs[id] = r
	}
	return &StockLedger{records: rs, threshold: threshold}
}

// SeedRandom initializes the given products with demo stock levels:
// 5-24 on hand, 0-49 sold, nothing reserved.
func SeedRandom(rnd *rand.Rand, productIDs []string) map[string]domain.StockRecord {
	records := make(map[string]domain.StockRecord, len(productIDs))
	for _, id := range productIDs {
		records[id] = domain.StockRecord{
			Quantity: rnd.IntN(20) + 5,
			Sold:     rnd.IntN(50),
		}
	}
	return records
}

// Record returns the stock record for the product,
// or a zero record for unknown products.
func (l *StockLedger) Record(productID string) domain.StockRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[productID]
}

// Available is max(0, quantity-reserved); unknown products have none.
func (l *StockLedger) Available(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[productID].Available()
}

// Reserve holds qty units for an open cart. It fails with
// domain.ErrStockUnavailable when qty exceeds availability and
// has no side effect on that path. Unknown products never gain
// a ledger record.
func (l *StockLedger) Reserve(productID string, qty int) error {
	const op = "StockLedger.Reserve"

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[productID]
	if !ok || qty > r.Available() {
		return fmt.Errorf("%s: %q: %w", op, productID, domain.ErrStockUnavailable)
	}
	r.Reserved += qty
	l.records[productID] = r
	return nil
}

// Release returns reserved units, floored at zero. Over-release is a no-op
// beyond the floor, so releasing twice is safe.
func (l *StockLedger) Release(productID string, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[productID]
	if !ok {
		return
	}
	r.Reserved -= qty
	if r.Reserved < 0 {
		r.Reserved = 0
	}
	l.records[productID] = r
}

// Purchase converts qty units into a sale: quantity drops by qty, the
// reservation drops by min(qty, reserved) and sold grows by qty.
func (l *StockLedger) Purchase(productID string, qty int) error {
	const op = "StockLedger.Purchase"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.purchaseLocked(productID, qty); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PurchaseBatch applies all purchases or none: availability of every item
// is verified before the first write, under a single lock acquisition.
func (l *StockLedger) PurchaseBatch(items map[string]int) error {
	const op = "StockLedger.PurchaseBatch"

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, qty := range items {
		if qty > l.records[id].Available() {
			return fmt.Errorf("%s: %q: %w", op, id, domain.ErrStockUnavailable)
		}
	}
	for id, qty := range items {
		_ = l.purchaseLocked(id, qty)
	}
	return nil
}

func (l *StockLedger) purchaseLocked(productID string, qty int) error {
	r, ok := l.records[productID]
	if !ok || qty > r.Available() {
		return fmt.Errorf("%q: %w", productID, domain.ErrStockUnavailable)
	}
	r.Quantity -= qty
	r.Reserved -= min(qty, r.Reserved)
	r.Sold += qty
	l.records[productID] = r
	return nil
}

// Restock adds qty units and records the restock date.
func (l *StockLedger) Restock(productID string, qty int, date time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.records[productID]
	r.Quantity += qty
	r.RestockDate = date
	l.records[productID] = r
}

// Adjust shifts quantity on hand by delta, floored at zero.
// Used by the background jitter task.
func (l *StockLedger) Adjust(productID string, delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[productID]
	if !ok {
		return
	}
	r.Quantity += delta
	if r.Quantity < 0 {
		r.Quantity = 0
	}
	l.records[productID] = r
}

func (l *StockLedger) Status(productID string) domain.StockStatus {
	available := l.Available(productID)
	switch {
	case available == 0:
		return domain.StockStatusOut
	case available <= l.threshold:
		return domain.StockStatusLow
	default:
		return domain.StockStatusIn
	}
}

// StockMessage renders the user-facing availability line.
func (l *StockLedger) StockMessage(productID string) string {
	switch l.Status(productID) {
	case domain.StockStatusOut:
		r := l.Record(productID)
		if !r.RestockDate.IsZero() {
			return fmt.Sprintf(
				"Esgotado - Reposição prevista para %s",
				r.RestockDate.Format("2006-01-02"),
			)
		}
		return "Produto esgotado"
	case domain.StockStatusLow:
		return fmt.Sprintf("Apenas %d unidades disponíveis", l.Available(productID))
	default:
		return fmt.Sprintf("%d unidades disponíveis", l.Available(productID))
	}
}

// LowStock lists product ids with 0 < available <= threshold.
func (l *StockLedger) LowStock() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var ids []string
	for id, r := range l.records {
		if a := r.Available(); a > 0 && a <= l.threshold {
			ids = append(ids, id)
		}
	}
	return ids
}

// OutOfStock lists product ids with no availability.
func (l *StockLedger) OutOfStock() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var ids []string
	for id, r := range l.records {
		if r.Available() == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// ProductIDs lists every product the ledger tracks.
func (l *StockLedger) ProductIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.records))
	for id := range l.records {
		ids = append(ids, id)
	}
	return ids
}
