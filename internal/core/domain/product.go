package domain

import "time"

type (
	Product struct {
		ProductID   string
		Name        string
		Description string
		Price       float64
		Category    string
		Image       string
		Rating      float64
		ReviewCount int
	}

	StockRecord struct {
		Quantity    int
		Reserved    int
		Sold        int
		RestockDate time.Time
	}
)

// Available is quantity on hand minus current reservations, never negative.
func (r StockRecord) Available() int {
	a := r.Quantity - r.Reserved
	if a < 0 {
		return 0
	}
	return a
}

type StockStatus string

const (
	StockStatusOut StockStatus = "out_of_stock"
	StockStatusLow StockStatus = "low_stock"
	StockStatusIn  StockStatus = "in_stock"
)

// A StockAdjustment describes one applied change to a stock record.
type StockAdjustment struct {
	ProductID     string
	QuantityDelta int
	SoldDelta     int
}
