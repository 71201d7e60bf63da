package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/port"
)

var _ port.CatalogRepository = ProductsRepository{}

// A ProductsRepository reads the product catalog and the stock
// snapshot backing the in-memory ledger.
type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) ListProducts(
	ctx context.Context,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT
			product_id, name, description, price,
			category, image, rating, review_count
		FROM products
		ORDER BY product_id ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	var ps []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ProductID, &p.Name, &p.Description, &p.Price,
			&p.Category, &p.Image, &p.Rating, &p.ReviewCount,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (r ProductsRepository) ReadStockRecords(
	ctx context.Context,
) (map[string]domain.StockRecord, error) {
	const op = "ProductsRepository.ReadStockRecords"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT product_id, quantity, reserved, sold, restock_date
		FROM products;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	records := make(map[string]domain.StockRecord)
	for rows.Next() {
		var (
			id          string
			rec         domain.StockRecord
			restockDate sql.NullTime
		)
		err := rows.Scan(&id, &rec.Quantity, &rec.Reserved, &rec.Sold, &restockDate)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan: %w", op, err)
		}
		if restockDate.Valid {
			rec.RestockDate = restockDate.Time
		}
		records[id] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}
