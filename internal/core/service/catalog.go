package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/port"
	"github.com/eclypse/storefront/pkg/retry"
)

// CategoryAll matches every category in a filter.
const CategoryAll = "All"

// A Catalog holds the immutable product list loaded at startup.
type Catalog struct {
	products []domain.Product
}

func NewCatalog(products []domain.Product) Catalog {
	return Catalog{products}
}

// LoadCatalog reads the product list from the repository, retrying while
// the backing store comes up.
func LoadCatalog(ctx context.Context, repo port.CatalogRepository) (Catalog, error) {
	const op = "LoadCatalog"

	retryCfg := retry.RetryConfig{
		MaxAttempts: 5,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
	}

	products, err := retry.DoWithResult(ctx, retryCfg,
		func() ([]domain.Product, error) {
			return repo.ListProducts(ctx)
		})
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", op, err)
	}
	return NewCatalog(products), nil
}

// Products returns the full list in catalog order.
func (c Catalog) Products() []domain.Product {
	return c.products
}

// Product returns the product with the given id.
func (c Catalog) Product(productID string) (domain.Product, error) {
	const op = "Catalog.Product"
	for _, p := range c.products {
		if p.ProductID == productID {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%s: %q: %w", op, productID, domain.ErrNotFound)
}

// Filter selects products whose name or description contains term
// (case-insensitive) and whose category matches. Category "All" matches
// everything. The result preserves input order; the function is pure.
func Filter(products []domain.Product, term, category string) []domain.Product {
	term = strings.ToLower(term)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != CategoryAll && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c Catalog) Filter(term, category string) []domain.Product {
	return Filter(c.products, term, category)
}

// Categories lists "All" followed by distinct categories in first-seen order.
func (c Catalog) Categories() []string {
	seen := make(map[string]bool)
	categories := []string{CategoryAll}
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}

// Featured returns the first n catalog products.
func (c Catalog) Featured(n int) []domain.Product {
	if n > len(c.products) {
		n = len(c.products)
	}
	return c.products[:n]
}
