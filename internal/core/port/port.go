package port

import (
	"context"

	"github.com/eclypse/storefront/internal/core/domain"
)

type CartStore interface {
	StoreCart(context.Context, []domain.CartLine) error
	LoadCart(context.Context) ([]domain.CartLine, error)
}

type SessionStore interface {
	StoreSession(context.Context, domain.UserProfile) error

	// LoadSession returns ok=false when no session is persisted.
	LoadSession(context.Context) (profile domain.UserProfile, ok bool, err error)
	DropSession(context.Context) error
}

type LanguageStore interface {
	StoreLanguage(context.Context, string) error

	// LoadLanguage returns an empty string when no preference is persisted.
	LoadLanguage(context.Context) (string, error)
}

// A CredentialRepository is the injected stand-in for a user store.
type CredentialRepository interface {
	// FindByEmail returns domain.ErrNotFound for unknown emails.
	FindByEmail(ctx context.Context, email string) (domain.Credential, error)
	Append(ctx context.Context, c domain.Credential) error
}

type CatalogRepository interface {
	ListProducts(context.Context) ([]domain.Product, error)
	ReadStockRecords(context.Context) (map[string]domain.StockRecord, error)
}

type OrderEventsProducer interface {
	ProduceOrder(context.Context, domain.Order) error
}

type StockEventsProducer interface {
	ProduceAdjustments(context.Context, []domain.StockAdjustment) error
}
