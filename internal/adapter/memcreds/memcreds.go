// Package memcreds holds the mock credential table the storefront
// authenticates against. It simulates a user backend, nothing more.
package memcreds

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/port"
)

var _ port.CredentialRepository = (*Repository)(nil)

type Repository struct {
	mu    sync.RWMutex
	creds []domain.Credential
}

// New returns a repository preloaded with the demo accounts.
func New() *Repository {
	return &Repository{creds: []domain.Credential{
		{
			Profile: domain.UserProfile{
				UserID: "USR-1",
				Email:  "maria@exemplo.com",
				Name:   "Maria Silva",
			},
			Password: "123456",
		},
		{
			Profile: domain.UserProfile{
				UserID: "USR-2",
				Email:  "joao@exemplo.com",
				Name:   "João Santos",
			},
			Password: "123456",
		},
	}}
}

func (r *Repository) FindByEmail(
	ctx context.Context, email string,
) (domain.Credential, error) {
	const op = "Repository.FindByEmail"

	if err := ctx.Err(); err != nil {
		return domain.Credential{}, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.creds {
		if strings.EqualFold(c.Profile.Email, email) {
			return c, nil
		}
	}
	return domain.Credential{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
}

func (r *Repository) Append(ctx context.Context, c domain.Credential) error {
	const op = "Repository.Append"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, have := range r.creds {
		if strings.EqualFold(have.Profile.Email, c.Profile.Email) {
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicateEmail)
		}
	}
	r.creds = append(r.creds, c)
	return nil
}
