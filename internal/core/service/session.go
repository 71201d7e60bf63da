package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/port"
)

// A Session authenticates against the injected credential repository and
// keeps the active profile, persisted through the session store.
// It simulates backend latency on login and register.
type Session struct {
	mu      sync.Mutex
	creds   port.CredentialRepository
	store   port.SessionStore
	langs   port.LanguageStore
	latency time.Duration
	user    *domain.UserProfile
}

// NewSession restores a persisted session if one exists; corrupt session
// data is dropped and the user starts logged out.
func NewSession(
	ctx context.Context,
	creds port.CredentialRepository,
	store port.SessionStore,
	langs port.LanguageStore,
	latency time.Duration,
) *Session {
	const op = "NewSession"
	log := slog.With("op", op)

	s := &Session{creds: creds, store: store, langs: langs, latency: latency}

	profile, ok, err := store.LoadSession(ctx)
	if err != nil {
		log.Warn("failed to load stored session, starting logged out", "err", err)
		if err := store.DropSession(ctx); err != nil {
			log.Warn("failed to drop corrupt session", "err", err)
		}
		return s
	}
	if ok {
		s.user = &profile
	}
	return s
}

// Current returns the active profile, ok=false when logged out.
func (s *Session) Current() (domain.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return domain.UserProfile{}, false
	}
	return *s.user, true
}

// Login matches email and password against the credential table.
// The returned profile never carries the password.
func (s *Session) Login(ctx context.Context, email, password string) (domain.UserProfile, error) {
	const op = "Session.Login"

	if err := s.simulateLatency(ctx); err != nil {
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserProfile{}, fmt.Errorf("%s: %w", op, domain.ErrBadCredentials)
		}
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	if cred.Password != password {
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, domain.ErrBadCredentials)
	}

	return cred.Profile, s.activate(ctx, cred.Profile, op)
}

// Register appends a new credential entry and logs the user in.
// A known email fails with domain.ErrDuplicateEmail.
func (s *Session) Register(ctx context.Context, name, email, password string) (domain.UserProfile, error) {
	const op = "Session.Register"

	if err := s.simulateLatency(ctx); err != nil {
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	_, err := s.creds.FindByEmail(ctx, email)
	if err == nil {
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, domain.ErrDuplicateEmail)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	profile := domain.UserProfile{
		UserID: fmt.Sprintf("USR-%d", time.Now().UnixMilli()),
		Email:  email,
		Name:   name,
	}
	err = s.creds.Append(ctx, domain.Credential{Profile: profile, Password: password})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	return profile, s.activate(ctx, profile, op)
}

// Logout clears the session and its persisted copy unconditionally.
func (s *Session) Logout(ctx context.Context) error {
	const op = "Session.Logout"

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.DropSession(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateProfile overwrites name and email when non-empty.
func (s *Session) UpdateProfile(ctx context.Context, name, email string) (domain.UserProfile, error) {
	const op = "Session.UpdateProfile"

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, domain.ErrNotAuthenticated)
	}
	if name != "" {
		s.user.Name = name
	}
	if email != "" {
		s.user.Email = email
	}
	profile := *s.user
	s.mu.Unlock()

	if err := s.store.StoreSession(ctx, profile); err != nil {
		return profile, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// ToggleFavorite adds the product to favorites, or removes it when present.
func (s *Session) ToggleFavorite(ctx context.Context, productID string) (domain.UserProfile, error) {
	const op = "Session.ToggleFavorite"

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domain.UserProfile{}, fmt.Errorf("%s: %w", op, domain.ErrNotAuthenticated)
	}
	if s.user.HasFavorite(productID) {
		favorites := s.user.Favorites[:0:0]
		for _, id := range s.user.Favorites {
			if id != productID {
				favorites = append(favorites, id)
			}
		}
		s.user.Favorites = favorites
	} else {
		s.user.Favorites = append(s.user.Favorites, productID)
	}
	profile := *s.user
	s.mu.Unlock()

	if err := s.store.StoreSession(ctx, profile); err != nil {
		return profile, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// Language returns the persisted preference, defaulting to pt.
func (s *Session) Language(ctx context.Context) string {
	const op = "Session.Language"

	code, err := s.langs.LoadLanguage(ctx)
	if err != nil {
		slog.Warn("failed to load language preference", "op", op, "err", err)
		return domain.LangPT
	}
	if !domain.SupportedLanguage(code) {
		return domain.LangPT
	}
	return code
}

// SetLanguage persists a supported two-letter language code.
func (s *Session) SetLanguage(ctx context.Context, code string) error {
	const op = "Session.SetLanguage"

	if !domain.SupportedLanguage(code) {
		return fmt.Errorf("%s: %q: %w", op, code, domain.ErrUnknownLanguage)
	}
	if err := s.langs.StoreLanguage(ctx, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Session) activate(ctx context.Context, profile domain.UserProfile, op string) error {
	s.mu.Lock()
	s.user = &profile
	s.mu.Unlock()

	if err := s.store.StoreSession(ctx, profile); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Session) simulateLatency(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
