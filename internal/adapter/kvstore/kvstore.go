// Package kvstore persists client-side state in a single JSON file,
// keeping the key layout the web storefront used in browser storage.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eclypse/storefront/internal/core/domain"
	"github.com/eclypse/storefront/internal/core/port"
)

const (
	cartKey = "eclypse-cart"
	userKey = "eclypse-user"
	langKey = "eclypse-language"
)

var (
	_ port.CartStore     = (*FileStore)(nil)
	_ port.SessionStore  = (*FileStore)(nil)
	_ port.LanguageStore = (*FileStore)(nil)
)

// A FileStore maps storage keys to JSON values in one file on disk.
// Corrupt values are discarded on read, matching how the storefront
// treats unparseable browser storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func New(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) StoreCart(_ context.Context, lines []domain.CartLine) error {
	const op = "FileStore.StoreCart"

	dto := make([]cartLineDTO, 0, len(lines))
	for _, l := range lines {
		dto = append(dto, cartLineToDTO(l))
	}
	if err := s.set(cartKey, dto); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStore) LoadCart(_ context.Context) ([]domain.CartLine, error) {
	const op = "FileStore.LoadCart"

	var dto []cartLineDTO
	ok, err := s.get(cartKey, &dto)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}

	lines := make([]domain.CartLine, 0, len(dto))
	for _, d := range dto {
		lines = append(lines, d.toDomain())
	}
	return lines, nil
}

func (s *FileStore) StoreSession(_ context.Context, p domain.UserProfile) error {
	const op = "FileStore.StoreSession"

	if err := s.set(userKey, profileToDTO(p)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStore) LoadSession(_ context.Context) (domain.UserProfile, bool, error) {
	const op = "FileStore.LoadSession"

	var dto profileDTO
	ok, err := s.get(userKey, &dto)
	if err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return domain.UserProfile{}, false, nil
	}
	return dto.toDomain(), true, nil
}

func (s *FileStore) DropSession(_ context.Context) error {
	const op = "FileStore.DropSession"

	if err := s.delete(userKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStore) StoreLanguage(_ context.Context, code string) error {
	const op = "FileStore.StoreLanguage"

	if err := s.set(langKey, code); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStore) LoadLanguage(_ context.Context) (string, error) {
	const op = "FileStore.LoadLanguage"

	var code string
	ok, err := s.get(langKey, &code)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", nil
	}
	return code, nil
}

func (s *FileStore) set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readLocked()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	entries[key] = raw
	return s.writeLocked(entries)
}

// get reports ok=false for absent keys. A value that fails to
// unmarshal is dropped from the file and reported as absent.
func (s *FileStore) get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readLocked()
	raw, ok := entries[key]
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("discarding corrupt state entry", "key", key, "err", err)
		delete(entries, key)
		if werr := s.writeLocked(entries); werr != nil {
			return false, werr
		}
		return false, nil
	}
	return true, nil
}

func (s *FileStore) delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readLocked()
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.writeLocked(entries)
}

func (s *FileStore) readLocked() map[string]json.RawMessage {
	entries := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("reading state file", "path", s.path, "err", err)
		}
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("discarding corrupt state file", "path", s.path, "err", err)
		return make(map[string]json.RawMessage)
	}
	return entries
}

func (s *FileStore) writeLocked(entries map[string]json.RawMessage) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	// The rename keeps the previous state intact if the write dies halfway.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

type cartLineDTO struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Quantity    int     `json:"quantity"`
	Size        string  `json:"size,omitempty"`
	Color       string  `json:"color,omitempty"`
}

func cartLineToDTO(l domain.CartLine) cartLineDTO {
	return cartLineDTO{
		ProductID:   l.Product.ProductID,
		Name:        l.Product.Name,
		Description: l.Product.Description,
		Price:       l.Product.Price,
		Category:    l.Product.Category,
		Image:       l.Product.Image,
		Rating:      l.Product.Rating,
		ReviewCount: l.Product.ReviewCount,
		Quantity:    l.Quantity,
		Size:        l.Size,
		Color:       l.Color,
	}
}

func (d cartLineDTO) toDomain() domain.CartLine {
	return domain.CartLine{
		Product: domain.Product{
			ProductID:   d.ProductID,
			Name:        d.Name,
			Description: d.Description,
			Price:       d.Price,
			Category:    d.Category,
			Image:       d.Image,
			Rating:      d.Rating,
			ReviewCount: d.ReviewCount,
		},
		Quantity: d.Quantity,
		Size:     d.Size,
		Color:    d.Color,
	}
}

type (
	profileDTO struct {
		ID        string     `json:"id"`
		Email     string     `json:"email"`
		Name      string     `json:"name"`
		Favorites []string   `json:"favorites"`
		Orders    []orderDTO `json:"orders"`
	}

	orderDTO struct {
		ID            string        `json:"id"`
		CreatedAt     time.Time     `json:"createdAt"`
		Status        string        `json:"status"`
		Items         []cartLineDTO `json:"items"`
		Subtotal      float64       `json:"subtotal"`
		Shipping      float64       `json:"shipping"`
		Tax           float64       `json:"tax"`
		Total         float64       `json:"total"`
		PaymentMethod string        `json:"paymentMethod"`
		CardBrand     string        `json:"cardBrand,omitempty"`
		CardLast4     string        `json:"cardLast4,omitempty"`
	}
)

func profileToDTO(p domain.UserProfile) profileDTO {
	orders := make([]orderDTO, 0, len(p.Orders))
	for _, o := range p.Orders {
		items := make([]cartLineDTO, 0, len(o.Lines))
		for _, l := range o.Lines {
			items = append(items, cartLineToDTO(l))
		}
		orders = append(orders, orderDTO{
			ID:            o.OrderID,
			CreatedAt:     o.CreatedAt,
			Status:        o.Status,
			Items:         items,
			Subtotal:      o.Totals.Subtotal,
			Shipping:      o.Totals.Shipping,
			Tax:           o.Totals.Tax,
			Total:         o.Totals.Total,
			PaymentMethod: string(o.Payment.Method),
			CardBrand:     o.Payment.CardBrand,
			CardLast4:     o.Payment.CardLast4,
		})
	}
	return profileDTO{
		ID:        p.UserID,
		Email:     p.Email,
		Name:      p.Name,
		Favorites: p.Favorites,
		Orders:    orders,
	}
}

func (d profileDTO) toDomain() domain.UserProfile {
	orders := make([]domain.Order, 0, len(d.Orders))
	for _, o := range d.Orders {
		lines := make([]domain.CartLine, 0, len(o.Items))
		for _, i := range o.Items {
			lines = append(lines, i.toDomain())
		}
		orders = append(orders, domain.Order{
			OrderID:   o.ID,
			CreatedAt: o.CreatedAt,
			Status:    o.Status,
			Lines:     lines,
			Totals: domain.Totals{
				Subtotal: o.Subtotal,
				Shipping: o.Shipping,
				Tax:      o.Tax,
				Total:    o.Total,
			},
			Payment: domain.PaymentDescriptor{
				Method:    domain.PaymentMethod(o.PaymentMethod),
				CardBrand: o.CardBrand,
				CardLast4: o.CardLast4,
			},
		})
	}
	return domain.UserProfile{
		UserID:    d.ID,
		Email:     d.Email,
		Name:      d.Name,
		Favorites: d.Favorites,
		Orders:    orders,
	}
}
