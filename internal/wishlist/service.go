package wishlist

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/products"
	"github.com/angelmondragon/ecofinds-backend/internal/storage"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

const wishlistKeyPrefix = "ecofinds_wishlist:"

// WishlistKey is the slot key holding the wishlist for sessionID.
func WishlistKey(sessionID string) string {
	return wishlistKeyPrefix + sessionID
}

// Service keeps a per-session list of saved products, one entry per product id.
type Service struct {
	slot storage.Slot
	logg *logger.Logger
	mu   sync.Mutex
}

func NewService(slot storage.Slot, logg *logger.Logger) (*Service, error) {
	if slot == nil {
		return nil, errors.New("wishlist slot is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{slot: slot, logg: logg}, nil
}

// List returns saved products in the order they were added.
func (s *Service) List(ctx context.Context, sessionID string) []products.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, normalizeSession(sessionID))
}

// Add saves product unless it is already present.
func (s *Service) Add(ctx context.Context, sessionID string, product products.Product) ([]products.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	sessionID = normalizeSession(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx, sessionID)
	if indexOf(items, product.ID) >= 0 {
		return items, nil
	}
	items = append(items, product)
	if err := s.save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove drops the product if present.
func (s *Service) Remove(ctx context.Context, sessionID string, id products.ID) ([]products.Product, error) {
	sessionID = normalizeSession(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx, sessionID)
	idx := indexOf(items, id)
	if idx < 0 {
		return items, nil
	}
	items = append(items[:idx], items[idx+1:]...)
	if err := s.save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// MoveToCart removes the product from the wishlist and then adds one unit of it
// to store. The cart is untouched when the wishlist cannot be saved.
func (s *Service) MoveToCart(ctx context.Context, sessionID string, id products.ID, store *cart.Store) error {
	sessionID = normalizeSession(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load(ctx, sessionID)
	idx := indexOf(items, id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not on wishlist").
			WithDetails(map[string]any{"productId": id})
	}
	product := items[idx]
	remaining := slices.Delete(slices.Clone(items), idx, idx+1)
	if err := s.save(ctx, sessionID, remaining); err != nil {
		return err
	}
	if err := store.Add(ctx, product, 1); err != nil {
		if restoreErr := s.save(ctx, sessionID, items); restoreErr != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "wishlist restore failed after cart rejected item", restoreErr)
		}
		return err
	}
	return nil
}

func (s *Service) load(ctx context.Context, sessionID string) []products.Product {
	var items []products.Product
	err := storage.ReadJSON(ctx, s.slot, WishlistKey(sessionID), &items)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "wishlist unreadable; starting empty", err)
		items = nil
	}
	if items == nil {
		items = []products.Product{}
	}
	return items
}

func (s *Service) save(ctx context.Context, sessionID string, items []products.Product) error {
	if err := storage.WriteJSON(ctx, s.slot, WishlistKey(sessionID), items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "wishlist could not be saved")
	}
	return nil
}

func indexOf(items []products.Product, id products.ID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func normalizeSession(sessionID string) string {
	return strings.TrimSpace(sessionID)
}
