package cart

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/products"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// DefaultPreviewLimit is how many entries the mini-cart shows.
const DefaultPreviewLimit = 3

// MaxQuantity caps the quantity a single entry can hold.
const MaxQuantity = 9999

// Persister loads and saves a cart's entry list. Load never fails; it returns
// an empty list when nothing usable is stored.
type Persister interface {
	Load(ctx context.Context) []Entry
	Save(ctx context.Context, entries []Entry) error
}

// Store is the authoritative in-memory cart for one session. Every mutation is
// flushed to the persister before the call returns. A failed flush is logged and
// the in-memory state stays authoritative for the rest of the process.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	persist Persister
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// Option customises a Store.
type Option func(*Store)

func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) {
		if logg != nil {
			s.logg = logg
		}
	}
}

func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore hydrates a store from persist. A nil persister keeps the cart in memory only.
func NewStore(ctx context.Context, persist Persister, opts ...Option) *Store {
	s := &Store{persist: persist, logg: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if persist != nil {
		s.entries = persist.Load(ctx)
	}
	if s.entries == nil {
		s.entries = []Entry{}
	}
	return s
}

// Add merges quantity into the entry for product.ID, or appends a new entry
// holding a copy of product.
func (s *Store) Add(ctx context.Context, product products.Product, quantity int) error {
	if quantity <= 0 || quantity > MaxQuantity {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", MaxQuantity).
			WithDetails(map[string]any{"quantity": quantity})
	}
	if product.ID.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(product.ID); idx >= 0 {
		existing := s.entries[idx].Quantity
		if existing > MaxQuantity-quantity {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity would exceed %d", MaxQuantity).
				WithDetails(map[string]any{"productId": product.ID, "quantity": existing, "requested": quantity})
		}
		s.entries[idx].Quantity = existing + quantity
	} else {
		s.entries = append(s.entries, Entry{Product: product, Quantity: quantity})
	}
	s.commit(ctx, "add")
	return nil
}

// UpdateQuantity replaces the quantity of an existing entry. A quantity of zero
// or less removes it. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id products.ID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		s.removeAt(idx)
		s.commit(ctx, "remove")
		return
	}
	s.entries[idx].Quantity = quantity
	s.commit(ctx, "update")
}

// Remove drops the entry for id if present.
func (s *Store) Remove(ctx context.Context, id products.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.removeAt(idx)
	s.commit(ctx, "remove")
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []Entry{}
	s.commit(ctx, "clear")
}

// Checkout hands the current entries and totals to place and empties the cart
// once place succeeds. The cart is locked for the duration.
func (s *Store) Checkout(ctx context.Context, place func(ctx context.Context, entries []Entry, totals Totals) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	snapshot := s.copyEntries()
	if err := place(ctx, snapshot, totalsOf(snapshot)); err != nil {
		return err
	}
	s.entries = []Entry{}
	s.commit(ctx, "checkout")
	return nil
}

// IdentityChanged is called when the signed-in user for the session changes.
// Cart contents are left untouched.
func (s *Store) IdentityChanged(ctx context.Context, userID string) {
	s.logg.Debug(s.logg.WithUserID(ctx, userID), "cart identity changed; contents unchanged")
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyEntries()
}

// View returns the entries and their totals read under one lock.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{Entries: s.copyEntries(), Totals: totalsOf(s.entries)}
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalsOf(s.entries)
}

// Count is the sum of quantities.
func (s *Store) Count() int {
	return s.Totals().Count
}

// Subtotal is the sum of price times quantity.
func (s *Store) Subtotal() decimal.Decimal {
	return s.Totals().Subtotal
}

// TotalCO2Saved is the sum of co2Saved times quantity.
func (s *Store) TotalCO2Saved() decimal.Decimal {
	return s.Totals().CO2Saved
}

// Preview returns up to limit leading entries. A non-positive limit uses DefaultPreviewLimit.
func (s *Store) Preview(limit int) Preview {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := min(limit, len(s.entries))
	head := make([]Entry, n)
	copy(head, s.entries[:n])
	return Preview{Entries: head, Overflow: len(s.entries) - n, Totals: totalsOf(s.entries)}
}

func (s *Store) indexOf(id products.ID) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(idx int) {
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
}

func (s *Store) copyEntries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// commit records the mutation and flushes. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op string) {
	s.metrics.IncMutation(op)
	if s.persist == nil {
		return
	}
	started := time.Now()
	err := s.persist.Save(ctx, s.copyEntries())
	s.metrics.ObserveFlush(time.Since(started))
	if err != nil {
		s.metrics.IncPersistenceFailure("save")
		s.logg.Warn(s.logg.WithField(ctx, "op", op), "cart flush failed; keeping in-memory state", err)
	}
}
