package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/storage"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const cartKeyPrefix = "ecofinds_cart:"

const (
	// DefaultMaxSessions bounds how many carts a registry keeps in memory.
	DefaultMaxSessions = 10000
	// DefaultIdleTimeout is how long an untouched cart stays in memory.
	DefaultIdleTimeout = 30 * time.Minute
)

// CartKey is the slot key holding the cart for sessionID.
func CartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

// Registry owns one Store per session, hydrating each lazily on first use.
// Concurrent first requests for a session share a single hydration. Carts idle
// longer than the idle timeout, and the least recently used carts beyond the
// session limit, are dropped from memory when a new session is registered;
// their state is already flushed and rehydrates from the slot on next use.
type Registry struct {
	slot    storage.Slot
	logg    *logger.Logger
	metrics *metrics.CartMetrics

	maxSessions int
	idleTimeout time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	stores map[string]*registered
	group  singleflight.Group
}

type registered struct {
	store    *Store
	lastUsed atomic.Int64
}

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithMaxSessions bounds the number of carts held in memory. Non-positive values are ignored.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxSessions = n
		}
	}
}

// WithIdleTimeout sets how long an untouched cart stays in memory. Non-positive values are ignored.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

func NewRegistry(slot storage.Slot, logg *logger.Logger, m *metrics.CartMetrics, opts ...RegistryOption) (*Registry, error) {
	if slot == nil {
		return nil, errors.New("cart registry requires a storage slot")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	r := &Registry{
		slot:        slot,
		logg:        logg,
		metrics:     m,
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		stores:      make(map[string]*registered),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Len reports how many carts are held in memory.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// Get returns the store for sessionID.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	if store, ok := r.lookup(sessionID); ok {
		return store, nil
	}

	v, _, _ := r.group.Do(sessionID, func() (any, error) {
		if existing, ok := r.lookup(sessionID); ok {
			return existing, nil
		}

		// hydration outlives a cancelled caller; the result is shared
		hydrateCtx := r.logg.WithSessionID(context.WithoutCancel(ctx), sessionID)
		adapter := NewSnapshotAdapter(r.slot, CartKey(sessionID), r.logg, r.metrics)
		created := NewStore(hydrateCtx, adapter, WithLogger(r.logg), WithMetrics(r.metrics))

		entry := &registered{store: created}
		now := r.now()
		entry.lastUsed.Store(now.UnixNano())

		r.mu.Lock()
		evicted := r.evictLocked(now)
		r.stores[sessionID] = entry
		r.mu.Unlock()
		if evicted > 0 {
			r.logg.Debug(r.logg.WithField(ctx, "evicted", evicted), "cart registry evicted idle sessions")
		}
		return created, nil
	})
	return v.(*Store), nil
}

func (r *Registry) lookup(sessionID string) (*Store, bool) {
	r.mu.RLock()
	entry, ok := r.stores[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	entry.lastUsed.Store(r.now().UnixNano())
	return entry.store, true
}

// evictLocked makes room for one more session. Callers hold r.mu.
func (r *Registry) evictLocked(now time.Time) int {
	if len(r.stores) < r.maxSessions {
		return 0
	}
	evicted := 0
	cutoff := now.Add(-r.idleTimeout).UnixNano()
	for id, entry := range r.stores {
		if entry.lastUsed.Load() < cutoff {
			delete(r.stores, id)
			evicted++
		}
	}
	for len(r.stores) >= r.maxSessions {
		oldestID, oldest := "", int64(0)
		for id, entry := range r.stores {
			if used := entry.lastUsed.Load(); oldestID == "" || used < oldest {
				oldestID, oldest = id, used
			}
		}
		delete(r.stores, oldestID)
		evicted++
	}
	return evicted
}

// IdentityChanged forwards the identity signal to the session's cart.
func (r *Registry) IdentityChanged(ctx context.Context, sessionID, userID string) error {
	store, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	store.IdentityChanged(ctx, userID)
	return nil
}
