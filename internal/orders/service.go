package orders

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/checkout"
	"github.com/angelmondragon/ecofinds-backend/internal/storage"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ordersKeyPrefix = "ecofinds_orders:"

// OrdersKey is the slot key holding the order history for sessionID.
func OrdersKey(sessionID string) string {
	return ordersKeyPrefix + sessionID
}

// Order is a checked-out cart.
type Order struct {
	ID            uuid.UUID        `json:"id"`
	SessionID     string           `json:"sessionId"`
	PlacedAt      time.Time        `json:"placedAt"`
	Lines         []cart.Entry     `json:"lines"`
	Summary       checkout.Summary `json:"summary"`
	TotalCO2Saved decimal.Decimal  `json:"totalCo2Saved"`
}

// Quoter prices a subtotal with an optional coupon.
type Quoter interface {
	Quote(ctx context.Context, subtotal decimal.Decimal, couponCode string) (checkout.Summary, error)
}

// Service records orders in the session's order slot.
type Service struct {
	slot    storage.Slot
	quoter  Quoter
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	now     func() time.Time

	mu sync.Mutex
}

type ServiceParams struct {
	Slot    storage.Slot
	Quoter  Quoter
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Slot == nil {
		return nil, errors.New("orders slot is required")
	}
	if params.Quoter == nil {
		return nil, errors.New("orders quoter is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		slot:    params.Slot,
		quoter:  params.Quoter,
		logg:    logg,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

// Place checks out store into a new order. The cart is emptied only after the
// order has been written; on any failure it is left as it was.
func (s *Service) Place(ctx context.Context, sessionID string, store *cart.Store, couponCode string) (*Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	var placed *Order
	err := store.Checkout(ctx, func(ctx context.Context, entries []cart.Entry, totals cart.Totals) error {
		summary, err := s.quoter.Quote(ctx, totals.Subtotal, couponCode)
		if err != nil {
			return err
		}
		order := Order{
			ID:            uuid.New(),
			SessionID:     sessionID,
			PlacedAt:      s.now().UTC(),
			Lines:         entries,
			Summary:       summary,
			TotalCO2Saved: totals.CO2Saved,
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		history, err := s.readHistory(ctx, sessionID)
		if err != nil {
			if errors.Is(err, storage.ErrMalformed) {
				s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "order history malformed; refusing to overwrite", err)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order history unavailable")
		}
		history = append(history, order)
		if err := storage.WriteJSON(ctx, s.slot, OrdersKey(sessionID), history); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order could not be recorded")
		}
		placed = &order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderPlaced()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": placed.ID.String(),
		"total":    placed.Summary.Total.StringFixed(2),
	}), "order placed")
	return placed, nil
}

// List returns the session's orders, newest first. Unreadable or malformed
// history is logged and reported as empty.
func (s *Service) List(ctx context.Context, sessionID string) []Order {
	sessionID = strings.TrimSpace(sessionID)
	history, err := s.readHistory(ctx, sessionID)
	if err != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, sessionID), "order history unreadable", err)
		return []Order{}
	}
	slices.Reverse(history)
	return history
}

// readHistory treats a missing slot as empty. Malformed payloads wrap
// storage.ErrMalformed and are never overwritten by Place.
func (s *Service) readHistory(ctx context.Context, sessionID string) ([]Order, error) {
	var history []Order
	err := storage.ReadJSON(ctx, s.slot, OrdersKey(sessionID), &history)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		history = nil
	default:
		return nil, err
	}
	if history == nil {
		history = []Order{}
	}
	return history, nil
}
