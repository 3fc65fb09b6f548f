package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/checkout"
	"github.com/angelmondragon/ecofinds-backend/internal/coupons"
	"github.com/angelmondragon/ecofinds-backend/internal/products"
	"github.com/angelmondragon/ecofinds-backend/internal/storage"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, slot storage.Slot) *Service {
	t.Helper()
	resolver, err := coupons.NewService(coupons.NewMemoryRepository(coupons.DefaultCoupons()...))
	require.NoError(t, err)
	quoter, err := checkout.NewService(resolver, checkout.DefaultShippingPolicy())
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Slot: slot, Quoter: quoter})
	require.NoError(t, err)
	return svc
}

func filledStore(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	store := cart.NewStore(ctx, nil)
	require.NoError(t, store.Add(ctx, products.Product{
		ID:       "1",
		Title:    "Glass jar",
		Price:    decimal.NewFromInt(20),
		CO2Saved: decimal.RequireFromString("1.5"),
	}, 2))
	return store
}

func TestPlaceRecordsOrderAndClearsCart(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	svc := newService(t, slot)
	store := filledStore(t)

	order, err := svc.Place(ctx, "s1", store, "")
	require.NoError(t, err)
	assert.Equal(t, "s1", order.SessionID)
	assert.Len(t, order.Lines, 1)
	assert.Equal(t, "45.99", order.Summary.Total.StringFixed(2))
	assert.Equal(t, "3.00", order.TotalCO2Saved.StringFixed(2))
	assert.Zero(t, store.Count())

	listed := svc.List(ctx, "s1")
	require.Len(t, listed, 1)
	assert.Equal(t, order.ID, listed[0].ID)
}

func TestPlaceWithCoupon(t *testing.T) {
	svc := newService(t, storage.NewMemorySlot())
	order, err := svc.Place(context.Background(), "s1", filledStore(t), "green5")
	require.NoError(t, err)
	assert.Equal(t, "GREEN5", order.Summary.CouponCode)
	assert.Equal(t, "40.99", order.Summary.Total.StringFixed(2))
}

func TestPlaceWithUnknownCouponKeepsCart(t *testing.T) {
	svc := newService(t, storage.NewMemorySlot())
	store := filledStore(t)
	_, err := svc.Place(context.Background(), "s1", store, "NOPE")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, 2, store.Count())
}

func TestPlaceEmptyCart(t *testing.T) {
	svc := newService(t, storage.NewMemorySlot())
	_, err := svc.Place(context.Background(), "s1", cart.NewStore(context.Background(), nil), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type failingWriteSlot struct {
	*storage.MemorySlot
}

func (failingWriteSlot) Write(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func TestPlaceWriteFailureKeepsCart(t *testing.T) {
	svc := newService(t, failingWriteSlot{storage.NewMemorySlot()})
	store := filledStore(t)

	_, err := svc.Place(context.Background(), "s1", store, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, 2, store.Count())
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, storage.NewMemorySlot())
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := svc.Place(ctx, "s1", filledStore(t), "")
	require.NoError(t, err)
	second, err := svc.Place(ctx, "s1", filledStore(t), "")
	require.NoError(t, err)

	listed := svc.List(ctx, "s1")
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
	assert.Empty(t, svc.List(ctx, "other"))
}

func TestMalformedHistoryListsEmpty(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	require.NoError(t, slot.Write(ctx, OrdersKey("s1"), []byte(`{oops`)))
	svc := newService(t, slot)

	assert.Empty(t, svc.List(ctx, "s1"))
}

func TestPlaceKeepsMalformedHistory(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	stored := []byte(`[{"id":42,"sessionId":"s1","lines":[]}]`)
	require.NoError(t, slot.Write(ctx, OrdersKey("s1"), stored))
	svc := newService(t, slot)
	store := filledStore(t)

	_, err := svc.Place(ctx, "s1", store, "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, 2, store.Count())

	raw, err := slot.Read(ctx, OrdersKey("s1"))
	require.NoError(t, err)
	assert.Equal(t, stored, raw)
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Slot: storage.NewMemorySlot()})
	require.Error(t, err)
}
