package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
	"github.com/angelmondragon/ecofinds-backend/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Read(ctx, "ecofinds_cart:missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, slot.Write(ctx, "ecofinds_cart:s1", []byte(`{"version":1}`)))
	got, err := slot.Read(ctx, "ecofinds_cart:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(got))

	require.NoError(t, slot.Write(ctx, "ecofinds_cart:s1", []byte(`{"version":2}`)))
	got, err = slot.Read(ctx, "ecofinds_cart:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(got))

	require.NoError(t, slot.Delete(ctx, "ecofinds_cart:s1"))
	_, err = slot.Read(ctx, "ecofinds_cart:s1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, slot.Delete(ctx, "ecofinds_cart:s1"))

	if p, ok := slot.(Pinger); ok {
		require.NoError(t, p.Ping(ctx))
	}
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemorySlot())
}

func TestMemorySlotCopiesValues(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	value := []byte(`[1]`)
	require.NoError(t, slot.Write(ctx, "k", value))
	value[1] = '9'

	got, err := slot.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestFileSlot(t *testing.T) {
	slot, err := NewFileSlot(t.TempDir())
	require.NoError(t, err)
	exerciseSlot(t, slot)
}

func TestFileSlotRequiresDir(t *testing.T) {
	_, err := NewFileSlot(" ")
	require.Error(t, err)
}

func TestFileSlotHonoursCancelledContext(t *testing.T) {
	slot, err := NewFileSlot(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, slot.Write(ctx, "k", []byte(`{}`)), context.Canceled)
}

func TestSQLSlot(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.KVSlot{}))
	exerciseSlot(t, NewSQLSlot(conn))
}

func TestRedisSlot(t *testing.T) {
	client := newFakeRedis()
	slot := NewRedisSlot(client, time.Hour)
	exerciseSlot(t, slot)

	require.NoError(t, slot.Write(context.Background(), "ecofinds_cart:s2", []byte(`[]`)))
	assert.Equal(t, time.Hour, client.ttls["ef:slot:ecofinds_cart:s2"])
}

func TestRedisSlotSurfacesTransportErrors(t *testing.T) {
	client := newFakeRedis()
	client.err = errors.New("connection refused")
	_, err := NewRedisSlot(client, 0).Read(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()

	require.NoError(t, WriteJSON(ctx, slot, "ecofinds_wishlist:s", []string{"a", "b"}))
	var got []string
	require.NoError(t, ReadJSON(ctx, slot, "ecofinds_wishlist:s", &got))
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, slot.Write(ctx, "bad", []byte(`{not json`)))
	err := ReadJSON(ctx, slot, "bad", &got)
	require.ErrorIs(t, err, ErrMalformed)

	err = ReadJSON(ctx, slot, "absent", &got)
	require.ErrorIs(t, err, ErrNotFound)
}

type fakeRedis struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) GetBytes(_ context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[key]
	if !ok {
		return nil, redis.ErrNil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = append([]byte(nil), value.([]byte)...)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	if f.err != nil {
		return f.err
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) SlotKey(name string) string {
	return "ef:slot:" + name
}

func (f *fakeRedis) Ping(context.Context) error {
	return f.err
}
