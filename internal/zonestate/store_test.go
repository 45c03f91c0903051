package zonestate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/model"
)

func TestMemoryStore_GetSet(t *testing.T) {
	s, err := NewMemoryStore("")
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	want := Entry{Zone: model.ZoneCheap, Price: 123.4, At: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.Set(ctx, "AAPL", want))

	got, ok, err := s.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMemoryStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	s, err := NewMemoryStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "SPY", Entry{Zone: model.ZoneFairValue, Price: 500}))

	reopened, err := NewMemoryStore(path)
	require.NoError(t, err)
	got, ok, err := reopened.Get(ctx, "SPY")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.ZoneFairValue, got.Zone)
	assert.Equal(t, 500.0, got.Price)
}

func TestMemoryStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewMemoryStore(path)
	assert.Error(t, err)
}

func TestOpen_FallsBackWhenRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Open(ctx, Options{RedisAddr: "127.0.0.1:1", StateFile: ""})
	require.NoError(t, err)
	defer s.Close()
	_, isMem := s.(*MemoryStore)
	assert.True(t, isMem)
}

func TestRedisStore_Key(t *testing.T) {
	s := newRedisStore(nil, "")
	assert.Equal(t, "valuezone:zone:BTC-USD", s.key("BTC-USD"))
	s = newRedisStore(nil, "vz")
	assert.Equal(t, "vz:zone:SPY", s.key("SPY"))
}

func TestRedisStore_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, mr.Addr(), "", 0, "vz")
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok, "missing key reads as not found")

	want := Entry{Zone: model.ZoneExpensive, Price: 231.5, At: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)}
	require.NoError(t, s.Set(ctx, "AAPL", want))
	assert.True(t, mr.Exists("vz:zone:AAPL"))
	assert.Zero(t, mr.TTL("vz:zone:AAPL"))

	got, ok, err := s.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Zone, got.Zone)
	assert.Equal(t, want.Price, got.Price)
	assert.True(t, want.At.Equal(got.At))

	require.NoError(t, s.Set(ctx, "AAPL", Entry{Zone: model.ZoneFairValue, Price: 180}))
	got, _, err = s.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, model.ZoneFairValue, got.Zone)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("valuezone:zone:SPY", "{not json"))

	s, err := NewRedisStore(ctx, mr.Addr(), "", 0, "")
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "SPY")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ServerGone(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, mr.Addr(), "", 0, "")
	require.NoError(t, err)
	defer s.Close()

	mr.Close()
	_, ok, err := s.Get(ctx, "SPY")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, s.Set(ctx, "SPY", Entry{Zone: model.ZoneCheap}))
}

func TestOpen_PrefersRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := Open(ctx, Options{RedisAddr: mr.Addr(), StateFile: filepath.Join(t.TempDir(), "state.json")})
	require.NoError(t, err)
	defer s.Close()
	_, isRedis := s.(*RedisStore)
	assert.True(t, isRedis)
}
