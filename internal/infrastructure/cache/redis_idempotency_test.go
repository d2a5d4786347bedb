package cache

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/pkg/config"
)

func redisStore(t *testing.T) *RedisIdempotencyStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisIdempotencyStore(client, time.Minute)
}

func TestRedisIdempotency_ReserveRelease(t *testing.T) {
	store := redisStore(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { _ = store.Release(ctx, key) })

	ok, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "la segunda reserva debe fallar")

	require.NoError(t, store.Release(ctx, key))
	ok, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "tras liberar se puede reservar otra vez")
}

func TestRedisIdempotency_ReservaConcurrente(t *testing.T) {
	store := redisStore(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()
	t.Cleanup(func() { _ = store.Release(ctx, key) })

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.Reserve(ctx, key); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestNewRedisIdempotencyStore_TTLPorDefecto(t *testing.T) {
	s := NewRedisIdempotencyStore(nil, 0)
	assert.Equal(t, defaultIdempotencyTTL, s.ttl)
}
