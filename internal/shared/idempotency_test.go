package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStoreRejectsReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "k-1", "users"))
	require.ErrorIs(t, store.CheckAndInsert(ctx, "k-1", "users"), ErrIdempotencyConflict)
	require.NoError(t, store.CheckAndInsert(ctx, "k-1", "files"))

	require.NoError(t, store.Delete(ctx, "k-1", "users"))
	require.NoError(t, store.CheckAndInsert(ctx, "k-1", "users"))

	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.CheckAndInsert(ctx, "k-1", "users"))
}

func TestIdempotencyStoreRequiresKey(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewIdempotencyStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	require.Error(t, store.CheckAndInsert(context.Background(), "", "users"))
	require.Error(t, store.CheckAndInsert(context.Background(), "k", ""))
}
