package redis

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func getTestClient(t *testing.T) *Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := 6379
	if p := os.Getenv("REDIS_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		require.NoError(t, err)
		port = parsed
	}

	client, err := NewClient(Config{Host: host, Port: port}, getTestLogger())
	require.NoError(t, err, "Failed to connect to test redis")
	t.Cleanup(func() { client.Close() })

	return client
}

func TestLocker_AcquireIsExclusive(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := getTestClient(t)
	locker := NewLocker(client, "test:lock:")
	ctx := context.Background()
	key := uuid.New().String()

	lock, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	require.NoError(t, lock.Release(ctx))

	relock, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, relock.Release(ctx))
}

func TestLock_ExtendProlongsTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := getTestClient(t)
	locker := NewLocker(client, "test:lock:")
	ctx := context.Background()
	key := uuid.New().String()

	lock, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	defer lock.Release(ctx)

	require.NoError(t, lock.Extend(ctx, 2*time.Minute))

	ttl, err := client.rdb.PTTL(ctx, lock.key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Minute)
}

func TestLock_KeepAliveOutlivesInitialTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := getTestClient(t)
	locker := NewLocker(client, "test:lock:")
	ctx := context.Background()
	key := uuid.New().String()

	lock, err := locker.Acquire(ctx, key, 2*time.Second)
	require.NoError(t, err)

	keepAliveCtx, stop := context.WithCancel(ctx)
	defer stop()
	go lock.KeepAlive(keepAliveCtx)

	// past the original TTL the lock must still be held
	time.Sleep(3 * time.Second)

	exists, err := client.rdb.Exists(ctx, lock.key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	stop()
	require.NoError(t, lock.Release(ctx))
}
