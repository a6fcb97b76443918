package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedis_AcquireAndRelease(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedis(client, RedisOptions{TTL: time.Second, Wait: 50 * time.Millisecond, RetryDelay: 5 * time.Millisecond}, zerolog.Nop())
	ctx := context.Background()

	release, err := l.Acquire(ctx, 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists(Key(7)))

	_, err = l.Acquire(ctx, 7)
	assert.ErrorIs(t, err, ErrTimeout)

	release()
	assert.False(t, mr.Exists(Key(7)))

	again, err := l.Acquire(ctx, 7)
	require.NoError(t, err)
	again()
}

func TestRedis_ReleaseKeepsForeignToken(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedis(client, RedisOptions{TTL: time.Second, Wait: 20 * time.Millisecond}, zerolog.Nop())
	ctx := context.Background()

	release, err := l.Acquire(ctx, 3)
	require.NoError(t, err)

	// Lock expired and another instance took it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(Key(3), "someone-else"))

	release()

	got, err := mr.Get(Key(3))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedis_ExpiredLockCanBeRetaken(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedis(client, RedisOptions{TTL: 100 * time.Millisecond, Wait: 20 * time.Millisecond}, zerolog.Nop())
	ctx := context.Background()

	_, err := l.Acquire(ctx, 9)
	require.NoError(t, err)

	mr.FastForward(200 * time.Millisecond)

	release, err := l.Acquire(ctx, 9)
	require.NoError(t, err)
	release()
}

func TestRedis_CallerCancellationIsNotTimeout(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedis(client, RedisOptions{TTL: time.Second, Wait: time.Second, RetryDelay: 5 * time.Millisecond}, zerolog.Nop())

	require.NoError(t, mr.Set(Key(3), "someone-else"))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := l.Acquire(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)

	got, err := mr.Get(Key(3))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
