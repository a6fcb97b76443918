package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const keyPrefix = "vetclinic:booking-lock:doctor:"

// Deletes the key only if it still holds our token, so an expired lock that
// was re-taken by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	TTL        time.Duration
	Wait       time.Duration
	RetryDelay time.Duration
}

// Redis is a Locker shared by every API instance pointing at the same Redis.
type Redis struct {
	client *redis.Client
	opts   RedisOptions
	logger zerolog.Logger
}

func NewRedis(client *redis.Client, opts RedisOptions, logger zerolog.Logger) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 25 * time.Millisecond
	}
	return &Redis{client: client, opts: opts, logger: logger}
}

func Key(doctorID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, doctorID)
}

func (r *Redis) Acquire(ctx context.Context, doctorID uint) (func(), error) {
	key := Key(doctorID)
	token := uuid.NewString()

	waitCtx := ctx
	if r.opts.Wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.opts.Wait)
		defer cancel()
	}

	ticker := time.NewTicker(r.opts.RetryDelay)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(waitCtx, key, token, r.opts.TTL).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("booking lock: setnx %s: %w", key, err)
		}
		if ok {
			return r.releaser(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			return nil, waitErr(ctx)
		case <-ticker.C:
		}
	}
}

func (r *Redis) releaser(key, token string) func() {
	return func() {
		// Release even if the request context is already gone.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("booking lock release failed")
		}
	}
}
