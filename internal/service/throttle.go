package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LoginThrottle counts failed logins per email and origin address in redis.
// It fails open: a redis outage never locks the team out.
type LoginThrottle struct {
	client *redis.Client
	max    int
	window time.Duration
	logger zerolog.Logger
}

// NewLoginThrottle constructs a redis-backed login throttle.
func NewLoginThrottle(client *redis.Client, max int, window time.Duration, logger zerolog.Logger) *LoginThrottle {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}

	return &LoginThrottle{
		client: client,
		max:    max,
		window: window,
		logger: logger.With().Str("component", "login_throttle").Logger(),
	}
}

// Blocked reports whether this email/address pair has exhausted its attempts.
func (t *LoginThrottle) Blocked(ctx context.Context, email, ip string) bool {
	count, err := t.client.Get(ctx, t.key(email, ip)).Int()
	if err != nil {
		return false
	}
	return count >= t.max
}

// RecordFailure increments the failure counter, starting the window on the
// first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email, ip string) {
	key := t.key(email, ip)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		t.logger.Debug().Err(err).Msg("throttle increment failed")
		return
	}
	if count == 1 {
		t.client.Expire(ctx, key, t.window)
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email, ip string) {
	t.client.Del(ctx, t.key(email, ip))
}

func (t *LoginThrottle) key(email, ip string) string {
	return fmt.Sprintf("login:fail:%s:%s", email, ip)
}
