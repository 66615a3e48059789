package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryOTPRateLimiter_BlocksOverLimit(t *testing.T) {
	limiter := NewMemoryOTPRateLimiter(time.Hour, 2)

	if !limiter.Allow("a@x.com") || !limiter.Allow("a@x.com") {
		t.Fatalf("expected first two requests allowed")
	}
	if limiter.Allow("a@x.com") {
		t.Fatalf("expected third request blocked")
	}
	// Cada clave lleva su propia cuenta.
	if !limiter.Allow("b@x.com") {
		t.Fatalf("expected independent key allowed")
	}
}

func TestMemoryOTPRateLimiter_WindowExpires(t *testing.T) {
	limiter := NewMemoryOTPRateLimiter(50*time.Millisecond, 1)

	if !limiter.Allow("a@x.com") {
		t.Fatalf("expected first request allowed")
	}
	if limiter.Allow("a@x.com") {
		t.Fatalf("expected second request blocked")
	}

	time.Sleep(60 * time.Millisecond)
	if !limiter.Allow("a@x.com") {
		t.Fatalf("expected request allowed after window")
	}
}

type mockRedisEvaler struct {
	count int64
	err   error
	calls int
}

func (m *mockRedisEvaler) Eval(ctx context.Context, _ string, _ []string, _ ...interface{}) *redis.Cmd {
	m.calls++
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	m.count++
	cmd.SetVal(m.count)
	return cmd
}

func TestRedisOTPRateLimiter_CountsAgainstLimit(t *testing.T) {
	evaler := &mockRedisEvaler{}
	limiter := &redisOTPRateLimiter{client: evaler, window: time.Minute, max: 2, prefix: "otp:rl:"}

	if !limiter.Allow("A@X.com ") || !limiter.Allow("a@x.com") {
		t.Fatalf("expected requests under the limit allowed")
	}
	if limiter.Allow("a@x.com") {
		t.Fatalf("expected request over the limit blocked")
	}
	if evaler.calls != 3 {
		t.Fatalf("expected 3 eval calls, got %d", evaler.calls)
	}
}

func TestRedisOTPRateLimiter_FailsOpen(t *testing.T) {
	evaler := &mockRedisEvaler{err: errors.New("redis down")}
	limiter := &redisOTPRateLimiter{client: evaler, window: time.Minute, max: 1, prefix: "otp:rl:"}

	if !limiter.Allow("a@x.com") {
		t.Fatalf("expected fail-open on redis error")
	}
	if limiter.Allow("") {
		t.Fatalf("expected empty key rejected")
	}
}
