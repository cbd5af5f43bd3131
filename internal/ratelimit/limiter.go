// Package ratelimit enforces per-(route, client IP) token buckets against
// the shared Redis store, with a process-local negative cache so exhausted
// callers stop hitting Redis inside the refill window.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/pkg/logger"
	"rpc-gateway.backend/pkg/redis"
)

// tokenBucketScript refills and decrements atomically, using Redis server
// time as the monotonic reference so all gateway instances agree.
//
// KEYS[1] bucket key
// ARGV[1] capacity, ARGV[2] refill interval (ms), ARGV[3] refill tokens,
// ARGV[4] ttl (ms)
//
// Returns remaining tokens after the take, or -1 when the bucket is empty,
// followed by ms until the next refill.
const tokenBucketScript = `
local now = redis.call('TIME')
local now_ms = now[1] * 1000 + math.floor(now[2] / 1000)
local capacity = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(bucket[1])
local ts = tonumber(bucket[2])

if tokens == nil then
  tokens = capacity
  ts = now_ms
else
  local elapsed = now_ms - ts
  if elapsed >= interval then
    local refills = math.floor(elapsed / interval)
    tokens = math.min(capacity, tokens + refills * refill)
    ts = ts + refills * interval
  end
end

local wait = interval - (now_ms - ts)
if tokens <= 0 then
  redis.call('HMSET', KEYS[1], 'tokens', tokens, 'ts', ts)
  redis.call('PEXPIRE', KEYS[1], ttl)
  return {-1, wait}
end

tokens = tokens - 1
redis.call('HMSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('PEXPIRE', KEYS[1], ttl)
return {tokens, wait}
`

var redisEval = redis.Eval

// maxNegativeWindows bounds the L1. Keys carry client IPs, so the map must
// not grow with one-off callers; at the bound, expired windows are swept
// and, if none free up, new windows are skipped. Redis still enforces the
// bucket either way.
const maxNegativeWindows = 4096

// BucketConfig parameterizes one route's token bucket.
type BucketConfig struct {
	Capacity       int
	RefillInterval time.Duration
	RefillTokens   int
}

// Limiter is the two-tier token bucket. It is a safety rail, not an
// authorization mechanism: shared-store failures fail open.
type Limiter struct {
	cfg       BucketConfig
	whitelist map[string]struct{}

	mu        sync.Mutex
	exhausted map[string]time.Time // L1 negative windows

	errLog *rate.Limiter
	now    func() time.Time
}

// NewLimiter builds a limiter for one route configuration.
func NewLimiter(cfg BucketConfig, ipWhitelist []string) *Limiter {
	wl := make(map[string]struct{}, len(ipWhitelist))
	for _, ip := range ipWhitelist {
		wl[ip] = struct{}{}
	}
	return &Limiter{
		cfg:       cfg,
		whitelist: wl,
		exhausted: make(map[string]time.Time),
		errLog:    rate.NewLimiter(rate.Every(10*time.Second), 1),
		now:       time.Now,
	}
}

// Check consumes one token for (route, clientIP). It returns the taxonomy
// RateLimited error when the bucket is empty.
func (l *Limiter) Check(ctx context.Context, route, clientIP string) error {
	start := l.now()
	defer func() {
		metrics.RateLimitCheck.Observe(l.now().Sub(start).Seconds())
	}()

	if _, ok := l.whitelist[clientIP]; ok {
		return nil
	}

	key := fmt.Sprintf("rl:%s:%s", route, clientIP)

	if until, ok := l.negativeWindow(key); ok && l.now().Before(until) {
		return domainerrors.RateLimited()
	}

	ttl := 2 * l.cfg.RefillInterval
	res, err := redisEval(ctx, tokenBucketScript, []string{key},
		l.cfg.Capacity,
		l.cfg.RefillInterval.Milliseconds(),
		l.cfg.RefillTokens,
		ttl.Milliseconds(),
	)
	if err != nil {
		// Fail open: the bucket protects upstreams, it does not gate auth.
		metrics.RateLimitStoreErrors.Inc()
		if l.errLog.Allow() {
			logger.Warn(ctx, "rate limit store unavailable, failing open", zap.Error(err))
		}
		return nil
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		metrics.RateLimitStoreErrors.Inc()
		return nil
	}
	remaining, _ := vals[0].(int64)
	waitMS, _ := vals[1].(int64)

	if remaining < 0 {
		l.setNegativeWindow(key, l.now().Add(time.Duration(waitMS)*time.Millisecond))
		return domainerrors.RateLimited()
	}
	return nil
}

func (l *Limiter) negativeWindow(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.exhausted[key]
	if ok && !l.now().Before(until) {
		delete(l.exhausted, key)
		return time.Time{}, false
	}
	return until, ok
}

func (l *Limiter) setNegativeWindow(key string, until time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.exhausted) >= maxNegativeWindows {
		now := l.now()
		for k, u := range l.exhausted {
			if !now.Before(u) {
				delete(l.exhausted, k)
			}
		}
		if len(l.exhausted) >= maxNegativeWindows {
			return
		}
	}
	l.exhausted[key] = until
}
