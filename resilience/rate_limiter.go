package resilience

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig sizes a token bucket. Rate is tokens per second.
type RateLimiterConfig struct {
	Name    string
	Rate    float64
	Burst   int
	OnLimit func(name string) // called on every rejection
	Now     func() time.Time
}

func (c *RateLimiterConfig) applyDefaults() {
	if c.Rate <= 0 {
		c.Rate = 10
	}
	if c.Burst <= 0 {
		c.Burst = max(int(c.Rate), 1)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// RateLimiter is a rate.Limiter driven by a configurable clock.
type RateLimiter struct {
	config RateLimiterConfig
	lim    *rate.Limiter
}

// NewRateLimiter starts with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	config.applyDefaults()
	return &RateLimiter{config: config, lim: rate.NewLimiter(rate.Limit(config.Rate), config.Burst)}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	if rl.lim.AllowN(rl.config.Now(), 1) {
		return true
	}
	if rl.config.OnLimit != nil {
		rl.config.OnLimit(rl.config.Name)
	}
	return false
}

// Wait blocks until a token is available or ctx ends, returning ctx.Err()
// in the latter case.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	now := rl.config.Now()
	r := rl.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay == 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.CancelAt(rl.config.Now())
		return ctx.Err()
	}
}

// Tokens is the current bucket level.
func (rl *RateLimiter) Tokens() float64 {
	return rl.lim.TokensAt(rl.config.Now())
}

func (rl *RateLimiter) full() bool {
	return rl.Tokens() >= float64(rl.config.Burst)
}

// KeyedRateLimiter keeps one bucket per key, e.g. per client IP.
type KeyedRateLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	buckets map[string]*RateLimiter
}

func NewKeyedRateLimiter(config RateLimiterConfig) *KeyedRateLimiter {
	config.applyDefaults()
	return &KeyedRateLimiter{config: config, buckets: map[string]*RateLimiter{}}
}

// Allow takes a token from key's bucket.
func (k *KeyedRateLimiter) Allow(key string) bool {
	k.mu.Lock()
	b, ok := k.buckets[key]
	if !ok {
		b = NewRateLimiter(k.config)
		k.buckets[key] = b
	}
	k.mu.Unlock()
	return b.Allow()
}

// Len is the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

// Prune forgets keys whose bucket is full again and returns how many it
// dropped. A forgotten key restarts full, so Allow answers the same.
func (k *KeyedRateLimiter) Prune() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for key, b := range k.buckets {
		if b.full() {
			delete(k.buckets, key)
			n++
		}
	}
	return n
}

// RunPruner prunes every interval until ctx ends.
func (k *KeyedRateLimiter) RunPruner(ctx context.Context, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			k.Prune()
		}
	}
}
