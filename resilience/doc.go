// Package resilience wraps golang.org/x/time/rate token buckets with an
// injectable clock and per-key bookkeeping.
//
// RateLimiter guards a single resource. KeyedRateLimiter keeps an
// independent bucket per key and is what the gateway uses to slow down
// password guessing per client IP:
//
//	rl := resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{Rate: 0.2, Burst: 5})
//	if !rl.Allow(clientIP) {
//	    // reject with 429
//	}
package resilience
