// Package resilience provides fault-tolerance primitives for request
// executors.
//
//   - CircuitBreaker fails fast after consecutive failures and probes for
//     recovery after a cool-down.
//   - RateLimiter paces calls with a token bucket.
//   - Retry re-runs an operation with exponential backoff.
//
// The pipeline itself never retries; callers opt in explicitly:
//
//	user, err := resilience.Retry(ctx, cfg, func() (User, error) {
//	    return httpclient.Fetch[User](ctx, svc, route)
//	})
package resilience
