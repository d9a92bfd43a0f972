// Package httputil provides HTTP utilities for API clients.
//
// # Overview
//
// This package provides infrastructure used by the model API client:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/scrawl/)
// with configurable TTL. Identical prompts resolve from disk instead of
// burning tokens on a second model call.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	ok, err := cache.Get("chat:"+key, &resp)  // Check cache
//	if !ok {
//	    resp = callModel()
//	    cache.Set("chat:"+key, resp)          // Store for later
//	}
//
// Cache keys should be namespaced by endpoint to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped in [RetryableError] are retried; everything else
// fails fast:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return postJSON(url, body)
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/scrawl/
//   - Default TTL: 24 hours
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `scrawl cache clear` or by deleting the
// cache directory.
package httputil
