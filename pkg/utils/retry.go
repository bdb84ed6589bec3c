package utils

import (
	"math/rand"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter.
// The base delay doubles each attempt, capped at 30s, with +/-25% jitter.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	jitter := time.Duration(rand.Int63n(half)) - backoff/4
	return backoff + jitter
}
