package logic

import "time"

// RetryBackoff gates operations that must not be retried too aggressively
// (broker reconnects, sensor re-reads). The delay doubles on every allowed
// attempt, from minDelay up to maxDelay, and resets on success. Counters
// are exposed for status reporting.
type RetryBackoff struct {
	minDelay     time.Duration
	maxDelay     time.Duration
	currentDelay time.Duration
	lastRetry    time.Time

	allowed int
	delayed int
	resets  int
}

// NewRetryBackoff creates a backoff gate with the given delay bounds.
func NewRetryBackoff(minDelay, maxDelay time.Duration) *RetryBackoff {
	return &RetryBackoff{minDelay: minDelay, maxDelay: maxDelay}
}

// CanRetry reports whether an attempt is allowed now. An allowed attempt
// stamps the retry time and grows the delay for the next one.
func (b *RetryBackoff) CanRetry(now time.Time) bool {
	if !b.lastRetry.IsZero() && now.Before(b.lastRetry.Add(b.currentDelay)) {
		b.delayed++
		return false
	}

	b.lastRetry = now
	next := b.currentDelay * 2
	if next < b.minDelay {
		next = b.minDelay
	}
	if next > b.maxDelay {
		next = b.maxDelay
	}
	b.currentDelay = next
	b.allowed++
	return true
}

// Reset clears the delay after a successful attempt.
func (b *RetryBackoff) Reset() {
	b.currentDelay = 0
	b.lastRetry = time.Time{}
	b.allowed = 0
	b.delayed = 0
	b.resets++
}

// Counts returns the allowed, delayed, and reset counters.
func (b *RetryBackoff) Counts() (allowed, delayed, resets int) {
	return b.allowed, b.delayed, b.resets
}

// CurrentDelay returns the delay that gates the next attempt.
func (b *RetryBackoff) CurrentDelay() time.Duration {
	return b.currentDelay
}
