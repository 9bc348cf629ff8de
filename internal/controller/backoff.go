package controller

import "time"

// retryDelay computes the exponential backoff before the next attempt.
// failures counts completed failed attempts, so the first retry waits the
// base delay and each further retry doubles it up to the cap.
func retryDelay(base, max time.Duration, failures int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if failures < 1 {
		failures = 1
	}
	delay := base
	for i := 1; i < failures; i++ {
		delay *= 2
		if max > 0 && delay >= max {
			return max
		}
	}
	if max > 0 && delay > max {
		return max
	}
	return delay
}
