package retry

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Strategy decides whether a failed action should be attempted again.
// attempt is 1-based: it is the number of the attempt that just failed.
// Strategies are evaluated in the order given to Retry; the first one to
// return false stops the loop.
type Strategy func(attempt uint, err error) bool

// Limit stops after maxAttempts total attempts.
func Limit(maxAttempts uint) Strategy {
	return func(attempt uint, err error) bool {
		return attempt < maxAttempts
	}
}

// RetriableErrors retries only when the error matches one of the given
// kinds; anything else stops the loop.
func RetriableErrors(kinds ...error) Strategy {
	return func(attempt uint, err error) bool {
		for _, kind := range kinds {
			if errors.Is(err, kind) {
				return true
			}
		}
		return false
	}
}

// NonRetriableErrors stops the loop when the error matches one of the
// given kinds; anything else may retry.
func NonRetriableErrors(kinds ...error) Strategy {
	return func(attempt uint, err error) bool {
		for _, kind := range kinds {
			if errors.Is(err, kind) {
				return false
			}
		}
		return true
	}
}

// DelayFunc computes the suspension before the next attempt. attempt is
// 1-based.
type DelayFunc func(attempt uint) time.Duration

// BinaryExponential doubles the base delay on every attempt.
func BinaryExponential(base time.Duration) DelayFunc {
	return func(attempt uint) time.Duration {
		if attempt == 0 {
			attempt = 1
		}
		const maxShift = 62
		shift := attempt - 1
		if shift > maxShift {
			shift = maxShift
		}
		d := base << shift
		if d < base {
			// overflow
			return time.Duration(1<<63 - 1)
		}
		return d
	}
}

// Backoff suspends for min(delay(attempt), max) before allowing the next
// attempt. It always votes to retry; combine with Limit or an error
// filter to bound the loop.
func Backoff(delay DelayFunc, max time.Duration) Strategy {
	return func(attempt uint, err error) bool {
		sleep(capped(delay(attempt), max))
		return true
	}
}

// BackoffWithJitter behaves like Backoff, widening the capped delay by a
// uniformly random factor in [1-jitter, 1+jitter]. jitter must be in
// [0, 0.25); construction fails otherwise.
func BackoffWithJitter(delay DelayFunc, max time.Duration, jitter float64) (Strategy, error) {
	if jitter < 0 || jitter >= 0.25 {
		return nil, fmt.Errorf("jitter must be in [0, 0.25), got %f", jitter)
	}

	return func(attempt uint, err error) bool {
		d := capped(delay(attempt), max)
		factor := 1 + jitter*(2*rand.Float64()-1)
		sleep(time.Duration(float64(d) * factor))
		return true
	}, nil
}

func capped(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}

// sleep is a test seam.
var sleep = time.Sleep
