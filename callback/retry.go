package callback

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RetryPolicy is a fixed-delay retry schedule for callback deliveries,
// matching the bridge's http.callback.retry.attempts/retry.delay settings.
// MaxAttempts is the total number of tries, not the number of retries;
// values below 1 behave as a single attempt.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the bridge's shipped defaults.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: time.Second}

// Do runs fn until it succeeds, the attempts are exhausted, or the context
// is canceled. The returned error summarizes every failed attempt so the
// operator can see the whole delivery history at a glance.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var failures []string
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		failures = append(failures, fmt.Sprintf("attempt %d: %v", attempt, err))

		if attempt == attempts {
			break
		}
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("delivery failed after %d attempts: %s", attempts, strings.Join(failures, "; "))
}
