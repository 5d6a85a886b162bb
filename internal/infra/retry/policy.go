// Package retry runs an operation under a bounded, fixed-delay retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// ErrInvalidPolicy is returned when a Policy cannot be applied.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Exhaustion selects what Do returns once every attempt failed with a
// retryable error.
type Exhaustion int

const (
	// ReturnZero returns the zero value of the result and a nil error.
	ReturnZero Exhaustion = iota
	// Propagate returns the last retryable error.
	Propagate
)

func (e Exhaustion) String() string {
	switch e {
	case ReturnZero:
		return "return_zero"
	case Propagate:
		return "propagate"
	default:
		return "unknown"
	}
}

// Policy defines retry behavior.
type Policy struct {
	MaxAttempts  int
	Wait         time.Duration
	Retryable    func(error) bool
	OnExhaustion Exhaustion

	// OnRetry is called before each wait with the failed attempt number (1-based).
	OnRetry func(attempt int, err error)
}

// DefaultPolicy retries every error three times with a ten second pause.
var DefaultPolicy = Policy{
	MaxAttempts:  3,
	Wait:         10 * time.Second,
	OnExhaustion: ReturnZero,
}

// Validate reports whether the policy can be applied.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be >= 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.Wait < 0 {
		return fmt.Errorf("%w: wait must be >= 0, got %s", ErrInvalidPolicy, p.Wait)
	}
	return nil
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// backoff waits p.Wait between attempts and stops after MaxAttempts-1 waits,
// so the last attempt never sleeps.
func (p Policy) backoff() goretry.Backoff {
	waits := 0
	return goretry.BackoffFunc(func() (time.Duration, bool) {
		if waits >= p.MaxAttempts-1 {
			return 0, true
		}
		waits++
		return p.Wait, false
	})
}

// Do executes op until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.Validate(); err != nil {
		return zero, err
	}

	var (
		result    T
		attempt   int
		exhausted bool
	)
	err := goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		v, err := op(ctx)
		if err == nil {
			result = v
			return nil
		}
		if !p.retryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			exhausted = true
		} else if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		return goretry.RetryableError(err)
	})
	switch {
	case err == nil:
		return result, nil
	case exhausted && p.OnExhaustion == ReturnZero:
		return zero, nil
	default:
		return zero, err
	}
}
