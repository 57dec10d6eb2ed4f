package marketday

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is wrapped by *ExhaustedError.
var ErrRetriesExhausted = errors.New("retries exhausted")

// ExhaustedError reports a chain that failed on every attempted date.
type ExhaustedError struct {
	Attempts int
	Dates    []time.Time
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrRetriesExhausted, e.Attempts, e.Last)
}

// Unwrap exposes both the sentinel and the last attempt's error.
func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrRetriesExhausted, e.Last}
}

// AttemptFunc performs one attempt for date.
type AttemptFunc func(ctx context.Context, date time.Time) error

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy is a bounded retry chain that substitutes a fallback date after
// each failed attempt.
type Policy struct {
	// MaxAttempts counts every attempt including the first (default: 5).
	MaxAttempts int
	// Backoff is the wait between attempts (default: 60s).
	Backoff time.Duration
	// Exponential doubles Backoff after each failure, capped by MaxBackoff
	// when it is set.
	Exponential bool
	MaxBackoff  time.Duration
	// Fallback yields the next date to try (default: PreviousBusinessDay).
	Fallback func(time.Time) time.Time
	// Sleep waits between attempts (default: Sleep).
	Sleep SleepFunc
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, next time.Time, err error)
}

// DefaultPolicy returns a fixed-backoff chain over previous business days.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		Backoff:     60 * time.Second,
		Fallback:    PreviousBusinessDay,
		Sleep:       Sleep,
	}
}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.Backoff
	if !p.Exponential || attempt <= 1 {
		return d
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return d
}

// Run calls try for start and then for successive fallback dates until one
// succeeds or MaxAttempts is reached. It returns the successful date and the
// number of attempts made. No wait follows the final attempt.
func (p Policy) Run(ctx context.Context, start time.Time, try AttemptFunc) (time.Time, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	fallback := p.Fallback
	if fallback == nil {
		fallback = PreviousBusinessDay
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	date := start
	dates := make([]time.Time, 0, maxAttempts)
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return time.Time{}, attempt - 1, err
		}

		dates = append(dates, date)
		err := try(ctx, date)
		if err == nil {
			return date, attempt, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		date = fallback(date)
		if p.OnRetry != nil {
			p.OnRetry(attempt, date, err)
		}
		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return time.Time{}, attempt, err
		}
	}

	return time.Time{}, maxAttempts, &ExhaustedError{
		Attempts: maxAttempts,
		Dates:    dates,
		Last:     lastErr,
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
