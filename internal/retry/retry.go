// Package retry holds the backoff arithmetic and the retry decision used
// by the downloader. The functions are pure so tests can exercise delay
// schedules without sleeping.
package retry

import (
	"errors"
	"fmt"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// State is the outcome of classifying a failed attempt.
type State int

const (
	// Proceed means the attempt succeeded and the loop is done.
	Proceed State = iota
	// RetryAfterDelay means sleep Delay(attempt) and try again.
	RetryAfterDelay
	// GiveUp means the failure is permanent or the budget is spent.
	GiveUp
)

func (s State) String() string {
	switch s {
	case Proceed:
		return "proceed"
	case RetryAfterDelay:
		return "retry"
	default:
		return "give up"
	}
}

// Transient marks an error as worth retrying. The downloader wraps
// server-side and transport failures with it; everything else is final.
type Transient struct {
	Err error
}

func (t *Transient) Error() string { return fmt.Sprintf("transient: %v", t.Err) }
func (t *Transient) Unwrap() error { return t.Err }

// Delay computes the backoff for a zero-based attempt number: the initial
// delay doubled per attempt, capped at the policy maximum.
func Delay(attempt int, p Policy) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := p.InitialDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Classify maps the result of a zero-based attempt to the next state.
func Classify(attempt int, p Policy, err error) State {
	if err == nil {
		return Proceed
	}
	var tr *Transient
	if !errors.As(err, &tr) {
		return GiveUp
	}
	if attempt >= p.MaxRetries {
		return GiveUp
	}
	return RetryAfterDelay
}
