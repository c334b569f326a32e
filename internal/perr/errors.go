// Package perr defines the pipeline's error kinds and the retry/backoff
// policy storage errors are subject to (spec §7).
package perr

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Kind discriminates the error taxonomy of spec §7.
type Kind int

const (
	KindDecode Kind = iota
	KindStorage
	KindChainClient
	KindIntersectNotFound
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindStorage:
		return "storage"
	case KindChainClient:
		return "chain_client"
	case KindIntersectNotFound:
		return "intersect_not_found"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error wraps a cause with its Kind so callers can branch on it with
// errors.As instead of string matching.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Decode(cause error) error {
	return &Error{Kind: KindDecode, Cause: cause}
}

func Storage(cause error) error {
	return &Error{Kind: KindStorage, Cause: cause}
}

func ChainClient(cause error) error {
	return &Error{Kind: KindChainClient, Cause: cause}
}

var ErrIntersectNotFound = &Error{Kind: KindIntersectNotFound, Cause: errors.New("chain client could not intersect at any offered point")}

var ErrCancelled = &Error{Kind: KindCancelled, Cause: errors.New("context cancelled")}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var pe *Error
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Kind == kind {
			return true
		}
		err = pe.Cause
	}
	return false
}

// Policy is the runtime decode policy of spec §7: fail aborts the
// pipeline, skip drops the offending block and continues, warn logs and
// proceeds best-effort.
type Policy string

const (
	PolicyFail Policy = "fail"
	PolicySkip Policy = "skip"
	PolicyWarn Policy = "warn"
)

// RetryBudget bounds how long and how many times a storage operation may
// be retried with exponential backoff before it is treated as fatal.
type RetryBudget struct {
	MaxElapsed time.Duration
	MaxRetries int
}

// DefaultRetryBudget mirrors the teacher's conservative reconnect
// posture: bounded retries over a few minutes, not unbounded.
var DefaultRetryBudget = RetryBudget{
	MaxElapsed: 5 * time.Minute,
	MaxRetries: 8,
}

// WithStorageRetry runs fn with exponential backoff until it succeeds or
// the budget is exhausted (fatal). It takes no context, so cancellation
// does not cut a retry sequence short.
func WithStorageRetry(budget RetryBudget, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = budget.MaxElapsed
	bounded := backoff.WithMaxRetries(b, uint64(budget.MaxRetries))

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err != nil {
			return Storage(err)
		}
		return nil
	}, bounded)
	if err != nil {
		return fmt.Errorf("storage retry budget exhausted after %d attempts: %w", attempt, err)
	}
	return nil
}
