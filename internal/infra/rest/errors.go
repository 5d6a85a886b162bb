package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindRetryable marks transient upstream failures: 429, 5xx, transport errors.
	KindRetryable Kind = iota
	// KindFatal marks client-side contract violations: any other status >= 300.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindRetryable:
		return "retryable"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StatusError is returned for every failed request.
// StatusCode is zero when no response was received.
type StatusError struct {
	Kind       Kind
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s failure: %v", e.Operation, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s http %d: %s", e.Operation, e.Kind, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Classify maps an HTTP status code to a failure kind.
// failed is false for statuses below 300, which are successes.
func Classify(status int) (kind Kind, failed bool) {
	switch {
	case status < http.StatusMultipleChoices:
		return 0, false
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		return KindRetryable, true
	default:
		return KindFatal, true
	}
}

// IsRetryable reports whether err carries a retryable StatusError.
func IsRetryable(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Kind == KindRetryable
}

// IsFatal reports whether err carries a fatal StatusError.
func IsFatal(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Kind == KindFatal
}
