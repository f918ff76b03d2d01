package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMiss marks a definitive negative answer: the provider responded
	// and the thing does not exist. Never retried.
	ErrMiss = errors.New("not found")

	// ErrTransient marks a failure that may succeed on retry: network
	// faults, rate limiting, server errors.
	ErrTransient = errors.New("transient failure")

	// ErrFatal marks a failure no retry can fix: bad credentials,
	// malformed requests, revoked access. The run should halt.
	ErrFatal = errors.New("fatal failure")
)

// Wrap tags an error with one of the sentinel markers above while keeping
// source and operation context in the message.
func Wrap(marker error, source, operation, message string, err error) error {
	detail := buildDetail(source, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsMiss reports whether err is a definitive not-found answer.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}

// IsTransient reports whether err may succeed if retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsFatal reports whether err should halt the run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// StatusError carries the HTTP status behind a classified failure, plus
// any server-requested backoff from a Retry-After header.
type StatusError struct {
	Source     string
	Operation  string
	StatusCode int
	RetryAfter time.Duration
	marker     error
}

func (e *StatusError) Error() string {
	detail := buildDetail(e.Source, e.Operation, "")
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: http %d (retry after %s)", detail, e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("%s: http %d", detail, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.marker
}

// ClassifyStatus maps an HTTP response status to the error taxonomy.
// A nil return means the status is a success.
func ClassifyStatus(source, operation string, resp *http.Response) error {
	if resp == nil {
		return Wrap(ErrTransient, source, operation, "no response", nil)
	}
	status := resp.StatusCode
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return &StatusError{Source: source, Operation: operation, StatusCode: status, marker: ErrMiss}
	case status == http.StatusTooManyRequests:
		return &StatusError{
			Source:     source,
			Operation:  operation,
			StatusCode: status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			marker:     ErrTransient,
		}
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return &StatusError{Source: source, Operation: operation, StatusCode: status, marker: ErrFatal}
	case status >= 500:
		return &StatusError{Source: source, Operation: operation, StatusCode: status, marker: ErrTransient}
	default:
		return &StatusError{Source: source, Operation: operation, StatusCode: status, marker: ErrFatal}
	}
}

// ClassifyTransport maps a transport-level error (DNS, timeout, reset) to
// the taxonomy. Context cancellation passes through untagged so callers
// can distinguish shutdown from provider trouble.
func ClassifyTransport(source, operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Wrap(ErrTransient, source, operation, "request failed", err)
}

// parseRetryAfter understands both delay-seconds and HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}

// RetryAfterHint extracts the server-requested backoff from err, if any.
func RetryAfterHint(err error) time.Duration {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.RetryAfter
	}
	return 0
}

func buildDetail(source, operation, message string) string {
	parts := make([]string, 0, 3)
	if source = strings.TrimSpace(source); source != "" {
		parts = append(parts, source)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "source failure"
	}
	return strings.Join(parts, ": ")
}
