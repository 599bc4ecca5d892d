package vision

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
)

// ServiceError indicates the reasoning service could not serve the call
// (timeout, rate limit, 5xx). Safe to retry with backoff.
type ServiceError struct {
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("vision: service unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("vision: service unavailable: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// EmptyResponseError indicates the model returned no text content.
type EmptyResponseError struct {
	Model string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("vision: empty response from %s", e.Model)
}

// IsRetryable reports whether err represents a failure worth retrying
// against the reasoning service. Empty responses are transient: a fresh
// attempt usually produces content.
func IsRetryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return true
	}
	var er *EmptyResponseError
	return errors.As(err, &er)
}

// classifyError maps SDK and transport errors onto the pipeline taxonomy.
// Deadline overruns count as service unavailability; a cancelled context
// is passed through so callers can distinguish caller-initiated aborts.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Err: err}
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 408,
			apiErr.StatusCode == 429,
			apiErr.StatusCode >= 500:
			return &ServiceError{StatusCode: apiErr.StatusCode, Err: err}
		default:
			return err
		}
	}

	// Transport-level failures (connection reset, DNS) surface as plain
	// errors from the SDK's HTTP client.
	return &ServiceError{Err: err}
}
