package apiclient

import (
	"errors"
	"fmt"
)

// TransportError reports a request that never produced a usable response:
// the host was unreachable, the body was not JSON, the status was not 2xx, or
// the circuit breaker refused the call.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EnvelopeError reports an envelope whose success flag was false
type EnvelopeError struct {
	URL     string
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request to %s was not successful", e.URL)
	}
	return fmt.Sprintf("request to %s was not successful: %s", e.URL, e.Message)
}

// Reason extracts a short user-facing explanation from an API error
func Reason(err error) string {
	if err == nil {
		return ""
	}

	var envErr *EnvelopeError
	if errors.As(err, &envErr) {
		if envErr.Message != "" {
			return envErr.Message
		}
		return "request was not successful"
	}

	var trErr *TransportError
	if errors.As(err, &trErr) {
		if trErr.StatusCode != 0 {
			return fmt.Sprintf("server returned status %d", trErr.StatusCode)
		}
		if trErr.Err != nil {
			return trErr.Err.Error()
		}
	}

	return err.Error()
}

// IsEnvelopeError reports whether err is an application-level failure
func IsEnvelopeError(err error) bool {
	var envErr *EnvelopeError
	return errors.As(err, &envErr)
}
