package modelio

import (
	"fmt"
	"strings"
)

// CapabilityError is the base error type for generation-capability failures.
type CapabilityError struct {
	Message string
	Cause   error
}

func (e *CapabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CapabilityError) Unwrap() error {
	return e.Cause
}

// ProviderError represents an error returned by the hosted model provider.
type ProviderError struct {
	CapabilityError
	Provider   string
	StatusCode int
	Retryable  bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d, retryable=%v)", e.Provider, e.Message, e.StatusCode, e.Retryable)
}

// Concrete provider error types.

type AuthenticationError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type ServerError struct{ ProviderError }
type ContextLengthError struct{ ProviderError }

type RequestTimeoutError struct{ CapabilityError }

// classifyError converts a transport error into the typed hierarchy based on
// the error message content, since gollm surfaces provider failures as
// opaque strings.
func classifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key"):
		return &AuthenticationError{ProviderError: ProviderError{
			CapabilityError: CapabilityError{Message: msg, Cause: err}, Provider: provider, StatusCode: 401,
		}}
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return &RateLimitError{ProviderError: ProviderError{
			CapabilityError: CapabilityError{Message: msg, Cause: err}, Provider: provider, StatusCode: 429, Retryable: true,
		}}
	case strings.Contains(lower, "context length") || strings.Contains(lower, "too many tokens"):
		return &ContextLengthError{ProviderError: ProviderError{
			CapabilityError: CapabilityError{Message: msg, Cause: err}, Provider: provider, StatusCode: 413,
		}}
	case strings.Contains(lower, "500") || strings.Contains(lower, "internal server"):
		return &ServerError{ProviderError: ProviderError{
			CapabilityError: CapabilityError{Message: msg, Cause: err}, Provider: provider, StatusCode: 500, Retryable: true,
		}}
	case strings.Contains(lower, "timeout"):
		return &RequestTimeoutError{CapabilityError: CapabilityError{Message: msg, Cause: err}}
	default:
		return &ProviderError{
			CapabilityError: CapabilityError{Message: msg, Cause: err},
			Provider:        provider,
			Retryable:       true,
		}
	}
}

// IsRetryable reports whether the error is safe to retry. The orchestrator
// loop never retries; this classification exists for hosts embedding the
// Invoker elsewhere.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *AuthenticationError:
		return false
	case *ContextLengthError:
		return false
	case *RateLimitError:
		return true
	case *ServerError:
		return true
	case *RequestTimeoutError:
		return true
	case *ProviderError:
		return e.Retryable
	default:
		return false
	}
}
