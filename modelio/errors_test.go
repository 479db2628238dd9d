package modelio

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		errMsg    string
		wantType  string
		retryable bool
	}{
		{"auth", "API error 401: unauthorized", "auth", false},
		{"rate limit", "rate limit exceeded, retry later", "rate", true},
		{"context length", "prompt exceeds context length", "context", false},
		{"server", "500 internal server error", "server", true},
		{"timeout", "request timeout after 60s", "timeout", true},
		{"unknown", "something odd happened", "provider", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("anthropic", errors.New(tt.errMsg))

			var matched bool
			switch tt.wantType {
			case "auth":
				var e *AuthenticationError
				matched = errors.As(got, &e)
			case "rate":
				var e *RateLimitError
				matched = errors.As(got, &e)
			case "context":
				var e *ContextLengthError
				matched = errors.As(got, &e)
			case "server":
				var e *ServerError
				matched = errors.As(got, &e)
			case "timeout":
				var e *RequestTimeoutError
				matched = errors.As(got, &e)
			case "provider":
				var e *ProviderError
				matched = errors.As(got, &e)
			}
			if !matched {
				t.Errorf("classifyError(%q) = %T, want %s", tt.errMsg, got, tt.wantType)
			}
			if IsRetryable(got) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(got), tt.retryable)
			}
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if classifyError("anthropic", nil) != nil {
		t.Error("classifyError(nil) should be nil")
	}
}
