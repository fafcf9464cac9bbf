package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{"no cause", New(ErrCodeNotFound, "host missing"), "[NOT_FOUND] host missing"},
		{"with cause", Wrap(ErrCodeUnavailable, "login failed", errors.New("dial tcp")), "[UNAVAILABLE] login failed: dial tcp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", WrapWithContext(ErrCodeTimeout, "slow", cause, map[string]any{"k": "v"}))

	if got := CodeOf(wrapped); got != ErrCodeTimeout {
		t.Errorf("CodeOf() = %q, want %q", got, ErrCodeTimeout)
	}
	if got := CodeOf(cause); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %q, want %q", got, ErrCodeInternal)
	}
	if !IsCode(wrapped, ErrCodeTimeout) {
		t.Error("IsCode() = false, want true")
	}
	if IsCode(wrapped, ErrCodeNotFound) {
		t.Error("IsCode(NOT_FOUND) = true, want false")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause")
	}
}
