package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesInternal(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrServiceUnavailable)

	if err.Code != ErrServiceUnavailable.Code {
		t.Errorf("Code = %q, want %q", err.Code, ErrServiceUnavailable.Code)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to the cause")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(nil, ErrValidation))
	if !Is(err, ErrValidation) {
		t.Error("Is() should match wrapped app errors by code")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is() should not match a different code")
	}
	if Is(errors.New("plain"), ErrValidation) {
		t.Error("Is() should not match plain errors")
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(ErrUnknownJobType); got != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", got, http.StatusBadRequest)
	}
	if got := StatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusCode for plain error = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestSafeMessage(t *testing.T) {
	internal := Wrap(errors.New("pq: connection reset"), ErrInternal)
	msg := SafeMessage(internal)
	if msg != ErrInternal.Message {
		t.Errorf("SafeMessage = %q, want %q", msg, ErrInternal.Message)
	}
}
