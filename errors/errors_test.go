package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidInput, err.Code)
	}
	if err.Message != "bad" {
		t.Errorf("expected message 'bad', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("INVALID_INPUT should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeCanceled, "canceled")
	if !err.Retryable {
		t.Error("CANCELED should be retryable")
	}
}

func TestProtocolViolation(t *testing.T) {
	err := ProtocolViolation("notify")
	if err.Code != ErrCodeProtocolViolation {
		t.Errorf("expected PROTOCOL_VIOLATION, got %s", err.Code)
	}
	if !strings.Contains(err.Error(), `notify events require a "type" property`) {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Details["channel"] != "notify" {
		t.Errorf("expected channel=notify, got %v", err.Details["channel"])
	}
	if !IsProtocolViolation(fmt.Errorf("emit: %w", err)) {
		t.Error("expected wrapped protocol violation to be detected")
	}
}

func TestInvalidInput_EmptyField(t *testing.T) {
	err := InvalidInput("", "nothing")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no 'field' key in details when field is empty")
	}
}

func TestInternal_Unwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestPanic(t *testing.T) {
	tests := []struct {
		name      string
		recovered any
		want      string
	}{
		{"string", "boom", "boom"},
		{"error", stderrors.New("kaboom"), "kaboom"},
		{"int", 42, "42"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Panic(tc.recovered)
			if err.Code != ErrCodeInternal {
				t.Errorf("expected INTERNAL_ERROR, got %s", err.Code)
			}
			if err.Details["panic"] != tc.want {
				t.Errorf("expected panic detail %q, got %v", tc.want, err.Details["panic"])
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
	appErr, ok := AsAppError(fmt.Errorf("ctx: %w", MissingField("name")))
	if !ok {
		t.Fatal("expected conversion through wrapping")
	}
	if appErr.Code != ErrCodeMissingField {
		t.Errorf("expected MISSING_FIELD, got %s", appErr.Code)
	}
	if !IsAppError(appErr) {
		t.Error("expected IsAppError true")
	}
}

func TestHasCode(t *testing.T) {
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil error has no code")
	}
	if !HasCode(AlreadySettled(), ErrCodeAlreadySettled) {
		t.Error("expected ALREADY_SETTLED")
	}
}
