package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Contract errors
const (
	// ErrCodeProtocolViolation indicates an event was emitted on a bridged
	// channel without a type.
	ErrCodeProtocolViolation ErrorCode = "PROTOCOL_VIOLATION"
	// ErrCodeAlreadySettled indicates a settle attempt on a settled promise.
	ErrCodeAlreadySettled ErrorCode = "ALREADY_SETTLED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected fault such as a recovered panic.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeCanceled indicates the operation was canceled by its context.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeCanceled:          true,
	ErrCodeInternal:          false,
	ErrCodeProtocolViolation: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
