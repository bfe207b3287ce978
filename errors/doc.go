// Package errors provides the structured error type used across flowkit.
//
// Errors raised by flowkit itself (protocol violations, invalid input,
// internal faults) are AppError values carrying a machine-readable code.
// Errors returned by user-supplied stages are never wrapped: chains and
// pipelines surface the exact value the stage returned.
package errors
