// Package errors provides structured domain errors for the council service.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"

	// Council errors
	CodeUnknownVoter          Code = "UNKNOWN_VOTER"
	CodeInvalidVote           Code = "INVALID_VOTE"
	CodeUnknownOutcome        Code = "UNKNOWN_OUTCOME"
	CodeCouncilAlreadyApplied Code = "COUNCIL_ALREADY_APPLIED"
	CodeCouncilNotPending     Code = "COUNCIL_NOT_PENDING"

	// Storage errors
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// Retryable reports whether an operation failing with this code may succeed
// when repeated unchanged.
func (c Code) Retryable() bool {
	switch c {
	case CodeStorageFailure:
		return true
	default:
		return false
	}
}
