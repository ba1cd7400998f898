package services

import "errors"

var (
	// ErrAlertNotFound is returned by review/escalate operations referencing an
	// unknown alert id. No side effects occur.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrFlaggedNotFound is returned for operations on unknown flagged records
	ErrFlaggedNotFound = errors.New("flagged content not found")

	// ErrInvalidTransition is returned when a review action would move an
	// alert out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCriticalPersistence marks a failure to durably record a critical-tier
	// case. It must surface to the caller: masking it would mean a crisis case
	// goes unrecorded. The crisis message is still delivered to the user.
	ErrCriticalPersistence = errors.New("failed to persist critical risk case")
)
