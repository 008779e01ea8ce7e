package session

import "errors"

var (
	// ErrInvalidConfiguration means a session cannot be created at all:
	// empty question order or non-positive time limit. Never defaulted
	// silently; the caller surfaces it as a setup error.
	ErrInvalidConfiguration = errors.New("invalid session configuration")

	// ErrCorruptSnapshot means a persisted snapshot is unusable (missing
	// fields, set mismatch, out-of-range index). The caller recovers by
	// discarding it and starting fresh.
	ErrCorruptSnapshot = errors.New("corrupt session snapshot")

	// ErrInvalidOption means the selected option index is outside the
	// question's option range. Indicates a presentation-layer bug; the
	// state is left unchanged.
	ErrInvalidOption = errors.New("option index out of range")

	// ErrIndexOutOfRange means a jump target is outside the navigation
	// order. Indicates a presentation-layer bug; the state is left
	// unchanged.
	ErrIndexOutOfRange = errors.New("question index out of range")
)
