package response

// ErrCode is a typed error code enum for consistent API error
// identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrInvalidConfiguration ErrCode = "INVALID_CONFIGURATION"
	ErrNoActiveSession      ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionNotSubmitted  ErrCode = "SESSION_NOT_SUBMITTED"

	// ─── Session operations ────────────────────────────────────────────
	ErrInvalidOption    ErrCode = "INVALID_OPTION"
	ErrIndexOutOfRange  ErrCode = "INDEX_OUT_OF_RANGE"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrSetNotFound ErrCode = "SET_NOT_FOUND"
	ErrNotFound    ErrCode = "NOT_FOUND"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidConfiguration:
		return "The session cannot be started with this configuration."
	case ErrNoActiveSession:
		return "No exam session is active."
	case ErrSessionNotSubmitted:
		return "The session has not been submitted yet."
	case ErrInvalidOption:
		return "The selected option does not exist for this question."
	case ErrIndexOutOfRange:
		return "The requested question position does not exist."
	case ErrQuestionNotFound:
		return "The question does not exist in the loaded set."
	case ErrSetNotFound:
		return "The question set does not exist."
	case ErrNotFound:
		return "Resource not found."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
